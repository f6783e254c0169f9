package combat

// Outcome is the terminal state of a combat session.
type Outcome int

const (
	// Undecided - the encounter is still being fought
	Undecided Outcome = iota
	// Victory - every opponent is defeated
	Victory
	// Defeat - the attacker is defeated
	Defeat
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case Undecided:
		return "undecided"
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	default:
		return "unknown"
	}
}

// Resolved reports whether the outcome is terminal.
func (o Outcome) Resolved() bool {
	return o == Victory || o == Defeat
}

// ParseOutcome converts a name produced by String back to an Outcome.
func ParseOutcome(name string) (Outcome, bool) {
	switch name {
	case "undecided":
		return Undecided, true
	case "victory":
		return Victory, true
	case "defeat":
		return Defeat, true
	default:
		return Undecided, false
	}
}

// Direction selects which way SelectTarget cycles.
type Direction int

const (
	Previous Direction = iota
	Next
)
