// Package game provides the main game loop and state management.
package game

// State represents the current game state.
type State int

const (
	// StateSelection asks the player to pick a starter element.
	StateSelection State = iota
	// StateExplore is the overworld where the player walks between encounter tiles.
	StateExplore
	// StateCombat runs a combat session against an encounter.
	StateCombat
	// StateVictory shows the result of a won battle.
	StateVictory
	// StateDefeat shows the result of a lost battle.
	StateDefeat
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateSelection:
		return "selection"
	case StateExplore:
		return "explore"
	case StateCombat:
		return "combat"
	case StateVictory:
		return "victory"
	case StateDefeat:
		return "defeat"
	default:
		return "unknown"
	}
}
