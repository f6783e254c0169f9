package combat

// ColorTag is the semantic colour of a feedback event. The renderer maps it
// to a concrete colour so this package stays free of presentation types.
type ColorTag uint8

const (
	ColorNone ColorTag = iota
	// ColorOpponentHit marks damage dealt to an opponent
	ColorOpponentHit
	// ColorAttackerHit marks counterattack damage dealt to the attacker
	ColorAttackerHit
)

// Origin says which side of the field an event is anchored to.
type Origin uint8

const (
	OriginAttacker Origin = iota
	OriginOpponent
)

const (
	// DefaultFeedbackLifetime is how long a damage number stays visible, in seconds.
	DefaultFeedbackLifetime = 0.9
	// DefaultFeedbackDrift is the upward drift of a damage number, in units per second.
	// Renderers choose how many units make up one row.
	DefaultFeedbackDrift = 20.0
)

// Event is a transient, time-decayed result such as a floating damage number.
type Event struct {
	Text          string
	Origin        Origin
	OpponentIndex int // Index into Session.Opponents(); -1 for the attacker
	Color         ColorTag
	Lifetime      float64 // Initial lifetime in seconds
	Remaining     float64 // Seconds left before expiry
	OffsetY       float64 // Accumulated drift; negative is upward
}

// Progress returns the fraction of the lifetime already elapsed, in [0, 1].
func (e Event) Progress() float64 {
	if e.Lifetime <= 0 {
		return 1
	}
	p := 1 - e.Remaining/e.Lifetime
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// FeedbackQueue holds live events in creation order.
type FeedbackQueue struct {
	events   []Event
	lifetime float64
	drift    float64
}

// NewFeedbackQueue creates a queue whose events live for lifetime seconds
// and drift upward at drift units per second.
func NewFeedbackQueue(lifetime, drift float64) *FeedbackQueue {
	if lifetime <= 0 {
		lifetime = DefaultFeedbackLifetime
	}
	return &FeedbackQueue{lifetime: lifetime, drift: drift}
}

// Push appends a new event with a full lifetime.
func (q *FeedbackQueue) Push(text string, origin Origin, opponentIndex int, color ColorTag) {
	q.events = append(q.events, Event{
		Text:          text,
		Origin:        origin,
		OpponentIndex: opponentIndex,
		Color:         color,
		Lifetime:      q.lifetime,
		Remaining:     q.lifetime,
	})
}

// Advance decays every event by dt seconds and drops the expired ones.
// Non-positive dt leaves the queue unchanged.
func (q *FeedbackQueue) Advance(dt float64) {
	if dt <= 0 {
		return
	}
	live := q.events[:0]
	for _, e := range q.events {
		e.Remaining -= dt
		e.OffsetY -= q.drift * dt
		if e.Remaining <= 0 {
			continue
		}
		live = append(live, e)
	}
	// Clear the tail so expired events are not retained by the backing array
	for i := len(live); i < len(q.events); i++ {
		q.events[i] = Event{}
	}
	q.events = live
}

// Events returns a copy of the live events in creation order.
func (q *FeedbackQueue) Events() []Event {
	out := make([]Event, len(q.events))
	copy(out, q.events)
	return out
}

// Len returns the number of live events.
func (q *FeedbackQueue) Len() int {
	return len(q.events)
}
