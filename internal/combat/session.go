// Package combat provides the turn-based combat system for Wild Gates.
//
// A Session pits the player's creature against a fixed-order sequence of
// opponents. Each player action is resolved in full before returning: the
// player's hit, at most one counterattack from a random living opponent,
// and the outcome check. Invalid requests are no-ops reported through
// Result, never errors.
package combat

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/wildgates/internal/creature"
	"github.com/samdwyer/wildgates/internal/telemetry"
)

var (
	// ErrNoOpponents is returned when a session is built without opponents.
	ErrNoOpponents = errors.New("combat: at least one opponent is required")
	// ErrNilCreature is returned when the attacker or an opponent is nil.
	ErrNilCreature = errors.New("combat: nil creature")
)

// Messages surfaced through Session.Message.
const (
	MsgNoSpecialUses    = "No special uses left!"
	MsgEnemyDefeated    = "Enemy defeated!"
	MsgEnemiesDefeated  = "Enemies defeated!"
	MsgAttackerDefeated = "You have been defeated!"
)

// Action identifies what a Result describes.
type Action int

const (
	ActionNone Action = iota
	ActionBasic
	ActionSpecial
	ActionAreaSpecial
	ActionSelectTarget
)

// String returns a human-readable action name.
func (a Action) String() string {
	switch a {
	case ActionBasic:
		return "basic"
	case ActionSpecial:
		return "special"
	case ActionAreaSpecial:
		return "area_special"
	case ActionSelectTarget:
		return "select_target"
	default:
		return "none"
	}
}

// Result contains the outcome of one player intent.
type Result struct {
	Accepted      bool // False when the intent was rejected as a no-op
	Action        Action
	Damage        int // Total damage dealt to opponents
	Hits          int // Number of opponents struck
	Countered     bool
	CounterDamage int
	Outcome       Outcome
	Message       string
}

// Option configures a Session.
type Option func(*Session)

// WithTracer sets the tracer used for combat spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Session) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithFeedback overrides the lifetime (seconds) and drift (units per
// second) of feedback events.
func WithFeedback(lifetime, drift float64) Option {
	return func(s *Session) {
		s.feedback = NewFeedbackQueue(lifetime, drift)
	}
}

// Session holds all state for one encounter.
//
// A Session is not safe for concurrent use; the host owns it from a single
// goroutine.
type Session struct {
	attacker    *creature.Creature
	opponents   []*creature.Creature // Fixed order for the session's lifetime
	rng         creature.Source      // Picks the counterattacking opponent
	tracer      trace.Tracer
	feedback    *FeedbackQueue
	targetIndex int // Index into the alive view
	outcome     Outcome
	message     string
	turns       int
}

// NewSession creates a session for an encounter. The attacker and every
// opponent must already be stat-configured.
func NewSession(ctx context.Context, attacker *creature.Creature, opponents []*creature.Creature, rng creature.Source, opts ...Option) (*Session, error) {
	if attacker == nil {
		return nil, ErrNilCreature
	}
	if len(opponents) == 0 {
		return nil, ErrNoOpponents
	}
	for i, o := range opponents {
		if o == nil {
			return nil, fmt.Errorf("opponent %d: %w", i, ErrNilCreature)
		}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	fixed := make([]*creature.Creature, len(opponents))
	copy(fixed, opponents)

	s := &Session{
		attacker:  attacker,
		opponents: fixed,
		rng:       rng,
		tracer:    telemetry.Tracer("combat"),
		feedback:  NewFeedbackQueue(DefaultFeedbackLifetime, DefaultFeedbackDrift),
		outcome:   Undecided,
		message:   IntroMessage(fixed),
	}
	for _, opt := range opts {
		opt(s)
	}

	_, span := s.tracer.Start(ctx, "combat.start")
	span.SetAttributes(
		attribute.String("attacker.element", attacker.Element),
		attribute.Int("attacker.level", attacker.Level),
		attribute.Int("opponent_count", len(fixed)),
	)
	span.End()

	return s, nil
}

// IntroMessage returns the opening line for an encounter.
func IntroMessage(opponents []*creature.Creature) string {
	switch len(opponents) {
	case 0:
		return "An eerie silence fills the battlefield..."
	case 1:
		return "A wild " + opponents[0].Element + " creature appears!"
	default:
		return fmt.Sprintf("%d enemies appear!", len(opponents))
	}
}

// =============================================================================
// Read accessors
// =============================================================================

// Outcome returns the current outcome.
func (s *Session) Outcome() Outcome { return s.outcome }

// Message returns the summary of the most recent exchange.
func (s *Session) Message() string { return s.message }

// TargetIndex returns the selected index into AliveOpponents.
func (s *Session) TargetIndex() int { return s.targetIndex }

// Turns returns the number of resolved attacks.
func (s *Session) Turns() int { return s.turns }

// Attacker returns the player's creature.
func (s *Session) Attacker() *creature.Creature { return s.attacker }

// Opponents returns every opponent in fixed order, including defeated ones.
func (s *Session) Opponents() []*creature.Creature {
	out := make([]*creature.Creature, len(s.opponents))
	copy(out, s.opponents)
	return out
}

// AliveOpponents returns the living opponents in fixed order.
func (s *Session) AliveOpponents() []*creature.Creature {
	alive := make([]*creature.Creature, 0, len(s.opponents))
	for _, o := range s.opponents {
		if !o.IsDefeated() {
			alive = append(alive, o)
		}
	}
	return alive
}

// AliveIndices maps each alive-view position to its index in Opponents.
func (s *Session) AliveIndices() []int {
	indices := make([]int, 0, len(s.opponents))
	for i, o := range s.opponents {
		if !o.IsDefeated() {
			indices = append(indices, i)
		}
	}
	return indices
}

// AliveCount returns the number of opponents still standing.
func (s *Session) AliveCount() int {
	count := 0
	for _, o := range s.opponents {
		if !o.IsDefeated() {
			count++
		}
	}
	return count
}

// Target returns the selected opponent, or nil if none are alive.
func (s *Session) Target() *creature.Creature {
	alive := s.AliveOpponents()
	if len(alive) == 0 {
		return nil
	}
	return alive[s.targetIndex]
}

// Feedback returns the live feedback events in creation order.
func (s *Session) Feedback() []Event {
	return s.feedback.Events()
}

// =============================================================================
// Targeting
// =============================================================================

// SelectTarget cycles the target through the alive view with wraparound.
// Returns false if the session is resolved or no opponent is alive.
func (s *Session) SelectTarget(dir Direction) bool {
	if s.outcome.Resolved() {
		return false
	}
	n := s.AliveCount()
	if n == 0 {
		return false
	}
	switch dir {
	case Previous:
		s.targetIndex = (s.targetIndex - 1 + n) % n
	default:
		s.targetIndex = (s.targetIndex + 1) % n
	}
	return true
}

// SelectTargetAt selects the alive opponent at index. Out-of-range indices
// are ignored.
func (s *Session) SelectTargetAt(index int) bool {
	if s.outcome.Resolved() {
		return false
	}
	if index < 0 || index >= s.AliveCount() {
		return false
	}
	s.targetIndex = index
	return true
}

// clampTarget keeps targetIndex inside the alive view.
func (s *Session) clampTarget() {
	n := s.AliveCount()
	switch {
	case n == 0, s.targetIndex < 0:
		s.targetIndex = 0
	case s.targetIndex >= n:
		s.targetIndex = n - 1
	}
}

// =============================================================================
// Attacks
// =============================================================================

// BasicAttack strikes the selected opponent, then resolves one counterattack.
func (s *Session) BasicAttack(ctx context.Context) Result {
	return s.attack(ctx, false)
}

// SpecialAttack spends a special use. Against a single opponent it is a
// stronger basic attack; against several it strikes every living opponent.
func (s *Session) SpecialAttack(ctx context.Context) Result {
	if s.outcome.Resolved() {
		return s.rejected(ActionSpecial)
	}
	if s.attacker.SpecialUses <= 0 {
		s.message = MsgNoSpecialUses
		return s.rejected(ActionSpecial)
	}
	return s.attack(ctx, true)
}

// AdvanceTime decays feedback events by dt seconds. It never affects the
// outcome and keeps running after the session is resolved.
func (s *Session) AdvanceTime(dt float64) {
	s.feedback.Advance(dt)
}

func (s *Session) attack(ctx context.Context, special bool) Result {
	action := ActionBasic
	if special {
		action = ActionSpecial
	}
	if s.outcome.Resolved() {
		return s.rejected(action)
	}

	ctx, span := s.tracer.Start(ctx, "combat.action")
	defer span.End()

	alive := s.AliveIndices()
	if len(alive) == 0 {
		s.resolve(ctx, Victory, MsgEnemyDefeated)
		return s.result(Result{Accepted: true, Action: action})
	}

	res := Result{Accepted: true, Action: action}
	if special && len(alive) > 1 {
		res.Action = ActionAreaSpecial
		s.attacker.SpendSpecial()
		// Every target is snapshotted up front; deaths do not chain
		for _, idx := range alive {
			damage := s.attacker.RollSpecialDamage()
			s.strikeOpponent(idx, damage)
			res.Damage += damage
			res.Hits++
		}
	} else {
		s.clampTarget()
		idx := alive[s.targetIndex]
		var damage int
		if special {
			damage = s.attacker.RollSpecialDamage()
			s.attacker.SpendSpecial()
		} else {
			damage = s.attacker.RollDamage()
		}
		s.strikeOpponent(idx, damage)
		res.Damage = damage
		res.Hits = 1
		span.SetAttributes(attribute.Int("target.index", idx))
	}
	s.turns++

	span.SetAttributes(
		attribute.String("action", res.Action.String()),
		attribute.Int("turn", s.turns),
		attribute.Int("damage", res.Damage),
		attribute.Int("hits", res.Hits),
	)

	if s.AliveCount() == 0 {
		msg := MsgEnemyDefeated
		if res.Action == ActionAreaSpecial {
			msg = MsgEnemiesDefeated
		}
		s.resolve(ctx, Victory, msg)
		return s.result(res)
	}
	s.clampTarget()

	res.CounterDamage = s.counterattack()
	res.Countered = true
	span.SetAttributes(attribute.Int("counter_damage", res.CounterDamage))

	if res.Action == ActionAreaSpecial {
		s.message = fmt.Sprintf("Special hit all enemies for %d total. Enemy hit back for %d.", res.Damage, res.CounterDamage)
	} else {
		s.message = fmt.Sprintf("You dealt %d. Enemy hit back for %d.", res.Damage, res.CounterDamage)
	}

	if s.attacker.IsDefeated() {
		s.resolve(ctx, Defeat, MsgAttackerDefeated)
	}
	return s.result(res)
}

// strikeOpponent applies damage to the opponent at fixed index idx.
func (s *Session) strikeOpponent(idx, damage int) {
	s.opponents[idx].TakeDamage(damage)
	s.feedback.Push(fmt.Sprintf("-%d", damage), OriginOpponent, idx, ColorOpponentHit)
}

// counterattack lets one uniformly random living opponent hit the attacker.
// Callers guarantee at least one opponent is alive.
func (s *Session) counterattack() int {
	alive := s.AliveIndices()
	counter := s.opponents[alive[s.rng.Intn(len(alive))]]
	damage := counter.RollDamage()
	s.attacker.TakeDamage(damage)
	s.feedback.Push(fmt.Sprintf("-%d", damage), OriginAttacker, -1, ColorAttackerHit)
	return damage
}

// resolve records a terminal outcome.
func (s *Session) resolve(ctx context.Context, outcome Outcome, message string) {
	s.outcome = outcome
	s.message = message

	_, span := s.tracer.Start(ctx, "combat.end")
	span.SetAttributes(
		attribute.String("outcome", outcome.String()),
		attribute.Int("turns_taken", s.turns),
		attribute.Int("attacker_hp_remaining", s.attacker.DisplayHealth()),
		attribute.Int("special_uses_remaining", s.attacker.SpecialUses),
	)
	span.End()
}

// rejected reports a no-op without touching state.
func (s *Session) rejected(action Action) Result {
	return Result{Action: action, Outcome: s.outcome, Message: s.message}
}

// result stamps the current outcome and message onto res.
func (s *Session) result(res Result) Result {
	res.Outcome = s.outcome
	res.Message = s.message
	return res
}
