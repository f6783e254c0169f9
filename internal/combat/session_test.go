package combat

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/samdwyer/wildgates/internal/creature"
)

// scriptedSource replays values from Intn, reducing each modulo n.
type scriptedSource struct {
	values []int
	calls  int
}

func (s *scriptedSource) Intn(n int) int {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.calls%len(s.values)]
	s.calls++
	return v % n
}

// newTestCreature builds a creature with pinned health and damage range.
func newTestCreature(element string, hp, dmgMin, dmgMax int) *creature.Creature {
	c := creature.New(element, 1, &scriptedSource{})
	c.MaxHealth, c.CurrentHealth = hp, hp
	c.DamageMin, c.DamageMax = dmgMin, dmgMax
	return c
}

func newTestSession(t *testing.T, attacker *creature.Creature, opponents ...*creature.Creature) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), attacker, opponents, &scriptedSource{})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func countOrigin(events []Event, origin Origin) int {
	n := 0
	for _, e := range events {
		if e.Origin == origin {
			n++
		}
	}
	return n
}

func TestNewSessionPreconditions(t *testing.T) {
	ctx := context.Background()
	attacker := newTestCreature("fire", 100, 1, 1)

	if _, err := NewSession(ctx, attacker, nil, nil); !errors.Is(err, ErrNoOpponents) {
		t.Errorf("empty opponents: err = %v, want ErrNoOpponents", err)
	}
	if _, err := NewSession(ctx, nil, []*creature.Creature{newTestCreature("enemy", 5, 1, 1)}, nil); !errors.Is(err, ErrNilCreature) {
		t.Errorf("nil attacker: err = %v, want ErrNilCreature", err)
	}
	if _, err := NewSession(ctx, attacker, []*creature.Creature{nil}, nil); !errors.Is(err, ErrNilCreature) {
		t.Errorf("nil opponent: err = %v, want ErrNilCreature", err)
	}
}

func TestNewSessionInitialState(t *testing.T) {
	s := newTestSession(t, newTestCreature("fire", 100, 1, 1),
		newTestCreature("enemy", 10, 1, 1),
		newTestCreature("enemy", 10, 1, 1))

	if s.Outcome() != Undecided {
		t.Errorf("Outcome() = %v, want Undecided", s.Outcome())
	}
	if s.TargetIndex() != 0 {
		t.Errorf("TargetIndex() = %d, want 0", s.TargetIndex())
	}
	if s.Message() != "2 enemies appear!" {
		t.Errorf("Message() = %q, want %q", s.Message(), "2 enemies appear!")
	}
	if len(s.Feedback()) != 0 {
		t.Errorf("Feedback() has %d events, want 0", len(s.Feedback()))
	}
}

func TestIntroMessage(t *testing.T) {
	one := []*creature.Creature{newTestCreature("boss", 10, 1, 1)}
	if got := IntroMessage(one); got != "A wild boss creature appears!" {
		t.Errorf("IntroMessage(one) = %q", got)
	}
	three := []*creature.Creature{one[0], one[0], one[0]}
	if got := IntroMessage(three); got != "3 enemies appear!" {
		t.Errorf("IntroMessage(three) = %q", got)
	}
}

func TestBasicAttackFinishingBlow(t *testing.T) {
	attacker := newTestCreature("fire", 100, 10, 10)
	opponent := newTestCreature("enemy", 10, 5, 5)
	s := newTestSession(t, attacker, opponent)

	res := s.BasicAttack(context.Background())

	if !res.Accepted {
		t.Fatal("attack should be accepted")
	}
	if opponent.CurrentHealth > 0 {
		t.Errorf("opponent HP = %d, want <= 0", opponent.CurrentHealth)
	}
	if s.Outcome() != Victory || res.Outcome != Victory {
		t.Errorf("outcome = %v/%v, want Victory", s.Outcome(), res.Outcome)
	}
	if res.Countered {
		t.Error("finishing blow must not be countered")
	}
	if attacker.CurrentHealth != 100 {
		t.Errorf("attacker HP = %d, want 100", attacker.CurrentHealth)
	}
	events := s.Feedback()
	if len(events) != 1 || countOrigin(events, OriginAttacker) != 0 {
		t.Errorf("feedback = %+v, want one opponent event", events)
	}
	if s.Message() != MsgEnemyDefeated {
		t.Errorf("Message() = %q, want %q", s.Message(), MsgEnemyDefeated)
	}
}

func TestSpecialAttackWithoutUses(t *testing.T) {
	attacker := newTestCreature("water", 100, 10, 10)
	attacker.SpecialUses = 0
	opponent := newTestCreature("enemy", 50, 5, 5)
	s := newTestSession(t, attacker, opponent)

	res := s.SpecialAttack(context.Background())

	if res.Accepted {
		t.Error("special without uses should be rejected")
	}
	if attacker.CurrentHealth != 100 || opponent.CurrentHealth != 50 {
		t.Errorf("health changed: attacker=%d opponent=%d", attacker.CurrentHealth, opponent.CurrentHealth)
	}
	if s.Message() != MsgNoSpecialUses {
		t.Errorf("Message() = %q, want %q", s.Message(), MsgNoSpecialUses)
	}
	if s.Outcome() != Undecided {
		t.Errorf("Outcome() = %v, want Undecided", s.Outcome())
	}
	if len(s.Feedback()) != 0 {
		t.Errorf("rejected special produced %d feedback events", len(s.Feedback()))
	}
}

func TestAreaSpecialClearsField(t *testing.T) {
	attacker := newTestCreature("nature", 100, 0, 0) // special damage = 0*1.35 + 6 = 6
	attacker.MaxSpecialUses, attacker.SpecialUses = 1, 1
	opponents := []*creature.Creature{
		newTestCreature("enemy", 5, 3, 3),
		newTestCreature("enemy", 5, 3, 3),
		newTestCreature("enemy", 5, 3, 3),
	}
	s := newTestSession(t, attacker, opponents...)

	res := s.SpecialAttack(context.Background())

	for i, o := range opponents {
		if !o.IsDefeated() {
			t.Errorf("opponent %d survived with %d HP", i, o.CurrentHealth)
		}
	}
	if attacker.SpecialUses != 0 {
		t.Errorf("SpecialUses = %d, want 0", attacker.SpecialUses)
	}
	if s.Outcome() != Victory {
		t.Errorf("Outcome() = %v, want Victory", s.Outcome())
	}
	if res.Action != ActionAreaSpecial || res.Hits != 3 || res.Damage != 18 {
		t.Errorf("result = %+v, want area special with 3 hits for 18", res)
	}
	events := s.Feedback()
	if len(events) != 3 {
		t.Fatalf("feedback has %d events, want 3", len(events))
	}
	if countOrigin(events, OriginAttacker) != 0 {
		t.Error("no counterattack event expected after clearing the field")
	}
	for i, e := range events {
		if e.OpponentIndex != i {
			t.Errorf("event %d anchored to opponent %d, want %d", i, e.OpponentIndex, i)
		}
	}
	if s.Message() != MsgEnemiesDefeated {
		t.Errorf("Message() = %q, want %q", s.Message(), MsgEnemiesDefeated)
	}
}

func TestAreaSpecialWithSurvivor(t *testing.T) {
	attacker := newTestCreature("fire", 100, 0, 0)
	weak := newTestCreature("enemy", 5, 2, 2)
	tough := newTestCreature("enemy", 100, 4, 4)
	s := newTestSession(t, attacker, weak, tough)

	res := s.SpecialAttack(context.Background())

	if !weak.IsDefeated() || tough.CurrentHealth != 94 {
		t.Errorf("health after splash: weak=%d tough=%d, want <=0 and 94", weak.CurrentHealth, tough.CurrentHealth)
	}
	if !res.Countered || res.CounterDamage != 4 {
		t.Errorf("counter = %v/%d, want true/4 from the survivor", res.Countered, res.CounterDamage)
	}
	if attacker.CurrentHealth != 96 {
		t.Errorf("attacker HP = %d, want 96", attacker.CurrentHealth)
	}
	want := "Special hit all enemies for 12 total. Enemy hit back for 4."
	if s.Message() != want {
		t.Errorf("Message() = %q, want %q", s.Message(), want)
	}
	if s.TargetIndex() != 0 || s.AliveCount() != 1 {
		t.Errorf("target=%d alive=%d, want 0 and 1", s.TargetIndex(), s.AliveCount())
	}
	if got := countOrigin(s.Feedback(), OriginAttacker); got != 1 {
		t.Errorf("counter events = %d, want 1", got)
	}
}

func TestSpecialAttackSingleOpponent(t *testing.T) {
	attacker := newTestCreature("water", 100, 10, 10) // special = 13 + 6 = 19
	opponent := newTestCreature("enemy", 100, 2, 2)
	s := newTestSession(t, attacker, opponent)

	res := s.SpecialAttack(context.Background())

	if res.Action != ActionSpecial {
		t.Errorf("Action = %v, want special", res.Action)
	}
	if opponent.CurrentHealth != 81 {
		t.Errorf("opponent HP = %d, want 81", opponent.CurrentHealth)
	}
	if attacker.SpecialUses != 0 {
		t.Errorf("SpecialUses = %d, want 0", attacker.SpecialUses)
	}
	if s.Message() != "You dealt 19. Enemy hit back for 2." {
		t.Errorf("Message() = %q", s.Message())
	}

	again := s.SpecialAttack(context.Background())
	if again.Accepted || s.Message() != MsgNoSpecialUses {
		t.Errorf("second special: accepted=%v message=%q", again.Accepted, s.Message())
	}
	if opponent.CurrentHealth != 81 {
		t.Error("rejected special must not deal damage")
	}
}

func TestBasicAttackExchange(t *testing.T) {
	attacker := newTestCreature("fire", 100, 3, 3)
	opponent := newTestCreature("enemy", 20, 4, 4)
	s := newTestSession(t, attacker, opponent)

	res := s.BasicAttack(context.Background())

	if opponent.CurrentHealth != 17 || attacker.CurrentHealth != 96 {
		t.Errorf("HP after exchange: opponent=%d attacker=%d, want 17 and 96",
			opponent.CurrentHealth, attacker.CurrentHealth)
	}
	if res.Damage != 3 || res.CounterDamage != 4 || !res.Countered {
		t.Errorf("result = %+v", res)
	}
	if s.Message() != "You dealt 3. Enemy hit back for 4." {
		t.Errorf("Message() = %q", s.Message())
	}
	if s.Turns() != 1 {
		t.Errorf("Turns() = %d, want 1", s.Turns())
	}
	events := s.Feedback()
	if len(events) != 2 || events[0].Origin != OriginOpponent || events[1].Origin != OriginAttacker {
		t.Errorf("feedback order = %+v, want opponent hit then counter", events)
	}
	if events[1].Text != "-4" || events[1].Color != ColorAttackerHit {
		t.Errorf("counter event = %+v", events[1])
	}
}

func TestCounterattackPicksRandomAliveOpponent(t *testing.T) {
	attacker := newTestCreature("fire", 100, 1, 1)
	first := newTestCreature("enemy", 50, 1, 1)
	second := newTestCreature("enemy", 50, 7, 7)

	s, err := NewSession(context.Background(), attacker, []*creature.Creature{first, second}, &scriptedSource{values: []int{1}})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	res := s.BasicAttack(context.Background())
	if res.CounterDamage != 7 {
		t.Errorf("CounterDamage = %d, want 7 from the second opponent", res.CounterDamage)
	}
}

func TestDefeatIsTerminal(t *testing.T) {
	attacker := newTestCreature("fire", 5, 1, 1)
	a := newTestCreature("enemy", 100, 5, 5)
	b := newTestCreature("enemy", 100, 5, 5)
	s := newTestSession(t, attacker, a, b)

	s.BasicAttack(context.Background())
	if s.Outcome() != Defeat {
		t.Fatalf("Outcome() = %v, want Defeat", s.Outcome())
	}
	if s.Message() != MsgAttackerDefeated {
		t.Errorf("Message() = %q, want %q", s.Message(), MsgAttackerDefeated)
	}

	hpA, hpB, hpAtk := a.CurrentHealth, b.CurrentHealth, attacker.CurrentHealth
	msg, target := s.Message(), s.TargetIndex()

	ctx := context.Background()
	results := []Result{
		s.BasicAttack(ctx),
		s.SpecialAttack(ctx),
		s.Apply(ctx, Intent{Kind: IntentCycleTargetNext}),
		s.Apply(ctx, SelectAt(1)),
	}
	for i, res := range results {
		if res.Accepted {
			t.Errorf("call %d accepted on a resolved session", i)
		}
	}
	if s.SelectTarget(Next) || s.SelectTargetAt(1) {
		t.Error("target selection accepted on a resolved session")
	}
	if a.CurrentHealth != hpA || b.CurrentHealth != hpB || attacker.CurrentHealth != hpAtk {
		t.Error("health changed after resolution")
	}
	if s.Message() != msg || s.TargetIndex() != target || s.Outcome() != Defeat {
		t.Error("session state changed after resolution")
	}
}

func TestTargetCycling(t *testing.T) {
	s := newTestSession(t, newTestCreature("fire", 100, 1, 1),
		newTestCreature("enemy", 10, 1, 1),
		newTestCreature("enemy", 10, 1, 1))

	if !s.SelectTarget(Next) || s.TargetIndex() != 1 {
		t.Errorf("Next from 0: index = %d, want 1", s.TargetIndex())
	}
	if !s.SelectTarget(Next) || s.TargetIndex() != 0 {
		t.Errorf("Next from 1: index = %d, want 0 (wrap)", s.TargetIndex())
	}
	if !s.SelectTarget(Previous) || s.TargetIndex() != 1 {
		t.Errorf("Previous from 0: index = %d, want 1 (wrap)", s.TargetIndex())
	}
}

func TestSelectTargetAt(t *testing.T) {
	s := newTestSession(t, newTestCreature("fire", 100, 1, 1),
		newTestCreature("enemy", 10, 1, 1),
		newTestCreature("enemy", 10, 1, 1),
		newTestCreature("enemy", 10, 1, 1))

	tests := []struct {
		index     int
		wantOK    bool
		wantIndex int
	}{
		{2, true, 2},
		{3, false, 2},
		{-1, false, 2},
		{0, true, 0},
	}
	for _, tt := range tests {
		ok := s.SelectTargetAt(tt.index)
		if ok != tt.wantOK || s.TargetIndex() != tt.wantIndex {
			t.Errorf("SelectTargetAt(%d) = %v, index %d; want %v, index %d",
				tt.index, ok, s.TargetIndex(), tt.wantOK, tt.wantIndex)
		}
	}
}

func TestTargetReclampedAfterKill(t *testing.T) {
	opponents := []*creature.Creature{
		newTestCreature("enemy", 50, 1, 1),
		newTestCreature("enemy", 50, 1, 1),
		newTestCreature("enemy", 5, 1, 1),
	}
	s := newTestSession(t, newTestCreature("fire", 100, 10, 10), opponents...)
	s.SelectTargetAt(2)

	res := s.BasicAttack(context.Background())

	if !opponents[2].IsDefeated() {
		t.Fatal("selected opponent should be defeated")
	}
	if s.AliveCount() != 2 || s.TargetIndex() != 1 {
		t.Errorf("alive=%d target=%d, want 2 and 1", s.AliveCount(), s.TargetIndex())
	}
	if !res.Countered {
		t.Error("surviving opponents should counterattack")
	}
	if s.Target() != opponents[1] {
		t.Error("Target() should be the last living opponent")
	}
	if got := s.AliveIndices(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("AliveIndices() = %v, want [0 1]", got)
	}
	if len(s.Opponents()) != 3 {
		t.Error("Opponents() must keep defeated entries")
	}
}

func TestAttackWithNoLivingOpponents(t *testing.T) {
	dead := newTestCreature("enemy", 0, 1, 1)
	attacker := newTestCreature("fire", 100, 1, 1)
	s := newTestSession(t, attacker, dead)

	res := s.SpecialAttack(context.Background())

	if s.Outcome() != Victory || !res.Accepted {
		t.Errorf("outcome = %v accepted = %v, want Victory true", s.Outcome(), res.Accepted)
	}
	if attacker.SpecialUses != 1 {
		t.Error("no special use should be spent without a target")
	}
	if s.Target() != nil {
		t.Error("Target() should be nil with no living opponents")
	}
}

func TestFeedbackExpires(t *testing.T) {
	s := newTestSession(t, newTestCreature("fire", 100, 1, 1), newTestCreature("enemy", 50, 1, 1))
	s.BasicAttack(context.Background())

	if len(s.Feedback()) != 2 {
		t.Fatalf("Feedback() = %d events, want 2", len(s.Feedback()))
	}
	s.AdvanceTime(0.5)
	if len(s.Feedback()) != 2 {
		t.Errorf("after 0.5s: %d events, want 2", len(s.Feedback()))
	}
	s.AdvanceTime(0.5)
	if len(s.Feedback()) != 0 {
		t.Errorf("after 1.0s: %d events, want 0", len(s.Feedback()))
	}
}

func TestSessionInvariantsUnderRandomPlay(t *testing.T) {
	ctx := context.Background()
	intents := []Intent{
		{Kind: IntentCycleTargetPrev},
		{Kind: IntentCycleTargetNext},
		SelectAt(0), SelectAt(1), SelectAt(2), SelectAt(5),
		{Kind: IntentBasicAttack},
		{Kind: IntentBasicAttack},
		{Kind: IntentSpecialAttack},
	}

	for seed := int64(1); seed <= 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		attacker := creature.New("fire", 1, rng)
		attacker.ConfigureStats(creature.StatConfig{BaseHP: 60, HPPerLevel: 10, BaseDmgMin: 8, BaseDmgMax: 14, DmgPerLevel: 1})
		attacker.MaxSpecialUses, attacker.SpecialUses = 2, 2

		count := 1 + rng.Intn(3)
		opponents := make([]*creature.Creature, count)
		for i := range opponents {
			opponents[i] = creature.New("enemy", 1, rng)
			opponents[i].ConfigureStats(creature.StatConfig{BaseHP: 20, HPPerLevel: 5, BaseDmgMin: 4, BaseDmgMax: 9, DmgPerLevel: 1})
		}

		s, err := NewSession(ctx, attacker, opponents, rng)
		if err != nil {
			t.Fatalf("seed %d: NewSession: %v", seed, err)
		}

		prevUses := attacker.SpecialUses
		for step := 0; step < 60; step++ {
			before := s.Outcome()
			counterBefore := countOrigin(s.Feedback(), OriginAttacker)

			res := s.Apply(ctx, intents[rng.Intn(len(intents))])

			if before.Resolved() && s.Outcome() != before {
				t.Fatalf("seed %d: outcome changed from %v to %v", seed, before, s.Outcome())
			}
			if n := s.AliveCount(); n > 0 && (s.TargetIndex() < 0 || s.TargetIndex() >= n) {
				t.Fatalf("seed %d: target %d outside alive view of %d", seed, s.TargetIndex(), n)
			}
			if attacker.SpecialUses > prevUses || attacker.SpecialUses < 0 {
				t.Fatalf("seed %d: special uses went from %d to %d", seed, prevUses, attacker.SpecialUses)
			}
			prevUses = attacker.SpecialUses
			if s.AliveCount() == 0 {
				if s.Outcome() != Victory {
					t.Fatalf("seed %d: no opponents alive but outcome %v", seed, s.Outcome())
				}
				if !before.Resolved() && countOrigin(s.Feedback(), OriginAttacker) != counterBefore {
					t.Fatalf("seed %d: counterattack emitted on the finishing action", seed)
				}
			}
			if res.Countered && attacker.IsDefeated() && s.Outcome() != Defeat {
				t.Fatalf("seed %d: attacker defeated but outcome %v", seed, s.Outcome())
			}
			s.AdvanceTime(0.1)
		}
	}
}

func TestSessionEmitsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := tp.Tracer("test")

	s, err := NewSession(context.Background(),
		newTestCreature("fire", 100, 10, 10),
		[]*creature.Creature{newTestCreature("enemy", 10, 1, 1)},
		&scriptedSource{},
		WithTracer(tracer))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	s.BasicAttack(context.Background())

	names := map[string]bool{}
	for _, span := range recorder.Ended() {
		names[span.Name()] = true
	}
	for _, want := range []string{"combat.start", "combat.action", "combat.end"} {
		if !names[want] {
			t.Errorf("span %q not recorded; got %v", want, names)
		}
	}
}

func TestWithFeedbackLifetime(t *testing.T) {
	s, err := NewSession(context.Background(),
		newTestCreature("fire", 100, 1, 1),
		[]*creature.Creature{newTestCreature("enemy", 50, 1, 1)},
		&scriptedSource{},
		WithFeedback(0.2, 0))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	s.BasicAttack(context.Background())
	s.AdvanceTime(0.25)
	if len(s.Feedback()) != 0 {
		t.Errorf("events outlived a 0.2s lifetime: %d left", len(s.Feedback()))
	}
}
