package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/samdwyer/wildgates/internal/combat"
	"github.com/samdwyer/wildgates/internal/creature"
	"github.com/samdwyer/wildgates/internal/gamedata"
)

// Config controls scenario execution.
type Config struct {
	Assertions AssertionMode
	Verbose    bool
	Logger     *log.Logger
	// Balance supplies stat tables for the "profile" creature option.
	// Nil uses the embedded table.
	Balance *gamedata.Balance
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Assertions: AssertionStrict,
		Verbose:    false,
	}
}

// Runner executes scenarios against combat sessions.
type Runner struct {
	assertions Assertions
	logger     *log.Logger
	verbose    bool
	balance    *gamedata.Balance
}

// runState is the per-scenario working set.
type runState struct {
	rng       *rand.Rand
	attacker  *creature.Creature
	opponents []*creature.Creature
	session   *combat.Session
}

// NewRunner prepares a scenario runner.
func NewRunner(cfg Config) (*Runner, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	balance := cfg.Balance
	if balance == nil {
		b, err := gamedata.LoadBalance()
		if err != nil {
			return nil, fmt.Errorf("load balance: %w", err)
		}
		balance = b
	}

	return &Runner{
		assertions: Assertions{Mode: cfg.Assertions, Logger: logger},
		logger:     logger,
		verbose:    cfg.Verbose,
		balance:    balance,
	}, nil
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, cfg Config, path string) error {
	runner, err := NewRunner(cfg)
	if err != nil {
		return err
	}

	scenario, err := LoadFile(path)
	if err != nil {
		return err
	}
	return runner.RunScenario(ctx, scenario)
}

// RunScenario executes the scenario steps in order.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))
	state := &runState{rng: rand.New(rand.NewSource(1))}

	for index, step := range scenario.Steps {
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		stepStart := time.Now()
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.runStep(ctx, state, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", stepNumber, step.Kind, err)
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(scenario.Steps), step.Kind, time.Since(stepStart))
	}
	r.logf("scenario done: %s", scenario.Name)
	return nil
}

func (r *Runner) runStep(ctx context.Context, state *runState, step Step) error {
	switch step.Kind {
	case StepSeed:
		return r.runSeedStep(state, step)
	case StepAttacker:
		return r.runAttackerStep(state, step)
	case StepOpponent:
		return r.runOpponentStep(state, step)
	case StepIntent:
		return r.runIntentStep(ctx, state, step)
	case StepAdvance:
		return r.runAdvanceStep(ctx, state, step)
	case StepExpect:
		return r.runExpectStep(ctx, state, step)
	default:
		return r.assertions.Failf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runSeedStep(state *runState, step Step) error {
	if state.attacker != nil || len(state.opponents) > 0 {
		return r.assertions.Failf("seed must come before any creature")
	}
	seed, ok := readInt(step.Args, "seed")
	if !ok {
		return r.assertions.Failf("seed requires an integer")
	}
	state.rng = rand.New(rand.NewSource(int64(seed)))
	return nil
}

func (r *Runner) runAttackerStep(state *runState, step Step) error {
	if state.session != nil {
		return r.assertions.Failf("attacker declared after combat started")
	}
	if state.attacker != nil {
		return r.assertions.Failf("attacker already declared")
	}
	c, err := r.buildCreature(state, step.Args, "fire", "player")
	if err != nil {
		return err
	}
	state.attacker = c
	return nil
}

func (r *Runner) runOpponentStep(state *runState, step Step) error {
	if state.session != nil {
		return r.assertions.Failf("opponent declared after combat started")
	}
	c, err := r.buildCreature(state, step.Args, "enemy", "enemy")
	if err != nil {
		return err
	}
	state.opponents = append(state.opponents, c)
	return nil
}

func (r *Runner) runIntentStep(ctx context.Context, state *runState, step Step) error {
	sess, err := r.ensureSession(ctx, state)
	if err != nil {
		return err
	}
	intent, err := combat.ParseIntent(optionalString(step.Args, "intent", ""))
	if err != nil {
		return r.assertions.Failf("%v", err)
	}
	res := sess.Apply(ctx, intent)
	r.logf("  %s -> accepted=%v damage=%d counter=%d outcome=%s", intent, res.Accepted, res.Damage, res.CounterDamage, res.Outcome)
	return nil
}

func (r *Runner) runAdvanceStep(ctx context.Context, state *runState, step Step) error {
	sess, err := r.ensureSession(ctx, state)
	if err != nil {
		return err
	}
	dt, ok := readFloat(step.Args, "dt")
	if !ok {
		return r.assertions.Failf("advance requires a number")
	}
	sess.AdvanceTime(dt)
	return nil
}

func (r *Runner) runExpectStep(ctx context.Context, state *runState, step Step) error {
	sess, err := r.ensureSession(ctx, state)
	if err != nil {
		return err
	}
	args := step.Args

	if want, ok := args["outcome"]; ok {
		name, _ := want.(string)
		outcome, valid := combat.ParseOutcome(name)
		if !valid {
			return r.assertions.Failf("unknown outcome %v", want)
		}
		if sess.Outcome() != outcome {
			if err := r.assertions.Assertf("outcome = %s, want %s", sess.Outcome(), outcome); err != nil {
				return err
			}
		}
	}
	if want, ok := args["message"].(string); ok && sess.Message() != want {
		if err := r.assertions.Assertf("message = %q, want %q", sess.Message(), want); err != nil {
			return err
		}
	}
	if want, ok := args["message_contains"].(string); ok && !strings.Contains(sess.Message(), want) {
		if err := r.assertions.Assertf("message = %q, want it to contain %q", sess.Message(), want); err != nil {
			return err
		}
	}

	checks := []struct {
		key string
		got int
	}{
		{"target", sess.TargetIndex()},
		{"alive", sess.AliveCount()},
		{"specials", sess.Attacker().SpecialUses},
		{"feedback", len(sess.Feedback())},
		{"attacker_hp", sess.Attacker().CurrentHealth},
		{"turns", sess.Turns()},
	}
	for _, check := range checks {
		want, ok := readInt(args, check.key)
		if !ok || want == check.got {
			continue
		}
		if err := r.assertions.Assertf("%s = %d, want %d", check.key, check.got, want); err != nil {
			return err
		}
	}

	if hp, ok := args["opponent_hp"].(map[string]any); ok {
		opponents := sess.Opponents()
		for i := range opponents {
			want, ok := readInt(hp, fmt.Sprint(i+1))
			if !ok || want == opponents[i].CurrentHealth {
				continue
			}
			if err := r.assertions.Assertf("opponent %d hp = %d, want %d", i+1, opponents[i].CurrentHealth, want); err != nil {
				return err
			}
		}
	}
	return nil
}

// ensureSession opens the combat session on first use.
func (r *Runner) ensureSession(ctx context.Context, state *runState) (*combat.Session, error) {
	if state.session != nil {
		return state.session, nil
	}
	if state.attacker == nil {
		return nil, r.assertions.Failf("no attacker declared")
	}
	sess, err := combat.NewSession(ctx, state.attacker, state.opponents, state.rng,
		combat.WithFeedback(r.balance.Feedback.Lifetime, r.balance.Feedback.Drift))
	if err != nil {
		return nil, r.assertions.Failf("start combat: %v", err)
	}
	state.session = sess
	return sess, nil
}

// buildCreature creates a creature from DSL options. A "profile" of
// player, enemy, or boss applies the balance table at the creature's level;
// explicit stat keys override it.
func (r *Runner) buildCreature(state *runState, args map[string]any, element, profile string) (*creature.Creature, error) {
	c := creature.New(optionalString(args, "element", element), optionalInt(args, "level", 1), state.rng)

	switch optionalString(args, "profile", profile) {
	case "player":
		r.balance.Player.Apply(c)
	case "enemy":
		r.balance.Enemy.Apply(c)
	case "boss":
		r.balance.Enemy.Apply(c)
		c.ScaleBoss(r.balance.Boss.HPMultiplier, r.balance.Boss.DamageMultiplier)
	case "none":
	default:
		return nil, r.assertions.Failf("unknown profile %q", args["profile"])
	}

	if hp, ok := readInt(args, "hp"); ok {
		c.MaxHealth, c.CurrentHealth = hp, hp
	}
	if current, ok := readInt(args, "current"); ok {
		c.CurrentHealth = current
	}
	if lo, ok := readInt(args, "min"); ok {
		c.DamageMin = lo
	}
	if hi, ok := readInt(args, "max"); ok {
		c.DamageMax = hi
	}
	if specials, ok := readInt(args, "specials"); ok {
		c.MaxSpecialUses, c.SpecialUses = specials, specials
	}
	return c, nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}

func readInt(args map[string]any, key string) (int, bool) {
	value, ok := args[key]
	if !ok {
		return 0, false
	}
	switch typed := value.(type) {
	case int:
		return typed, true
	case float64:
		return int(typed), true
	default:
		return 0, false
	}
}

func readFloat(args map[string]any, key string) (float64, bool) {
	value, ok := args[key]
	if !ok {
		return 0, false
	}
	switch typed := value.(type) {
	case int:
		return float64(typed), true
	case float64:
		return typed, true
	default:
		return 0, false
	}
}

func optionalString(args map[string]any, key, fallback string) string {
	value, ok := args[key]
	if !ok {
		return fallback
	}
	text, ok := value.(string)
	if ok && text != "" {
		return text
	}
	return fallback
}

func optionalInt(args map[string]any, key string, fallback int) int {
	if value, ok := readInt(args, key); ok {
		return value
	}
	return fallback
}
