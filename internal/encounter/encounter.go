// Package encounter builds opponent groups for battles and applies the
// progression that follows them.
package encounter

import (
	"context"
	"fmt"
	"math/rand"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/wildgates/internal/combat"
	"github.com/samdwyer/wildgates/internal/creature"
	"github.com/samdwyer/wildgates/internal/gamedata"
	"github.com/samdwyer/wildgates/internal/telemetry"
)

// Element tags for generated opponents.
const (
	ElementEnemy = "enemy"
	ElementBoss  = "boss"
)

// Encounter is one group of opponents waiting on an encounter tile.
type Encounter struct {
	Opponents []*creature.Creature
	Boss      bool
}

// Record tracks progression across battles.
type Record struct {
	BattlesWon     int
	BossesDefeated int
	Losses         int
}

// String formats the record for status lines.
func (r Record) String() string {
	return fmt.Sprintf("Battles won: %d  Bosses: %d", r.BattlesWon, r.BossesDefeated)
}

// Spawner creates players and encounters from a balance table.
type Spawner struct {
	balance *gamedata.Balance
	rng     *rand.Rand
	tracer  trace.Tracer
}

// NewSpawner creates a spawner. The rng drives encounter composition and is
// handed to every creature it creates, so one seed reproduces a whole run.
func NewSpawner(balance *gamedata.Balance, rng *rand.Rand) *Spawner {
	return &Spawner{
		balance: balance,
		rng:     rng,
		tracer:  telemetry.Tracer("encounter"),
	}
}

// NewPlayer creates a level 1 player creature of the given element,
// configured and at full health.
func (s *Spawner) NewPlayer(element string) *creature.Creature {
	c := creature.New(element, 1, s.rng)
	s.balance.Player.Apply(c)
	return c
}

// Spawn rolls an encounter at the player's level and readies the player
// for battle.
func (s *Spawner) Spawn(ctx context.Context, player *creature.Creature) Encounter {
	_, span := s.tracer.Start(ctx, "encounter.spawn")
	defer span.End()

	s.balance.Player.Apply(player)

	var enc Encounter
	if s.rng.Float64() < s.balance.Boss.Chance {
		boss := creature.New(ElementBoss, player.Level, s.rng)
		s.balance.Enemy.Apply(boss)
		boss.ScaleBoss(s.balance.Boss.HPMultiplier, s.balance.Boss.DamageMultiplier)
		enc = Encounter{Opponents: []*creature.Creature{boss}, Boss: true}
	} else {
		lo, hi := s.balance.Encounter.MinEnemies, s.balance.Encounter.MaxEnemies
		count := lo + s.rng.Intn(hi-lo+1)
		enc.Opponents = make([]*creature.Creature, count)
		for i := range enc.Opponents {
			e := creature.New(ElementEnemy, player.Level, s.rng)
			s.balance.Enemy.Apply(e)
			enc.Opponents[i] = e
		}
	}

	span.SetAttributes(
		attribute.Int("player.level", player.Level),
		attribute.Int("opponent_count", len(enc.Opponents)),
		attribute.Bool("boss", enc.Boss),
	)
	return enc
}

// Conclude applies the result of a finished battle to the player and the
// record. Victory levels the player up and restores it; defeat only counts
// the loss, leaving the restart to the caller. Undecided outcomes are ignored.
func (s *Spawner) Conclude(ctx context.Context, player *creature.Creature, enc Encounter, outcome combat.Outcome, rec *Record) {
	_, span := s.tracer.Start(ctx, "encounter.conclude")
	defer span.End()
	span.SetAttributes(
		attribute.String("outcome", outcome.String()),
		attribute.Bool("boss", enc.Boss),
	)

	switch outcome {
	case combat.Victory:
		player.LevelUp()
		s.balance.Player.Apply(player)
		rec.BattlesWon++
		if enc.Boss {
			rec.BossesDefeated++
		}
		span.SetAttributes(attribute.Int("player.level", player.Level))
	case combat.Defeat:
		rec.Losses++
	}
}
