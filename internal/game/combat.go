package game

import (
	"context"
	"log"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/wildgates/internal/combat"
	"github.com/samdwyer/wildgates/internal/encounter"
	"github.com/samdwyer/wildgates/internal/telemetry"
	"github.com/samdwyer/wildgates/internal/world"
)

// start begins a new run with a fresh level 1 companion.
func (g *Game) start(ctx context.Context, element string) {
	g.player = g.spawner.NewPlayer(element)
	g.record = encounter.Record{}
	g.session = nil
	g.enterBiome(ctx, -1, -1)
	g.state = StateExplore
}

// enterBiome rolls a new biome, regenerates the field, and spawns its
// encounter tiles. A negative position places the player at the center.
func (g *Game) enterBiome(ctx context.Context, x, y int) {
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "game.enter_biome")
	defer span.End()

	g.biome = g.biomes.SpawnRandom(g.rng)
	g.field = world.NewField(g.cfg.Width, g.cfg.Height, g.rng)
	g.field.Generate(ctx)

	if x < 0 || y < 0 || !g.field.IsPassable(x, y) {
		x, y = g.field.Center()
	}
	g.playerX, g.playerY = x, y
	g.prevX, g.prevY = x, y

	tiles := 1
	if g.biome != nil {
		tiles = g.biome.EncounterTiles
		span.SetAttributes(attribute.String("biome", g.biome.ID))
	}
	placed := g.field.SpawnEncounters(ctx, tiles, x, y)
	span.SetAttributes(attribute.Int("encounters", placed))
}

// startBattle spawns an encounter and opens a combat session against it.
func (g *Game) startBattle(ctx context.Context) {
	g.encounter = g.spawner.Spawn(ctx, g.player)

	sess, err := combat.NewSession(ctx, g.player, g.encounter.Opponents, g.rng,
		combat.WithFeedback(g.balance.Feedback.Lifetime, g.balance.Feedback.Drift))
	if err != nil {
		log.Printf("Warning: could not start battle: %v", err)
		return
	}
	g.session = sess
	g.state = StateCombat
}

// applyIntent forwards a player intent to the session and concludes the
// battle once the outcome is decided.
func (g *Game) applyIntent(ctx context.Context, intent combat.Intent) {
	if g.session == nil {
		return
	}
	res := g.session.Apply(ctx, intent)
	if !res.Outcome.Resolved() {
		return
	}

	g.spawner.Conclude(ctx, g.player, g.encounter, res.Outcome, &g.record)
	if res.Outcome == combat.Victory {
		g.state = StateVictory
	} else {
		g.state = StateDefeat
	}
}

// leaveVictory returns to the overworld in a new biome.
func (g *Game) leaveVictory(ctx context.Context) {
	g.session = nil
	g.enterBiome(ctx, g.prevX, g.prevY)
	g.state = StateExplore
}
