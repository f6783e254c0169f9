package game

import (
	"context"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/wildgates/internal/combat"
	"github.com/samdwyer/wildgates/internal/config"
	"github.com/samdwyer/wildgates/internal/creature"
	"github.com/samdwyer/wildgates/internal/encounter"
	"github.com/samdwyer/wildgates/internal/gamedata"
	"github.com/samdwyer/wildgates/internal/telemetry"
	"github.com/samdwyer/wildgates/internal/ui"
	"github.com/samdwyer/wildgates/internal/world"
)

// Game holds the entire game state.
type Game struct {
	cfg      config.Game
	balance  *gamedata.Balance
	elements *gamedata.ElementRegistry
	biomes   *gamedata.BiomeRegistry
	rng      *rand.Rand
	spawner  *encounter.Spawner

	screen   *ui.Screen
	renderer *ui.Renderer

	field            *world.Field
	biome            *gamedata.BiomeDef
	player           *creature.Creature
	playerX, playerY int
	prevX, prevY     int // Tile the player stepped from
	record           encounter.Record

	session   *combat.Session
	encounter encounter.Encounter

	state   State
	running bool
}

// New creates a new game instance on the terminal.
func New(cfg config.Game, balance *gamedata.Balance) (*Game, error) {
	screen, err := ui.NewScreen()
	if err != nil {
		return nil, err
	}
	return newGame(screen, cfg, balance), nil
}

func newGame(screen *ui.Screen, cfg config.Game, balance *gamedata.Balance) *Game {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	elements := gamedata.NewElementRegistry(balance.Elements)

	return &Game{
		cfg:      cfg,
		balance:  balance,
		elements: elements,
		biomes:   gamedata.NewBiomeRegistry(balance.Biomes),
		rng:      rng,
		spawner:  encounter.NewSpawner(balance, rng),
		screen:   screen,
		renderer: ui.NewRenderer(screen, elements),
		state:    StateSelection,
		running:  true,
	}
}

// State returns the current game state.
func (g *Game) State() State {
	return g.state
}

// Run executes the main game loop until the player quits or ctx is done.
func (g *Game) Run(ctx context.Context) error {
	tracer := telemetry.Tracer("game")

	_, initSpan := tracer.Start(ctx, "game.init")
	initSpan.SetAttributes(
		attribute.Int("field.width", g.cfg.Width),
		attribute.Int("field.height", g.cfg.Height),
		attribute.Int64("tick_ms", g.cfg.Tick.Milliseconds()),
		attribute.Int("starters", len(g.balance.Starters)),
	)
	initSpan.End()

	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go g.pollEvents(events, done)

	ticker := time.NewTicker(g.cfg.Tick)
	defer ticker.Stop()
	last := time.Now()

	// Main game loop
	for g.running {
		g.render()

		select {
		case <-ctx.Done():
			g.running = false
		case ev := <-events:
			g.handleEvent(ctx, ev)
		case now := <-ticker.C:
			g.tick(now.Sub(last).Seconds())
			last = now
		}
	}

	// Cleanup
	g.screen.Close()
	return nil
}

// pollEvents forwards terminal events until the screen is finalized.
func (g *Game) pollEvents(events chan<- tcell.Event, done <-chan struct{}) {
	for {
		ev := g.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-done:
			return
		}
	}
}

// tick advances time-based presentation state.
func (g *Game) tick(dt float64) {
	if g.session != nil {
		g.session.AdvanceTime(dt)
	}
}

// render draws the current state.
func (g *Game) render() {
	switch g.state {
	case StateSelection:
		g.renderer.RenderSelection(g.starters())
	case StateExplore:
		g.renderer.RenderField(g.field, g.biome, g.playerX, g.playerY, g.player, g.record.String())
	case StateCombat:
		g.renderer.RenderCombat(g.session, g.record.String())
	case StateVictory:
		g.renderer.RenderEnd("VICTORY", tcell.ColorGold, []string{
			g.session.Message(),
			g.record.String(),
			"Press Enter to continue",
		})
	case StateDefeat:
		g.renderer.RenderEnd("DEFEAT", tcell.ColorRed, []string{
			g.session.Message(),
			g.record.String(),
			"Enter: choose again  R: retry with the same companion",
		})
	}
}

// handleEvent processes a single input event.
func (g *Game) handleEvent(ctx context.Context, ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		g.handleKeyEvent(ctx, ev)
	case *tcell.EventMouse:
		g.handleMouseEvent(ctx, ev)
	case *tcell.EventResize:
		g.screen.Sync()
	}
}

// handleKeyEvent processes keyboard input for the current state.
func (g *Game) handleKeyEvent(ctx context.Context, ev *tcell.EventKey) {
	if isQuit(ev) {
		g.running = false
		return
	}

	switch g.state {
	case StateSelection:
		if ev.Key() != tcell.KeyRune {
			return
		}
		starters := g.starters()
		if i := int(ev.Rune() - '1'); i >= 0 && i < len(starters) {
			g.start(ctx, starters[i].ID)
		}

	case StateExplore:
		if dx, dy, ok := MoveDelta(ev); ok {
			g.tryMove(ctx, dx, dy)
		}

	case StateCombat:
		if intent, ok := CombatIntent(ev); ok {
			g.applyIntent(ctx, intent)
		}

	case StateVictory:
		if isConfirm(ev) {
			g.leaveVictory(ctx)
		}

	case StateDefeat:
		switch {
		case ev.Key() == tcell.KeyEnter:
			g.session = nil
			g.state = StateSelection
		case ev.Key() == tcell.KeyRune && (ev.Rune() == 'r' || ev.Rune() == 'R'):
			g.start(ctx, g.player.Element)
		}
	}
}

// handleMouseEvent selects the clicked opponent during combat.
func (g *Game) handleMouseEvent(ctx context.Context, ev *tcell.EventMouse) {
	if g.state != StateCombat || ev.Buttons()&tcell.Button1 == 0 {
		return
	}
	x, y := ev.Position()
	if idx := g.renderer.OpponentAt(x, y); idx >= 0 {
		g.applyIntent(ctx, combat.SelectAt(idx))
	}
}

// tryMove attempts to move the player by the given delta and starts a
// battle when the destination holds an encounter.
func (g *Game) tryMove(ctx context.Context, dx, dy int) {
	newX := g.playerX + dx
	newY := g.playerY + dy

	if !g.field.IsPassable(newX, newY) {
		return
	}
	g.prevX, g.prevY = g.playerX, g.playerY
	g.playerX, g.playerY = newX, newY

	if g.field.ClearEncounter(newX, newY) {
		g.startBattle(ctx)
	}
}

// starters returns the element definitions offered on the selection screen.
func (g *Game) starters() []*gamedata.ElementDef {
	return g.elements.GetMultiple(g.balance.Starters)
}

// Close cleans up game resources.
func (g *Game) Close() {
	if g.screen != nil {
		g.screen.Close()
	}
}
