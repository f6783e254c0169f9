package world

import (
	"context"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/wildgates/internal/telemetry"
)

const (
	// Default field dimensions
	DefaultWidth  = 40
	DefaultHeight = 16

	// Generation parameters
	rockChance  = 6  // Percent of lattice cells that become rocks
	grassChance = 15 // Percent of floor cells that become grass
)

// Field represents the overworld map for one biome visit.
type Field struct {
	Width  int
	Height int
	Tiles  [][]Tile
	rng    *rand.Rand

	encounters int
}

// NewField creates a field enclosed by walls. A nil rng falls back to a
// time-seeded generator.
func NewField(width, height int, rng *rand.Rand) *Field {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		for x := range tiles[y] {
			tiles[y][x] = TileWall
		}
	}

	return &Field{
		Width:  width,
		Height: height,
		Tiles:  tiles,
		rng:    rng,
	}
}

// Generate lays out floor, grass, and rocks inside the border. Existing
// encounter tiles are discarded.
//
// Rocks are only placed on cells with even coordinates, so no two rocks are
// orthogonally adjacent and every floor cell stays reachable.
func (f *Field) Generate(ctx context.Context) {
	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "field.generate")
	defer span.End()

	startTime := time.Now()
	rocks := 0

	for y := 1; y < f.Height-1; y++ {
		for x := 1; x < f.Width-1; x++ {
			switch {
			case x%2 == 0 && y%2 == 0 && f.rng.Intn(100) < rockChance:
				f.Tiles[y][x] = TileRock
				rocks++
			case f.rng.Intn(100) < grassChance:
				f.Tiles[y][x] = TileGrass
			default:
				f.Tiles[y][x] = TileFloor
			}
		}
	}

	// Keep the spawn point clear
	cx, cy := f.Center()
	f.Tiles[cy][cx] = TileFloor
	f.encounters = 0

	span.SetAttributes(
		attribute.Int("field.width", f.Width),
		attribute.Int("field.height", f.Height),
		attribute.Int("field.rock_count", rocks),
		attribute.Int64("field.generation_ms", time.Since(startTime).Milliseconds()),
	)
}

// Center returns the field's center cell.
func (f *Field) Center() (int, int) {
	return f.Width / 2, f.Height / 2
}

// IsPassable returns true if the given position can be walked on.
func (f *Field) IsPassable(x, y int) bool {
	if !f.inBounds(x, y) {
		return false
	}
	return f.Tiles[y][x].IsPassable()
}

// GetTile returns the tile at the given position.
func (f *Field) GetTile(x, y int) Tile {
	if !f.inBounds(x, y) {
		return TileWall
	}
	return f.Tiles[y][x]
}

// IsEncounter reports whether the position holds an encounter tile.
func (f *Field) IsEncounter(x, y int) bool {
	return f.GetTile(x, y) == TileEncounter
}

// ClearEncounter turns an encounter tile back into floor.
// Returns false if there was no encounter at the position.
func (f *Field) ClearEncounter(x, y int) bool {
	if !f.IsEncounter(x, y) {
		return false
	}
	f.Tiles[y][x] = TileFloor
	f.encounters--
	return true
}

// EncounterCount returns the number of encounter tiles left on the field.
func (f *Field) EncounterCount() int {
	return f.encounters
}

// SpawnEncounters places up to n encounter tiles on random walkable cells,
// never on (avoidX, avoidY). Returns the number placed.
func (f *Field) SpawnEncounters(ctx context.Context, n, avoidX, avoidY int) int {
	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "field.spawn_encounters")
	defer span.End()

	candidates := make([][2]int, 0, f.Width*f.Height)
	for y := 1; y < f.Height-1; y++ {
		for x := 1; x < f.Width-1; x++ {
			t := f.Tiles[y][x]
			if (t == TileFloor || t == TileGrass) && (x != avoidX || y != avoidY) {
				candidates = append(candidates, [2]int{x, y})
			}
		}
	}

	f.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	placed := max(min(n, len(candidates)), 0)
	for _, c := range candidates[:placed] {
		f.Tiles[c[1]][c[0]] = TileEncounter
	}
	f.encounters += placed

	span.SetAttributes(
		attribute.Int("encounters.requested", n),
		attribute.Int("encounters.placed", placed),
	)
	return placed
}

func (f *Field) inBounds(x, y int) bool {
	return x >= 0 && x < f.Width && y >= 0 && y < f.Height
}
