// Package world provides the overworld field the player explores.
package world

// Tile represents a single map tile.
type Tile rune

const (
	// TileWall marks the field border.
	TileWall Tile = '#'
	// TileRock is an impassable obstacle inside the field.
	TileRock Tile = 'o'
	// TileFloor represents a passable floor tile.
	TileFloor Tile = '.'
	// TileGrass is passable decoration.
	TileGrass Tile = '"'
	// TileEncounter starts a battle when stepped on.
	TileEncounter Tile = '!'
)

// IsPassable returns true if the tile can be walked on.
func (t Tile) IsPassable() bool {
	switch t {
	case TileFloor, TileGrass, TileEncounter:
		return true
	default:
		return false
	}
}

// Rune returns the tile's display character.
func (t Tile) Rune() rune {
	return rune(t)
}
