package gamedata

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/wildgates/internal/creature"
)

// =============================================================================
// BALANCE TABLE
// =============================================================================
//
// balance.json carries every tuning number the host needs: level-scaling
// stat tables for the player and regular enemies, boss multipliers, the
// encounter size range, feedback timing, and the element and biome lists.
//
// Stat formula (applied by creature.ConfigureStats):
//   maxHealth = baseHp + level * hpPerLevel
//   damage    = [baseDmgMin, baseDmgMax] + level * dmgPerLevel
//
// Bosses use the enemy table, then multiply health and both damage bounds
// by hpMultiplier and damageMultiplier (truncated).

// StatsDef is one level-scaling stat table.
type StatsDef struct {
	BaseHP      int `json:"baseHp"`
	HPPerLevel  int `json:"hpPerLevel"`
	BaseDmgMin  int `json:"baseDmgMin"`
	BaseDmgMax  int `json:"baseDmgMax"`
	DmgPerLevel int `json:"dmgPerLevel"`
	SpecialUses int `json:"specialUses"`
}

// Config converts the table to the creature package's StatConfig.
func (s StatsDef) Config() creature.StatConfig {
	return creature.StatConfig{
		BaseHP:      s.BaseHP,
		HPPerLevel:  s.HPPerLevel,
		BaseDmgMin:  s.BaseDmgMin,
		BaseDmgMax:  s.BaseDmgMax,
		DmgPerLevel: s.DmgPerLevel,
	}
}

// Apply configures c from this table and sets its special-use pool.
// Current health and special uses are both refilled.
func (s StatsDef) Apply(c *creature.Creature) {
	c.ConfigureStats(s.Config())
	c.MaxSpecialUses = s.SpecialUses
	c.ResetAfterBattle()
}

// BossDef tunes boss encounters.
type BossDef struct {
	HPMultiplier     float64 `json:"hpMultiplier"`
	DamageMultiplier float64 `json:"damageMultiplier"`
	Chance           float64 `json:"chance"` // Probability in [0, 1]
}

// EncounterDef bounds the number of regular enemies per encounter.
type EncounterDef struct {
	MinEnemies int `json:"minEnemies"`
	MaxEnemies int `json:"maxEnemies"`
}

// FeedbackDef times floating damage numbers.
type FeedbackDef struct {
	Lifetime float64 `json:"lifetime"` // Seconds
	Drift    float64 `json:"drift"`    // Upward drift units per second
}

// ElementDef describes a creature element.
type ElementDef struct {
	ID    string `json:"id"`    // Matches creature.Creature.Element
	Name  string `json:"name"`  // Display name
	Glyph string `json:"glyph"` // Single character for map rendering
	Color string `json:"color"` // Hex color code
}

// GlyphRune returns the glyph as a rune for rendering.
func (e *ElementDef) GlyphRune() rune {
	if len(e.Glyph) == 0 {
		return '?'
	}
	return rune(e.Glyph[0])
}

// TCellColor returns the color as a tcell.Color.
func (e *ElementDef) TCellColor() tcell.Color {
	color, err := ParseHexColor(e.Color)
	if err != nil {
		return tcell.ColorWhite // fallback
	}
	return color
}

// BiomeDef describes an overworld biome.
type BiomeDef struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Color          string `json:"color"`          // Hex color for floor tiles
	EncounterTiles int    `json:"encounterTiles"` // Encounter tiles spawned per visit
	SpawnWeight    int    `json:"spawnWeight"`    // Relative frequency (higher = more common)
}

// TCellColor returns the floor color as a tcell.Color.
func (b *BiomeDef) TCellColor() tcell.Color {
	color, err := ParseHexColor(b.Color)
	if err != nil {
		return tcell.ColorGray
	}
	return color
}

// Balance is the structure of balance.json.
type Balance struct {
	Player    StatsDef     `json:"player"`
	Enemy     StatsDef     `json:"enemy"`
	Boss      BossDef      `json:"boss"`
	Encounter EncounterDef `json:"encounter"`
	Feedback  FeedbackDef  `json:"feedback"`
	Elements  []ElementDef `json:"elements"`
	Starters  []string     `json:"starters"` // Element IDs offered on the selection screen
	Biomes    []BiomeDef   `json:"biomes"`
}

// ErrInvalidBalance wraps every validation failure.
var ErrInvalidBalance = errors.New("invalid balance")

// Validate checks internal consistency.
func (b *Balance) Validate() error {
	for name, s := range map[string]StatsDef{"player": b.Player, "enemy": b.Enemy} {
		if s.BaseHP+s.HPPerLevel <= 0 {
			return fmt.Errorf("%w: %s health must be positive at level 1", ErrInvalidBalance, name)
		}
		if s.BaseDmgMin > s.BaseDmgMax {
			return fmt.Errorf("%w: %s damage min %d exceeds max %d", ErrInvalidBalance, name, s.BaseDmgMin, s.BaseDmgMax)
		}
		if s.SpecialUses < 0 {
			return fmt.Errorf("%w: %s special uses must not be negative", ErrInvalidBalance, name)
		}
	}
	if b.Boss.Chance < 0 || b.Boss.Chance > 1 {
		return fmt.Errorf("%w: boss chance %v outside [0, 1]", ErrInvalidBalance, b.Boss.Chance)
	}
	if b.Encounter.MinEnemies < 1 || b.Encounter.MaxEnemies < b.Encounter.MinEnemies {
		return fmt.Errorf("%w: encounter size [%d, %d]", ErrInvalidBalance, b.Encounter.MinEnemies, b.Encounter.MaxEnemies)
	}
	if len(b.Starters) == 0 {
		return fmt.Errorf("%w: no starter elements", ErrInvalidBalance)
	}
	elements := NewElementRegistry(b.Elements)
	for _, id := range b.Starters {
		if elements.GetByID(id) == nil {
			return fmt.Errorf("%w: starter %q has no element definition", ErrInvalidBalance, id)
		}
	}
	if len(b.Biomes) == 0 {
		return fmt.Errorf("%w: no biomes", ErrInvalidBalance)
	}
	return nil
}

// LoadBalance loads and validates the embedded balance.json.
func LoadBalance() (*Balance, error) {
	b, err := Load[Balance]("balance.json")
	if err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// LoadBalanceFile loads and validates a balance table from disk.
func LoadBalanceFile(path string) (*Balance, error) {
	b, err := LoadFile[Balance](path)
	if err != nil {
		return nil, err
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// MustLoadBalance loads the embedded balance table, panicking on error.
func MustLoadBalance() *Balance {
	b, err := LoadBalance()
	if err != nil {
		panic(err)
	}
	return b
}
