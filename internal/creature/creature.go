// Package creature provides the stat container shared by the player and
// every opponent, plus the combat primitives that operate on it.
package creature

import (
	"math/rand"
	"time"
)

// Source is the random source damage rolls draw from.
// *rand.Rand satisfies it; tests substitute scripted sources.
type Source interface {
	Intn(n int) int
}

// StatConfig holds the level-scaling table applied by ConfigureStats.
type StatConfig struct {
	BaseHP      int
	HPPerLevel  int
	BaseDmgMin  int
	BaseDmgMax  int
	DmgPerLevel int
}

// specialMultiplier and specialBonus shape RollSpecialDamage: stronger than a
// basic hit but not a guaranteed kill.
const (
	specialMultiplier = 1.35
	specialBonus      = 6
)

// Creature is a combat participant: the player's companion or an opponent.
type Creature struct {
	Element string // Identity tag (e.g. "fire", "enemy", "boss")
	Level   int

	// Combat stats
	MaxHealth, CurrentHealth int
	DamageMin, DamageMax     int
	MaxSpecialUses           int
	SpecialUses              int

	rng Source
}

// New creates a level-clamped creature with placeholder stats.
// Call ConfigureStats before using it in combat.
// A nil rng falls back to a time-seeded generator.
func New(element string, level int, rng Source) *Creature {
	if level < 1 {
		level = 1
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Creature{
		Element:        element,
		Level:          level,
		MaxHealth:      1,
		CurrentHealth:  1,
		DamageMin:      1,
		DamageMax:      1,
		MaxSpecialUses: 1,
		SpecialUses:    1,
		rng:            rng,
	}
}

// ConfigureStats recomputes health and damage bounds for the current level.
// Current health is always reset to the new maximum.
func (c *Creature) ConfigureStats(cfg StatConfig) {
	c.MaxHealth = cfg.BaseHP + c.Level*cfg.HPPerLevel
	c.CurrentHealth = c.MaxHealth
	c.DamageMin = cfg.BaseDmgMin + c.Level*cfg.DmgPerLevel
	c.DamageMax = cfg.BaseDmgMax + c.Level*cfg.DmgPerLevel
}

// ScaleBoss multiplies health and damage bounds, truncating each product,
// and refills current health.
func (c *Creature) ScaleBoss(hpMultiplier, dmgMultiplier float64) {
	c.MaxHealth = int(float64(c.MaxHealth) * hpMultiplier)
	c.CurrentHealth = c.MaxHealth
	c.DamageMin = int(float64(c.DamageMin) * dmgMultiplier)
	c.DamageMax = int(float64(c.DamageMax) * dmgMultiplier)
}

// RollDamage returns a uniform roll in [DamageMin, DamageMax].
func (c *Creature) RollDamage() int {
	if c.DamageMax <= c.DamageMin {
		return c.DamageMin
	}
	return c.DamageMin + c.rng.Intn(c.DamageMax-c.DamageMin+1)
}

// RollSpecialDamage returns floor(basic roll * 1.35) + 6.
func (c *Creature) RollSpecialDamage() int {
	return int(float64(c.RollDamage())*specialMultiplier) + specialBonus
}

// TakeDamage subtracts amount from current health. Health may go negative.
func (c *Creature) TakeDamage(amount int) {
	c.CurrentHealth -= amount
}

// IsDefeated reports whether the creature is out of the fight.
func (c *Creature) IsDefeated() bool {
	return c.CurrentHealth <= 0
}

// LevelUp increments the level. Stats are not rescaled until the next
// ConfigureStats.
func (c *Creature) LevelUp() {
	c.Level++
}

// ResetAfterBattle restores full health and every special use.
func (c *Creature) ResetAfterBattle() {
	c.CurrentHealth = c.MaxHealth
	c.SpecialUses = c.MaxSpecialUses
}

// SpendSpecial consumes one special use. Returns false if none remain.
func (c *Creature) SpendSpecial() bool {
	if c.SpecialUses <= 0 {
		return false
	}
	c.SpecialUses--
	return true
}

// DisplayHealth returns current health floored at zero, for health bars.
func (c *Creature) DisplayHealth() int {
	if c.CurrentHealth < 0 {
		return 0
	}
	return c.CurrentHealth
}
