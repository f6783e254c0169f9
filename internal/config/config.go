// Package config loads runtime configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full runtime configuration for the game binary.
type Config struct {
	Game      Game
	Telemetry Telemetry
}

// Game holds gameplay options.
type Game struct {
	// Seed for random number generation. A seed of 0 means a time-based seed.
	Seed int64 `env:"WILDGATES_SEED"`

	// Field dimensions in cells, including the border wall.
	Width  int `env:"WILDGATES_WIDTH"  envDefault:"40"`
	Height int `env:"WILDGATES_HEIGHT" envDefault:"16"`

	// BalanceFile optionally replaces the embedded balance table.
	BalanceFile string `env:"WILDGATES_BALANCE_FILE"`

	// Tick is the render interval; each tick advances combat feedback time.
	Tick time.Duration `env:"WILDGATES_TICK" envDefault:"33ms"`
}

// Telemetry holds OpenTelemetry exporter options.
type Telemetry struct {
	Enabled      bool   `env:"WILDGATES_OTEL_ENABLED"`
	Endpoint     string `env:"WILDGATES_OTEL_ENDPOINT"      envDefault:"https://api.honeycomb.io"`
	HoneycombKey string `env:"HONEYCOMB_WILDGATES_API_KEY"`
	Dataset      string `env:"HONEYCOMB_WILDGATES_DATASET"  envDefault:"wildgates"`
}

// Active reports whether traces should be exported.
func (t Telemetry) Active() bool {
	return t.Enabled || t.HoneycombKey != ""
}

// Headers returns the exporter headers for Honeycomb, or nil without a key.
func (t Telemetry) Headers() map[string]string {
	if t.HoneycombKey == "" {
		return nil
	}
	return map[string]string{
		"x-honeycomb-team":    t.HoneycombKey,
		"x-honeycomb-dataset": t.Dataset,
	}
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the full configuration and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks option ranges.
func (c Config) Validate() error {
	if c.Game.Width < 8 || c.Game.Height < 6 {
		return fmt.Errorf("field %dx%d is too small (minimum 8x6)", c.Game.Width, c.Game.Height)
	}
	if c.Game.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %s", c.Game.Tick)
	}
	return nil
}
