// Package scenario wires the scenario runner to flags and the environment.
package scenario

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/samdwyer/wildgates/internal/config"
	"github.com/samdwyer/wildgates/internal/gamedata"
	"github.com/samdwyer/wildgates/internal/scenario"
)

// Config holds scenario command configuration.
type Config struct {
	Scenarios   []string
	BalanceFile string `env:"WILDGATES_BALANCE_FILE"`
	Assertions  bool   `env:"WILDGATES_SCENARIO_ASSERT"  envDefault:"true"`
	Verbose     bool   `env:"WILDGATES_SCENARIO_VERBOSE"`
}

// ParseConfig parses the environment and then flags into a Config.
// Remaining arguments are scenario file paths.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.BalanceFile, "balance", cfg.BalanceFile, "path to a balance JSON file (default: embedded)")
	fs.BoolVar(&cfg.Assertions, "assert", cfg.Assertions, "enable assertions (disable to log expectations)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Scenarios = fs.Args()
	return cfg, nil
}

// Run executes every configured scenario file in order and stops at the
// first failure.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if len(cfg.Scenarios) == 0 {
		return errors.New("at least one scenario path is required")
	}

	mode := scenario.AssertionStrict
	if !cfg.Assertions {
		mode = scenario.AssertionLogOnly
	}

	var balance *gamedata.Balance
	if cfg.BalanceFile != "" {
		b, err := gamedata.LoadBalanceFile(cfg.BalanceFile)
		if err != nil {
			return err
		}
		balance = b
	}

	logger := log.New(errOut, "", 0)
	runCfg := scenario.Config{
		Assertions: mode,
		Verbose:    cfg.Verbose,
		Logger:     logger,
		Balance:    balance,
	}
	for _, path := range cfg.Scenarios {
		if err := scenario.RunFile(ctx, runCfg, path); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Fprintf(out, "ok   %s\n", path)
	}
	return nil
}
