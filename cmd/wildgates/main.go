// Package main is the entry point for Wildgates.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/samdwyer/wildgates/internal/config"
	"github.com/samdwyer/wildgates/internal/game"
	"github.com/samdwyer/wildgates/internal/gamedata"
	"github.com/samdwyer/wildgates/internal/telemetry"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	flag.Int64Var(&cfg.Game.Seed, "seed", cfg.Game.Seed, "random seed (0 for time-based)")
	flag.StringVar(&cfg.Game.BalanceFile, "balance", cfg.Game.BalanceFile, "path to a balance JSON file (default: embedded)")
	flag.Parse()

	balance, err := loadBalance(cfg.Game.BalanceFile)
	if err != nil {
		log.Fatalf("Failed to load balance: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		log.Printf("Warning: telemetry setup failed: %v", err)
		log.Printf("Game will run without observability")
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}

	g, err := game.New(cfg.Game, balance)
	if err != nil {
		log.Fatalf("Failed to initialize game: %v", err)
	}

	if err := g.Run(ctx); err != nil {
		log.Printf("Game error: %v", err)
	}
}

func loadBalance(path string) (*gamedata.Balance, error) {
	if path == "" {
		return gamedata.LoadBalance()
	}
	return gamedata.LoadBalanceFile(path)
}
