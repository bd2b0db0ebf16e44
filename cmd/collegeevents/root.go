package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"collegeevents/config"
	"collegeevents/internal/adapters/auth"
	"collegeevents/internal/domain"
	"collegeevents/internal/repository/collections"
	"collegeevents/internal/repository/kvstore"
)

var rootCmd = &cobra.Command{
	Use:   "collegeevents",
	Short: "College event registration service",
	Long: `collegeevents serves the club event catalogue, student registrations
and participation certificates over HTTP.

Examples:
  # Start the API on $PORT
  collegeevents serve

  # Seed an empty store with the demo data
  collegeevents seed

  # Wipe every collection and seed again
  collegeevents reset --yes`,
	SilenceUsage: true,
}

// app bundles what every command needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	kv     domain.KVStore
	store  *collections.Store
	hasher domain.PasswordHasher
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := config.NewLogger()
	slog.SetDefault(logger)

	kv, err := kvstore.Open(ctx, kvstore.Options{
		Driver:      cfg.StoreDriver,
		SQLitePath:  cfg.SQLitePath,
		DatabaseURL: cfg.DBUrl,
	})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Info("store opened", "driver", cfg.StoreDriver)

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	store := collections.New(kv, hasher, logger)
	return &app{cfg: cfg, logger: logger, kv: kv, store: store, hasher: hasher}, nil
}

func (a *app) close() {
	if err := a.kv.Close(); err != nil {
		a.logger.Error("close store", "error", err)
	}
}
