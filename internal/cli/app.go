package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/vijay-prabhu/aptmatch/internal/config"
	"github.com/vijay-prabhu/aptmatch/internal/database"
	"github.com/vijay-prabhu/aptmatch/internal/logging"
	"github.com/vijay-prabhu/aptmatch/internal/tracker"
)

// app bundles what most commands need: config, database and tracker
type app struct {
	cfg     *config.Config
	db      *database.DB
	tracker *tracker.Tracker
	log     zerolog.Logger
}

// openApp loads config, configures logging and opens the database.
// Callers must defer close.
func openApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logging.Init(logging.Config{Level: level, Format: cfg.Logging.Format, Output: os.Stderr})

	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	log := logging.Logger()
	return &app{
		cfg:     cfg,
		db:      db,
		tracker: tracker.New(db, cfg, log),
		log:     log,
	}, nil
}

// user returns the --user flag or the configured user
func (a *app) user() string {
	if userFlag != "" {
		return userFlag
	}
	return a.cfg.User.ID
}

// close waits for background retraining, then closes the database
func (a *app) close() {
	a.tracker.Wait()
	a.db.Close()
}

// requireListings fails with a hint when the corpus is empty
func (a *app) requireListings(ctx context.Context) error {
	n, err := a.db.CountListings(ctx)
	if err != nil {
		return fmt.Errorf("failed to count listings: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no listings loaded (run 'aptmatch listings seed' or 'aptmatch listings import <file>')")
	}
	return nil
}
