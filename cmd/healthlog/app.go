package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vbonduro/healthlog/internal/config"
	"github.com/vbonduro/healthlog/internal/db"
	"github.com/vbonduro/healthlog/internal/flat"
	"github.com/vbonduro/healthlog/internal/logging"
	"github.com/vbonduro/healthlog/internal/metrics"
	"github.com/vbonduro/healthlog/internal/store"
	"github.com/vbonduro/healthlog/internal/tracker"
)

// app holds what every command needs: config, logger and the flat store,
// which stays open for the life of the process.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	loc     *time.Location
	flat    *flat.Store
	cleanup func()
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		cleanup()
		return nil, err
	}

	kv, err := openKV(cfg)
	if err != nil {
		cleanup()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		loc:    loc,
		flat:   flat.NewStore(kv, logger),
		cleanup: func() {
			if err := kv.Close(); err != nil {
				logger.Error("failed to close flat store", "error", err)
			}
			cleanup()
		},
	}, nil
}

func openKV(cfg *config.Config) (flat.KV, error) {
	if cfg.FlatBackend == "memory" {
		return flat.NewMemoryKV(), nil
	}
	return flat.OpenBadger(cfg.FlatPath)
}

func (a *app) openStructured(ctx context.Context) (tracker.Structured, error) {
	database, err := db.Open(a.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return store.NewStructured(database), nil
}

func (a *app) newTracker(m *metrics.Metrics) *tracker.Tracker {
	return tracker.New(a.openStructured, a.flat, a.logger,
		tracker.WithLocation(a.loc),
		tracker.WithMetrics(m),
	)
}

func (a *app) Close() {
	a.cleanup()
}
