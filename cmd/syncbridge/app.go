package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/livinlefevreloca/syncbridge/internal/appcontext"
	"github.com/livinlefevreloca/syncbridge/internal/completion"
	"github.com/livinlefevreloca/syncbridge/internal/config"
	"github.com/livinlefevreloca/syncbridge/internal/coordinator"
	"github.com/livinlefevreloca/syncbridge/internal/db"
	"github.com/livinlefevreloca/syncbridge/internal/recorder"
	"github.com/livinlefevreloca/syncbridge/internal/worker"
)

// app is the wired process: context, worker, bus, coordinator and recorder
type app struct {
	logger   *slog.Logger
	context  *appcontext.Context
	database *db.DB
	bus      *completion.Bus
	worker   *worker.Service
	coord    *coordinator.Coordinator
	recorder *recorder.Recorder
}

// openApp initializes the application context only. Commands that manage
// accounts or read history need nothing else.
func openApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger, err := cfg.Logging.NewLogger(os.Stderr)
	if err != nil {
		return nil, err
	}

	appCtx := appcontext.New(cfg.Database, logger)
	if err := appCtx.Initialize(ctx); err != nil {
		return nil, err
	}

	database, err := appCtx.DB()
	if err != nil {
		appCtx.Close()
		return nil, err
	}

	return &app{
		logger:   logger,
		context:  appCtx,
		database: database,
	}, nil
}

// startSync wires and starts everything a sync cycle needs
func (a *app) startSync(ctx context.Context, cfg *config.Config) error {
	a.bus = completion.NewBus(a.logger)

	performer := worker.NewLocalPerformer(a.database, a.logger)
	svc, err := worker.New(cfg.Worker, performer, a.bus, a.logger)
	if err != nil {
		return fmt.Errorf("worker: %w", err)
	}

	coord, err := coordinator.New(cfg.Coordinator, coordinator.Dependencies{
		Gateway:   svc,
		Readiness: a.context,
		Accounts:  a.context,
		Registry:  a.bus,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("coordinator: %w", err)
	}

	rec, err := recorder.New(cfg.Recorder, a.database, a.logger)
	if err != nil {
		return fmt.Errorf("recorder: %w", err)
	}

	if err := svc.Start(ctx); err != nil {
		return err
	}
	rec.Start()

	a.worker = svc
	a.coord = coord
	a.recorder = rec
	return nil
}

// syncAccount runs one cycle and queues its result for the history
func (a *app) syncAccount(ctx context.Context, name string) coordinator.CycleResult {
	result := a.coord.RunCycle(ctx, name)
	if err := a.recorder.Record(result); err != nil {
		a.logger.Warn("failed to record cycle", "account", name, "error", err)
	}
	return result
}

// Close stops components in reverse start order
func (a *app) Close() {
	if a.worker != nil {
		if err := a.worker.Stop(); err != nil {
			a.logger.Warn("worker stop failed", "error", err)
		}
	}
	if a.recorder != nil {
		if err := a.recorder.Shutdown(); err != nil {
			a.logger.Warn("recorder shutdown failed", "error", err)
		}
	}
	if err := a.context.Close(); err != nil {
		a.logger.Warn("closing application context failed", "error", err)
	}
}
