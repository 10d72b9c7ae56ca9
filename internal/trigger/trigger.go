// Package trigger invokes sync cycles for every account on a cron schedule.
package trigger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/livinlefevreloca/syncbridge/internal/account"
	"github.com/livinlefevreloca/syncbridge/internal/coordinator"
	"github.com/livinlefevreloca/syncbridge/internal/cron"
)

// CycleRunner runs one sync cycle
type CycleRunner interface {
	RunCycle(ctx context.Context, account string) coordinator.CycleResult
}

// Sink receives every finished cycle
type Sink interface {
	Record(result coordinator.CycleResult) error
}

// Trigger fans cycles out over the configured accounts
type Trigger struct {
	config   Config
	schedule *cron.Schedule
	runner   CycleRunner
	accounts account.Lister
	sink     Sink
	limiter  *rate.Limiter
	logger   *slog.Logger

	now func() time.Time
}

// New creates a trigger. sink may be nil.
func New(config Config, runner CycleRunner, accounts account.Lister, sink Sink, logger *slog.Logger) (*Trigger, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	if runner == nil {
		return nil, fmt.Errorf("cycle runner must not be nil")
	}
	if accounts == nil {
		return nil, fmt.Errorf("account lister must not be nil")
	}

	schedule, err := cron.Parse(config.Schedule)
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if config.MaxCyclesPerSecond > 0 {
		limit = rate.Limit(config.MaxCyclesPerSecond)
	}

	return &Trigger{
		config:   config,
		schedule: schedule,
		runner:   runner,
		accounts: accounts,
		sink:     sink,
		limiter:  rate.NewLimiter(limit, config.Burst),
		logger:   logger,
		now:      time.Now,
	}, nil
}

// RunOnce runs one cycle per account and returns the results in account
// order. Accounts whose cycle never started because ctx ended are missing.
func (t *Trigger) RunOnce(ctx context.Context) ([]coordinator.CycleResult, error) {
	accounts, err := t.accounts.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	results := make([]coordinator.CycleResult, len(accounts))
	started := make([]bool, len(accounts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.config.Concurrency)

	for i, a := range accounts {
		if err := t.limiter.Wait(gctx); err != nil {
			break
		}
		i, a := i, a
		g.Go(func() error {
			result := t.runner.RunCycle(gctx, a.Name)
			results[i] = result
			started[i] = true

			if t.sink != nil {
				if err := t.sink.Record(result); err != nil {
					t.logger.Warn("failed to record cycle", "account", a.Name, "error", err)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]coordinator.CycleResult, 0, len(results))
	for i, r := range results {
		if started[i] {
			out = append(out, r)
		}
	}

	t.logger.Info("sync round finished", "accounts", len(accounts), "cycles", len(out))
	return out, ctx.Err()
}

// Run calls RunOnce at every schedule activation until ctx ends
func (t *Trigger) Run(ctx context.Context) error {
	t.logger.Info("trigger started", "schedule", t.schedule.String())

	for {
		now := t.now()
		next := t.schedule.Next(now)
		if next.IsZero() {
			return fmt.Errorf("schedule %q has no future activation", t.schedule.String())
		}

		t.logger.Debug("next sync round scheduled", "at", next)
		timer := time.NewTimer(next.Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			t.logger.Info("trigger stopped")
			return nil
		case <-timer.C:
		}

		if _, err := t.RunOnce(ctx); err != nil && ctx.Err() == nil {
			t.logger.Error("sync round failed", "error", err)
		}
	}
}
