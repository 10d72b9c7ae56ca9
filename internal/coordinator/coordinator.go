// Package coordinator runs sync cycles: it hands one command to the worker
// and blocks the caller until that command reports back or the wait budget
// is spent.
package coordinator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/livinlefevreloca/syncbridge/internal/account"
	"github.com/livinlefevreloca/syncbridge/internal/command"
	"github.com/livinlefevreloca/syncbridge/internal/completion"
)

// Coordinator runs sync cycles against a shared worker.
//
// A Coordinator holds no per-cycle state; every RunCycle call gets its own
// listener and envelope, so concurrent cycles never share correlation state.
type Coordinator struct {
	config Config
	deps   Dependencies
	logger *slog.Logger

	now func() time.Time

	// Optional state recorder for testing
	recorder *StateRecorder
}

// New creates a coordinator
func New(config Config, deps Dependencies, logger *slog.Logger) (*Coordinator, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	return &Coordinator{
		config: config,
		deps:   deps,
		logger: logger,
		now:    time.Now,
	}, nil
}

// RunCycle runs one sync cycle for the named account.
//
// Preconditions are checked in order and the first failure ends the cycle
// without dispatching anything. Otherwise exactly one command is dispatched
// and the call blocks for at most WaitIterations * WaitUnit. Cancelling ctx
// ends the wait early with CycleInterrupted. RunCycle never returns an error;
// every outcome is classified in the result.
func (c *Coordinator) RunCycle(ctx context.Context, accountName string) CycleResult {
	result := CycleResult{
		Account:   accountName,
		StartedAt: c.now(),
	}
	defer c.enter(PhaseDone)

	finish := func(status CycleStatus) CycleResult {
		result.Status = status
		result.FinishedAt = c.now()
		c.logResult(result)
		return result
	}

	// 1. worker
	c.enter(PhaseCheckWorker)
	if !c.deps.Gateway.IsAvailable() {
		result.IOFailures++
		return finish(CycleWorkerUnavailable)
	}

	// 2. application context
	c.enter(PhaseInitContext)
	if err := c.deps.Readiness.Initialize(ctx); err != nil {
		c.logger.Warn("application context initialization failed", "account", accountName, "error", err)
	}
	if !c.deps.Readiness.IsReady() {
		result.IOFailures++
		return finish(CycleContextNotReady)
	}

	// 3. account
	c.enter(PhaseResolveAccount)
	acct, err := c.deps.Accounts.ResolveByName(ctx, accountName)
	if errors.Is(err, account.ErrNotFound) || (err == nil && acct == nil) {
		return finish(CycleAccountNotFound)
	}
	if err != nil {
		c.logger.Error("account lookup failed", "account", accountName, "error", err)
		result.IOFailures++
		return finish(CycleLookupFailed)
	}

	// 4. credentials
	c.enter(PhaseCheckCredentials)
	if !acct.CanSync() {
		c.logger.Debug("skipping account with unverified credentials",
			"account", accountName,
			"verification_status", acct.VerificationStatus.String())
		return finish(CycleCredentialsNotVerified)
	}

	// The listener must be registered before dispatch, or a fast worker
	// could complete with nobody listening.
	c.enter(PhaseRegisterListener)
	listener := completion.NewListener(c.logger)
	c.deps.Registry.Register(listener)
	defer func() {
		c.enter(PhaseUnregisterListener)
		c.deps.Registry.Unregister(listener)
	}()

	c.enter(PhaseBuildCommand)
	envelope := command.NewAutomaticUpdate(accountName)
	listener.Expect(envelope)
	result.CorrelationID = envelope.CorrelationID

	c.enter(PhaseDispatch)
	if err := c.deps.Gateway.Dispatch(ctx, envelope); err != nil {
		if ctx.Err() != nil {
			c.logger.Debug("dispatch interrupted",
				"account", accountName,
				"correlation_id", envelope.CorrelationID,
				"error", err)
			return finish(CycleInterrupted)
		}
		c.logger.Error("command dispatch failed",
			"account", accountName,
			"correlation_id", envelope.CorrelationID,
			"error", err)
		result.IOFailures++
		return finish(CycleDispatchFailed)
	}

	c.enter(PhaseWait)
	status, outcome := c.wait(ctx, listener, &result)
	result.AuthFailures += outcome.AuthFailures
	result.IOFailures += outcome.IOFailures
	result.ParseFailures += outcome.ParseFailures
	return finish(status)
}

// wait blocks until the listener completes, the iterations run out, or ctx
// ends. The listener state is re-read on every wake, so a missed channel
// delivery costs at most one round.
func (c *Coordinator) wait(ctx context.Context, listener *completion.Listener, result *CycleResult) (CycleStatus, command.Outcome) {
	timer := time.NewTimer(c.config.WaitUnit)
	defer timer.Stop()

	for i := 1; i <= c.config.WaitIterations; i++ {
		result.Iterations = i
		if i > 1 {
			timer.Reset(c.config.WaitUnit)
		}

		select {
		case outcome := <-listener.Done():
			return CycleCompleted, outcome
		case <-timer.C:
			if outcome, ok := listener.Completed(); ok {
				return CycleCompleted, outcome
			}
			c.logger.Debug("still waiting for worker",
				"account", result.Account,
				"correlation_id", result.CorrelationID,
				"iteration", i,
				"max_iterations", c.config.WaitIterations)
		case <-ctx.Done():
			if outcome, ok := listener.Completed(); ok {
				return CycleCompleted, outcome
			}
			return CycleInterrupted, command.Outcome{}
		}
	}

	outcome, ok := listener.Completed()
	if ok {
		return CycleCompleted, outcome
	}
	return CycleTimedOut, outcome
}

func (c *Coordinator) enter(p Phase) {
	if c.recorder != nil {
		c.recorder.Record(p)
	}
}

func (c *Coordinator) logResult(r CycleResult) {
	attrs := []any{
		"account", r.Account,
		"status", r.Status.String(),
		"auth_failures", r.AuthFailures,
		"io_failures", r.IOFailures,
		"parse_failures", r.ParseFailures,
		"iterations", r.Iterations,
		"duration", r.Duration(),
	}
	if r.CorrelationID != "" {
		attrs = append(attrs, "correlation_id", r.CorrelationID)
	}

	switch r.Status {
	case CycleCompleted, CycleAccountNotFound, CycleCredentialsNotVerified:
		c.logger.Info("sync cycle finished", attrs...)
	default:
		c.logger.Warn("sync cycle finished", attrs...)
	}
}
