package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/livinlefevreloca/syncbridge/internal/account"
	"github.com/livinlefevreloca/syncbridge/internal/completion"
	"github.com/livinlefevreloca/syncbridge/internal/worker"
)

// CycleStatus is the terminal classification of one sync cycle
type CycleStatus int

const (
	CycleCompleted              CycleStatus = iota // Worker reported completion
	CycleWorkerUnavailable                         // Worker not accepting commands, nothing dispatched
	CycleContextNotReady                           // Application context could not be made ready
	CycleAccountNotFound                           // No account with the requested name
	CycleCredentialsNotVerified                    // Account exists but its credentials are not verified
	CycleLookupFailed                              // Account store returned an error other than not found
	CycleDispatchFailed                            // Worker rejected the command after the listener was registered
	CycleTimedOut                                  // Dispatched, but the wait budget ran out
	CycleInterrupted                               // Caller's context ended the dispatch or the wait
)

// String returns a human-readable representation of the cycle status
func (s CycleStatus) String() string {
	switch s {
	case CycleCompleted:
		return "completed"
	case CycleWorkerUnavailable:
		return "worker_unavailable"
	case CycleContextNotReady:
		return "context_not_ready"
	case CycleAccountNotFound:
		return "account_not_found"
	case CycleCredentialsNotVerified:
		return "credentials_not_verified"
	case CycleLookupFailed:
		return "lookup_failed"
	case CycleDispatchFailed:
		return "dispatch_failed"
	case CycleTimedOut:
		return "timed_out"
	case CycleInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// ParseCycleStatus converts the String form back into a status
func ParseCycleStatus(s string) (CycleStatus, error) {
	for status := CycleCompleted; status <= CycleInterrupted; status++ {
		if status.String() == s {
			return status, nil
		}
	}
	return 0, fmt.Errorf("unknown cycle status: %q", s)
}

// Dispatched reports whether a cycle with this status got as far as dispatching.
// An interrupted cycle may have been cancelled while the worker queue was full.
func (s CycleStatus) Dispatched() bool {
	return s == CycleCompleted || s == CycleTimedOut || s == CycleInterrupted
}

// CycleResult is what a caller gets back from RunCycle
type CycleResult struct {
	Account       string
	CorrelationID string // Empty when no command was built
	Status        CycleStatus

	AuthFailures  int
	IOFailures    int
	ParseFailures int

	// Wait iterations entered before the cycle finished
	Iterations int

	StartedAt  time.Time
	FinishedAt time.Time
}

// HasError reports whether the cycle should be treated as failed by the caller
func (r CycleResult) HasError() bool {
	if r.AuthFailures > 0 || r.IOFailures > 0 || r.ParseFailures > 0 {
		return true
	}
	return r.Status == CycleTimedOut || r.Status == CycleInterrupted
}

// Duration is the wall-clock time the cycle took
func (r CycleResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Readiness is the application context as seen by a cycle. Initialize is
// invoked on every cycle before IsReady is consulted.
type Readiness interface {
	Initialize(ctx context.Context) error
	IsReady() bool
}

// Registry is where a cycle's completion listener is registered while it waits
type Registry interface {
	Register(l *completion.Listener)
	Unregister(l *completion.Listener) bool
}

// Dependencies are the collaborators of a Coordinator
type Dependencies struct {
	Gateway   worker.Gateway
	Readiness Readiness
	Accounts  account.Resolver
	Registry  Registry
}

func (d Dependencies) validate() error {
	if d.Gateway == nil {
		return fmt.Errorf("gateway must not be nil")
	}
	if d.Readiness == nil {
		return fmt.Errorf("readiness must not be nil")
	}
	if d.Accounts == nil {
		return fmt.Errorf("account resolver must not be nil")
	}
	if d.Registry == nil {
		return fmt.Errorf("completion registry must not be nil")
	}
	return nil
}
