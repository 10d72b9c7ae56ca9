package worker

import (
	"context"
	"errors"

	"github.com/livinlefevreloca/syncbridge/internal/command"
)

// Errors returned by Dispatch
var (
	ErrUnavailable = errors.New("worker: not available")
	ErrQueueFull   = errors.New("worker: command queue full")
)

// Gateway is how a sync cycle reaches the worker.
//
// Dispatch is fire-and-forget: it returns once the command is accepted, not
// when it completes. Completion arrives later through a Notifier. Accepted
// commands are not guaranteed to ever complete.
type Gateway interface {
	IsAvailable() bool
	Dispatch(ctx context.Context, e *command.Envelope) error
}

// Performer does the actual synchronization work for one command and
// reports the failures it ran into.
type Performer interface {
	Perform(ctx context.Context, e *command.Envelope) command.Outcome
}

// PerformerFunc adapts a function to the Performer interface
type PerformerFunc func(ctx context.Context, e *command.Envelope) command.Outcome

// Perform calls f
func (f PerformerFunc) Perform(ctx context.Context, e *command.Envelope) command.Outcome {
	return f(ctx, e)
}

// Notifier receives completed envelopes from the worker
type Notifier interface {
	Publish(e *command.Envelope) int
}

// Stats summarizes worker activity
type Stats struct {
	Dispatched   int64
	Completed    int64
	Panics       int64
	DecodeErrors int64
	QueueDepth   int
}
