// Package completion correlates asynchronous worker completion notifications
// with the command a waiting sync cycle dispatched.
package completion

import (
	"log/slog"
	"sync"

	"github.com/livinlefevreloca/syncbridge/internal/command"
)

// Listener receives completion notifications on behalf of one sync cycle.
//
// The cycle calls Expect with the envelope it is about to dispatch, registers
// the listener on a Bus, and waits on Done. OnComplete may run on any
// goroutine; it ignores notifications for other envelopes and fires Done at
// most once.
type Listener struct {
	logger *slog.Logger

	mu        sync.Mutex
	pending   *command.Envelope
	outcome   command.Outcome
	completed bool

	done chan command.Outcome
}

// NewListener creates a listener with no pending envelope
func NewListener(logger *slog.Logger) *Listener {
	return &Listener{
		logger: logger,
		done:   make(chan command.Outcome, 1),
	}
}

// Expect sets the envelope whose completion this listener waits for.
// The listener keeps its own copy.
func (l *Listener) Expect(e *command.Envelope) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = e.Clone()
}

// Pending returns a copy of the envelope the listener is waiting for, or nil
func (l *Listener) Pending() *command.Envelope {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending.Clone()
}

// OnComplete handles a completion notification. It returns true when the
// notification matched the pending envelope and completed the listener.
func (l *Listener) OnComplete(e *command.Envelope) bool {
	if e == nil {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pending == nil || !l.pending.Matches(e) {
		l.logger.Debug("ignoring unrelated completion",
			"account", e.Account,
			"correlation_id", e.CorrelationID)
		return false
	}
	if l.completed {
		l.logger.Debug("ignoring repeated completion",
			"account", e.Account,
			"correlation_id", e.CorrelationID)
		return false
	}

	l.outcome = e.Outcome
	l.pending.Outcome = e.Outcome
	l.completed = true

	// Buffered with capacity 1 and written once, so this never blocks
	l.done <- e.Outcome
	return true
}

// Done delivers the outcome of the pending envelope once it completes
func (l *Listener) Done() <-chan command.Outcome {
	return l.done
}

// Completed returns the recorded outcome and whether completion was observed
func (l *Listener) Completed() (command.Outcome, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.outcome, l.completed
}
