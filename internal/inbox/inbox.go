package inbox

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Errors returned by Send and Receive
var (
	ErrTimeout = errors.New("inbox: send timeout")
	ErrClosed  = errors.New("inbox: closed")
)

// Inbox is a bounded, typed message queue with a send timeout.
// It is safe for any number of concurrent senders and receivers.
type Inbox[T any] struct {
	name    string
	ch      chan T
	timeout time.Duration
	logger  *slog.Logger
	stats   *Stats

	// closeMu orders Close against in-flight sends so a send never hits a closed channel
	closeMu sync.RWMutex
	closed  bool
	done    chan struct{}
}

// Stats tracks inbox usage
type Stats struct {
	TotalSent     int64
	TotalReceived int64
	TimeoutCount  int64
	MaxDepthSeen  int64
}

// New creates an inbox with the given buffer size and send timeout
func New[T any](name string, bufferSize int, timeout time.Duration, logger *slog.Logger) *Inbox[T] {
	return &Inbox[T]{
		name:    name,
		ch:      make(chan T, bufferSize),
		timeout: timeout,
		logger:  logger,
		stats:   &Stats{},
		done:    make(chan struct{}),
	}
}

// Send enqueues msg, waiting at most the configured timeout for room.
func (ib *Inbox[T]) Send(ctx context.Context, msg T) error {
	ib.closeMu.RLock()
	defer ib.closeMu.RUnlock()

	if ib.closed {
		return ErrClosed
	}

	timer := time.NewTimer(ib.timeout)
	defer timer.Stop()

	select {
	case ib.ch <- msg:
		atomic.AddInt64(&ib.stats.TotalSent, 1)
		ib.observeDepth()
		return nil
	case <-timer.C:
		atomic.AddInt64(&ib.stats.TimeoutCount, 1)
		ib.logger.Warn("inbox send timeout",
			"inbox", ib.name,
			"timeout", ib.timeout,
			"current_depth", len(ib.ch))
		return ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Receive blocks until a message is available, the context ends, or the
// inbox is closed and drained.
func (ib *Inbox[T]) Receive(ctx context.Context) (T, error) {
	select {
	case msg, ok := <-ib.ch:
		if !ok {
			var zero T
			return zero, ErrClosed
		}
		atomic.AddInt64(&ib.stats.TotalReceived, 1)
		return msg, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// TryReceive returns a message if one is immediately available
func (ib *Inbox[T]) TryReceive() (T, bool) {
	select {
	case msg, ok := <-ib.ch:
		if ok {
			atomic.AddInt64(&ib.stats.TotalReceived, 1)
			return msg, true
		}
	default:
	}
	var zero T
	return zero, false
}

// Close stops accepting messages. Receivers drain what is buffered and then
// get ErrClosed. Close is idempotent.
func (ib *Inbox[T]) Close() {
	ib.closeMu.Lock()
	defer ib.closeMu.Unlock()

	if ib.closed {
		return
	}
	ib.closed = true
	close(ib.ch)
	close(ib.done)
}

// Done is closed once Close has been called
func (ib *Inbox[T]) Done() <-chan struct{} {
	return ib.done
}

// Len returns the number of buffered messages
func (ib *Inbox[T]) Len() int {
	return len(ib.ch)
}

// Stats returns a copy of the current statistics
func (ib *Inbox[T]) Stats() Stats {
	return Stats{
		TotalSent:     atomic.LoadInt64(&ib.stats.TotalSent),
		TotalReceived: atomic.LoadInt64(&ib.stats.TotalReceived),
		TimeoutCount:  atomic.LoadInt64(&ib.stats.TimeoutCount),
		MaxDepthSeen:  atomic.LoadInt64(&ib.stats.MaxDepthSeen),
	}
}

func (ib *Inbox[T]) observeDepth() {
	depth := int64(len(ib.ch))
	for {
		seen := atomic.LoadInt64(&ib.stats.MaxDepthSeen)
		if depth <= seen || atomic.CompareAndSwapInt64(&ib.stats.MaxDepthSeen, seen, depth) {
			return
		}
	}
}
