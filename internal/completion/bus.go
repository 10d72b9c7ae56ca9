package completion

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/livinlefevreloca/syncbridge/internal/command"
)

// Bus fans completion notifications out to every registered listener.
// It is safe for concurrent use and is usually shared by all cycles.
type Bus struct {
	logger *slog.Logger

	mu        sync.RWMutex
	listeners map[*Listener]struct{}

	published atomic.Int64
	matched   atomic.Int64
	orphaned  atomic.Int64
}

// BusStats summarizes notification traffic
type BusStats struct {
	Published int64 // Notifications received from the worker
	Matched   int64 // Notifications that completed a listener
	Orphaned  int64 // Notifications no registered listener accepted
	Listeners int   // Currently registered listeners
}

// NewBus creates an empty bus
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		logger:    logger,
		listeners: make(map[*Listener]struct{}),
	}
}

// Register adds a listener. Registering twice has no additional effect.
func (b *Bus) Register(l *Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[l] = struct{}{}
}

// Unregister removes a listener and reports whether it was registered
func (b *Bus) Unregister(l *Listener) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.listeners[l]; !ok {
		return false
	}
	delete(b.listeners, l)
	return true
}

// Publish delivers a completed envelope to the registered listeners and
// returns how many accepted it. A nil envelope is dropped.
func (b *Bus) Publish(e *command.Envelope) int {
	if e == nil {
		b.logger.Warn("dropping nil completion")
		return 0
	}
	b.published.Add(1)

	b.mu.RLock()
	snapshot := make([]*Listener, 0, len(b.listeners))
	for l := range b.listeners {
		snapshot = append(snapshot, l)
	}
	b.mu.RUnlock()

	accepted := 0
	for _, l := range snapshot {
		if l.OnComplete(e) {
			accepted++
		}
	}

	if accepted == 0 {
		b.orphaned.Add(1)
		b.logger.Debug("completion had no waiting listener",
			"account", e.Account,
			"correlation_id", e.CorrelationID)
	} else {
		b.matched.Add(1)
	}
	return accepted
}

// Len returns the number of registered listeners
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}

// Stats returns a snapshot of the bus counters
func (b *Bus) Stats() BusStats {
	return BusStats{
		Published: b.published.Load(),
		Matched:   b.matched.Load(),
		Orphaned:  b.orphaned.Load(),
		Listeners: b.Len(),
	}
}
