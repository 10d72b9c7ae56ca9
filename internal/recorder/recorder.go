// Package recorder persists sync cycle results in the background so callers
// running cycles never block on the database.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/livinlefevreloca/syncbridge/internal/coordinator"
	"github.com/livinlefevreloca/syncbridge/internal/db"
)

// ErrShutdown is returned by Record once Shutdown has started
var ErrShutdown = errors.New("recorder: shut down")

// Writer stores one cycle record
type Writer interface {
	CreateSyncCycle(ctx context.Context, c *db.SyncCycle) error
}

// Stats provides current recorder statistics
type Stats struct {
	Buffered int
	Written  int64
	Failed   int64
}

// Recorder buffers cycle results and writes them from a single goroutine
type Recorder struct {
	config Config
	writer Writer
	logger *slog.Logger

	mu        sync.Mutex
	buffer    []*db.SyncCycle
	lastFlush time.Time
	started   bool
	closed    bool
	written   int64
	failed    int64

	records  chan *db.SyncCycle
	shutdown chan struct{}
	wg       sync.WaitGroup
}

// New creates a recorder. Call Start before recording.
func New(config Config, writer Writer, logger *slog.Logger) (*Recorder, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	if writer == nil {
		return nil, fmt.Errorf("writer must not be nil")
	}

	return &Recorder{
		config:    config,
		writer:    writer,
		logger:    logger,
		buffer:    make([]*db.SyncCycle, 0, config.FlushThreshold),
		lastFlush: time.Now(),
		records:   make(chan *db.SyncCycle, config.ChannelSize),
		shutdown:  make(chan struct{}),
	}, nil
}

// Start launches the writer and the interval flusher
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	r.wg.Add(1)
	go r.runWriter()

	r.wg.Add(1)
	go r.runFlusher()
}

// Record buffers a cycle result. The buffer is flushed once it reaches the
// flush threshold. Returns an error if the buffer is over its maximum size;
// the result is kept either way.
func (r *Recorder) Record(result coordinator.CycleResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrShutdown
	}

	r.buffer = append(r.buffer, toRow(result))

	if len(r.buffer) >= r.config.FlushThreshold {
		if err := r.flushLocked(); err != nil {
			r.logger.Warn("threshold flush incomplete", "error", err)
		}
	}

	if len(r.buffer) > r.config.MaxBuffered {
		return fmt.Errorf("cycle record buffer exceeded maximum size: %d > %d",
			len(r.buffer), r.config.MaxBuffered)
	}
	return nil
}

// Flush hands all buffered records to the writer goroutine. Records that do
// not fit in the channel stay buffered and an error is returned.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrShutdown
	}
	return r.flushLocked()
}

func (r *Recorder) flushLocked() error {
	if len(r.buffer) == 0 {
		return nil
	}

	sent := 0
send:
	for _, row := range r.buffer {
		select {
		case r.records <- row:
			sent++
		default:
			break send
		}
	}

	r.buffer = append(r.buffer[:0], r.buffer[sent:]...)
	if len(r.buffer) > 0 {
		return fmt.Errorf("record channel full, %d records buffered", len(r.buffer))
	}
	r.lastFlush = time.Now()
	return nil
}

// Stats returns current recorder statistics
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Buffered: len(r.buffer),
		Written:  r.written,
		Failed:   r.failed,
	}
}

// LastFlush returns the time of the last complete flush
func (r *Recorder) LastFlush() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastFlush
}

func (r *Recorder) runFlusher() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.shutdown:
			return
		case <-ticker.C:
			r.mu.Lock()
			due := !r.closed && time.Since(r.lastFlush) >= r.config.FlushInterval
			var err error
			if due {
				err = r.flushLocked()
			}
			r.mu.Unlock()
			if err != nil {
				r.logger.Warn("interval flush incomplete", "error", err)
			}
		}
	}
}

// runWriter writes records until the channel is closed and drained
func (r *Recorder) runWriter() {
	defer r.wg.Done()

	for row := range r.records {
		err := r.writer.CreateSyncCycle(context.Background(), row)

		r.mu.Lock()
		if err != nil {
			r.failed++
		} else {
			r.written++
		}
		r.mu.Unlock()

		if err != nil {
			r.logger.Error("failed to write sync cycle",
				"id", row.ID,
				"account", row.Account,
				"error", err)
		} else {
			r.logger.Debug("wrote sync cycle",
				"id", row.ID,
				"account", row.Account,
				"status", row.Status)
		}
	}

	r.logger.Debug("recorder writer shut down")
}

// Shutdown stops accepting records, writes everything buffered and waits
// for the writer to drain.
func (r *Recorder) Shutdown() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	if !r.started {
		r.started = true
		r.wg.Add(1)
		go r.runWriter()
	}
	r.mu.Unlock()

	r.logger.Info("starting recorder shutdown")
	close(r.shutdown)

	// The writer is still draining, so blocking sends finish the final flush
	r.mu.Lock()
	pending := r.buffer
	r.buffer = nil
	r.mu.Unlock()

	r.logger.Debug("performing final flush", "records", len(pending))
	for _, row := range pending {
		r.records <- row
	}

	close(r.records)
	r.wg.Wait()

	r.logger.Info("recorder shutdown complete")
	return nil
}

func toRow(result coordinator.CycleResult) *db.SyncCycle {
	row := &db.SyncCycle{
		ID:            uuid.NewString(),
		Account:       result.Account,
		Status:        result.Status.String(),
		AuthFailures:  result.AuthFailures,
		IOFailures:    result.IOFailures,
		ParseFailures: result.ParseFailures,
		Iterations:    result.Iterations,
		StartedAt:     result.StartedAt,
		FinishedAt:    result.FinishedAt,
	}
	if result.CorrelationID != "" {
		id := result.CorrelationID
		row.CorrelationID = &id
	}
	return row
}
