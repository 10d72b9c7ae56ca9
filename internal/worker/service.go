package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/livinlefevreloca/syncbridge/internal/command"
	"github.com/livinlefevreloca/syncbridge/internal/inbox"
)

// Ensure Service implements Gateway.
var _ Gateway = (*Service)(nil)

// Service is the long-running worker. Commands travel to it as encoded
// frames, so the dispatcher and the worker never share an envelope; the
// worker decodes its own copy, fills in the outcome and publishes it.
type Service struct {
	config    Config
	performer Performer
	notifier  Notifier
	logger    *slog.Logger

	queue *inbox.Inbox[[]byte]

	available atomic.Bool
	mu        sync.Mutex
	started   bool
	stopped   bool
	cancel    context.CancelFunc
	group     *errgroup.Group

	dispatched   atomic.Int64
	completed    atomic.Int64
	panics       atomic.Int64
	decodeErrors atomic.Int64
}

// New creates a worker service. It accepts commands only after Start.
func New(config Config, performer Performer, notifier Notifier, logger *slog.Logger) (*Service, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	if performer == nil {
		return nil, fmt.Errorf("performer must not be nil")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier must not be nil")
	}

	return &Service{
		config:    config,
		performer: performer,
		notifier:  notifier,
		logger:    logger,
		queue:     inbox.New[[]byte]("worker", config.QueueSize, config.SendTimeout, logger),
	}, nil
}

// Start launches the worker pool. A service can be started once.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("worker already started")
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.group, ctx = errgroup.WithContext(ctx)
	for i := 0; i < s.config.Concurrency; i++ {
		id := i
		s.group.Go(func() error {
			return s.runWorker(ctx, id)
		})
	}

	s.available.Store(true)
	go func() {
		<-ctx.Done()
		s.available.Store(false)
	}()

	s.logger.Info("worker started", "concurrency", s.config.Concurrency, "queue_size", s.config.QueueSize)
	return nil
}

// Stop rejects new commands, lets the pool finish what is queued, and waits.
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	s.available.Store(false)
	s.mu.Unlock()

	s.logger.Info("stopping worker", "queued", s.queue.Len())
	s.queue.Close()

	err := s.group.Wait()
	s.cancel()

	s.logger.Info("worker stopped",
		"dispatched", s.dispatched.Load(),
		"completed", s.completed.Load())
	return err
}

// IsAvailable reports whether the worker currently accepts commands
func (s *Service) IsAvailable() bool {
	return s.available.Load()
}

// Dispatch encodes the envelope and queues it for the pool. It is safe for
// concurrent callers.
func (s *Service) Dispatch(ctx context.Context, e *command.Envelope) error {
	if !s.IsAvailable() {
		return ErrUnavailable
	}

	frame, err := command.Encode(e)
	if err != nil {
		return err
	}

	if err := s.queue.Send(ctx, frame); err != nil {
		switch {
		case errors.Is(err, inbox.ErrTimeout):
			return ErrQueueFull
		case errors.Is(err, inbox.ErrClosed):
			return ErrUnavailable
		default:
			return err
		}
	}

	s.dispatched.Add(1)
	s.logger.Debug("command dispatched",
		"command", e.Kind.String(),
		"account", e.Account,
		"correlation_id", e.CorrelationID)
	return nil
}

// Stats returns a snapshot of worker counters
func (s *Service) Stats() Stats {
	return Stats{
		Dispatched:   s.dispatched.Load(),
		Completed:    s.completed.Load(),
		Panics:       s.panics.Load(),
		DecodeErrors: s.decodeErrors.Load(),
		QueueDepth:   s.queue.Len(),
	}
}

// runWorker processes frames until the queue is closed and drained or ctx ends
func (s *Service) runWorker(ctx context.Context, id int) error {
	for {
		frame, err := s.queue.Receive(ctx)
		if err != nil {
			if errors.Is(err, inbox.ErrClosed) || ctx.Err() != nil {
				s.logger.Debug("worker goroutine exiting", "worker", id)
				return nil
			}
			return err
		}
		s.handle(ctx, frame)
	}
}

// handle runs one command. The outcome is fully written to the envelope
// before it is published.
func (s *Service) handle(ctx context.Context, frame []byte) {
	e, err := command.Decode(frame)
	if err != nil {
		s.decodeErrors.Add(1)
		s.logger.Error("dropping undecodable command", "error", err)
		return
	}

	e.Outcome = s.perform(ctx, e)
	s.completed.Add(1)

	s.logger.Debug("command completed",
		"command", e.Kind.String(),
		"account", e.Account,
		"correlation_id", e.CorrelationID,
		"auth_failures", e.Outcome.AuthFailures,
		"io_failures", e.Outcome.IOFailures,
		"parse_failures", e.Outcome.ParseFailures)

	s.notifier.Publish(e)
}

func (s *Service) perform(ctx context.Context, e *command.Envelope) (outcome command.Outcome) {
	ctx, cancel := context.WithTimeout(ctx, s.config.PerformTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.panics.Add(1)
			s.logger.Error("performer panic recovered",
				"account", e.Account,
				"correlation_id", e.CorrelationID,
				"panic", r)
			outcome = command.Outcome{IOFailures: 1}
		}
	}()

	return s.performer.Perform(ctx, e)
}
