package worker

import (
	"context"
	"log/slog"

	"github.com/livinlefevreloca/syncbridge/internal/command"
)

// TimelineCounter is the part of the timeline store the local performer reads
type TimelineCounter interface {
	CountTweets(ctx context.Context, account string) (int, error)
	CountDirectMessages(ctx context.Context, account string) (int, error)
	CountUsers(ctx context.Context, account string) (int, error)
}

// LocalPerformer refreshes an account against the local timeline store only.
// It is the performer used when no remote connector is configured: every
// requested timeline is checked and any store error counts as an I/O failure.
type LocalPerformer struct {
	store  TimelineCounter
	logger *slog.Logger
}

// NewLocalPerformer creates a performer backed by store
func NewLocalPerformer(store TimelineCounter, logger *slog.Logger) *LocalPerformer {
	return &LocalPerformer{store: store, logger: logger}
}

// Perform implements Performer
func (p *LocalPerformer) Perform(ctx context.Context, e *command.Envelope) command.Outcome {
	var outcome command.Outcome

	type count struct {
		name string
		fn   func(context.Context, string) (int, error)
	}

	var counts []count
	switch e.Timeline {
	case command.TimelineDirect:
		counts = []count{{"direct_messages", p.store.CountDirectMessages}}
	case command.TimelineHome, command.TimelineMentions:
		counts = []count{{"tweets", p.store.CountTweets}}
	case command.TimelineUser:
		counts = []count{{"users", p.store.CountUsers}}
	default:
		counts = []count{
			{"tweets", p.store.CountTweets},
			{"direct_messages", p.store.CountDirectMessages},
			{"users", p.store.CountUsers},
		}
	}

	attrs := []any{"account", e.Account, "timeline", e.Timeline.String()}
	for _, c := range counts {
		if err := ctx.Err(); err != nil {
			outcome.IOFailures++
			break
		}
		n, err := c.fn(ctx, e.Account)
		if err != nil {
			outcome.IOFailures++
			p.logger.Warn("timeline refresh failed", "account", e.Account, "table", c.name, "error", err)
			continue
		}
		attrs = append(attrs, c.name, n)
	}

	p.logger.Info("timeline refresh finished", attrs...)
	return outcome
}
