package completion

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livinlefevreloca/syncbridge/internal/command"
	"github.com/livinlefevreloca/syncbridge/internal/testutil"
)

func completed(e *command.Envelope, outcome command.Outcome) *command.Envelope {
	c := e.Clone()
	c.Outcome = outcome
	return c
}

func TestListener_MatchingCompletion(t *testing.T) {
	logger := testutil.NewTestLogger()
	l := NewListener(logger.Logger())
	pending := command.NewAutomaticUpdate("alice")
	l.Expect(pending)

	ok := l.OnComplete(completed(pending, command.Outcome{AuthFailures: 2, IOFailures: 1}))
	require.True(t, ok)

	select {
	case got := <-l.Done():
		assert.Equal(t, command.Outcome{AuthFailures: 2, IOFailures: 1}, got)
	default:
		t.Fatal("expected Done to fire")
	}

	outcome, done := l.Completed()
	assert.True(t, done)
	assert.Equal(t, 2, outcome.AuthFailures)
	assert.Equal(t, 2, l.Pending().Outcome.AuthFailures)
}

func TestListener_IgnoresUnrelatedCompletions(t *testing.T) {
	logger := testutil.NewTestLogger()
	pending := command.NewAutomaticUpdate("alice")

	tests := []struct {
		name  string
		other *command.Envelope
	}{
		{"different account", command.NewAutomaticUpdate("bob")},
		{"same parameters, other dispatch", command.NewAutomaticUpdate("alice")},
		{"different kind", func() *command.Envelope {
			e := pending.Clone()
			e.Kind = command.KindFetchTimeline
			return e
		}()},
		{"different timeline", func() *command.Envelope {
			e := pending.Clone()
			e.Timeline = command.TimelineHome
			return e
		}()},
		{"different item", func() *command.Envelope {
			e := pending.Clone()
			e.ItemID = 99
			return e
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewListener(logger.Logger())
			l.Expect(pending)

			assert.False(t, l.OnComplete(completed(tt.other, command.Outcome{IOFailures: 5})))
			_, done := l.Completed()
			assert.False(t, done)

			select {
			case <-l.Done():
				t.Fatal("unrelated completion must not wake the waiter")
			default:
			}
		})
	}
}

func TestListener_NoPendingEnvelope(t *testing.T) {
	logger := testutil.NewTestLogger()
	l := NewListener(logger.Logger())

	assert.False(t, l.OnComplete(command.NewAutomaticUpdate("alice")))
	assert.Nil(t, l.Pending())
}

func TestListener_FiresOnce(t *testing.T) {
	logger := testutil.NewTestLogger()
	l := NewListener(logger.Logger())
	pending := command.NewAutomaticUpdate("alice")
	l.Expect(pending)

	assert.True(t, l.OnComplete(completed(pending, command.Outcome{ParseFailures: 1})))
	assert.False(t, l.OnComplete(completed(pending, command.Outcome{ParseFailures: 7})))

	got := <-l.Done()
	assert.Equal(t, 1, got.ParseFailures)

	outcome, _ := l.Completed()
	assert.Equal(t, 1, outcome.ParseFailures, "second completion must not overwrite the first")
}

func TestListener_ConcurrentCompletions(t *testing.T) {
	logger := testutil.NewTestLogger()
	l := NewListener(logger.Logger())
	pending := command.NewAutomaticUpdate("alice")
	l.Expect(pending)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.OnComplete(completed(pending, command.Outcome{IOFailures: 1})) {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	select {
	case <-l.Done():
	case <-time.After(time.Second):
		t.Fatal("expected completion")
	}
}

func TestBus_PublishRoutesToMatchingListener(t *testing.T) {
	logger := testutil.NewTestLogger()
	bus := NewBus(logger.Logger())

	alice := command.NewAutomaticUpdate("alice")
	bob := command.NewAutomaticUpdate("bob")

	la := NewListener(logger.Logger())
	la.Expect(alice)
	lb := NewListener(logger.Logger())
	lb.Expect(bob)

	bus.Register(la)
	bus.Register(lb)
	bus.Register(la)
	assert.Equal(t, 2, bus.Len())

	assert.Equal(t, 1, bus.Publish(completed(bob, command.Outcome{AuthFailures: 1})))

	_, aliceDone := la.Completed()
	_, bobDone := lb.Completed()
	assert.False(t, aliceDone)
	assert.True(t, bobDone)

	stats := bus.Stats()
	assert.Equal(t, int64(1), stats.Published)
	assert.Equal(t, int64(1), stats.Matched)
	assert.Equal(t, int64(0), stats.Orphaned)
}

func TestBus_UnregisteredListenerIsNotNotified(t *testing.T) {
	logger := testutil.NewTestLogger()
	bus := NewBus(logger.Logger())

	pending := command.NewAutomaticUpdate("alice")
	l := NewListener(logger.Logger())
	l.Expect(pending)
	bus.Register(l)

	assert.True(t, bus.Unregister(l))
	assert.False(t, bus.Unregister(l))

	assert.Equal(t, 0, bus.Publish(completed(pending, command.Outcome{})))
	_, done := l.Completed()
	assert.False(t, done)
	assert.Equal(t, int64(1), bus.Stats().Orphaned)
}

func TestNilCompletionIsIgnored(t *testing.T) {
	logger := testutil.NewTestLogger()
	bus := NewBus(logger.Logger())

	pending := command.NewAutomaticUpdate("alice")
	l := NewListener(logger.Logger())
	l.Expect(pending)
	bus.Register(l)

	assert.NotPanics(t, func() {
		assert.False(t, l.OnComplete(nil))
		assert.Equal(t, 0, bus.Publish(nil))
	})

	_, done := l.Completed()
	assert.False(t, done)
	assert.Equal(t, int64(0), bus.Stats().Published)
	assert.True(t, logger.HasWarning())

	// the listener still accepts its real completion afterwards
	assert.Equal(t, 1, bus.Publish(completed(pending, command.Outcome{})))
}
