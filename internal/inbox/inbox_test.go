package inbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/livinlefevreloca/syncbridge/internal/testutil"
)

func TestInbox_SendReceive(t *testing.T) {
	logger := testutil.NewTestLogger()
	ib := New[string]("test", 2, 50*time.Millisecond, logger.Logger())

	if err := ib.Send(context.Background(), "a"); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}
	if ib.Len() != 1 {
		t.Errorf("expected depth 1, got %d", ib.Len())
	}

	msg, err := ib.Receive(context.Background())
	if err != nil {
		t.Fatalf("unexpected receive error: %v", err)
	}
	if msg != "a" {
		t.Errorf("expected a, got %q", msg)
	}

	stats := ib.Stats()
	if stats.TotalSent != 1 || stats.TotalReceived != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestInbox_SendTimeoutWhenFull(t *testing.T) {
	logger := testutil.NewTestLogger()
	ib := New[int]("full", 1, 20*time.Millisecond, logger.Logger())

	if err := ib.Send(context.Background(), 1); err != nil {
		t.Fatalf("unexpected send error: %v", err)
	}

	err := ib.Send(context.Background(), 2)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if ib.Stats().TimeoutCount != 1 {
		t.Errorf("expected timeout count 1, got %d", ib.Stats().TimeoutCount)
	}
	if !logger.HasWarning() {
		t.Error("expected a warning to be logged on timeout")
	}
}

func TestInbox_SendHonoursContext(t *testing.T) {
	logger := testutil.NewTestLogger()
	ib := New[int]("ctx", 1, time.Minute, logger.Logger())
	_ = ib.Send(context.Background(), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := ib.Send(ctx, 2); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestInbox_ReceiveHonoursContext(t *testing.T) {
	logger := testutil.NewTestLogger()
	ib := New[int]("ctx", 1, time.Second, logger.Logger())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := ib.Receive(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestInbox_CloseDrainsThenReportsClosed(t *testing.T) {
	logger := testutil.NewTestLogger()
	ib := New[int]("close", 4, time.Second, logger.Logger())
	_ = ib.Send(context.Background(), 1)
	_ = ib.Send(context.Background(), 2)

	ib.Close()
	ib.Close()

	if err := ib.Send(context.Background(), 3); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed on send after close, got %v", err)
	}

	for _, want := range []int{1, 2} {
		got, err := ib.Receive(context.Background())
		if err != nil || got != want {
			t.Fatalf("expected %d, got %d (err %v)", want, got, err)
		}
	}
	if _, err := ib.Receive(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after drain, got %v", err)
	}

	select {
	case <-ib.Done():
	default:
		t.Error("expected Done to be closed")
	}
}

func TestInbox_TryReceive(t *testing.T) {
	logger := testutil.NewTestLogger()
	ib := New[int]("try", 1, time.Second, logger.Logger())

	if _, ok := ib.TryReceive(); ok {
		t.Fatal("expected empty inbox")
	}
	_ = ib.Send(context.Background(), 9)
	if v, ok := ib.TryReceive(); !ok || v != 9 {
		t.Fatalf("expected 9, got %d (%v)", v, ok)
	}
}

func TestInbox_ConcurrentSendAndClose(t *testing.T) {
	logger := testutil.NewTestLogger()
	ib := New[int]("race", 100, 10*time.Millisecond, logger.Logger())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = ib.Send(context.Background(), i*10+j)
			}
		}(i)
	}
	ib.Close()
	wg.Wait()

	received := 0
	for {
		if _, err := ib.Receive(context.Background()); err != nil {
			break
		}
		received++
	}
	if int64(received) != ib.Stats().TotalSent {
		t.Errorf("received %d, sent %d", received, ib.Stats().TotalSent)
	}
}
