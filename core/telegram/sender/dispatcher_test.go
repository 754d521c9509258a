package sender

import (
	"context"
	"errors"
	"math"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m3rciful/espertofit/core/logger"
)

func TestDispatcherRunsQueuedJobs(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 8, Workers: 2})
	var runs atomic.Int32
	for i := 0; i < 5; i++ {
		if err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
			runs.Add(1)
			return nil
		}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	d.Close()
	if got := runs.Load(); got != 5 {
		t.Fatalf("runs = %d, want 5", got)
	}
	if err := d.Enqueue(context.Background(), "send.text", "", func() error { return nil }); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("enqueue after close = %v, want ErrQueueClosed", err)
	}
}

func TestDispatcherRetriesTransientErrors(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	var calls atomic.Int32
	dialErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	_ = d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		if calls.Add(1) < 3 {
			return dialErr
		}
		return nil
	})
	d.Close()
	if got := calls.Load(); got != 3 {
		t.Fatalf("calls = %d, want 3", got)
	}
	if d.ErrorCount() != 0 {
		t.Fatalf("ErrorCount = %d, want 0", d.ErrorCount())
	}
}

func TestDispatcherCountsPermanentFailures(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 3, RetryBackoff: time.Millisecond})
	var calls atomic.Int32
	_ = d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		calls.Add(1)
		return errors.New("telegram: bad request (400)")
	})
	d.Close()
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
	if d.ErrorCount() != 1 {
		t.Fatalf("ErrorCount = %d, want 1", d.ErrorCount())
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	err := errors.New(`Post "https://api.telegram.org/bot123456:AAbb-cc_dd/sendMessage": timeout`)
	got := sanitizeErrorMessage(err)
	want := `Post "https://api.telegram.org/bot<redacted>/sendMessage": timeout`
	if got != want {
		t.Fatalf("sanitizeErrorMessage = %q", got)
	}
	if classifyError(errors.New("telegram: too many requests (429)")) != "flood" {
		t.Fatal("expected flood classification")
	}
}

func TestDispatcherKeepsPerChatOrder(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 64, Workers: 4})
	ctx := logger.WithUpdateMeta(context.Background(), 1, 7, 42)

	var (
		mu  sync.Mutex
		got []int
	)
	for i := 0; i < 20; i++ {
		if err := d.Enqueue(ctx, "send.text", "sendMessage", func() error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	d.Close()

	for i, v := range got {
		if v != i {
			t.Fatalf("order = %v", got)
		}
	}
	if d.SentCount() != 20 {
		t.Fatalf("SentCount = %d, want 20", d.SentCount())
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(Options{QueueSize: 1, Workers: 1})
	block := make(chan struct{})
	started := make(chan struct{})
	_ = d.Enqueue(context.Background(), "send.text", "", func() error {
		close(started)
		<-block
		return nil
	})
	<-started
	if err := d.Enqueue(context.Background(), "send.text", "", func() error { return nil }); err != nil {
		t.Fatalf("second enqueue: %v", err)
	}
	if err := d.Enqueue(context.Background(), "send.text", "", func() error { return nil }); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("third enqueue = %v, want ErrQueueFull", err)
	}
	if d.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1", d.Pending())
	}
	close(block)
	d.Close()
}

func TestDispatcherShardsExtremeChatIDs(t *testing.T) {
	d := NewDispatcher(Options{Workers: 3})
	var runs atomic.Int32
	for _, id := range []int64{math.MinInt64, -1001234567890, -1, 0, math.MaxInt64} {
		ctx := logger.WithUpdateMeta(context.Background(), 1, 7, id)
		if err := d.Enqueue(ctx, "send.text", "sendMessage", func() error {
			runs.Add(1)
			return nil
		}); err != nil {
			t.Fatalf("enqueue chat %d: %v", id, err)
		}
	}
	d.Close()
	if got := runs.Load(); got != 5 {
		t.Fatalf("runs = %d, want 5", got)
	}
}
