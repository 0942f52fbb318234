package sender

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestDispatcherRunsJobs(t *testing.T) {
	d := NewDispatcher(Options{Workers: 2})
	var n atomic.Int32
	for range 10 {
		if err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
			n.Add(1)
			return nil
		}); err != nil {
			t.Fatal(err)
		}
	}
	d.Close()
	if n.Load() != 10 {
		t.Fatalf("expected 10 runs, got %d", n.Load())
	}
	if err := d.Enqueue(context.Background(), "x", "y", func() error { return nil }); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
	d.Close()
}

func TestDispatcherRetriesTransientErrors(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	var calls atomic.Int32
	_ = d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		if calls.Add(1) < 3 {
			return timeoutErr{}
		}
		return nil
	})
	d.Close()
	if calls.Load() != 3 || d.ErrorCount() != 0 {
		t.Fatalf("calls=%d errors=%d", calls.Load(), d.ErrorCount())
	}
}

func TestDispatcherCountsPermanentFailures(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 3, RetryBackoff: time.Millisecond})
	var calls atomic.Int32
	_ = d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		calls.Add(1)
		return errors.New("chat not found")
	})
	d.Close()
	if calls.Load() != 1 || d.ErrorCount() != 1 {
		t.Fatalf("calls=%d errors=%d", calls.Load(), d.ErrorCount())
	}
}

func TestEnqueueRejectsWhenFull(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 1})
	release := make(chan struct{})
	started := make(chan struct{})
	_ = d.Enqueue(context.Background(), "block", "", func() error {
		close(started)
		<-release
		return nil
	})
	<-started
	_ = d.Enqueue(context.Background(), "queued", "", func() error { return nil })
	err := d.Enqueue(context.Background(), "overflow", "", func() error { return nil })
	close(release)
	d.Close()
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
}
