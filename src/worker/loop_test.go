package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoopSubmitDropWhenBusy(t *testing.T) {
	l := New(1, nil)
	defer l.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	if !l.Submit(func(context.Context) { close(started); <-release }) {
		t.Fatal("first submit should succeed")
	}
	<-started

	// One in flight, one queued, the third must drop.
	if !l.Submit(func(context.Context) {}) {
		t.Fatal("second submit should fill the queue slot")
	}
	if l.Submit(func(context.Context) {}) {
		t.Fatal("expected third submit to drop due to full queue")
	}
	close(release)
}

func TestLoopRunsJobsInOrderOnOneGoroutine(t *testing.T) {
	l := New(16, nil)

	var running int32
	var order []int
	for i := 0; i < 10; i++ {
		i := i
		ok := l.Submit(func(context.Context) {
			if atomic.AddInt32(&running, 1) != 1 {
				t.Error("jobs overlapped")
			}
			order = append(order, i)
			atomic.AddInt32(&running, -1)
		})
		if !ok {
			t.Fatalf("submit %d dropped", i)
		}
	}
	l.Close()

	if len(order) != 10 {
		t.Fatalf("expected 10 jobs to run, got %d", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("job %d ran at position %d", v, i)
		}
	}
}

func TestLoopCloseCancelsAndRejects(t *testing.T) {
	l := New(1, nil)

	done := make(chan error, 1)
	l.Submit(func(ctx context.Context) {
		select {
		case <-ctx.Done():
			done <- ctx.Err()
		case <-time.After(5 * time.Second):
			done <- nil
		}
	})
	l.Close()

	if err := <-done; err == nil {
		t.Error("expected running job to observe cancellation")
	}
	if l.Submit(func(context.Context) {}) {
		t.Error("submit after close should fail")
	}
	l.Close()
}

func TestLoopRecoversFromPanics(t *testing.T) {
	l := New(4, nil)
	defer l.Close()

	l.Submit(func(context.Context) { panic("boom") })
	ran := make(chan struct{})
	l.Submit(func(context.Context) { close(ran) })

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("loop stopped after a panicking job")
	}
}
