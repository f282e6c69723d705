package prefetch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestFireDispatchesEveryRegisteredRefresh(t *testing.T) {
	tr := New()

	var month, week int32
	done := make(chan struct{}, 3)

	tr.Register("month", func(ctx context.Context) error {
		atomic.AddInt32(&month, 1)
		done <- struct{}{}
		return nil
	})
	tr.Register("month", func(ctx context.Context) error {
		atomic.AddInt32(&month, 1)
		done <- struct{}{}
		return nil
	})
	tr.Register("week", func(ctx context.Context) error {
		atomic.AddInt32(&week, 1)
		done <- struct{}{}
		return nil
	})

	tr.Fire("month")
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for month refreshes")
		}
	}

	if got := atomic.LoadInt32(&month); got != 2 {
		t.Fatalf("expected both month refreshes, got %d", got)
	}
	if got := atomic.LoadInt32(&week); got != 0 {
		t.Fatalf("week route should not fire, got %d", got)
	}
}

func TestFireSwallowsErrors(t *testing.T) {
	tr := New()
	done := make(chan struct{}, 1)
	tr.Register("week", func(ctx context.Context) error {
		done <- struct{}{}
		return errors.New("backend down")
	})

	// Fire never blocks and never reports the failure.
	tr.Fire("week")
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresh never ran")
	}
}

func TestFireUnknownRouteIsNoop(t *testing.T) {
	tr := New()
	tr.Fire("nowhere")
}

func TestRegisterIgnoresEmptyRouteAndNilFunc(t *testing.T) {
	tr := New()
	tr.Register("", func(ctx context.Context) error { return nil })
	tr.Register("week", nil)
	tr.Fire("week")
	tr.Fire("")
}
