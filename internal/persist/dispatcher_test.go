package persist

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDispatcherBoundsConcurrency(t *testing.T) {
	d := NewDispatcher(2, 8)

	var running, peak, finished atomic.Int32
	for i := 0; i < 6; i++ {
		if err := d.Submit(func() {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			running.Add(-1)
			finished.Add(1)
		}); err != nil {
			t.Fatalf("submit error: %v", err)
		}
	}
	d.Close()

	if finished.Load() != 6 {
		t.Fatalf("expected 6 finished jobs, got %d", finished.Load())
	}
	if peak.Load() > 2 {
		t.Fatalf("expected at most 2 concurrent jobs, got %d", peak.Load())
	}
}

func TestDispatcherSubmitNeverBlocksWhenSaturated(t *testing.T) {
	d := NewDispatcher(1, 1)
	release := make(chan struct{})

	var accepted, rejected int
	start := time.Now()
	for i := 0; i < 10; i++ {
		err := d.Submit(func() { <-release })
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, ErrDispatcherFull):
			rejected++
		default:
			t.Fatalf("unexpected submit error: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("submit should not wait for busy workers, took %s", elapsed)
	}
	// 1 个执行中 + 1 个被 feeder 持有 + 1 个排队。
	if accepted > 3 || rejected < 7 {
		t.Fatalf("expected at most 3 accepted jobs, got accepted=%d rejected=%d", accepted, rejected)
	}

	close(release)
	d.Close()
}

func TestDispatcherCloseDrainsQueuedJobs(t *testing.T) {
	d := NewDispatcher(1, 4)
	var finished atomic.Int32
	for i := 0; i < 4; i++ {
		if err := d.Submit(func() {
			time.Sleep(5 * time.Millisecond)
			finished.Add(1)
		}); err != nil {
			t.Fatalf("submit error: %v", err)
		}
	}
	d.Close()
	if finished.Load() != 4 {
		t.Fatalf("Close should drain queued jobs, finished %d", finished.Load())
	}
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(0, 0)
	d.Close()
	d.Close()

	if err := d.Submit(func() {}); err != ErrDispatcherClosed {
		t.Fatalf("expected ErrDispatcherClosed, got %v", err)
	}
}
