package jobs

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsJobs(t *testing.T) {
	p := NewPool(2, 16)
	defer p.Close()

	var count atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		if err := p.Submit(func(ctx context.Context) {
			defer wg.Done()
			count.Add(1)
		}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	wg.Wait()

	if got := count.Load(); got != 10 {
		t.Errorf("expected 10 jobs run, got %d", got)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	p := NewPool(2, 16)
	defer p.Close()

	var running, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		p.Submit(func(ctx context.Context) {
			defer wg.Done()
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
		})
	}
	wg.Wait()

	if got := peak.Load(); got > 2 {
		t.Errorf("expected at most 2 concurrent jobs, saw %d", got)
	}
}

func TestPoolRecoversFromPanic(t *testing.T) {
	p := NewPool(1, 4)
	defer p.Close()

	done := make(chan struct{})
	p.Submit(func(ctx context.Context) { panic("boom") })
	p.Submit(func(ctx context.Context) { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive job panic")
	}
}

func TestSubmitAfterClose(t *testing.T) {
	p := NewPool(1, 4)
	p.Close()

	if err := p.Submit(func(ctx context.Context) {}); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestCloseWaitsForInflight(t *testing.T) {
	p := NewPool(1, 4)

	var finished atomic.Bool
	started := make(chan struct{})
	p.Submit(func(ctx context.Context) {
		close(started)
		time.Sleep(20 * time.Millisecond)
		finished.Store(true)
	})

	<-started
	p.Close()

	if !finished.Load() {
		t.Error("Close returned before in-flight job finished")
	}
}
