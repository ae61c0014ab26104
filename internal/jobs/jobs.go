// Package jobs runs background work on a bounded in-process worker pool.
// Callers persist job state before submitting; the stored status is the
// only durable signal, so a restart drops queued work without corrupting it.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// DefaultWorkers bounds concurrent LLM calls per process.
const DefaultWorkers = 4

// Job is one unit of background work.
type Job func(ctx context.Context)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("jobs: pool closed")

// Pool runs submitted jobs on a fixed number of workers.
type Pool struct {
	queue  chan Job
	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
}

// NewPool starts workers goroutines reading from a queue of queueSize.
func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		queue:  make(chan Job, queueSize),
		cancel: cancel,
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(ctx)
	}
	return p
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for job := range p.queue {
		run(ctx, job)
	}
}

func run(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("job panicked", "panic", r)
		}
	}()
	job(ctx)
}

// Submit enqueues a job, blocking when the queue is full.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	p.queue <- job
	return nil
}

// Close stops accepting jobs, cancels the worker context and waits for
// in-flight jobs to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}
