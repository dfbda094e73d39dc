package service

import (
	"context"
	"log/slog"
	"sync"
)

// Runner executes background processing tasks on a fixed pool of workers,
// so clip dispatch never blocks a request handler and a flood of requests
// cannot spawn an unbounded number of in-flight gateway calls.
type Runner struct {
	tasks chan func(ctx context.Context)
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

const taskQueueSize = 64

// NewRunner starts a runner with the given number of workers.
func NewRunner(workers int) *Runner {
	if workers <= 0 {
		workers = 1
	}
	r := &Runner{tasks: make(chan func(ctx context.Context), taskQueueSize)}
	r.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go r.worker()
	}
	return r
}

func (r *Runner) worker() {
	defer r.wg.Done()
	for task := range r.tasks {
		r.run(task)
	}
}

func (r *Runner) run(task func(ctx context.Context)) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("background task panicked", "panic", rec)
		}
	}()
	task(context.Background())
}

// Submit queues a task for execution. It reports false when the runner has
// already shut down or the queue is full. The send never blocks, so a
// saturated queue cannot stall callers holding the submit path.
func (r *Runner) Submit(task func(ctx context.Context)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	select {
	case r.tasks <- task:
		return true
	default:
		return false
	}
}

// Shutdown stops accepting tasks and waits for in-flight ones to finish or
// the context to expire.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.tasks)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
