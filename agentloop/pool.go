package agentloop

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// PoolResult carries the outcome of a pooled call.
type PoolResult struct {
	Value any
	Err   error
}

// WorkerPool bounds how many blocking calls run at once across all active
// runs. Model requests and capability dispatches are routed through it so a
// slow call never occupies the goroutine that evaluates budgets and
// cancellation.
type WorkerPool struct {
	sem *semaphore.Weighted
}

// NewWorkerPool creates a pool permitting size concurrent calls. A size
// below one is treated as one.
func NewWorkerPool(size int) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{sem: semaphore.NewWeighted(int64(size))}
}

// Submit schedules fn on the pool and returns a channel that delivers its
// result. A context cancelled before a slot frees up delivers the context
// error instead of running fn. The channel is buffered so an abandoned
// result never leaks the worker goroutine.
func (p *WorkerPool) Submit(ctx context.Context, fn func(ctx context.Context) (any, error)) <-chan PoolResult {
	out := make(chan PoolResult, 1)
	go func() {
		if err := p.sem.Acquire(ctx, 1); err != nil {
			out <- PoolResult{Err: err}
			return
		}
		defer p.sem.Release(1)

		value, err := fn(ctx)
		out <- PoolResult{Value: value, Err: err}
	}()
	return out
}
