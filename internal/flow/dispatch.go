package flow

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/stagehand-io/stagehand/internal/state"
)

// Future is the handle for an asynchronously dispatched step execution.
type Future struct {
	done chan struct{}
	st   *state.State
	err  error
}

// Wait blocks until the step has finished and returns its result — the
// same result a direct call to the step's Start would have produced.
func (f *Future) Wait() (*state.State, error) {
	<-f.done
	return f.st, f.err
}

// Done returns a channel closed when the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// pool is a bounded dispatcher: at most `workers` submitted functions
// execute at once, the rest queue on the semaphore.
type pool struct {
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

func newPool(workers int) *pool {
	return &pool{sem: semaphore.NewWeighted(int64(workers))}
}

func (p *pool) submit(ctx context.Context, fn func() (*state.State, error)) *Future {
	fut := &Future{done: make(chan struct{})}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(fut.done)
		if err := p.sem.Acquire(ctx, 1); err != nil {
			fut.err = err
			return
		}
		defer p.sem.Release(1)
		fut.st, fut.err = fn()
	}()
	return fut
}

// close waits for all submitted work to finish.
func (p *pool) close() {
	p.wg.Wait()
}
