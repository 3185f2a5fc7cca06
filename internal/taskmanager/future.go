package taskmanager

import "context"

// Future resolves once with the outcome of a task.
type Future struct {
	done chan struct{}
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(err error) {
	f.err = err
	close(f.done)
}

// Done is closed when the future resolves.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future resolves and returns its error.
func (f *Future) Wait() error {
	<-f.done
	return f.err
}

// Go runs action on its own goroutine and returns a future for its result.
// This is the adapter every asynchronous action goes through.
func Go(ctx context.Context, action Action) *Future {
	f := newFuture()
	go func() {
		f.resolve(action(ctx))
	}()
	return f
}

// FromCallback adapts callback-style work to the Action contract. start
// must eventually call done exactly once.
func FromCallback(start func(ctx context.Context, done func(error))) Action {
	return func(ctx context.Context) error {
		f := newFuture()
		start(ctx, f.resolve)
		select {
		case <-f.Done():
			return f.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
