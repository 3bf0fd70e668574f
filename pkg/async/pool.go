package async

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTimeout is returned by AwaitWithTimeout when the task does not
	// complete in time. The task itself keeps running.
	ErrTimeout = errors.New("async: await timed out")
)

// DefaultPoolSize is used when NewPool is given a non-positive size.
const DefaultPoolSize = 10

// Pool is a bounded worker pool. At most size tasks run concurrently;
// additional submissions block in their own goroutine until a slot frees up.
// A Pool is safe for concurrent use and needs no shutdown.
type Pool struct {
	slots chan struct{}
}

// NewPool creates a pool running at most size tasks concurrently.
// A non-positive size falls back to DefaultPoolSize.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Size returns the concurrency cap of the pool.
func (p *Pool) Size() int {
	return cap(p.slots)
}

// Future represents an in-flight task that only reports an error.
type Future struct {
	err  error
	done chan struct{}
}

// Await blocks until the task completes and returns its error.
func (f *Future) Await() error {
	<-f.done
	return f.err
}

// AwaitWithTimeout waits for completion up to the given duration.
// On timeout it returns ErrTimeout; the task itself is not stopped.
func (f *Future) AwaitWithTimeout(timeout time.Duration) error {
	select {
	case <-f.done:
		return f.err
	case <-time.After(timeout):
		return ErrTimeout
	}
}

// IsComplete reports whether the task has finished, without blocking.
func (f *Future) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Exec submits an error-only task to the pool and returns its future.
// If ctx is canceled before a slot becomes available, the task never runs
// and the future resolves to ctx.Err(). Once started, the task runs to
// completion regardless of ctx.
func (p *Pool) Exec(ctx context.Context, fn func(context.Context) error) *Future {
	f := &Future{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		select {
		case p.slots <- struct{}{}:
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		}
		defer func() { <-p.slots }()

		f.err = fn(ctx)
	}()

	return f
}

// ResultFuture represents an in-flight task producing a value of type T.
type ResultFuture[T any] struct {
	val  T
	err  error
	done chan struct{}
}

// Await blocks until the task completes and returns its value and error.
func (f *ResultFuture[T]) Await() (T, error) {
	<-f.done
	return f.val, f.err
}

// AwaitWithTimeout waits for completion up to the given duration.
// On timeout it returns the zero value and ErrTimeout.
func (f *ResultFuture[T]) AwaitWithTimeout(timeout time.Duration) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-time.After(timeout):
		var zero T
		return zero, ErrTimeout
	}
}

// IsComplete reports whether the task has finished, without blocking.
func (f *ResultFuture[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Call submits a value-producing task to the pool and returns its future.
// Methods cannot declare type parameters, so this is the package-level
// counterpart of Pool.Exec.
func Call[T any](ctx context.Context, p *Pool, fn func(context.Context) (T, error)) *ResultFuture[T] {
	f := &ResultFuture[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		select {
		case p.slots <- struct{}{}:
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		}
		defer func() { <-p.slots }()

		f.val, f.err = fn(ctx)
	}()

	return f
}
