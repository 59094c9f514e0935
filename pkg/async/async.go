package async

import (
	"context"
	"sync/atomic"
	"time"
)

type outcome[U any] struct {
	value U
	err   error
}

// Future holds a result that is produced on another goroutine.
type Future[U any] struct {
	claimed atomic.Bool
	out     outcome[U]
	done    chan struct{}
}

func pending[U any]() *Future[U] {
	return &Future[U]{done: make(chan struct{})}
}

// resolve publishes the first outcome. The write to f.out happens before
// close(f.done), so readers that observed done see it.
func (f *Future[U]) resolve(value U, err error) bool {
	if !f.claimed.CompareAndSwap(false, true) {
		return false
	}
	f.out = outcome[U]{value: value, err: err}
	close(f.done)
	return true
}

// Await blocks until the future resolves.
func (f *Future[U]) Await() (U, error) {
	<-f.done
	return f.out.value, f.out.err
}

// AwaitContext blocks until the future resolves or ctx ends, in which case it
// returns context.Cause(ctx). The computation is not cancelled.
func (f *Future[U]) AwaitContext(ctx context.Context) (U, error) {
	select {
	case <-f.done:
		return f.out.value, f.out.err
	case <-ctx.Done():
		var zero U
		return zero, context.Cause(ctx)
	}
}

// AwaitWithTimeout is AwaitContext with a deadline; it reports ErrTimeout.
func (f *Future[U]) AwaitWithTimeout(timeout time.Duration) (U, error) {
	ctx, cancel := context.WithTimeoutCause(context.Background(), timeout, ErrTimeout)
	defer cancel()
	return f.AwaitContext(ctx)
}

func (f *Future[U]) Done() <-chan struct{} { return f.done }

func (f *Future[U]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Async calls fn(ctx, param) on a new goroutine. A ctx that is already done
// resolves the future with its cause and fn never runs.
func Async[T, U any](ctx context.Context, param T, fn func(context.Context, T) (U, error)) *Future[U] {
	f := pending[U]()
	go func() {
		if ctx.Err() != nil {
			var zero U
			f.resolve(zero, context.Cause(ctx))
			return
		}
		f.resolve(fn(ctx, param))
	}()
	return f
}

// Resolver settles a promise and reports whether this call was the first.
type Resolver[U any] func(U, error) bool

// NewPromise returns an unresolved future and its resolver.
func NewPromise[U any]() (*Future[U], Resolver[U]) {
	f := pending[U]()
	return f, f.resolve
}

// Resolved returns a future that already holds value and err.
func Resolved[U any](value U, err error) *Future[U] {
	f := pending[U]()
	f.resolve(value, err)
	return f
}
