// Package future implements the asynchronous result type every
// CacheProvider operation returns (spec §4.6): a value that becomes
// available at some later point, awaitable with a timeout so the
// manager's synchronous façade never blocks a provider call forever.
package future

import (
	"context"
	"time"

	"github.com/cubedata/segcache/pkg/cerr"
)

// Future[T] represents the eventual result of one asynchronous provider
// call. The zero value is not usable; construct with New, Completed or
// Failed.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// New returns a pending Future and the resolve function that completes
// it exactly once. Calling resolve more than once is a no-op after the
// first call.
func New[T any]() (*Future[T], func(T, error)) {
	f := &Future[T]{done: make(chan struct{})}
	var resolved bool
	resolve := func(val T, err error) {
		if resolved {
			return
		}
		resolved = true
		f.val, f.err = val, err
		close(f.done)
	}
	return f, resolve
}

// Completed returns a Future that is already resolved with val.
func Completed[T any](val T) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), val: val}
	close(f.done)
	return f
}

// Failed returns a Future that is already resolved with err.
func Failed[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

// Await blocks until the Future resolves, ctx is cancelled, or timeout
// elapses (a non-positive timeout means no deadline beyond ctx). On
// timeout it returns a *cerr.TimeoutError naming provider and kind.
func (f *Future[T]) Await(ctx context.Context, timeout time.Duration, provider string, kind cerr.TimeoutKind) (T, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, cerr.NewTimeoutError(provider, kind, timeout.String())
	}
}

// Done reports whether the Future has already resolved, without blocking.
func (f *Future[T]) Done() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
