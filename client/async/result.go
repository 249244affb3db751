package async

import "context"

// Result represents an in-flight or completed background job producing T.
type Result[T any] struct {
	done   chan struct{}
	val    T
	err    error
	cancel context.CancelFunc
	queue  *Queue
}

// Go runs fn on q and returns a Result tracking it.
func Go[T any](ctx context.Context, q *Queue, fn func(ctx context.Context) (T, error)) *Result[T] {
	ctx, cancel := context.WithCancel(ctx)
	r := &Result[T]{
		done:   make(chan struct{}),
		cancel: cancel,
		queue:  q,
	}

	q.start(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		r.val = v
		return err
	}, cancel, r.done, &r.err)

	return r
}

// Failed returns an already completed Result carrying err. The error is
// recorded on q so that [Queue.Wait] reports it too.
func Failed[T any](q *Queue, err error) *Result[T] {
	done := make(chan struct{})
	close(done)
	q.recordErr(err)

	return &Result[T]{
		done:   done,
		err:    err,
		cancel: func() {},
		queue:  q,
	}
}

// Done returns a channel that is closed when the job completes.
func (r *Result[T]) Done() <-chan struct{} { return r.done }

// Get blocks until the job completes and returns its value and error.
func (r *Result[T]) Get() (T, error) {
	<-r.done
	return r.val, r.err
}

// Err blocks until the job completes and returns its error.
func (r *Result[T]) Err() error {
	<-r.done
	return r.err
}

// Wait blocks until every job on the same queue completes. It is
// [Queue.Wait] and drains the queue's errors the same way.
func (r *Result[T]) Wait() error {
	return r.queue.Wait()
}

// Cancel cancels the job's context.
func (r *Result[T]) Cancel() {
	r.cancel()
}
