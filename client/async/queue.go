// Package async runs conversions in the background with an optional bound
// on how many run at once.
package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrQueueShutdown is returned by work started after [Queue.Shutdown].
var ErrQueueShutdown = errors.New("queue is shut down")

// WorkFunc is the signature for queued work.
type WorkFunc func(ctx context.Context) error

// Queue tracks background work and limits its concurrency.
type Queue struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	sem      chan struct{}
	shutdown atomic.Bool
	errs     []error
}

// NewQueue creates a Queue that runs at most maxConcurrent jobs at once.
// If maxConcurrent <= 0, concurrency is unlimited.
func NewQueue(maxConcurrent int) *Queue {
	q := &Queue{}
	if maxConcurrent > 0 {
		q.sem = make(chan struct{}, maxConcurrent)
	}
	return q
}

// Wait blocks until all queued work completes and returns the errors
// recorded since the previous Wait, joined via errors.Join. It also lifts a
// Shutdown, so the queue can take the next batch.
func (q *Queue) Wait() error {
	q.wg.Wait()

	q.mu.Lock()
	defer q.mu.Unlock()

	err := errors.Join(q.errs...)
	q.errs = nil
	q.shutdown.Store(false)

	return err
}

// Shutdown prevents work that has not started yet from running, until the
// next Wait returns.
func (q *Queue) Shutdown() {
	q.shutdown.Store(true)
}

// start launches fn in a goroutine. When it returns, cancel is called and
// done is closed.
func (q *Queue) start(ctx context.Context, fn WorkFunc, cancel context.CancelFunc, done chan<- struct{}, errp *error) {
	q.wg.Add(1)
	go func() {
		defer func() {
			cancel()
			close(done)
			q.wg.Done()
		}()

		if q.sem != nil {
			select {
			case q.sem <- struct{}{}:
				defer func() {
					<-q.sem
				}()
			case <-ctx.Done():
				*errp = ctx.Err()
				q.recordErr(*errp)
				return
			}
		}

		if q.shutdown.Load() {
			*errp = ErrQueueShutdown
			q.recordErr(*errp)
			return
		}

		if err := fn(ctx); err != nil {
			*errp = err
			q.recordErr(err)
		}
	}()
}

// recordErr appends err to the queue's error slice under the mutex.
func (q *Queue) recordErr(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.errs = append(q.errs, err)
}
