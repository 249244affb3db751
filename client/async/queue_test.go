package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestResult_Get(t *testing.T) {
	q := NewQueue(0)

	r := Go(t.Context(), q, func(ctx context.Context) (string, error) {
		return "converted", nil
	})

	v, err := r.Get()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "converted" {
		t.Errorf("expected %q, got %q", "converted", v)
	}
}

func TestResult_Err(t *testing.T) {
	wantErr := errors.New("boom")
	q := NewQueue(0)

	r := Go(t.Context(), q, func(ctx context.Context) (int, error) {
		return 0, wantErr
	})

	if err := r.Err(); !errors.Is(err, wantErr) {
		t.Errorf("expected %v, got %v", wantErr, err)
	}
}

func TestResult_Done(t *testing.T) {
	q := NewQueue(0)

	r := Go(t.Context(), q, func(ctx context.Context) (int, error) {
		return 1, nil
	})

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("Done channel was not closed in time")
	}
}

func TestFailed(t *testing.T) {
	wantErr := errors.New("missing index")
	q := NewQueue(0)

	r := Failed[string](q, wantErr)

	select {
	case <-r.Done():
	default:
		t.Fatal("expected Done to be closed")
	}
	if err := r.Err(); !errors.Is(err, wantErr) {
		t.Errorf("expected %v, got %v", wantErr, err)
	}
	if err := r.Wait(); !errors.Is(err, wantErr) {
		t.Errorf("expected queue to report %v, got %v", wantErr, err)
	}
}

func TestQueue_Wait_JoinedErrors(t *testing.T) {
	err1 := errors.New("error one")
	err2 := errors.New("error two")
	q := NewQueue(0)

	Go(t.Context(), q, func(ctx context.Context) (int, error) { return 0, err1 })
	Go(t.Context(), q, func(ctx context.Context) (int, error) { return 0, nil })
	Go(t.Context(), q, func(ctx context.Context) (int, error) { return 0, err2 })

	err := q.Wait()
	if !errors.Is(err, err1) {
		t.Errorf("expected error to contain %v", err1)
	}
	if !errors.Is(err, err2) {
		t.Errorf("expected error to contain %v", err2)
	}
}

func TestQueue_ConcurrencyLimit(t *testing.T) {
	const limit = 2
	const total = 5

	q := NewQueue(limit)

	var running atomic.Int32
	var maxRunning atomic.Int32
	barrier := make(chan struct{})

	for range total {
		Go(t.Context(), q, func(ctx context.Context) (struct{}, error) {
			cur := running.Add(1)
			for {
				old := maxRunning.Load()
				if cur <= old || maxRunning.CompareAndSwap(old, cur) {
					break
				}
			}
			<-barrier
			running.Add(-1)
			return struct{}{}, nil
		})
	}

	time.Sleep(50 * time.Millisecond)
	close(barrier)

	if err := q.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if peak := maxRunning.Load(); peak > limit {
		t.Errorf("max concurrent was %d, want <= %d", peak, limit)
	}
}

func TestResult_Cancel(t *testing.T) {
	q := NewQueue(0)

	started := make(chan struct{})

	r := Go(t.Context(), q, func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})

	<-started
	r.Cancel()

	if err := r.Err(); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestQueue_ContextCancellationOnSemaphore(t *testing.T) {
	q := NewQueue(1)

	release := make(chan struct{})
	Go(t.Context(), q, func(ctx context.Context) (int, error) {
		<-release
		return 0, nil
	})

	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	r := Go(ctx, q, func(ctx context.Context) (int, error) {
		t.Error("work function should not have run")
		return 0, nil
	})

	if err := r.Err(); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	close(release)

	if err := q.Wait(); err == nil {
		t.Error("expected queue error from cancelled job")
	}
}

func TestQueue_Shutdown(t *testing.T) {
	q := NewQueue(1)

	release := make(chan struct{})
	Go(t.Context(), q, func(ctx context.Context) (int, error) {
		<-release
		return 0, nil
	})

	time.Sleep(20 * time.Millisecond)

	q.Shutdown()
	close(release)

	r := Go(t.Context(), q, func(ctx context.Context) (int, error) {
		t.Error("work function should not have run after shutdown")
		return 0, nil
	})

	if err := r.Err(); !errors.Is(err, ErrQueueShutdown) {
		t.Errorf("expected ErrQueueShutdown, got %v", err)
	}
}

func TestQueue_WaitReportsEachBatchOnce(t *testing.T) {
	wantErr := errors.New("status 400")
	q := NewQueue(2)

	failing := Go(t.Context(), q, func(ctx context.Context) (int, error) { return 0, wantErr })
	Go(t.Context(), q, func(ctx context.Context) (int, error) { return 1, nil })

	if err := q.Wait(); !errors.Is(err, wantErr) {
		t.Fatalf("expected first batch to fail with %v, got %v", wantErr, err)
	}
	if err := failing.Err(); !errors.Is(err, wantErr) {
		t.Errorf("expected result to keep its error, got %v", err)
	}

	for range 3 {
		Go(t.Context(), q, func(ctx context.Context) (int, error) { return 1, nil })
	}

	if err := q.Wait(); err != nil {
		t.Errorf("expected second batch to succeed, got %v", err)
	}
}

func TestQueue_WaitLiftsShutdown(t *testing.T) {
	q := NewQueue(0)
	q.Shutdown()

	r := Go(t.Context(), q, func(ctx context.Context) (int, error) { return 1, nil })
	if err := r.Err(); !errors.Is(err, ErrQueueShutdown) {
		t.Fatalf("expected ErrQueueShutdown, got %v", err)
	}
	if err := q.Wait(); !errors.Is(err, ErrQueueShutdown) {
		t.Fatalf("expected Wait to report the shutdown, got %v", err)
	}

	v, err := Go(t.Context(), q, func(ctx context.Context) (int, error) { return 7, nil }).Get()
	if err != nil || v != 7 {
		t.Errorf("expected the queue to run again after Wait, got %d, %v", v, err)
	}
}
