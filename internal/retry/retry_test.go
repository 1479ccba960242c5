package retry

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func fastExecutor() *Executor {
	return &Executor{MaxAttempts: 3, Timeout: time.Second, BaseDelay: time.Millisecond}
}

func TestRunAlwaysFailingReturnsLastError(t *testing.T) {
	var calls int32
	var last error

	_, err := Run(context.Background(), fastExecutor(), func(ctx context.Context) (string, error) {
		n := atomic.AddInt32(&calls, 1)
		last = fmt.Errorf("failure %d", n)
		return "", last
	})

	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
	if err == nil {
		t.Fatalf("expected error")
	}
	if err != last {
		t.Fatalf("expected last error %q unchanged, got %q", last, err)
	}
}

func TestRunSucceedsAfterOneFailure(t *testing.T) {
	var calls int32
	got, err := Run(context.Background(), fastExecutor(), func(ctx context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestRunFirstSuccessDoesNotRetry(t *testing.T) {
	var calls int32
	if _, err := Run(context.Background(), fastExecutor(), func(ctx context.Context) (bool, error) {
		atomic.AddInt32(&calls, 1)
		return true, nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestBackoffIsLinearAndBounded(t *testing.T) {
	b := New().Backoff()

	want := []time.Duration{1 * time.Second, 2 * time.Second}
	for i, w := range want {
		d, stop := b.Next()
		if stop {
			t.Fatalf("delay %d: unexpected stop", i+1)
		}
		if d != w {
			t.Fatalf("delay %d: expected %s, got %s", i+1, w, d)
		}
	}
	if _, stop := b.Next(); !stop {
		t.Fatalf("expected backoff to stop after %d delays", len(want))
	}
}

func TestRunWaitsBetweenAttempts(t *testing.T) {
	e := &Executor{MaxAttempts: 3, Timeout: time.Second, BaseDelay: 20 * time.Millisecond}
	var stamps []time.Time

	_, _ = Run(context.Background(), e, func(ctx context.Context) (struct{}, error) {
		stamps = append(stamps, time.Now())
		return struct{}{}, errors.New("nope")
	})

	if len(stamps) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(stamps))
	}
	if gap := stamps[1].Sub(stamps[0]); gap < 20*time.Millisecond {
		t.Fatalf("expected first gap >= 20ms, got %s", gap)
	}
	if gap := stamps[2].Sub(stamps[1]); gap < 40*time.Millisecond {
		t.Fatalf("expected second gap >= 40ms, got %s", gap)
	}
}

func TestRunTimesOutAndCancelsAttempt(t *testing.T) {
	e := &Executor{MaxAttempts: 2, Timeout: 10 * time.Millisecond, BaseDelay: time.Millisecond}
	cancelled := make(chan struct{}, 2)

	_, err := Run(context.Background(), e, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		cancelled <- struct{}{}
		return 0, ctx.Err()
	})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}

	for i := 0; i < 2; i++ {
		select {
		case <-cancelled:
		case <-time.After(time.Second):
			t.Fatalf("attempt %d was not cancelled after timing out", i+1)
		}
	}
}

func TestRunStopsOnParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Executor{MaxAttempts: 5, Timeout: time.Second, BaseDelay: 50 * time.Millisecond}
	var calls int32

	_, err := Run(ctx, e, func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		cancel()
		return 0, errors.New("boom")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
}
