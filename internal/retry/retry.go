// Package retry runs an operation under a per-attempt timeout with a bounded
// number of attempts and linear backoff between them.
package retry

import (
	"context"
	"errors"
	"log"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

const (
	// DefaultMaxAttempts is the number of times an operation is tried before giving up
	DefaultMaxAttempts = 3
	// DefaultTimeout bounds a single attempt
	DefaultTimeout = 15 * time.Second
	// DefaultBaseDelay is multiplied by the attempt number to get the wait before the next attempt
	DefaultBaseDelay = 1 * time.Second
)

// ErrTimeout is returned for an attempt that did not finish within the executor's timeout.
var ErrTimeout = errors.New("operation timed out")

// Executor holds the retry policy. The zero value is not useful; use New.
type Executor struct {
	MaxAttempts int
	Timeout     time.Duration
	BaseDelay   time.Duration
}

// New returns an executor with the default policy (3 attempts, 15s timeout, 1s/2s backoff).
func New() *Executor {
	return &Executor{
		MaxAttempts: DefaultMaxAttempts,
		Timeout:     DefaultTimeout,
		BaseDelay:   DefaultBaseDelay,
	}
}

func (e *Executor) maxAttempts() int {
	if e.MaxAttempts < 1 {
		return 1
	}
	return e.MaxAttempts
}

// Backoff returns the schedule used between attempts: BaseDelay*1, BaseDelay*2, ...
// It stops after MaxAttempts-1 delays so that the operation runs MaxAttempts times in total.
func (e *Executor) Backoff() goretry.Backoff {
	n := 0
	linear := goretry.BackoffFunc(func() (time.Duration, bool) {
		n++
		return e.BaseDelay * time.Duration(n), false
	})
	return goretry.WithMaxRetries(uint64(e.maxAttempts()-1), linear)
}

// Run runs op under e's policy. On success the first successful result is returned.
// When every attempt fails, the error of the last attempt is returned as-is.
func Run[T any](ctx context.Context, e *Executor, op func(context.Context) (T, error)) (T, error) {
	var result T
	attempt := 0

	err := goretry.Do(ctx, e.Backoff(), func(ctx context.Context) error {
		attempt++
		v, err := runAttempt(ctx, e.Timeout, op)
		if err != nil {
			log.Printf("WARN: attempt %d/%d failed: %v", attempt, e.maxAttempts(), err)
			return goretry.RetryableError(err)
		}
		result = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// runAttempt races op against a timer. The losing op is cancelled through its context
// and its eventual result is dropped.
func runAttempt[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (T, error) {
	var zero T

	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := op(attemptCtx)
		done <- outcome{value: v, err: err}
	}()

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case o := <-done:
		return o.value, o.err
	case <-timer.C:
		return zero, ErrTimeout
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
