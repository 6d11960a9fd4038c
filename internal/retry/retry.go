// Package retry runs an operation a bounded number of times with a fixed delay
// between attempts.
package retry

import (
	"context"
	"errors"
	"time"

	goretry "github.com/sethvargo/go-retry"

	apperrors "github.com/vv-events/dashboard/internal/errors"
)

// Policy is a fixed-backoff retry policy. Attempts counts the first try.
type Policy struct {
	Attempts int
	Delay    time.Duration
	// Retryable decides whether an error deserves another attempt.
	// Defaults to apperrors.IsTransient.
	Retryable func(error) bool
	// OnRetry is called before sleeping, with the 1-based attempt that failed.
	OnRetry func(attempt int, err error)
}

// Func is one attempt. attempt is 1-based.
type Func func(ctx context.Context, attempt int) error

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not retryable regardless of the policy.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

func (p Policy) attempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

func (p Policy) backoff() goretry.Backoff {
	var b goretry.Backoff
	if p.Delay > 0 {
		b = goretry.NewConstant(p.Delay)
	} else {
		b = goretry.BackoffFunc(func() (time.Duration, bool) { return 0, false })
	}
	return goretry.WithMaxRetries(uint64(p.attempts()-1), b)
}

// Do runs fn until it succeeds, returns a non-retryable error, runs out of
// attempts, or ctx is done. The last attempt's error is returned unwrapped.
func (p Policy) Do(ctx context.Context, fn Func) error {
	retryable := p.Retryable
	if retryable == nil {
		retryable = apperrors.IsTransient
	}
	maxAttempts := p.attempts()

	attempt := 0
	err := goretry.Do(ctx, p.backoff(), func(ctx context.Context) error {
		attempt++
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if !retryable(err) {
			return err
		}
		if attempt < maxAttempts && p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
		return goretry.RetryableError(err)
	})
	return err
}
