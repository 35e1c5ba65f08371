// Package retry runs operations with bounded attempts and exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/fwojciec/adamsdoc"
)

// Default policy values.
const (
	DefaultMaxAttempts = 3
	DefaultDelay       = 1 * time.Second
	DefaultMultiplier  = 2.0
)

// Policy configures how an operation is retried.
// After failed attempt n the next attempt waits Delay * Multiplier^(n-1).
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Multiplier  float64

	// OnRetry, if set, is called before waiting for the next attempt.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// DefaultPolicy returns a policy of 3 attempts starting at 1s and doubling.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       DefaultDelay,
		Multiplier:  DefaultMultiplier,
	}
}

// Backoff returns the wait after the given failed attempt (1-based).
func (p Policy) Backoff(attempt int) time.Duration {
	d := float64(p.Delay)
	m := p.Multiplier
	if m <= 0 {
		m = 1
	}
	for i := 1; i < attempt; i++ {
		d *= m
	}
	return time.Duration(d)
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so that Do returns it immediately without retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls op until it succeeds, returns a permanent error, or the policy's
// attempts are exhausted. Attempts are strictly sequential. Exhaustion is
// reported as *adamsdoc.ExhaustedRetriesError wrapping the last error;
// permanent errors are returned unwrapped. A canceled context stops the
// wait and returns the context's error.
func Do[T any](ctx context.Context, p Policy, desc string, op func(context.Context) (T, error)) (T, error) {
	var zero T

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return zero, perm.err
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		delay := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, err)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delay):
		}
	}

	return zero, &adamsdoc.ExhaustedRetriesError{
		Op:       desc,
		Attempts: attempts,
		Err:      lastErr,
	}
}
