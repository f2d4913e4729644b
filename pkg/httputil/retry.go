package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses) with this type
// so that [Retry] knows to attempt the operation again. API-level errors
// must not be wrapped: repeating them cannot change the answer.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a [RetryableError]. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Policy configures bounded exponential backoff.
type Policy struct {
	Attempts int           // Total attempts including the first; <= 1 disables retries
	Delay    time.Duration // Delay before the second attempt, doubled afterwards
	MaxDelay time.Duration // Upper bound for a single delay (0 = unbounded)
}

// DefaultPolicy is 3 attempts with a 1 second initial delay.
var DefaultPolicy = Policy{Attempts: 3, Delay: time.Second, MaxDelay: 30 * time.Second}

// NoRetry performs exactly one attempt.
var NoRetry = Policy{Attempts: 1}

// Retry executes fn according to p. It only retries errors wrapped with
// [RetryableError]; other errors are returned immediately. Returns the last
// error if all attempts fail, or ctx.Err() if cancelled while waiting.
func Retry(ctx context.Context, p Policy, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
				if p.MaxDelay > 0 && delay > p.MaxDelay {
					delay = p.MaxDelay
				}
			}
		}
	}
	return lastErr
}

// IsRetryable reports whether err is wrapped with [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
