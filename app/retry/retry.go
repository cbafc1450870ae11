package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy is a bounded retry policy: a maximum number of attempts and a
// backoff function mapping the attempt number (1-based) to a wait before
// the next attempt. It is independent of the caller's scheduling model.
type Policy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// Fixed returns a backoff function with a constant interval.
func Fixed(d time.Duration) func(int) time.Duration {
	return func(int) time.Duration { return d }
}

// Do runs op until it succeeds, the attempt budget is exhausted, or the
// context is cancelled. The last error is returned on failure.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}

		if attempt == attempts {
			break
		}

		var wait time.Duration
		if p.Backoff != nil {
			wait = p.Backoff(attempt)
		}
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}
