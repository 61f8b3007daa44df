package resilience

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// RetryPolicy retries an operation with exponential backoff and jitter.
// The zero value is unusable; construct with DefaultRetryPolicy and adjust.
type RetryPolicy struct {
	MaxAttempts int
	MaxElapsed  time.Duration
	BaseDelay   time.Duration
	MaxDelay    time.Duration

	// Retryable decides whether an error is worth another attempt. A nil
	// Retryable retries everything.
	Retryable func(error) bool
}

// DefaultRetryPolicy spreads up to 10 attempts over roughly five minutes.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 10,
		MaxElapsed:  5 * time.Minute,
		BaseDelay:   time.Second,
		MaxDelay:    60 * time.Second,
	}
}

// Do runs fn until it succeeds, fails terminally, or the attempt and time
// budgets run out. The last error is returned when the budget is exhausted.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := p.BaseDelay
	if delay <= 0 {
		delay = time.Second
	}

	start := time.Now()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		wait := withJitter(delay)
		if p.MaxElapsed > 0 && time.Since(start)+wait > p.MaxElapsed {
			break
		}
		if err := Sleep(ctx, wait); err != nil {
			return fmt.Errorf("retry aborted: %w (last error: %v)", err, lastErr)
		}

		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return lastErr
}

// withJitter spreads a delay across [delay/2, delay) so concurrent retries
// do not stampede in lockstep.
func withJitter(delay time.Duration) time.Duration {
	if delay <= 1 {
		return delay
	}
	half := delay / 2
	return half + time.Duration(rand.Int63n(int64(half)))
}

// Sleep waits for the duration unless the context is done first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
