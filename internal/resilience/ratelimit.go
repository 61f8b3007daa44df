package resilience

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultInitialDelay = 500 * time.Millisecond
	defaultMaxDelay     = 10 * time.Second

	// successesBeforeDecay is how many consecutive clean responses it takes
	// before the delay is relaxed again.
	successesBeforeDecay = 5
	decayFactor          = 0.9
)

// AdaptiveRateLimiter spaces out API calls and widens the gap when the API
// pushes back. A token-bucket limiter with burst 1 enforces the spacing;
// every adjustment is applied to it with SetLimit so waiting callers pick up
// the new pace.
type AdaptiveRateLimiter struct {
	mu            sync.Mutex
	limiter       *rate.Limiter
	initialDelay  time.Duration
	maxDelay      time.Duration
	currentDelay  time.Duration
	successStreak int
}

// NewAdaptiveRateLimiter creates a limiter starting at initialDelay between
// calls, never exceeding maxDelay. Non-positive arguments fall back to the
// defaults (500ms initial, 10s max).
func NewAdaptiveRateLimiter(initialDelay, maxDelay time.Duration) *AdaptiveRateLimiter {
	if initialDelay <= 0 {
		initialDelay = defaultInitialDelay
	}
	if maxDelay <= 0 {
		maxDelay = defaultMaxDelay
	}
	if maxDelay < initialDelay {
		maxDelay = initialDelay
	}
	return &AdaptiveRateLimiter{
		limiter:      rate.NewLimiter(rate.Every(initialDelay), 1),
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		currentDelay: initialDelay,
	}
}

// Wait blocks until the next call is allowed or the context is done.
func (l *AdaptiveRateLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// OnRateLimited widens the delay after a 429. When the API sent a
// Retry-After hint the new delay is the hint plus one second, otherwise the
// current delay doubles. Either way it is capped at the maximum.
func (l *AdaptiveRateLimiter) OnRateLimited(retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.successStreak = 0
	if retryAfter > 0 {
		l.currentDelay = retryAfter + time.Second
	} else {
		l.currentDelay *= 2
	}
	l.clampAndApply()
}

// OnOverloaded triples the delay after a 529 overload response.
func (l *AdaptiveRateLimiter) OnOverloaded() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.successStreak = 0
	l.currentDelay *= 3
	l.clampAndApply()
}

// OnFailure resets the success streak without touching the delay. Used for
// failures that say nothing about API pressure (transport errors, 4xx).
func (l *AdaptiveRateLimiter) OnFailure() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.successStreak = 0
}

// OnSuccess counts a clean response. After five in a row the delay decays by
// 10%, floored at the initial delay, and the streak starts over.
func (l *AdaptiveRateLimiter) OnSuccess() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.successStreak++
	if l.successStreak < successesBeforeDecay {
		return
	}
	l.successStreak = 0
	l.currentDelay = time.Duration(float64(l.currentDelay) * decayFactor)
	if l.currentDelay < l.initialDelay {
		l.currentDelay = l.initialDelay
	}
	l.limiter.SetLimit(rate.Every(l.currentDelay))
}

// CurrentDelay returns the enforced gap between calls.
func (l *AdaptiveRateLimiter) CurrentDelay() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentDelay
}

// Streak returns the current consecutive success count.
func (l *AdaptiveRateLimiter) Streak() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.successStreak
}

// clampAndApply caps the delay and pushes it into the limiter.
// Callers must hold the mutex.
func (l *AdaptiveRateLimiter) clampAndApply() {
	if l.currentDelay > l.maxDelay {
		l.currentDelay = l.maxDelay
	}
	l.limiter.SetLimit(rate.Every(l.currentDelay))
}
