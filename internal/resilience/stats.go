package resilience

// Stats is a point-in-time snapshot of the breaker and limiter, served by
// the gateway stats endpoint.
type Stats struct {
	BreakerState   BreakerState `json:"breaker_state"`
	FailureCount   int          `json:"failure_count"`
	CurrentDelay   string       `json:"current_delay"`
	CurrentDelayMs int64        `json:"current_delay_ms"`
	SuccessStreak  int          `json:"success_streak"`
}

// Snapshot assembles a Stats from the live breaker and limiter.
func Snapshot(cb *CircuitBreaker, rl *AdaptiveRateLimiter) Stats {
	delay := rl.CurrentDelay()
	return Stats{
		BreakerState:   cb.State(),
		FailureCount:   cb.Failures(),
		CurrentDelay:   delay.String(),
		CurrentDelayMs: delay.Milliseconds(),
		SuccessStreak:  rl.Streak(),
	}
}
