package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdaptiveRateLimiter_DoublesWithoutHint(t *testing.T) {
	rl := NewAdaptiveRateLimiter(500*time.Millisecond, 10*time.Second)
	require.Equal(t, 500*time.Millisecond, rl.CurrentDelay())

	rl.OnRateLimited(0)
	assert.Equal(t, time.Second, rl.CurrentDelay())

	rl.OnRateLimited(0)
	assert.Equal(t, 2*time.Second, rl.CurrentDelay())
}

func TestAdaptiveRateLimiter_HonorsRetryAfter(t *testing.T) {
	rl := NewAdaptiveRateLimiter(500*time.Millisecond, 10*time.Second)

	rl.OnRateLimited(3 * time.Second)
	assert.Equal(t, 4*time.Second, rl.CurrentDelay(), "hint plus one second")
}

func TestAdaptiveRateLimiter_CapsAtMax(t *testing.T) {
	rl := NewAdaptiveRateLimiter(500*time.Millisecond, 10*time.Second)

	rl.OnRateLimited(time.Minute)
	assert.Equal(t, 10*time.Second, rl.CurrentDelay())

	for i := 0; i < 10; i++ {
		rl.OnRateLimited(0)
	}
	assert.Equal(t, 10*time.Second, rl.CurrentDelay())
}

func TestAdaptiveRateLimiter_OverloadTriples(t *testing.T) {
	rl := NewAdaptiveRateLimiter(time.Second, time.Minute)

	rl.OnOverloaded()
	assert.Equal(t, 3*time.Second, rl.CurrentDelay())

	rl.OnOverloaded()
	assert.Equal(t, 9*time.Second, rl.CurrentDelay())
}

func TestAdaptiveRateLimiter_DecayAfterFiveSuccesses(t *testing.T) {
	rl := NewAdaptiveRateLimiter(500*time.Millisecond, 10*time.Second)
	rl.OnRateLimited(0)
	rl.OnRateLimited(0)
	require.Equal(t, 2*time.Second, rl.CurrentDelay())

	for i := 0; i < 4; i++ {
		rl.OnSuccess()
		assert.Equal(t, 2*time.Second, rl.CurrentDelay(), "no decay before the fifth success")
	}

	rl.OnSuccess()
	assert.Equal(t, 1800*time.Millisecond, rl.CurrentDelay())
	assert.Zero(t, rl.Streak(), "streak starts over after a decay")
}

func TestAdaptiveRateLimiter_DecayFlooredAtInitial(t *testing.T) {
	rl := NewAdaptiveRateLimiter(500*time.Millisecond, 10*time.Second)

	for i := 0; i < 50; i++ {
		rl.OnSuccess()
	}
	assert.Equal(t, 500*time.Millisecond, rl.CurrentDelay())
}

func TestAdaptiveRateLimiter_FailureResetsStreak(t *testing.T) {
	rl := NewAdaptiveRateLimiter(500*time.Millisecond, 10*time.Second)
	rl.OnRateLimited(0)

	for i := 0; i < 4; i++ {
		rl.OnSuccess()
	}
	require.Equal(t, 4, rl.Streak())

	rl.OnFailure()
	assert.Zero(t, rl.Streak())

	// The reset streak means four more successes still do not decay
	for i := 0; i < 4; i++ {
		rl.OnSuccess()
	}
	assert.Equal(t, time.Second, rl.CurrentDelay())
}

func TestAdaptiveRateLimiter_WaitEnforcesSpacing(t *testing.T) {
	rl := NewAdaptiveRateLimiter(50*time.Millisecond, time.Second)
	ctx := context.Background()

	require.NoError(t, rl.Wait(ctx))

	start := time.Now()
	require.NoError(t, rl.Wait(ctx))
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestAdaptiveRateLimiter_WaitHonorsContext(t *testing.T) {
	rl := NewAdaptiveRateLimiter(time.Hour, 2*time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.NoError(t, rl.Wait(context.Background()), "first call consumes the burst token")
	err := rl.Wait(ctx)
	assert.Error(t, err)
}
