package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestRateLimiter() *RateLimiter {
	return NewRateLimiter(RateLimitConfig{
		MaxAttempts:     3,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
	})
}

func TestRateLimiterAllowsFresh(t *testing.T) {
	rl := newTestRateLimiter()
	defer rl.Stop()

	allowed, retryAfter := rl.Allow("1.2.3.4", "user@example.com")
	assert.True(t, allowed)
	assert.Zero(t, retryAfter)
}

func TestRateLimiterLocksAfterMaxFailures(t *testing.T) {
	rl := newTestRateLimiter()
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("1.2.3.4", "user@example.com")
		assert.True(t, allowed, "attempt %d should be allowed", i+1)
		rl.RecordFailure("1.2.3.4", "user@example.com")
	}

	allowed, retryAfter := rl.Allow("1.2.3.4", "user@example.com")
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestRateLimiterKeysByIPAndEmail(t *testing.T) {
	rl := newTestRateLimiter()
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		rl.RecordFailure("1.2.3.4", "user@example.com")
	}

	// Same email, different IP
	allowed, _ := rl.Allow("5.6.7.8", "user@example.com")
	assert.True(t, allowed)

	// Same IP, different email
	allowed, _ = rl.Allow("1.2.3.4", "other@example.com")
	assert.True(t, allowed)

	allowed, _ = rl.Allow("1.2.3.4", "user@example.com")
	assert.False(t, allowed)
}

func TestRateLimiterSuccessClearsRecord(t *testing.T) {
	rl := newTestRateLimiter()
	defer rl.Stop()

	rl.RecordFailure("1.2.3.4", "user@example.com")
	rl.RecordFailure("1.2.3.4", "user@example.com")
	rl.RecordSuccess("1.2.3.4", "user@example.com")

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("1.2.3.4", "user@example.com")
		assert.True(t, allowed)
		rl.RecordFailure("1.2.3.4", "user@example.com")
	}
	allowed, _ := rl.Allow("1.2.3.4", "user@example.com")
	assert.False(t, allowed)
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     2,
		WindowDuration:  20 * time.Millisecond,
		LockoutDuration: 10 * time.Millisecond,
	})
	defer rl.Stop()

	rl.RecordFailure("1.2.3.4", "user@example.com")
	rl.RecordFailure("1.2.3.4", "user@example.com")

	allowed, _ := rl.Allow("1.2.3.4", "user@example.com")
	assert.False(t, allowed)

	time.Sleep(30 * time.Millisecond)

	allowed, _ = rl.Allow("1.2.3.4", "user@example.com")
	assert.True(t, allowed)
}

func TestRateLimiterDefaults(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{})
	defer rl.Stop()

	assert.Equal(t, 5, rl.maxAttempts)
	assert.Equal(t, 15*time.Minute, rl.windowDuration)
	assert.Equal(t, 30*time.Minute, rl.lockoutDuration)
}
