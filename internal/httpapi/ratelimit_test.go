package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucket_AllowsBurstThenBlocks(t *testing.T) {
	tb := NewTokenBucket(3, 1.0)

	for i := 0; i < 3; i++ {
		allowed, _, _, _ := tb.Allow()
		require.True(t, allowed, "request %d should be allowed within burst capacity", i)
	}

	allowed, _, nextTokenTime, _ := tb.Allow()
	assert.False(t, allowed, "fourth request should exceed burst capacity")
	assert.False(t, nextTokenTime.IsZero())
}

func TestRateLimiter_PerUserIsolation(t *testing.T) {
	rl := NewRateLimiter(RateLimitInfo{WindowSeconds: 60, MaxRequests: 60, Burst: 1})

	allowedA, _, _, _ := rl.Allow("user-a")
	assert.True(t, allowedA)

	blockedA, _, _, _ := rl.Allow("user-a")
	assert.False(t, blockedA, "user-a should have exhausted its single-token burst")

	allowedB, _, _, _ := rl.Allow("user-b")
	assert.True(t, allowedB, "user-b's bucket is independent of user-a's")
}
