package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPLimiterEvictsIdleClients(t *testing.T) {
	l := newIPLimiter(0.001, 1)
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := t0
	l.now = func() time.Time { return now }
	l.lastSweep = t0

	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))

	now = t0.Add(5 * time.Minute)
	assert.True(t, l.allow("10.0.0.2"))
	assert.Equal(t, 2, l.size())

	now = t0.Add(12 * time.Minute)
	assert.True(t, l.allow("10.0.0.3"))
	assert.Equal(t, 2, l.size(), "10.0.0.1 has been idle past the TTL")

	// The evicted client starts over with a full bucket.
	assert.True(t, l.allow("10.0.0.1"))
	assert.Equal(t, 3, l.size())
}

func TestIPLimiterSweepsAtMostOncePerInterval(t *testing.T) {
	l := newIPLimiter(1, 1)
	t0 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := t0
	l.now = func() time.Time { return now }
	l.lastSweep = t0.Add(limiterIdleTTL)

	l.allow("10.0.0.1")
	now = t0.Add(limiterIdleTTL + 30*time.Second)
	l.allow("10.0.0.2")
	// 10.0.0.1 is stale, but the last sweep was under a minute ago.
	assert.Equal(t, 2, l.size())

	now = t0.Add(limiterIdleTTL + limiterSweepInterval)
	l.allow("10.0.0.2")
	assert.Equal(t, 1, l.size())
}
