package ratelimit

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowWithinBurstSucceeds(t *testing.T) {
	l := New(Config{QueriesPerSecond: 1, BurstSize: 3, CleanupInterval: time.Hour})
	ip := net.ParseIP("192.0.2.1")
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(ip, false))
	}
	assert.False(t, l.Allow(ip, false))
}

func TestAllowTracksIPsIndependently(t *testing.T) {
	l := New(Config{QueriesPerSecond: 1, BurstSize: 1, CleanupInterval: time.Hour})
	a := net.ParseIP("192.0.2.1")
	b := net.ParseIP("192.0.2.2")

	assert.True(t, l.Allow(a, false))
	assert.False(t, l.Allow(a, false))
	assert.True(t, l.Allow(b, false))
}

func TestAllowNeverThrottlesTCP(t *testing.T) {
	l := New(Config{QueriesPerSecond: 1, BurstSize: 1, CleanupInterval: time.Hour})
	ip := net.ParseIP("192.0.2.1")

	assert.True(t, l.Allow(ip, true))
	assert.True(t, l.Allow(ip, true))
	assert.True(t, l.Allow(ip, true))

	// The same IP is still budgeted over UDP — TCP traffic doesn't
	// exempt the address from its own UDP bucket.
	assert.True(t, l.Allow(ip, false))
	assert.False(t, l.Allow(ip, false))
}

func TestExemptCIDRBypassesLimit(t *testing.T) {
	l := New(Config{QueriesPerSecond: 1, BurstSize: 1, CleanupInterval: time.Hour})
	require.NoError(t, l.AddExempt("192.0.2.0/24"))

	ip := net.ParseIP("192.0.2.7")
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow(ip, false))
	}
}

func TestExemptBareIP(t *testing.T) {
	l := New(Config{QueriesPerSecond: 1, BurstSize: 1, CleanupInterval: time.Hour})
	require.NoError(t, l.AddExempt("192.0.2.9"))

	ip := net.ParseIP("192.0.2.9")
	assert.True(t, l.Allow(ip, false))
	assert.True(t, l.Allow(ip, false))
}

func TestStatsReportsTrackedClients(t *testing.T) {
	l := New(DefaultConfig())
	l.Allow(net.ParseIP("192.0.2.1"), false)
	l.Allow(net.ParseIP("192.0.2.2"), false)
	require.NoError(t, l.AddExempt("203.0.113.0/24"))

	stats := l.Stats()
	assert.Equal(t, 2, stats.TrackedClients)
	assert.Equal(t, 1, stats.ExemptNets)
}
