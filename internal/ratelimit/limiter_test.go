package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_AllowsUpToLimit(t *testing.T) {
	l := NewMemoryLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "login:1.2.3.4")
		require.NoError(t, err)
		assert.True(t, res.Allowed, "hit %d should be allowed", i+1)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := l.Allow(ctx, "login:1.2.3.4")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Greater(t, res.RetryAfter, time.Duration(0))
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	res, _ := l.Allow(ctx, "a")
	assert.True(t, res.Allowed)
	res, _ = l.Allow(ctx, "b")
	assert.True(t, res.Allowed)
	res, _ = l.Allow(ctx, "a")
	assert.False(t, res.Allowed)
}

func TestMemoryLimiter_WindowResets(t *testing.T) {
	now := time.Now()
	l := NewMemoryLimiter(1, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	res, _ := l.Allow(ctx, "k")
	assert.True(t, res.Allowed)
	res, _ = l.Allow(ctx, "k")
	assert.False(t, res.Allowed)

	now = now.Add(time.Minute)
	res, _ = l.Allow(ctx, "k")
	assert.True(t, res.Allowed)
	assert.Len(t, l.windows, 1)
}

func TestMemoryLimiter_SweepsOncePerPeriod(t *testing.T) {
	now := time.Now()
	l := NewMemoryLimiter(1, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		_, err := l.Allow(ctx, fmt.Sprintf("ip:%d", i))
		require.NoError(t, err)
	}
	assert.Len(t, l.windows, 100)
	firstSweep := l.nextSweep

	// New keys inside the period do not trigger another scan.
	now = now.Add(30 * time.Second)
	_, _ = l.Allow(ctx, "late")
	assert.Equal(t, firstSweep, l.nextSweep)
	assert.Len(t, l.windows, 101)

	// Past the period the expired windows are dropped.
	now = firstSweep
	_, _ = l.Allow(ctx, "fresh")
	assert.Len(t, l.windows, 2)
	assert.Contains(t, l.windows, "late")
	assert.Contains(t, l.windows, "fresh")
	assert.Equal(t, now.Add(time.Minute), l.nextSweep)
}

func TestDecide(t *testing.T) {
	assert.Equal(t, Result{Allowed: true, Remaining: 4}, decide(1, 5, time.Second))
	assert.Equal(t, Result{Allowed: true, Remaining: 0}, decide(5, 5, time.Second))
	assert.Equal(t, Result{Allowed: false, RetryAfter: time.Second}, decide(6, 5, time.Second))
}
