package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLimiter(t *testing.T, limit int, window time.Duration) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLimiter(client, limit, window, nil), mr
}

func TestRedisLimiter_Cap(t *testing.T) {
	l, _ := newRedisLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, remaining, err := l.Allow(ctx, "u-1")
		require.NoError(t, err)
		assert.True(t, allowed, "call %d should be allowed", i+1)
		assert.Equal(t, 3-(i+1), remaining)
	}

	allowed, remaining, err := l.Allow(ctx, "u-1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
}

func TestRedisLimiter_KeysAreIndependent(t *testing.T) {
	l, _ := newRedisLimiter(t, 1, time.Minute)
	ctx := context.Background()

	allowed, _, err := l.Allow(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, _, err = l.Allow(ctx, "u-2")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisLimiter_WindowSlides(t *testing.T) {
	l, _ := newRedisLimiter(t, 1, time.Minute)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := base
	l.SetNowFunc(func() time.Time { return current })

	allowed, _, err := l.Allow(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, allowed)

	// Past the window the recorded entry is pruned by the next
	// pipeline's ZREMRANGEBYSCORE, so the call is admitted again.
	current = base.Add(2 * time.Minute)

	allowed, _, err = l.Allow(ctx, "u-1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisLimiter_RedisDownReturnsError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	l := NewRedisLimiter(client, 1, time.Minute, nil)

	mr.Close()

	_, _, err := l.Allow(context.Background(), "u-1")
	assert.Error(t, err)
}
