package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/metric"
)

// RedisLimiter is a sliding-window limiter over a shared Redis sorted set,
// for deployments with more than one API instance.
type RedisLimiter struct {
	client     *redis.Client
	limit      int
	window     time.Duration
	rejections metric.Int64Counter

	// now is swappable for tests.
	now func() time.Time
}

// NewRedisLimiter creates a Redis-backed limiter allowing limit attempts per
// key within the sliding window. rejections may be nil when metrics are off.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, rejections metric.Int64Counter) *RedisLimiter {
	return &RedisLimiter{
		client:     client,
		limit:      limit,
		window:     window,
		rejections: rejections,
		now:        time.Now,
	}
}

// SetNowFunc overrides the limiter's clock. Test use only.
func (l *RedisLimiter) SetNowFunc(now func() time.Time) {
	l.now = now
}

// Allow implements Limiter using a single pipeline so concurrent requests
// for the same key cannot lose increments.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	now := l.now()
	windowStart := now.Add(-l.window)

	redisKey := fmt.Sprintf("ratelimit:user:%s", key)

	pipe := l.client.Pipeline()

	// Drop entries that slid out of the window, record this attempt, count
	// what is left and refresh the key's TTL.
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixMilli()))
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	countCmd := pipe.ZCount(ctx, redisKey, "-inf", "+inf")
	pipe.Expire(ctx, redisKey, 2*l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit pipeline: %w", err)
	}

	count, err := countCmd.Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit count: %w", err)
	}

	remaining := l.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	allowed := count <= int64(l.limit)
	if !allowed && l.rejections != nil {
		l.rejections.Add(ctx, 1)
	}

	return allowed, remaining, nil
}
