package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter is a per-key sliding-window counter guarding sensitive operations.
// Call sites depend only on this interface so the single-process memory
// limiter can be swapped for the shared Redis counter without touching them.
type Limiter interface {
	// Allow records an attempt for key and reports whether it fits the
	// window, along with how many attempts remain.
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
}

// MemoryLimiter is a process-local sliding-window limiter: a map from key to
// attempt timestamps, pruned lazily on each check. Acceptable only under a
// single-instance deployment; scaled deployments use RedisLimiter.
//
// The limiter is advisory (abuse defense, not a hard quota), but same-key
// concurrent requests must not lose increments, so all state is behind one
// mutex.
type MemoryLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string][]time.Time

	// now is swappable for tests.
	now func() time.Time
}

// NewMemoryLimiter creates a memory limiter allowing limit attempts per key
// within the sliding window.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		limit:  limit,
		window: window,
		hits:   map[string][]time.Time{},
		now:    time.Now,
	}
}

// Allow implements Limiter.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.hits[key][:0]
	for _, ts := range l.hits[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	kept = append(kept, now)
	l.hits[key] = kept

	count := len(kept)
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= l.limit, remaining, nil
}

// SetNowFunc overrides the limiter's clock. Test use only.
func (l *MemoryLimiter) SetNowFunc(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
