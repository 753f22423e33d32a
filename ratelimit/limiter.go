package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter 限流器接口
type Limiter interface {
	// Allow reports whether one more request for key may pass.
	Allow(ctx context.Context, key string) (bool, error)
}

// idleAfter is how long an unused per-key bucket is kept.
const idleAfter = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is an in-process token bucket per key.
type LocalLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    rate.Limit
	burst   int
	sweepAt int
}

// NewLocalLimiter allows r requests per second per key with the given burst.
func NewLocalLimiter(r float64, burst int) *LocalLimiter {
	return &LocalLimiter{
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(r),
		burst:   burst,
		sweepAt: 1024,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) >= l.sweepAt {
			l.sweep(now)
		}
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1), nil
}

// sweep drops idle buckets; mu must be held.
func (l *LocalLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > idleAfter {
			delete(l.buckets, key)
		}
	}
}
