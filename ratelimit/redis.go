package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SlidingWindowLimiter 滑动窗口限流器, shared by every instance using the same redis.
type SlidingWindowLimiter struct {
	client     *redis.Client
	prefix     string
	windowSize time.Duration
	limit      int
}

// NewSlidingWindowLimiter allows limit requests per key in any window of windowSize.
func NewSlidingWindowLimiter(client *redis.Client, prefix string, windowSize time.Duration, limit int) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		client:     client,
		prefix:     prefix,
		windowSize: windowSize,
		limit:      limit,
	}
}

func (l *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("sliding_window:%s:%s", l.prefix, key)
	now := time.Now().UnixMilli()
	windowStart := now - l.windowSize.Milliseconds()
	requestID := uuid.New().String()

	pipe := l.client.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now), Member: requestID})
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(windowStart, 10))
	card := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.windowSize*2)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	if card.Val() > int64(l.limit) {
		// the rejected request does not count against the window
		l.client.ZRem(ctx, redisKey, requestID)
		return false, nil
	}
	return true, nil
}
