package redisstore

import "errors"

var (
	// ErrRedisNotAvailable is returned when no redis address is configured.
	ErrRedisNotAvailable = errors.New("redis not available")

	// ErrLockNotAcquired 获取锁失败错误
	ErrLockNotAcquired = errors.New("could not acquire distributed lock")
)
