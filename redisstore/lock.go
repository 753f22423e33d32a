package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// Locker runs fn while holding the named lock.
type Locker interface {
	WithLock(ctx context.Context, name string, expiry time.Duration, fn func() error) error
}

// LockService 分布式锁服务
type LockService struct {
	rs *redsync.Redsync
}

// NewLockService builds a redsync-backed lock service on an existing client.
func NewLockService(client *redis.Client) *LockService {
	pool := goredis.NewPool(client)
	return &LockService{rs: redsync.New(pool)}
}

// WithLock 在锁内执行操作
func (s *LockService) WithLock(ctx context.Context, name string, expiry time.Duration, fn func() error) error {
	mutex := s.rs.NewMutex(name,
		redsync.WithExpiry(expiry),
		redsync.WithTries(20),
		redsync.WithRetryDelay(100*time.Millisecond),
		redsync.WithDriftFactor(0.01),
	)

	if err := mutex.LockContext(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w %s: %v", ErrLockNotAcquired, name, err)
	}
	defer func() {
		_, _ = mutex.UnlockContext(context.WithoutCancel(ctx))
	}()

	return fn()
}

// LocalLocker runs fn directly; used when redis is not configured and only
// one instance touches the database.
type LocalLocker struct{}

func (LocalLocker) WithLock(ctx context.Context, _ string, _ time.Duration, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn()
}
