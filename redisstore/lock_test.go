package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"polls-backend/config"

	"github.com/stretchr/testify/assert"
)

func TestLocalLocker_RunsFunction(t *testing.T) {
	var ran bool
	err := LocalLocker{}.WithLock(context.Background(), "seed", time.Second, func() error {
		ran = true
		return nil
	})
	assert.NoError(t, err)
	assert.True(t, ran)
}

func TestLocalLocker_PropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	err := LocalLocker{}.WithLock(context.Background(), "seed", time.Second, func() error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestLocalLocker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := LocalLocker{}.WithLock(ctx, "seed", time.Second, func() error {
		t.Fatal("must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConnect_NoAddress(t *testing.T) {
	_, err := Connect(context.Background(), config.Config{})
	assert.ErrorIs(t, err, ErrRedisNotAvailable)
}
