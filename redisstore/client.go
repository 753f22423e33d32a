package redisstore

import (
	"context"
	"fmt"
	"log"
	"time"

	"polls-backend/config"

	"github.com/redis/go-redis/v9"
)

// Connect 创建Redis客户端并测试连接.
// It returns ErrRedisNotAvailable when REDIS_ADDR is empty.
func Connect(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, ErrRedisNotAvailable
	}

	log.Printf("connecting to redis at %s", cfg.RedisAddr)
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
	}

	log.Println("redis connection ready")
	return client, nil
}
