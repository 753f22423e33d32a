package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"polls-backend/config"
	"polls-backend/database"
	"polls-backend/events"
	"polls-backend/ratelimit"
	"polls-backend/redisstore"
	"polls-backend/repository"
	"polls-backend/routes"
	"polls-backend/service"
	"polls-backend/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// migrateLockExpiry bounds how long one instance may hold the migration lock.
const migrateLockExpiry = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 初始化数据库连接
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("无法初始化数据库: %v", err)
	}
	log.Println("数据库连接初始化成功")

	// Redis is optional; without it everything runs in-process.
	rdb, err := redisstore.Connect(ctx, cfg)
	if err != nil {
		if !errors.Is(err, redisstore.ErrRedisNotAvailable) {
			log.Printf("警告: Redis初始化失败, 使用本地模式: %v", err)
		}
		rdb = nil
	}

	if err := prepareDatabase(ctx, cfg, db, rdb); err != nil {
		log.Fatalf("数据库准备失败: %v", err)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	publisher := newPublisher(ctx, cfg, rdb, hub)

	svc := service.NewPollService(
		repository.NewGormQuestionRepository(db),
		publisher,
		service.WithIndexLimit(cfg.IndexLimit),
	)

	router := routes.SetupRouter(routes.Dependencies{
		Service: svc,
		DB:      db,
		Hub:     hub,
		Limiter: newLimiter(cfg, rdb),
	})
	log.Println("路由设置完成")

	srv := routes.StartServer(router, cfg.ServerPort)

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("关闭服务器...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	// 不接受新请求并等待现有请求完成
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("服务器强制关闭: %v", err)
	}

	cancel()
	if err := publisher.Close(); err != nil {
		log.Printf("close publisher: %v", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	database.Close(db)

	log.Println("服务器优雅关闭")
}

// prepareDatabase migrates the schema and seeds sample data. With redis the
// work is serialized across instances.
func prepareDatabase(ctx context.Context, cfg config.Config, db *gorm.DB, rdb *redis.Client) error {
	var locker redisstore.Locker = redisstore.LocalLocker{}
	if rdb != nil {
		locker = redisstore.NewLockService(rdb)
	}

	return locker.WithLock(ctx, "polls:migrate", migrateLockExpiry, func() error {
		if err := database.Migrate(db); err != nil {
			return err
		}
		if cfg.SeedSampleData && cfg.IsDevelopment() {
			return database.SeedSampleData(ctx, db)
		}
		return nil
	})
}

// newPublisher picks where vote events go. The hub always ends up receiving
// them so websocket clients of this instance see every vote.
func newPublisher(ctx context.Context, cfg config.Config, rdb *redis.Client, hub *websocket.Hub) events.Publisher {
	switch cfg.EventBackend {
	case config.EventBackendRedis:
		if rdb == nil {
			log.Println("警告: 事件后端为redis但Redis不可用, 使用本地模式")
			return hub
		}
		go func() {
			if err := events.Relay(ctx, rdb, events.VoteChannel, hub); err != nil {
				log.Printf("vote event relay stopped: %v", err)
			}
		}()
		return events.NewRedisPublisher(rdb, events.VoteChannel)

	case config.EventBackendRocketMQ:
		mq, err := events.NewRocketMQPublisher(cfg.RocketMQNameServer, cfg.RocketMQTopic)
		if err != nil {
			log.Printf("警告: RocketMQ初始化失败, 使用本地模式: %v", err)
			return hub
		}
		return events.Fanout{hub, mq}

	default:
		return hub
	}
}

func newLimiter(cfg config.Config, rdb *redis.Client) ratelimit.Limiter {
	if !cfg.RateLimitEnabled {
		return nil
	}
	if rdb != nil {
		return ratelimit.NewSlidingWindowLimiter(rdb, "polls", time.Second, cfg.RateBurst)
	}
	return ratelimit.NewLocalLimiter(cfg.RateLimit, cfg.RateBurst)
}
