package redis

import (
	"context"
	"fmt"
	"time"

	"vidhub-go/internal/config"
	"vidhub-go/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var client *redis.Client

// NewClient 创建客户端并在 5 秒内 Ping 通
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to ping redis %s: %w", cfg.Addr(), err)
	}
	return c, nil
}

// Init 初始化全局客户端
func Init(cfg *config.RedisConfig) error {
	c, err := NewClient(context.Background(), cfg)
	if err != nil {
		return err
	}
	client = c

	logger.Info("Redis connected",
		zap.String("addr", cfg.Addr()),
		zap.Int("db", cfg.DB),
	)
	return nil
}

// Close 关闭全局客户端
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}

func Get() *redis.Client {
	return client
}

// VideoListPrefix 榜单缓存键前缀，API 与 worker 必须一致
func VideoListPrefix(appName string) string {
	return appName + ":videos:"
}
