// File: internal/platform/redis/client.go
package redis

import (
	"context"
	"fmt"
	"time"

	"pawmart_web/internal/config"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewClient connects to REDIS_ADDR. It returns (nil, nil) when no address is
// configured; callers fall back to in-process storage in that case.
func NewClient(cfg *config.Config, logger *zap.Logger) (*goredis.Client, error) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, session snapshots stay in process memory")
		return nil, nil
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}

	logger.Info("Connected to redis", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	return client, nil
}

// Close releases the client if one was created.
func Close(client *goredis.Client, logger *zap.Logger) {
	if client == nil {
		return
	}
	if err := client.Close(); err != nil {
		logger.Error("Error closing redis client", zap.Error(err))
	}
}
