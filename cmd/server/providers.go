// File: cmd/server/providers.go
package main

import (
	"log"
	"time"

	"pawmart_web/internal/authbridge"
	"pawmart_web/internal/config"
	"pawmart_web/internal/identity"
	"pawmart_web/internal/jobs"
	"pawmart_web/internal/platform/database"
	"pawmart_web/internal/platform/logger"
	platformredis "pawmart_web/internal/platform/redis"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// listingSync is what the sync-listings command needs.
type listingSync struct {
	Job    *jobs.ListingSyncJob
	Logger *zap.Logger
}

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	l, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return l, func() {
		if err := l.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
	}, nil
}

func provideDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { database.CloseGORMDB(db, logger) }, nil
}

func provideRedis(cfg *config.Config, logger *zap.Logger) (*goredis.Client, func(), error) {
	client, err := platformredis.NewClient(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { platformredis.Close(client, logger) }, nil
}

// provideSnapshotStore keeps auth snapshots in redis when REDIS_ADDR is set
// and in process memory otherwise.
func provideSnapshotStore(cfg *config.Config, client *goredis.Client, logger *zap.Logger) authbridge.Store {
	if client == nil {
		logger.Info("REDIS_ADDR not set, auth snapshots kept in memory")
		return authbridge.NewMemoryStore(cfg.SessionTTL)
	}
	return authbridge.NewRedisStore(client, cfg.SessionTTL)
}

func provideAccounts(cfg *config.Config, logger *zap.Logger) (*identity.Accounts, error) {
	return identity.NewAccounts(cfg, logger)
}

func provideBlocklist() *identity.Blocklist {
	return identity.NewBlocklist(10 * time.Minute)
}
