package app

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/oggyb/matrimony-core/internal/cache"
	"github.com/oggyb/matrimony-core/internal/config"
)

// AppContext holds shared dependencies (DB, Redis, Logger, Config, clock)
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	Config     *config.Config
	// Now is the clock used for review stamps and boost expiry.
	Now func() time.Time
}

// New creates a new AppContext
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, cfg *config.Config) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		Config:     cfg,
		Now:        func() time.Time { return time.Now().UTC() },
	}
}
