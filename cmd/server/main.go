package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/oggyb/matrimony-core/internal/app"
	"github.com/oggyb/matrimony-core/internal/cache"
	"github.com/oggyb/matrimony-core/internal/config"
	"github.com/oggyb/matrimony-core/internal/db"
	"github.com/oggyb/matrimony-core/internal/logger"
	"github.com/oggyb/matrimony-core/internal/server"
	"github.com/oggyb/matrimony-core/internal/service/entitlement"
	"github.com/oggyb/matrimony-core/internal/service/moderation"
	"github.com/oggyb/matrimony-core/internal/service/payments"
	"github.com/oggyb/matrimony-core/internal/service/views"
	"github.com/oggyb/matrimony-core/internal/service/visibility"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(ctx); err != nil {
		log.Error("failed to connect to redis", "err", err)
		os.Exit(1)
	}

	appCtx := app.New(database, redisCache, log, cfg)

	registrars := []server.Registrar{
		visibility.NewRegistrar(appCtx),
		views.NewRegistrar(appCtx),
		payments.NewRegistrar(appCtx),
		moderation.NewRegistrar(appCtx),
		entitlement.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.GRPC.Host + ":" + cfg.GRPC.Port
	log.Info("starting gRPC server", "addr", addr, "env", cfg.App.ENV)

	if err := server.StartGRPCServer(ctx, cfg, log, registrars...); err != nil {
		log.Error("failed to start gRPC server", "err", err)
		os.Exit(1)
	}
}
