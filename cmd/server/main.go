package main

import (
	"context"

	"github.com/Hoossayn/hottakes-backend/internal/app"
	"github.com/Hoossayn/hottakes-backend/internal/cache"
	"github.com/Hoossayn/hottakes-backend/internal/config"
	"github.com/Hoossayn/hottakes-backend/internal/db"
	"github.com/Hoossayn/hottakes-backend/internal/logger"
	"github.com/Hoossayn/hottakes-backend/internal/notify"
	"github.com/Hoossayn/hottakes-backend/internal/server"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	notifier := notify.NewRedisNotifier(redisCache.Client, log)
	appCtx := app.New(database, redisCache, notifier, log)

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	srv := server.New(cfg, appCtx)
	if err := srv.Start(addr); err != nil {
		log.Error("http server stopped", "err", err)
	}
}
