package main

import (
	"context"

	"github.com/joho/godotenv"

	"github.com/oggyb/speedy-match/internal/app"
	"github.com/oggyb/speedy-match/internal/cache"
	"github.com/oggyb/speedy-match/internal/config"
	"github.com/oggyb/speedy-match/internal/db"
	"github.com/oggyb/speedy-match/internal/logger"
	"github.com/oggyb/speedy-match/internal/server"
	"github.com/oggyb/speedy-match/internal/service/match"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L() // slog.Logger pointer

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
	defer redisCache.Close()

	// cached match lists follow user and match profile writes
	if err := match.RegisterCacheInvalidation(database, redisCache, cfg.Match.Languages, log); err != nil {
		log.Error("failed to register cache invalidation", "err", err)
		return
	}

	// Inject logger into app context
	appCtx := app.New(database, redisCache, log, cfg)

	registrars := []server.Registrar{
		match.NewRegistrar(appCtx),
	}

	if cfg.App.ENV == "development" {
		if err := db.SeedTestData(database, cfg.Match.Languages); err != nil {
			log.Error("failed to seed", "err", err)
		}
	}

	router := server.NewHTTPRouter(log, map[string]server.HealthCheck{
		"redis": redisCache.Ping,
		"db": func(ctx context.Context) error {
			sqlDB, err := database.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})
	go func() {
		log.Info("starting metrics server", "addr", cfg.HTTP.MetricsAddr)
		if err := server.StartHTTPServer(cfg.HTTP.MetricsAddr, router); err != nil {
			log.Error("metrics server stopped", "err", err)
		}
	}()

	addr := cfg.GRPC.Host + ":" + cfg.GRPC.Port
	log.Info("starting gRPC server", "addr", addr)

	if err := server.StartGRPCServer(cfg, log, registrars...); err != nil {
		log.Error("failed to start gRPC server", "err", err)
	}
}
