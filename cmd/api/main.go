package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/job-search-service/internal/api/http"
	"github.com/spec-kit/job-search-service/internal/api/http/handlers"
	"github.com/spec-kit/job-search-service/internal/auth"
	"github.com/spec-kit/job-search-service/internal/config"
	"github.com/spec-kit/job-search-service/internal/events"
	"github.com/spec-kit/job-search-service/internal/observability"
	"github.com/spec-kit/job-search-service/internal/persistence"
	"github.com/spec-kit/job-search-service/internal/repository"
	"github.com/spec-kit/job-search-service/internal/service"
	"github.com/spec-kit/job-search-service/internal/state"
	"github.com/spec-kit/job-search-service/internal/store"
	"github.com/spec-kit/job-search-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kv, err := persistence.Open(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer kv.Close()

	metrics := observability.NewMetrics()
	collections := store.NewCollections(kv)
	repo := repository.NewJobBoardRepository(collections, auth.NewPasswordHasher(cfg.Auth), logger)

	seeded, err := repo.Initialize(ctx)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	logger.Info("store ready", zap.String("driver", cfg.Store.Driver), zap.Bool("seeded", seeded))

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification))

	ttl := cfg.Auth.AccessTokenTTL()
	registry := state.NewRegistry(repo, dispatcher, logger, ttl)
	worker.StartSessionSweeper(ctx, registry, time.Minute, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, ttl)

	app := httptransport.NewApp(cfg.App.Name)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, cfg.Store.Driver, collections, metrics),
		Auth:           handlers.NewAuthHandler(registry, tokens, logger),
		Jobs:           handlers.NewJobsHandler(repo),
		Account:        handlers.NewAccountHandler(registry, repo),
		Admin:          handlers.NewAdminHandler(repo),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, registry),
		RoleLookup:     registry.Role,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
