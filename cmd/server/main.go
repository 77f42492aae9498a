package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/api"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/auth"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/cache"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/config"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}

	defer func() { _ = logger.Sync() }()

	store, err := storage.NewStore(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}
	defer store.Close()

	results := cache.New(logger, cfg.CacheSweep)
	defer results.Close()

	var provider auth.Provider
	if cfg.Env == "development" {
		provider = auth.NewLocalAuthProvider(cfg.JWTSecret, logger)
	} else {
		provider = auth.NewCachingProvider(
			auth.NewRemoteAuthProvider(cfg.AuthServiceURL, logger), results, cfg.UserTTL)
	}

	app := api.NewApp(logger, store, results, cfg)
	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: api.Router(app, provider),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Infof("server listening on %s (storage=%s)", cfg.ServerAddr, cfg.DBType)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown error: %v", err)
	}
}

func newLogger(cfg *config.Config) (internal.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	if cfg.Env == "production" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zl, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return internal.NewZapLogger(zl.Sugar()), nil
}
