package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/logging"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	storefront, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize storefront", zap.Error(err))
	}

	if err := storefront.StartConsumer(); err != nil {
		logger.Error("failed to start order event consumer", zap.Error(err))
	}

	go func() {
		if err := storefront.Listen(); err != nil {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := storefront.Shutdown(ctx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
}
