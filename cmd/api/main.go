package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/edvana/school-platform-auth/internal/infra/app"
	"github.com/edvana/school-platform-auth/internal/infra/config"
	"github.com/edvana/school-platform-auth/internal/infra/logger"
)

func main() {
	// Optional in containerized deployments; env vars win either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}

	log, err := logger.New(cfg.App.Env)
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}

	if err := application.Run(ctx); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
