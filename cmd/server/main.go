package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/prismstudio/certverify/internal/app"
	"github.com/prismstudio/certverify/internal/config"
	"github.com/prismstudio/certverify/internal/infrastructure/monitoring"
	"github.com/prismstudio/certverify/pkg/constants"
	"github.com/prismstudio/certverify/pkg/logger"
)

func main() {
	configFile := flag.String("config", "", "path to the config file")
	flag.Parse()

	ctx := context.Background()

	// Logger for startup
	startupLogger := monitoring.NewZapLogger(&config.LogConfig{Level: "info", Format: "json"})

	loader := config.NewLoader(*configFile, startupLogger)
	cfg, err := loader.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := monitoring.NewZapLogger(&cfg.Log)
	loader.WatchLogLevel(func(level constants.LogLevel) {
		appLogger.SetLevel(level)
	})

	container, err := app.NewServer(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "Failed to initialize service", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := container.Close(closeCtx); err != nil {
			appLogger.Error(closeCtx, "Failed to release resources", err)
		}
	}()

	appLogger.Info(ctx, "Starting certificate verification service",
		logger.String("environment", cfg.Server.Environment),
		logger.String("rate_limit_backend", cfg.RateLimit.Backend),
	)

	if err := container.Router.Start(); err != nil {
		appLogger.Error(ctx, "HTTP server failed", err)
	}
}

//Personal.AI order the ending
