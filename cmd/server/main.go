package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"mflix/internal/adapter/api"
	"mflix/internal/bootstrap"
	"mflix/internal/config"
	"mflix/internal/logging"

	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// run serves until ctx is cancelled or the listener fails. Components are
// closed before it returns.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	comps, err := bootstrap.Build(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := comps.Close(); err != nil {
			logger.Warn("close components", "error", err)
		}
	}()

	// Initialize API Layer (Delivery Layer)
	app := fiber.New(fiber.Config{
		AppName:               cfg.Server.AppName,
		DisableStartupMessage: true,
	})

	handler := api.NewRecommendationHandler(comps.Orchestrator, comps.Enricher, cfg.Server.RequestTimeout)
	api.SetupRouter(app, handler, api.BuildInfo{Version: cfg.Server.Version, Env: cfg.Server.Env})

	// Start Server
	logger.Info("gateway listening",
		"port", cfg.Server.Port,
		"backend", cfg.Recommend.Backend,
		"omdb_enabled", cfg.OMDbEnabled(),
	)
	listenErr := make(chan error, 1)
	go func() {
		listenErr <- app.Listen(":" + cfg.Server.Port)
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
		return app.Shutdown()
	}
}
