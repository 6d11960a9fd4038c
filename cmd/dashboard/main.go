package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/vv-events/dashboard/config"
	"github.com/vv-events/dashboard/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger(os.Getenv("LOG_LEVEL"))
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}
	// LoadConfig may have read LOG_LEVEL from .env.
	logger = bootstrap.InitLogger(cfg.Observability.LogLevel)

	logStartupInfo(ctx, logger, &cfg)

	backend, err := bootstrap.OpenSessionBackend(ctx, bootstrap.RedisDeps{Redis: cfg.Redis, Logger: logger})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := backend.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close session backend failed", "error", cerr)
		}
	}()

	services, err := bootstrap.NewServices(&bootstrap.ServiceDeps{
		Config:  &cfg,
		Backend: backend,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := services.Metrics.Close(); cerr != nil {
			logger.ErrorContext(ctx, "close metrics client failed", "error", cerr)
		}
	}()

	return bootstrap.RunServicesWithShutdown(ctx, &bootstrap.ServiceOrchestrationConfig{
		Config:   &cfg,
		Services: services,
		Logger:   logger,
	})
}

func logStartupInfo(ctx context.Context, logger *slog.Logger, cfg *config.AppConfig) {
	logger.InfoContext(ctx, "starting vv dashboard",
		"platform", cfg.Platform.BaseURL,
		"auth_mode", cfg.Auth.Mode,
		"allowed_roles", cfg.Auth.AllowedRoles,
		"oauth2", cfg.Auth.OAuth.Enabled(),
		"redis", cfg.Redis.Enabled,
		"dev", cfg.IsDev)
}
