package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vv-events/dashboard/config"
	"github.com/vv-events/dashboard/internal/adapters/authroles"
	"github.com/vv-events/dashboard/internal/adapters/platformapi"
	"github.com/vv-events/dashboard/internal/adapters/tokenclaims"
	"github.com/vv-events/dashboard/internal/observability/statsd"
	"github.com/vv-events/dashboard/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Sessions *service.SessionManager
	Login    *service.LoginService
	Verifier *service.TicketVerifier
	Catalog  *service.CatalogService
	Backend  SessionBackend
	Metrics  *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config  *config.AppConfig
	Backend SessionBackend
	Logger  *slog.Logger
}

// buildMetrics returns the statsd client; a disabled client when metrics are off or unreachable.
func buildMetrics(logger *slog.Logger, cfg config.ObservabilityMetricsConfig) *statsd.Client {
	client, err := statsd.NewClient(statsd.Config{
		Enabled: cfg.IsEnabled(),
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Tags:    cfg.Tags,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		client, _ = statsd.NewClient(statsd.Config{Logger: logger})
	}
	return client
}

// NewServices wires the platform client, identity backends and services.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	if deps.Backend.Cache == nil {
		return ServiceContainer{}, errors.New("session backend is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := buildMetrics(logger, cfg.Observability.Metrics)

	platform, err := platformapi.NewClient(platformapi.Config{
		BaseURL:   cfg.Platform.BaseURL,
		Timeout:   cfg.Platform.Timeout,
		UserAgent: cfg.Platform.UserAgent,
		Logger:    logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("platform client: %w", err)
	}

	identity, err := BuildIdentity(AuthDeps{Auth: cfg.Auth, Platform: platform, Logger: logger})
	if err != nil {
		return ServiceContainer{}, err
	}

	sessions, err := service.NewSessionManager(service.SessionManagerOptions{
		Identity:           identity.Identity,
		Cache:              deps.Backend.Cache,
		Roles:              authroles.NewAllowListChecker(cfg.Auth.AllowedRoles...),
		Inspector:          tokenclaims.Inspector{},
		Metrics:            metrics,
		Logger:             logger,
		IdentityTimeout:    cfg.Session.IdentityTimeout,
		RetryAttempts:      cfg.Session.RetryAttempts,
		RetryDelay:         retryDelay(cfg.Session.RetryDelay),
		RevalidateInterval: cfg.Session.RevalidateInterval,
		SessionTTL:         cfg.Session.CookieMaxAge,
		LoginPath:          cfg.Auth.LoginPath,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("session manager: %w", err)
	}

	login, err := service.NewLoginService(service.LoginServiceOptions{
		Authenticator: identity.Authenticator,
		Provider:      identity.Provider,
		Sessions:      sessions,
		Metrics:       metrics,
		Logger:        logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("login service: %w", err)
	}

	verifier, err := service.NewTicketVerifier(service.TicketVerifierOptions{API: platform, Metrics: metrics, Logger: logger})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("ticket verifier: %w", err)
	}

	catalog, err := service.NewCatalogService(service.CatalogServiceOptions{
		API:      platform,
		PageSize: cfg.Platform.PageSize,
		Logger:   logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("catalog service: %w", err)
	}

	return ServiceContainer{
		Sessions: sessions,
		Login:    login,
		Verifier: verifier,
		Catalog:  catalog,
		Backend:  deps.Backend,
		Metrics:  metrics,
	}, nil
}

// retryDelay keeps a configured zero meaning "no pause" rather than the service default.
func retryDelay(d time.Duration) time.Duration {
	if d == 0 {
		return -1
	}
	return d
}

// ServiceOrchestrationConfig contains what RunServicesWithShutdown needs.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
	// Signals overrides the shutdown signals; nil means SIGINT and SIGTERM.
	Signals []os.Signal
}

// RunServicesWithShutdown starts the HTTP server and the session manager and
// blocks until a shutdown signal arrives or one of them fails.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	signals := cfg.Signals
	if signals == nil {
		signals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}

	ctx, stop := signal.NotifyContext(ctx, signals...)
	defer stop()

	server := NewHTTPServer(&HTTPServerConfig{Config: cfg.Config, Services: cfg.Services, Logger: logger})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cfg.Services.Sessions.Start(gctx)
		return nil
	})
	g.Go(func() error {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down services...")
		// The parent context is already done; shutdown gets its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Config.HTTP.ShutdownTimeout)
		defer cancel()
		err := ShutdownHTTPServer(ShutdownConfig{
			Context:  shutdownCtx,
			Server:   server,
			Sessions: cfg.Services.Sessions,
			Logger:   logger,
		})
		return err
	})

	return g.Wait()
}
