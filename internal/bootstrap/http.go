package bootstrap

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/vv-events/dashboard/config"
	httpx "github.com/vv-events/dashboard/internal/http"
	"github.com/vv-events/dashboard/internal/service"
)

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// NewHTTPServer builds the dashboard server without starting it.
func NewHTTPServer(cfg *HTTPServerConfig) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	services := httpx.RouterServices{
		Sessions: cfg.Services.Sessions,
		Login:    cfg.Services.Login,
		Verifier: cfg.Services.Verifier,
		Catalog:  cfg.Services.Catalog,
		Cookies: httpx.CookieConfig{
			Name:   appCfg.Session.CookieName,
			Domain: appCfg.HTTP.CookieDomain,
			MaxAge: appCfg.Session.CookieMaxAge,
		},
		Ready:  cfg.Services.Backend.Ready,
		Logger: logger,
	}

	addr := appCfg.HTTP.Addr
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr: addr,
		Handler: buildHTTPHandler(httpHandlerConfig{
			Logger:   logger,
			Services: services,
			HTTP:     appCfg.HTTP,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       appCfg.HTTP.ReadTimeout,
		WriteTimeout:      appCfg.HTTP.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
}

type httpHandlerConfig struct {
	Logger   *slog.Logger
	Services httpx.RouterServices
	HTTP     config.HTTPConfig
}

func buildHTTPHandler(cfg httpHandlerConfig) http.Handler {
	router := httpx.NewRouter(cfg.Services)

	// Order: Recover -> Logging -> Compression -> Router
	h := router
	if cfg.HTTP.CompressionEnabled {
		cfg.Logger.Info("HTTP compression enabled", "level", cfg.HTTP.CompressionLevel)
		h = httpx.Compression(httpx.CompressionConfig{Level: cfg.HTTP.CompressionLevel, Logger: cfg.Logger})(h)
	}

	h = httpx.Logging(cfg.Logger)(h)
	h = httpx.Recover(cfg.Logger)(h)

	return h
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Context  context.Context
	Server   *http.Server
	Sessions *service.SessionManager
	Logger   *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server, then cancels
// in-flight identity checks.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	err := cfg.Server.Shutdown(ctx)

	if cfg.Sessions != nil {
		cfg.Sessions.Close()
	}
	if err != nil {
		return err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}

	return nil
}
