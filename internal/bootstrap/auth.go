package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/vv-events/dashboard/config"
	"github.com/vv-events/dashboard/internal/adapters/devauth"
	"github.com/vv-events/dashboard/internal/adapters/oauth"
	"github.com/vv-events/dashboard/internal/adapters/platformapi"
	"github.com/vv-events/dashboard/internal/ports"
)

// AuthDeps contains configuration for the identity backends.
type AuthDeps struct {
	Auth     config.AuthConfig
	Platform *platformapi.Client
	Logger   *slog.Logger
}

// IdentityBackends are the ports the session and login services depend on.
type IdentityBackends struct {
	Identity      ports.IdentityClient
	Authenticator ports.Authenticator
	// Provider is nil when the OAuth2 handoff is not configured.
	Provider ports.AuthProvider
}

// BuildIdentity selects the identity backends for the configured auth mode.
func BuildIdentity(cfg AuthDeps) (IdentityBackends, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		return buildDevIdentity(cfg)
	case config.AuthModePlatform, "":
		return buildPlatformIdentity(cfg)
	default:
		return IdentityBackends{}, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}

func buildDevIdentity(cfg AuthDeps) (IdentityBackends, error) {
	dev := cfg.Auth.DevAuth
	prov, err := devauth.NewProvider(devauth.Config{
		Token:     dev.Token,
		UserID:    dev.UserID,
		Email:     dev.Email,
		FirstName: dev.FirstName,
		LastName:  dev.LastName,
		Role:      dev.Role,
	})
	if err != nil {
		return IdentityBackends{}, fmt.Errorf("dev auth provider: %w", err)
	}
	if cfg.Logger != nil {
		cfg.Logger.Warn("AUTH_MODE=mock: every login resolves to the dev identity", "email", dev.Email, "role", dev.Role)
	}
	return IdentityBackends{Identity: prov, Authenticator: prov, Provider: prov}, nil
}

func buildPlatformIdentity(cfg AuthDeps) (IdentityBackends, error) {
	if cfg.Platform == nil {
		return IdentityBackends{}, errors.New("platform client is required in platform auth mode")
	}
	backends := IdentityBackends{Identity: cfg.Platform, Authenticator: cfg.Platform}

	o := cfg.Auth.OAuth
	if !o.Enabled() {
		if cfg.Logger != nil {
			cfg.Logger.Info("oauth2 sign-in disabled: OAUTH_AUTH_URL not set")
		}
		return backends, nil
	}
	prov, err := oauth.NewProvider(oauth.ProviderConfig{
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		AuthURL:      o.AuthURL,
		TokenURL:     o.TokenURL,
		RedirectURL:  o.RedirectURL,
		Scope:        o.Scope,
	})
	if err != nil {
		// A half-configured handoff keeps password login available.
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create oauth2 provider, google sign-in disabled", "error", err)
		}
		return backends, nil
	}
	backends.Provider = prov
	return backends, nil
}
