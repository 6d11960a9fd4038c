package oauth

// Package oauth starts the platform's Google sign-in handoff and redeems its callback.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/vv-events/dashboard/internal/ports"
)

var _ ports.AuthProvider = (*Provider)(nil)

// Provider implements ports.AuthProvider with a plain OAuth2 authorization-code flow.
// The platform performs the Google exchange itself; its callback carries either
// a ready bearer token or a code redeemable at TokenURL.
type Provider struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// ProviderConfig holds the platform OAuth2 endpoints.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
	Scope        string
	HTTPClient   *http.Client // Optional, defaults to a 30s client
}

// NewProvider validates cfg and builds a Provider.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.AuthURL == "" {
		return nil, errors.New("auth URL is required")
	}
	if cfg.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       strings.Fields(cfg.Scope),
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		httpClient: httpClient,
	}, nil
}

func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, error) {
	if in.RedirectURL == "" {
		return "", "", errors.New("redirect URL is required")
	}

	state := uuid.NewString()
	// redirect_uri must match the configured callback exactly; the post-login
	// target travels in a cookie instead.
	authURL := p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("response_type", "code"),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	return authURL, state, nil
}

func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (string, error) {
	if in.State == "" {
		return "", errors.New("state is required")
	}
	if token := strings.TrimSpace(in.Token); token != "" {
		return token, nil
	}
	if in.Code == "" {
		return "", errors.New("authorization code or token is required")
	}
	if p.config.Endpoint.TokenURL == "" {
		return "", errors.New("token URL is not configured")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return "", fmt.Errorf("exchange code for token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", errors.New("token response carried no access token")
	}
	return tok.AccessToken, nil
}
