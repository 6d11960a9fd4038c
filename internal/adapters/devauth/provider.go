package devauth

// Package devauth provides a simple, config-driven identity backend for local development.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/vv-events/dashboard/internal/domain/model"
	apperrors "github.com/vv-events/dashboard/internal/errors"
	"github.com/vv-events/dashboard/internal/ports"
)

// CallbackPath is where Begin sends the browser.
const CallbackPath = "/auth/oauth2/callback"

// Config controls the dev identity.
// Token, UserID and Email are required.
type Config struct {
	Token     string
	UserID    int64
	Email     string
	FirstName string
	LastName  string
	Role      string
	// Password is accepted by Authenticate; empty accepts any password.
	Password string
}

// Provider stands in for the platform when AUTH_MODE=mock.
// It implements ports.IdentityClient, ports.Authenticator and ports.AuthProvider:
// Begin short-circuits the OAuth handoff by redirecting straight to our own
// callback with the configured token.
type Provider struct {
	token    string
	password string
	user     model.User
}

var (
	_ ports.IdentityClient = (*Provider)(nil)
	_ ports.Authenticator  = (*Provider)(nil)
	_ ports.AuthProvider   = (*Provider)(nil)
)

// NewProvider constructs a dev auth provider from Config.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.Token == "" {
		return nil, errors.New("dev auth: Token is required")
	}
	if cfg.UserID <= 0 {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	role := cfg.Role
	if role == "" {
		role = "admin"
	}
	return &Provider{
		token:    cfg.Token,
		password: cfg.Password,
		user: model.User{
			ID:        cfg.UserID,
			FirstName: cfg.FirstName,
			LastName:  cfg.LastName,
			Email:     cfg.Email,
			Role:      strings.ToUpper(role),
		},
	}, nil
}

func (p *Provider) identity() *model.User {
	u := p.user
	return &u
}

// Me returns the dev user for the dev token and 401 otherwise.
func (p *Provider) Me(_ context.Context, token string) (*model.User, error) {
	if token != p.token {
		return nil, apperrors.Unauthorized("jeton invalide")
	}
	return p.identity(), nil
}

// Authenticate accepts the dev email (and password, when configured).
func (p *Provider) Authenticate(_ context.Context, creds ports.Credentials) (ports.AuthResult, error) {
	if !strings.EqualFold(strings.TrimSpace(creds.Email), p.user.Email) ||
		(p.password != "" && creds.Password != p.password) {
		return ports.AuthResult{}, apperrors.Unauthorized("Email ou mot de passe incorrect")
	}
	return ports.AuthResult{Token: p.token, User: p.identity()}, nil
}

// Begin returns a local callback URL carrying the dev token and a fresh state.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, error) {
	state, err := randomString(24)
	if err != nil {
		return "", "", fmt.Errorf("generate state: %w", err)
	}
	q := url.Values{}
	q.Set("state", state)
	q.Set("token", p.token)
	return CallbackPath + "?" + q.Encode(), state, nil
}

// Exchange ignores the code (state validation is handled by the handler) and returns the dev token.
func (p *Provider) Exchange(_ context.Context, in ports.ExchangeInput) (string, error) {
	if in.Token != "" && in.Token != p.token {
		return "", apperrors.Unauthorized("jeton invalide")
	}
	return p.token, nil
}

func randomString(n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	// Compute number of random bytes needed to produce at least n base64 URL chars
	b := make([]byte, (n*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < n {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:n], nil
}
