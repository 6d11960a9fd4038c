package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/vv-events/dashboard/internal/errors"
	"github.com/vv-events/dashboard/internal/observability/metrics"
	"github.com/vv-events/dashboard/internal/observability/statsd"
	"github.com/vv-events/dashboard/internal/ports"
	"github.com/vv-events/dashboard/internal/validation"
)

// Login methods used for metric tags.
const (
	LoginMethodPassword = "password"
	LoginMethodOAuth    = "oauth2"
)

// LoginServiceOptions groups dependencies for LoginService.
type LoginServiceOptions struct {
	Authenticator ports.Authenticator
	Provider      ports.AuthProvider // optional; nil disables the OAuth2 handoff
	Sessions      *SessionManager
	Metrics       statsd.Sink
	Logger        *slog.Logger
}

// LoginService turns credentials or an OAuth2 callback into a stored session.
type LoginService struct {
	authenticator ports.Authenticator
	provider      ports.AuthProvider
	sessions      *SessionManager
	metrics       statsd.Sink
	logger        *slog.Logger
}

// ErrOAuthDisabled is returned by the OAuth2 operations when no provider is configured.
var ErrOAuthDisabled = apperrors.NotFound("connexion Google non configurée")

// NewLoginService constructs a new LoginService.
func NewLoginService(opts LoginServiceOptions) (*LoginService, error) {
	if opts.Authenticator == nil {
		return nil, errors.New("authenticator is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("session manager is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginService{
		authenticator: opts.Authenticator,
		provider:      opts.Provider,
		sessions:      opts.Sessions,
		metrics:       opts.Metrics,
		logger:        logger.With("component", "login"),
	}, nil
}

// OAuthEnabled reports whether the OAuth2 handoff is available.
func (s *LoginService) OAuthEnabled() bool { return s.provider != nil }

// LoginInput groups the interactive login form.
type LoginInput struct {
	Credentials ports.Credentials
	RedirectURL string
}

// Login authenticates credentials against the platform and installs the session.
// Missing fields are rejected before any network call.
func (s *LoginService) Login(ctx context.Context, tokens ports.TokenStore, in LoginInput) (StoreAuthResult, error) {
	creds := ports.Credentials{
		Email:    strings.TrimSpace(in.Credentials.Email),
		Password: in.Credentials.Password,
	}
	fv := validation.New().
		Validate("email", creds.Email, validation.Required("Email", 255), validation.Email("Email")).
		Validate("password", creds.Password, validation.Required("Mot de passe", 1024))
	if field, msg := fv.First(); field != "" {
		return StoreAuthResult{}, apperrors.ValidationField(field, msg)
	}

	res, err := s.authenticator.Authenticate(ctx, creds)
	if err != nil {
		metrics.EmitLogin(s.metrics, LoginMethodPassword, err)
		s.logger.InfoContext(ctx, "login failed", "error", err)
		return StoreAuthResult{}, err
	}

	out, err := s.sessions.StoreAuthAndRedirect(ctx, tokens, StoreAuthInput{
		Token:       res.Token,
		User:        res.User,
		RedirectURL: in.RedirectURL,
		Welcome:     true,
	})
	metrics.EmitLogin(s.metrics, LoginMethodPassword, err)
	if err != nil {
		return StoreAuthResult{}, err
	}
	return out, nil
}

// BeginLoginResult contains the result of beginning an OAuth2 login.
type BeginLoginResult struct {
	AuthURL string
	State   string
}

// BeginOAuth returns the platform sign-in URL and the state the callback must echo.
func (s *LoginService) BeginOAuth(ctx context.Context, redirectURL string) (*BeginLoginResult, error) {
	if s.provider == nil {
		return nil, ErrOAuthDisabled
	}
	authURL, state, err := s.provider.Begin(ctx, ports.BeginInput{RedirectURL: SanitizeRedirect(redirectURL)})
	if err != nil {
		return nil, fmt.Errorf("begin auth flow: %w", err)
	}
	return &BeginLoginResult{AuthURL: authURL, State: state}, nil
}

// CompleteLoginInput groups the OAuth2 callback parameters.
type CompleteLoginInput struct {
	Code  string
	Token string
	State string
	// ExpectedState is the value stored when the flow began.
	ExpectedState string
	RedirectURL   string
}

// CompleteOAuth checks the state, obtains the platform token and installs the session.
func (s *LoginService) CompleteOAuth(ctx context.Context, tokens ports.TokenStore, in CompleteLoginInput) (StoreAuthResult, error) {
	if s.provider == nil {
		return StoreAuthResult{}, ErrOAuthDisabled
	}
	if in.State == "" || in.ExpectedState == "" ||
		subtle.ConstantTimeCompare([]byte(in.State), []byte(in.ExpectedState)) != 1 {
		return StoreAuthResult{}, apperrors.ValidationField("state", "état de connexion invalide")
	}
	if in.Code == "" && in.Token == "" {
		return StoreAuthResult{}, apperrors.ValidationField("code", "code d'autorisation manquant")
	}

	token, err := s.provider.Exchange(ctx, ports.ExchangeInput{Code: in.Code, Token: in.Token, State: in.State})
	if err != nil {
		metrics.EmitLogin(s.metrics, LoginMethodOAuth, err)
		return StoreAuthResult{}, fmt.Errorf("exchange authorization code: %w", err)
	}

	out, err := s.sessions.StoreAuthAndRedirect(ctx, tokens, StoreAuthInput{
		Token:       token,
		RedirectURL: in.RedirectURL,
		Welcome:     true,
	})
	metrics.EmitLogin(s.metrics, LoginMethodOAuth, err)
	if err != nil {
		return StoreAuthResult{}, err
	}
	return out, nil
}
