package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/vv-events/dashboard/internal/domain/auth"
	"github.com/vv-events/dashboard/internal/domain/model"
)

// IdentityClient resolves the user behind a bearer token (GET /users/me).
type IdentityClient interface {
	Me(ctx context.Context, token string) (*model.User, error)
}

// Credentials are the interactive login inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is what the platform returns for a successful login.
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Authenticator exchanges credentials for a bearer token (POST /auth/authenticate).
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (AuthResult, error)
}

// BeginInput carries inputs for initiating an auth flow.
type BeginInput struct {
	RedirectURL string
}

// AuthProvider starts the platform's sign-in redirect and turns its callback into a bearer token.
type AuthProvider interface {
	// Begin returns the provider sign-in URL and an opaque state to echo back.
	Begin(ctx context.Context, in BeginInput) (authURL, state string, err error)

	// Exchange completes the flow after the caller has checked the state.
	// The platform either hands back a token directly or a code to redeem.
	Exchange(ctx context.Context, in ExchangeInput) (token string, err error)
}

// ExchangeInput groups the callback parameters.
type ExchangeInput struct {
	Code  string
	Token string
	State string
}

// RoleChecker decides whether a role may use the dashboard.
type RoleChecker interface {
	Allowed(role domainauth.Role) bool
}

// TokenInspector reads claims from a bearer token without verifying it.
// ok is false for opaque tokens.
type TokenInspector interface {
	Expiry(token string) (exp time.Time, ok bool)
}
