package httpx

import (
	"context"

	domainauth "github.com/vv-events/dashboard/internal/domain/auth"
	"github.com/vv-events/dashboard/internal/ports"
)

// sessionKey is an unexported context key type to avoid collisions across packages.
type sessionKey struct{}

// tokensKey carries the per-request token store.
type tokensKey struct{}

// SetSessionInContext returns a child context that carries the given session.
// Signed-out states are not stored.
func SetSessionInContext(ctx context.Context, state domainauth.SessionState) context.Context {
	if !state.IsAuthenticated {
		return ctx
	}
	return context.WithValue(ctx, sessionKey{}, state)
}

// GetSessionFromContext returns the session and whether one is present.
func GetSessionFromContext(ctx context.Context) (domainauth.SessionState, bool) {
	state, ok := ctx.Value(sessionKey{}).(domainauth.SessionState)
	return state, ok && state.IsAuthenticated
}

// SessionToken returns the bearer token of the request session.
func SessionToken(ctx context.Context) string {
	if state, ok := GetSessionFromContext(ctx); ok {
		return state.Token
	}
	return ""
}

// SetTokensInContext attaches the request's token store.
func SetTokensInContext(ctx context.Context, tokens ports.TokenStore) context.Context {
	if tokens == nil {
		return ctx
	}
	return context.WithValue(ctx, tokensKey{}, tokens)
}

// TokensFromContext returns the request's token store, if any.
func TokensFromContext(ctx context.Context) (ports.TokenStore, bool) {
	t, ok := ctx.Value(tokensKey{}).(ports.TokenStore)
	return t, ok && t != nil
}
