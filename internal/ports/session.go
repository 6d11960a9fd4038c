package ports

import (
	"context"
	"time"

	"github.com/vv-events/dashboard/internal/domain/model"
)

// PreferenceTheme is stored under the user's key rather than the session's,
// so it survives logout.
const PreferenceTheme = "theme"

// SessionCache stores the per-session user snapshot and preferences, keyed by
// the session key derived from the token.
type SessionCache interface {
	// GetUser returns nil, nil when no snapshot is cached.
	GetUser(ctx context.Context, key string) (*model.User, error)
	SaveUser(ctx context.Context, key string, user *model.User, ttl time.Duration) error
	// Clear removes every entry stored under key.
	Clear(ctx context.Context, key string) error
	GetPreference(ctx context.Context, key, name string) (value string, ok bool, err error)
	SetPreference(ctx context.Context, key, name, value string, ttl time.Duration) error
}

// CachedSession describes one cached session for operators.
type CachedSession struct {
	Key   string        `json:"key"`
	User  *model.User   `json:"user,omitempty"`
	TTL   time.Duration `json:"ttl"`
	Prefs []string      `json:"prefs,omitempty"`
}

// SessionAdmin is the operator view over the cache.
type SessionAdmin interface {
	ListSessions(ctx context.Context) ([]CachedSession, error)
	// ClearAll runs Clear on every cached session and returns how many were cleared.
	ClearAll(ctx context.Context) (int, error)
}

// TokenStore abstracts where the bearer token lives (a cookie for browsers,
// memory for the CLI).
type TokenStore interface {
	Token() (string, bool)
	SetToken(token string, maxAge time.Duration)
	ClearToken()
}
