package config

import (
	"fmt"
	"strings"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModePlatform authenticates against the remote platform API
	// (password login and the platform's Google sign-in handoff).
	AuthModePlatform AuthMode = "platform"
	// AuthModeMock uses a fixed dev identity (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "platform", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: platform, mock)", v)
	}
}

// OAuthConfig describes the platform's OAuth2 sign-in entry point.
// The platform runs the Google exchange itself and hands back either a
// bearer token directly or an authorization code for TokenURL.
type OAuthConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"vv-dashboard"`
	ClientSecret string `env:"CLIENT_SECRET"`
	AuthURL      string `env:"AUTH_URL"`
	TokenURL     string `env:"TOKEN_URL"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/oauth2/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
}

// Enabled reports whether the OAuth2 handoff is configured.
func (o OAuthConfig) Enabled() bool {
	return o.AuthURL != ""
}

// DevAuthConfig controls the mock identity.
// Used when AUTH_MODE=mock for development and testing.
type DevAuthConfig struct {
	Token     string `env:"TOKEN"      envDefault:"dev-token"`
	UserID    int64  `env:"USER_ID"    envDefault:"1"`
	Email     string `env:"EMAIL"      envDefault:"dev@example.com"`
	FirstName string `env:"FIRST_NAME" envDefault:"Dev"`
	LastName  string `env:"LAST_NAME"  envDefault:"User"`
	Role      string `env:"ROLE"       envDefault:"admin"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity backend to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"platform"`

	// AllowedRoles lists the roles permitted to use the dashboard.
	// Compared case-insensitively.
	AllowedRoles []string `env:"AUTH_ALLOWED_ROLES" envDefault:"admin,organizer" envSeparator:","`

	// LoginPath is where unauthenticated browsers are sent.
	LoginPath string `env:"AUTH_LOGIN_PATH" envDefault:"/login"`

	// OAuth configuration (used when Mode=platform).
	OAuth OAuthConfig `envPrefix:"OAUTH_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}

// Sanitize normalises role names and fills the login path.
func (a *AuthConfig) Sanitize() {
	roles := make([]string, 0, len(a.AllowedRoles))
	seen := make(map[string]struct{}, len(a.AllowedRoles))
	for _, r := range a.AllowedRoles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		roles = append(roles, r)
	}
	a.AllowedRoles = roles

	if a.LoginPath = strings.TrimSpace(a.LoginPath); !strings.HasPrefix(a.LoginPath, "/") {
		a.LoginPath = "/login"
	}
	a.OAuth.AuthURL = strings.TrimSpace(a.OAuth.AuthURL)
	a.OAuth.TokenURL = strings.TrimSpace(a.OAuth.TokenURL)
}
