package config

import "time"

// SessionConfig controls identity re-validation and the token cookie.
type SessionConfig struct {
	// IdentityTimeout bounds a single GET /users/me attempt.
	IdentityTimeout time.Duration `env:"IDENTITY_TIMEOUT" envDefault:"8s"`

	// RetryAttempts is the total number of identity attempts when no cached user is available.
	RetryAttempts int `env:"RETRY_ATTEMPTS" envDefault:"3"`

	// RetryDelay is the fixed pause between identity attempts.
	RetryDelay time.Duration `env:"RETRY_DELAY" envDefault:"2s"`

	// RevalidateInterval is how long a published session is trusted before the
	// next request triggers a background identity check. Zero disables periodic checks.
	RevalidateInterval time.Duration `env:"REVALIDATE_INTERVAL" envDefault:"5m"`

	// CookieName is the name of the bearer-token cookie.
	CookieName string `env:"COOKIE_NAME" envDefault:"token"`

	// CookieMaxAge is the token cookie lifetime; also the cache TTL.
	CookieMaxAge time.Duration `env:"COOKIE_MAX_AGE" envDefault:"168h"`
}

// Sanitize clamps values to workable ranges.
func (s *SessionConfig) Sanitize() {
	if s.IdentityTimeout <= 0 {
		s.IdentityTimeout = 8 * time.Second
	}
	if s.RetryAttempts < 1 {
		s.RetryAttempts = 1
	}
	if s.RetryAttempts > 10 {
		s.RetryAttempts = 10
	}
	if s.RetryDelay < 0 {
		s.RetryDelay = 0
	}
	if s.RevalidateInterval < 0 {
		s.RevalidateInterval = 0
	}
	if s.CookieName == "" {
		s.CookieName = "token"
	}
	if s.CookieMaxAge < time.Minute {
		s.CookieMaxAge = 7 * 24 * time.Hour
	}
}
