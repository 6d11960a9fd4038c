package httpx

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/vv-events/dashboard/internal/ports"
)

// defaultCookieMaxAge is the token cookie lifetime when none is configured.
const defaultCookieMaxAge = 7 * 24 * time.Hour

// CookieConfig describes the token cookie.
type CookieConfig struct {
	Name   string
	Domain string
	MaxAge time.Duration
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return DefaultTokenCookie
	}
	return c.Name
}

func (c CookieConfig) maxAge() time.Duration {
	if c.MaxAge <= 0 {
		return defaultCookieMaxAge
	}
	return c.MaxAge
}

// isSecureRequest reports whether the request reached us over TLS, directly or via a proxy.
func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// cookieParams groups the values needed to write one cookie.
type cookieParams struct {
	Name   string
	Value  string
	Domain string
	MaxAge time.Duration
}

func setCookie(w http.ResponseWriter, r *http.Request, p cookieParams) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.Name,
		Value:    p.Value,
		Path:     "/",
		Domain:   p.Domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(p.MaxAge / time.Second),
	})
}

// clearCookie expires a cookie, mirroring the attributes used to set it.
func clearCookie(w http.ResponseWriter, r *http.Request, name, domain string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// CookieTokenStore is the per-request TokenStore: it reads the token cookie
// (or an Authorization bearer header) and writes cookie changes to the response.
type CookieTokenStore struct {
	w   http.ResponseWriter
	r   *http.Request
	cfg CookieConfig

	mu      sync.Mutex
	changed bool
	token   string
}

var _ ports.TokenStore = (*CookieTokenStore)(nil)

// NewCookieTokenStore binds a token store to one request/response pair.
func NewCookieTokenStore(w http.ResponseWriter, r *http.Request, cfg CookieConfig) *CookieTokenStore {
	return &CookieTokenStore{w: w, r: r, cfg: cfg}
}

// Token returns the token written during this request, else the request's own.
func (s *CookieTokenStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.changed {
		return s.token, s.token != ""
	}
	if c, err := s.r.Cookie(s.cfg.name()); err == nil && strings.TrimSpace(c.Value) != "" {
		return strings.TrimSpace(c.Value), true
	}
	if tok, ok := bearerToken(s.r); ok {
		return tok, true
	}
	return "", false
}

// SetToken writes the token cookie. maxAge <= 0 uses the configured lifetime.
func (s *CookieTokenStore) SetToken(token string, maxAge time.Duration) {
	if maxAge <= 0 {
		maxAge = s.cfg.maxAge()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed, s.token = true, token
	setCookie(s.w, s.r, cookieParams{Name: s.cfg.name(), Value: token, Domain: s.cfg.Domain, MaxAge: maxAge})
}

// ClearToken expires the token cookie once per request.
func (s *CookieTokenStore) ClearToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.changed && s.token == "" {
		return
	}
	s.changed, s.token = true, ""
	clearCookie(s.w, s.r, s.cfg.name(), s.cfg.Domain)
}

// bearerToken extracts "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(h[len(prefix):])
	return tok, tok != ""
}
