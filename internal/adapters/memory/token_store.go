package memory

import (
	"sync"
	"time"

	"github.com/vv-events/dashboard/internal/ports"
)

var _ ports.TokenStore = (*TokenStore)(nil)

// TokenStore keeps a bearer token in memory, honoring max-age.
type TokenStore struct {
	mu     sync.Mutex
	token  string
	expiry time.Time
	now    func() time.Time
}

// NewTokenStore returns a store seeded with token (which may be empty).
func NewTokenStore(token string) *TokenStore {
	return &TokenStore{token: token, now: time.Now}
}

func (s *TokenStore) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return "", false
	}
	if !s.expiry.IsZero() && !s.now().Before(s.expiry) {
		s.token, s.expiry = "", time.Time{}
		return "", false
	}
	return s.token, true
}

func (s *TokenStore) SetToken(token string, maxAge time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expiry = time.Time{}
	if maxAge > 0 {
		s.expiry = s.now().Add(maxAge)
	}
}

func (s *TokenStore) ClearToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.expiry = "", time.Time{}
}
