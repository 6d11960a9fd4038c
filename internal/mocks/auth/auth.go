package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	domainauth "github.com/vv-events/dashboard/internal/domain/auth"
	"github.com/vv-events/dashboard/internal/domain/model"
	apperrors "github.com/vv-events/dashboard/internal/errors"
	"github.com/vv-events/dashboard/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthProvider   = (*MockAuthProvider)(nil)
	_ ports.IdentityClient = (*StaticIdentity)(nil)
	_ ports.Authenticator  = (*StaticAuthenticator)(nil)
	_ ports.RoleChecker    = StaticRoleChecker{}
)

// MockAuthProvider simulates the platform's sign-in redirect with deterministic state handling.
type MockAuthProvider struct {
	BeginFunc    func(ctx context.Context, in ports.BeginInput) (authURL, state string, err error)
	ExchangeFunc func(ctx context.Context, in ports.ExchangeInput) (string, error)

	// Deterministic values for predictable testing
	AuthURL     string
	StatePrefix string
	// Token is returned by Exchange when the callback carries a code.
	Token string

	mu        sync.Mutex
	callCount int
}

// NewMockAuthProvider creates a MockAuthProvider with sensible defaults.
func NewMockAuthProvider() *MockAuthProvider {
	return &MockAuthProvider{
		AuthURL:     "https://mock-platform/oauth2/authorization/google",
		StatePrefix: "state",
		Token:       "mock-token",
	}
}

func (m *MockAuthProvider) Begin(ctx context.Context, in ports.BeginInput) (string, string, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx, in)
	}

	m.mu.Lock()
	m.callCount++
	n := m.callCount
	m.mu.Unlock()

	authURL := m.AuthURL
	if authURL == "" {
		authURL = "https://mock-platform/oauth2/authorization/google"
	}
	statePrefix := m.StatePrefix
	if statePrefix == "" {
		statePrefix = "state"
	}
	return authURL, fmt.Sprintf("%s-%d", statePrefix, n), nil
}

func (m *MockAuthProvider) Exchange(ctx context.Context, in ports.ExchangeInput) (string, error) {
	if m.ExchangeFunc != nil {
		return m.ExchangeFunc(ctx, in)
	}
	if in.Token != "" {
		return in.Token, nil
	}
	if in.Code == "" {
		return "", apperrors.Validation("code d'autorisation manquant")
	}
	if m.Token == "" {
		return "mock-token", nil
	}
	return m.Token, nil
}

// StaticIdentity answers /users/me from a token -> user table.
// Err, when set, is returned for every call; Delay blocks each call until it
// elapses or ctx is done.
type StaticIdentity struct {
	mu    sync.Mutex
	users map[string]*model.User
	err   error
	delay time.Duration
	calls atomic.Int64
}

// NewStaticIdentity creates an identity double with no known tokens.
func NewStaticIdentity() *StaticIdentity {
	return &StaticIdentity{users: make(map[string]*model.User)}
}

// Add registers the user returned for token.
func (s *StaticIdentity) Add(token string, user *model.User) *StaticIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[token] = user
	return s
}

// SetError makes every call fail with err (nil restores normal answers).
func (s *StaticIdentity) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// SetDelay makes every call wait d before answering.
func (s *StaticIdentity) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Calls returns how many times Me was invoked.
func (s *StaticIdentity) Calls() int64 { return s.calls.Load() }

func (s *StaticIdentity) Me(ctx context.Context, token string) (*model.User, error) {
	s.calls.Add(1)

	s.mu.Lock()
	delay, err := s.delay, s.err
	user, ok := s.users[token]
	s.mu.Unlock()

	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Unauthorized("jeton invalide")
	}
	cp := *user
	return &cp, nil
}

// StaticAuthenticator accepts a fixed set of accounts.
type StaticAuthenticator struct {
	// Accounts maps lower-cased email to the result of a successful login.
	Accounts map[string]ports.AuthResult
	// Passwords maps lower-cased email to the expected password.
	Passwords map[string]string
	Err       error

	calls atomic.Int64
}

// Calls returns how many times Authenticate was invoked.
func (s *StaticAuthenticator) Calls() int64 { return s.calls.Load() }

func (s *StaticAuthenticator) Authenticate(_ context.Context, creds ports.Credentials) (ports.AuthResult, error) {
	s.calls.Add(1)
	if s.Err != nil {
		return ports.AuthResult{}, s.Err
	}
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	res, ok := s.Accounts[email]
	if !ok || s.Passwords[email] != creds.Password {
		return ports.AuthResult{}, apperrors.Unauthorized("Email ou mot de passe incorrect")
	}
	return res, nil
}

// StaticRoleChecker allows the listed roles.
type StaticRoleChecker struct {
	Roles []domainauth.Role
}

func (c StaticRoleChecker) Allowed(role domainauth.Role) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
