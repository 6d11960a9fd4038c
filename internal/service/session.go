package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	domainauth "github.com/vv-events/dashboard/internal/domain/auth"
	"github.com/vv-events/dashboard/internal/domain/model"
	apperrors "github.com/vv-events/dashboard/internal/errors"
	"github.com/vv-events/dashboard/internal/observability/metrics"
	"github.com/vv-events/dashboard/internal/observability/statsd"
	"github.com/vv-events/dashboard/internal/ports"
	"github.com/vv-events/dashboard/internal/retry"
)

// Session defaults.
const (
	DefaultIdentityTimeout = 8 * time.Second
	DefaultRetryAttempts   = 3
	DefaultRetryDelay      = 2 * time.Second
	DefaultSessionTTL      = 7 * 24 * time.Hour
	DefaultLoginPath       = "/login"
	// ThemeTTL bounds how long a user's theme is remembered after it was last set.
	ThemeTTL = 180 * 24 * time.Hour
)

// MsgRoleDenied is returned when a login carries a role outside the allow-list.
const MsgRoleDenied = "Accès refusé : compte non autorisé"

// SessionManagerOptions groups dependencies and tunables for SessionManager.
type SessionManagerOptions struct {
	Identity  ports.IdentityClient
	Cache     ports.SessionCache
	Roles     ports.RoleChecker
	Inspector ports.TokenInspector // optional
	Bus       *SessionBus          // optional, a private bus is created when nil
	Metrics   statsd.Sink          // optional
	Logger    *slog.Logger         // optional

	IdentityTimeout time.Duration
	RetryAttempts   int
	// RetryDelay zero means DefaultRetryDelay; negative retries immediately.
	RetryDelay time.Duration
	// RevalidateInterval is how long a published session is served without a
	// background re-check. Zero re-checks only on auth-refresh.
	RevalidateInterval time.Duration
	// SessionTTL bounds the token cookie and the cached snapshot.
	SessionTTL time.Duration
	LoginPath  string

	Now func() time.Time
}

// sessionEntry is the in-memory record of one session key.
type sessionEntry struct {
	token     string
	state     domainauth.SessionState
	gen       uint64
	cancel    context.CancelFunc
	running   chan struct{}
	checkedAt time.Time
}

// SessionManager owns every session mutation: identity checks, login, logout.
// Each session key has a generation counter; starting a check bumps it and
// cancels the previous check, and only the current generation may publish.
type SessionManager struct {
	identity  ports.IdentityClient
	cache     ports.SessionCache
	roles     ports.RoleChecker
	inspector ports.TokenInspector
	bus       *SessionBus
	metrics   statsd.Sink
	logger    *slog.Logger

	identityTimeout    time.Duration
	policy             retry.Policy
	revalidateInterval time.Duration
	sessionTTL         time.Duration
	loginPath          string
	now                func() time.Time

	baseCtx    context.Context
	baseCancel context.CancelFunc
	flight     singleflight.Group

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

// NewSessionManager validates options and applies defaults.
func NewSessionManager(opts SessionManagerOptions) (*SessionManager, error) {
	if opts.Identity == nil {
		return nil, errors.New("identity client is required")
	}
	if opts.Cache == nil {
		return nil, errors.New("session cache is required")
	}
	if opts.Roles == nil {
		return nil, errors.New("role checker is required")
	}

	m := &SessionManager{
		identity:           opts.Identity,
		cache:              opts.Cache,
		roles:              opts.Roles,
		inspector:          opts.Inspector,
		bus:                opts.Bus,
		metrics:            opts.Metrics,
		logger:             opts.Logger,
		identityTimeout:    opts.IdentityTimeout,
		revalidateInterval: opts.RevalidateInterval,
		sessionTTL:         opts.SessionTTL,
		loginPath:          opts.LoginPath,
		now:                opts.Now,
		entries:            make(map[string]*sessionEntry),
	}
	if m.bus == nil {
		m.bus = NewSessionBus()
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.logger = m.logger.With("component", "session")
	if m.identityTimeout <= 0 {
		m.identityTimeout = DefaultIdentityTimeout
	}
	if m.sessionTTL <= 0 {
		m.sessionTTL = DefaultSessionTTL
	}
	if m.loginPath == "" {
		m.loginPath = DefaultLoginPath
	}
	if m.now == nil {
		m.now = time.Now
	}

	attempts := opts.RetryAttempts
	if attempts <= 0 {
		attempts = DefaultRetryAttempts
	}
	delay := opts.RetryDelay
	switch {
	case delay == 0:
		delay = DefaultRetryDelay
	case delay < 0:
		delay = 0
	}
	m.policy = retry.Policy{
		Attempts:  attempts,
		Delay:     delay,
		Retryable: func(err error) bool { return !identityRejected(err) },
	}

	m.baseCtx, m.baseCancel = context.WithCancel(context.Background())
	return m, nil
}

// Bus exposes the session event bus.
func (m *SessionManager) Bus() *SessionBus { return m.bus }

// LoginPath is where signed-out browsers are sent.
func (m *SessionManager) LoginPath() string { return m.loginPath }

// SessionTTL is the token cookie lifetime.
func (m *SessionManager) SessionTTL() time.Duration { return m.sessionTTL }

// identityRejected reports whether the platform refused the token itself, as
// opposed to failing to answer.
func identityRejected(err error) bool {
	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeUnauthorized, apperrors.ErrCodeForbidden,
		apperrors.ErrCodeNotFound, apperrors.ErrCodeValidation, apperrors.ErrCodeConflict:
		return true
	default:
		return false
	}
}

func shortKey(key string) string {
	if len(key) > 8 {
		return key[:8]
	}
	return key
}

// GetToken reads the bearer token. It never fails.
func (m *SessionManager) GetToken(tokens ports.TokenStore) (string, bool) {
	if tokens == nil {
		return "", false
	}
	token, ok := tokens.Token()
	token = strings.TrimSpace(token)
	return token, ok && token != ""
}

// begin opens a new generation for key, cancelling whichever check was running.
func (m *SessionManager) begin(parent context.Context, key, token string) (context.Context, uint64, func()) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(m.baseCtx, cancel)
	running := make(chan struct{})

	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &sessionEntry{}
		m.entries[key] = e
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.gen++
	gen := e.gen
	e.cancel = cancel
	e.running = running
	e.token = token
	m.mu.Unlock()

	done := func() {
		stop()
		cancel()
		m.mu.Lock()
		if cur, ok := m.entries[key]; ok && cur.gen == gen {
			cur.cancel = nil
		}
		m.mu.Unlock()
		close(running)
	}
	return ctx, gen, done
}

// current reports whether gen is still the live generation for key.
func (m *SessionManager) current(key string, gen uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	return ok && e.gen == gen
}

// publish records state for key if gen is still current and announces it.
func (m *SessionManager) publish(key string, gen uint64, state domainauth.SessionState) bool {
	now := m.now()
	state.CheckedAt = now

	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok || e.gen != gen {
		m.mu.Unlock()
		return false
	}
	e.state = state
	e.checkedAt = now
	m.mu.Unlock()

	m.bus.Publish(SessionEvent{Kind: EventStateChanged, Key: key, State: state})
	return true
}

// snapshot returns the published state for key.
func (m *SessionManager) snapshot(key string) (domainauth.SessionState, time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || e.gen == 0 || e.checkedAt.IsZero() {
		return domainauth.SessionState{}, time.Time{}, false
	}
	return e.state, e.checkedAt, true
}

// cachedUser returns the cached snapshot when it still carries an allowed role.
func (m *SessionManager) cachedUser(ctx context.Context, key string) *model.User {
	u, err := m.cache.GetUser(ctx, key)
	if err != nil {
		m.logger.WarnContext(ctx, "read cached user", "session", shortKey(key), "error", err)
		return nil
	}
	if u == nil || !m.roles.Allowed(domainauth.RoleOf(u)) {
		return nil
	}
	return u
}

func (m *SessionManager) tokenExpired(token string) bool {
	if m.inspector == nil {
		return false
	}
	exp, ok := m.inspector.Expiry(token)
	return ok && !m.now().Before(exp)
}

// CheckAuth re-validates the session behind the caller's token and returns
// the resulting state. A superseded check returns whatever the newer one
// published and changes nothing.
func (m *SessionManager) CheckAuth(ctx context.Context, tokens ports.TokenStore) domainauth.SessionState {
	state, _ := m.check(ctx, tokens)
	return state
}

// check is CheckAuth that also reports whether a newer check took over.
func (m *SessionManager) check(ctx context.Context, tokens ports.TokenStore) (domainauth.SessionState, bool) {
	token, ok := m.GetToken(tokens)
	if !ok {
		state := domainauth.Unauthenticated(domainauth.ReasonNoToken)
		state.CheckedAt = m.now()
		m.bus.Publish(SessionEvent{Kind: EventStateChanged, State: state})
		return state, false
	}

	key := domainauth.SessionKey(token)
	checkCtx, gen, done := m.begin(ctx, key, token)
	defer done()
	start := m.now()

	if m.tokenExpired(token) {
		metrics.EmitSessionCheck(m.metrics, metrics.SessionCheckMetric{Result: metrics.ResultDenied})
		return m.hardFail(checkCtx, tokens, key, gen, domainauth.ReasonTokenExpired)
	}

	cached := m.cachedUser(checkCtx, key)
	if cached != nil {
		optimistic := domainauth.Authenticated(token, cached, true)
		optimistic.Loading = true
		m.publish(key, gen, optimistic)
	}

	policy := m.policy
	if cached != nil {
		// with a cache, transient failures degrade instead of retrying
		policy.Attempts = 1
	}
	policy.OnRetry = func(attempt int, err error) {
		m.logger.InfoContext(checkCtx, "identity check failed, retrying",
			"session", shortKey(key), "attempt", attempt, "error", err)
	}

	var (
		user     *model.User
		attempts int
	)
	err := policy.Do(checkCtx, func(ctx context.Context, attempt int) error {
		attempts = attempt
		attemptCtx, cancel := context.WithTimeout(ctx, m.identityTimeout)
		defer cancel()

		u, err := m.identity.Me(attemptCtx, token)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(err)
			}
			if ctxErr := apperrors.FromContext(err, "identity check"); ctxErr != nil && apperrors.GetCode(err) == "" {
				err = ctxErr
			}
			return err
		}
		user = u
		return nil
	})

	elapsed := m.now().Sub(start)
	if checkCtx.Err() != nil || !m.current(key, gen) {
		metrics.EmitSessionCheck(m.metrics, metrics.SessionCheckMetric{Result: metrics.ResultStale, Attempts: attempts, Duration: elapsed})
		return m.superseded(key)
	}

	switch {
	case err == nil && !m.roles.Allowed(domainauth.RoleOf(user)):
		m.logger.WarnContext(ctx, "identity role not allowed", "session", shortKey(key), "role", user.Role)
		metrics.EmitSessionCheck(m.metrics, metrics.SessionCheckMetric{Result: metrics.ResultDenied, Attempts: attempts, Duration: elapsed})
		return m.hardFail(checkCtx, tokens, key, gen, domainauth.ReasonRoleDenied)

	case err == nil:
		if saveErr := m.cache.SaveUser(checkCtx, key, user, m.sessionTTL); saveErr != nil {
			m.logger.WarnContext(ctx, "cache user snapshot", "session", shortKey(key), "error", saveErr)
		}
		if !m.publish(key, gen, domainauth.Authenticated(token, user, false)) {
			return m.superseded(key)
		}
		metrics.EmitSessionCheck(m.metrics, metrics.SessionCheckMetric{Result: metrics.ResultSuccess, Attempts: attempts, Duration: elapsed})
		return m.stamped(key), false

	case identityRejected(err):
		m.logger.InfoContext(ctx, "identity rejected token", "session", shortKey(key), "error", err)
		metrics.EmitSessionCheck(m.metrics, metrics.SessionCheckMetric{Result: metrics.ResultDenied, Attempts: attempts, Duration: elapsed, Err: err})
		return m.hardFail(checkCtx, tokens, key, gen, domainauth.ReasonUnauthorized)

	case cached != nil:
		m.logger.WarnContext(ctx, "identity unreachable, keeping cached session", "session", shortKey(key), "error", err)
		state := domainauth.Authenticated(token, cached, true)
		state.Degraded = true
		if !m.publish(key, gen, state) {
			return m.superseded(key)
		}
		metrics.EmitSessionCheck(m.metrics, metrics.SessionCheckMetric{Result: metrics.ResultDegraded, Attempts: attempts, Duration: elapsed, Err: err})
		return m.stamped(key), false

	default:
		m.logger.WarnContext(ctx, "identity unreachable, signing out", "session", shortKey(key), "attempts", attempts, "error", err)
		metrics.EmitSessionCheck(m.metrics, metrics.SessionCheckMetric{Result: metrics.ResultError, Attempts: attempts, Duration: elapsed, Err: err})
		return m.hardFail(checkCtx, tokens, key, gen, domainauth.ReasonUnreachable)
	}
}

// stamped returns the published state (with CheckedAt) for key.
func (m *SessionManager) stamped(key string) domainauth.SessionState {
	state, _, _ := m.snapshot(key)
	return state
}

// superseded is the result of a check that lost to a newer one.
func (m *SessionManager) superseded(key string) (domainauth.SessionState, bool) {
	return m.stamped(key), true
}

// settled waits until no check is running for key and returns what the last
// one published. ok is false when ctx ends first.
func (m *SessionManager) settled(ctx context.Context, key string) (domainauth.SessionState, bool) {
	for {
		var wait chan struct{}
		m.mu.Lock()
		if e, ok := m.entries[key]; ok && e.cancel != nil {
			wait = e.running
		}
		m.mu.Unlock()
		if wait == nil {
			return m.stamped(key), true
		}
		select {
		case <-wait:
		case <-ctx.Done():
			return domainauth.SessionState{}, false
		}
	}
}

// hardFail clears everything the session owns and publishes it signed out.
func (m *SessionManager) hardFail(ctx context.Context, tokens ports.TokenStore, key string, gen uint64, reason domainauth.Reason) (domainauth.SessionState, bool) {
	if !m.current(key, gen) {
		return m.superseded(key)
	}
	// the cache must be cleared even when the request that triggered the check is gone
	if err := m.cache.Clear(context.WithoutCancel(ctx), key); err != nil {
		m.logger.WarnContext(ctx, "clear session cache", "session", shortKey(key), "error", err)
	}
	if !m.publish(key, gen, domainauth.Unauthenticated(reason)) {
		return m.superseded(key)
	}
	tokens.ClearToken()
	return m.stamped(key), false
}

// Session is the request-path read. A fresh published state answers directly;
// a stale one answers directly while a background check runs; an unknown
// session is served from cache (with a background check) or checked inline.
func (m *SessionManager) Session(ctx context.Context, tokens ports.TokenStore) domainauth.SessionState {
	token, ok := m.GetToken(tokens)
	if !ok {
		return domainauth.Unauthenticated(domainauth.ReasonNoToken)
	}
	key := domainauth.SessionKey(token)

	if state, checkedAt, known := m.snapshot(key); known {
		switch {
		case state.IsAuthenticated:
			if m.revalidateInterval > 0 && m.now().Sub(checkedAt) >= m.revalidateInterval {
				m.revalidate(token)
			}
			return state
		case state.Reason == domainauth.ReasonUnreachable:
			// the platform may be back; fall through to an inline check
		default:
			tokens.ClearToken()
			return state
		}
	} else if cached := m.cachedUser(ctx, key); cached != nil {
		m.revalidate(token)
		state := domainauth.Authenticated(token, cached, true)
		state.Loading = true
		return state
	}

	v, _, _ := m.flight.Do("check:"+key, func() (any, error) {
		state, superseded := m.check(context.WithoutCancel(ctx), tokens)
		return checkOutcome{state: state, superseded: superseded}, nil
	})
	out, _ := v.(checkOutcome)
	state := out.state
	if out.superseded {
		// a newer check owns the session now; answer with its result
		var ok bool
		if state, ok = m.settled(ctx, key); !ok {
			return domainauth.SessionState{Loading: true}
		}
	}
	if !state.IsAuthenticated && state.Reason != domainauth.ReasonNone {
		tokens.ClearToken()
	}
	return state
}

type checkOutcome struct {
	state      domainauth.SessionState
	superseded bool
}

// revalidate runs a background check for token unless one is already running.
func (m *SessionManager) revalidate(token string) {
	if m.baseCtx.Err() != nil {
		return
	}
	key := domainauth.SessionKey(token)
	m.flight.DoChan("bg:"+key, func() (any, error) {
		return m.CheckAuth(m.baseCtx, detachedToken(token)), nil
	})
}

// detachedToken is the token store used by background checks: there is no
// response to clear a cookie on, so the next request sees the published state.
type detachedToken string

func (t detachedToken) Token() (string, bool) { return string(t), t != "" }

func (detachedToken) SetToken(string, time.Duration) {}

func (detachedToken) ClearToken() {}

// StoreAuthInput is the result of an interactive login or OAuth callback.
type StoreAuthInput struct {
	Token string
	// User may be nil; it is then resolved through the identity endpoint.
	User        *model.User
	RedirectURL string
	Welcome     bool
}

// StoreAuthResult tells the caller where to go next.
type StoreAuthResult struct {
	State      domainauth.SessionState
	RedirectTo string
	Welcome    string
}

// StoreAuthAndRedirect installs a new session: it checks the role, drops the
// previous session, writes the token and user snapshot, publishes the new
// state, and broadcasts auth-refresh.
func (m *SessionManager) StoreAuthAndRedirect(ctx context.Context, tokens ports.TokenStore, in StoreAuthInput) (StoreAuthResult, error) {
	token := strings.TrimSpace(in.Token)
	if token == "" {
		return StoreAuthResult{}, apperrors.ValidationField("token", "jeton manquant")
	}

	user := in.User
	if user == nil {
		lookupCtx, cancel := context.WithTimeout(ctx, m.identityTimeout)
		u, err := m.identity.Me(lookupCtx, token)
		cancel()
		if err != nil {
			return StoreAuthResult{}, fmt.Errorf("resolve user: %w", err)
		}
		user = u
	}
	if !m.roles.Allowed(domainauth.RoleOf(user)) {
		return StoreAuthResult{}, apperrors.Forbidden(MsgRoleDenied)
	}

	ttl := m.sessionTTL
	if m.inspector != nil {
		if exp, ok := m.inspector.Expiry(token); ok {
			until := exp.Sub(m.now())
			if until <= 0 {
				return StoreAuthResult{}, apperrors.Unauthorized("jeton expiré")
			}
			ttl = min(ttl, until)
		}
	}

	key := domainauth.SessionKey(token)
	if prev, ok := m.GetToken(tokens); ok && prev != token {
		m.forget(ctx, domainauth.SessionKey(prev))
	}

	tokens.SetToken(token, ttl)
	if err := m.cache.SaveUser(ctx, key, user, ttl); err != nil {
		m.logger.WarnContext(ctx, "cache user snapshot", "session", shortKey(key), "error", err)
	}

	_, gen, done := m.begin(ctx, key, token)
	m.publish(key, gen, domainauth.Authenticated(token, user, false))
	done()
	m.bus.Publish(SessionEvent{Kind: EventAuthRefresh, Key: key})

	state, _, ok := m.snapshot(key)
	if !ok {
		state = domainauth.Authenticated(token, user, false)
	}
	res := StoreAuthResult{
		State:      state,
		RedirectTo: SanitizeRedirect(in.RedirectURL),
	}
	if in.Welcome {
		res.Welcome = fmt.Sprintf("Bienvenue, %s !", user.DisplayName())
	}
	m.logger.InfoContext(ctx, "session stored", "session", shortKey(key), "user_id", user.ResolvedID(), "role", user.Role)
	return res, nil
}

// forget cancels checks for key and clears its cache.
func (m *SessionManager) forget(ctx context.Context, key string) {
	m.mu.Lock()
	if e, ok := m.entries[key]; ok {
		if e.cancel != nil {
			e.cancel()
		}
		delete(m.entries, key)
	}
	m.mu.Unlock()

	if err := m.cache.Clear(ctx, key); err != nil {
		m.logger.WarnContext(ctx, "clear session cache", "session", shortKey(key), "error", err)
	}
}

// Logout clears the token, the cached snapshot and every other session-scoped
// entry, then returns the login path. The theme is stored per user and stays.
func (m *SessionManager) Logout(ctx context.Context, tokens ports.TokenStore) (string, error) {
	token, ok := m.GetToken(tokens)
	tokens.ClearToken()
	if !ok {
		return m.loginPath, nil
	}

	key := domainauth.SessionKey(token)
	_, gen, done := m.begin(ctx, key, token)
	defer done()

	var clearErr error
	if err := m.cache.Clear(ctx, key); err != nil {
		clearErr = fmt.Errorf("clear session cache: %w", err)
	}
	m.publish(key, gen, domainauth.Unauthenticated(domainauth.ReasonLoggedOut))
	m.logger.InfoContext(ctx, "session logged out", "session", shortKey(key))
	return m.loginPath, clearErr
}

// prefKey returns where a preference lives: the theme follows the user
// across sessions, everything else belongs to the session.
func (m *SessionManager) prefKey(ctx context.Context, token, name string) string {
	key := domainauth.SessionKey(token)
	if name != ports.PreferenceTheme {
		return key
	}
	if state, _, ok := m.snapshot(key); ok && state.IsAuthenticated {
		return domainauth.UserKey(state.User)
	}
	u, err := m.cache.GetUser(ctx, key)
	if err != nil {
		m.logger.WarnContext(ctx, "read cached user", "session", shortKey(key), "error", err)
		return ""
	}
	return domainauth.UserKey(u)
}

// Preference reads a preference of the caller.
func (m *SessionManager) Preference(ctx context.Context, tokens ports.TokenStore, name string) (string, bool, error) {
	token, ok := m.GetToken(tokens)
	if !ok {
		return "", false, nil
	}
	key := m.prefKey(ctx, token, strings.TrimSpace(name))
	if key == "" {
		return "", false, nil
	}
	return m.cache.GetPreference(ctx, key, strings.TrimSpace(name))
}

// SetPreference stores a preference of the caller. The theme is kept per user
// for ThemeTTL and outlives logout; other preferences end with the session.
func (m *SessionManager) SetPreference(ctx context.Context, tokens ports.TokenStore, name, value string) error {
	token, ok := m.GetToken(tokens)
	if !ok {
		return apperrors.Unauthorized("session requise")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.ValidationField("name", "Nom de préférence obligatoire.")
	}
	key := m.prefKey(ctx, token, name)
	if key == "" {
		return apperrors.Unauthorized("session requise")
	}
	ttl := m.sessionTTL
	if name == ports.PreferenceTheme {
		ttl = ThemeTTL
	}
	return m.cache.SetPreference(ctx, key, name, value, ttl)
}

// RequestRefresh broadcasts auth-refresh for the session behind token.
func (m *SessionManager) RequestRefresh(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	m.bus.Publish(SessionEvent{Kind: EventAuthRefresh, Key: domainauth.SessionKey(token)})
}

// Start turns auth-refresh events into background checks and prunes idle
// entries until ctx is done or Close is called.
func (m *SessionManager) Start(ctx context.Context) {
	unsub, events := m.bus.Subscribe(64)
	defer unsub()

	pruneEvery := m.revalidateInterval
	if pruneEvery <= 0 {
		pruneEvery = time.Minute
	}
	ticker := time.NewTicker(pruneEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.baseCtx.Done():
			return
		case <-ticker.C:
			m.prune()
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Kind != EventAuthRefresh {
				continue
			}
			if token := m.tokenFor(ev.Key); token != "" {
				m.revalidate(token)
			}
		}
	}
}

func (m *SessionManager) tokenFor(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[key]; ok {
		return e.token
	}
	return ""
}

// prune drops idle entries older than the session TTL and reports how many
// are left.
func (m *SessionManager) prune() {
	cutoff := m.now().Add(-m.sessionTTL)
	m.mu.Lock()
	for key, e := range m.entries {
		if e.cancel == nil && e.checkedAt.Before(cutoff) {
			delete(m.entries, key)
		}
	}
	live := len(m.entries)
	m.mu.Unlock()

	metrics.EmitSessionEntries(m.metrics, live)
}

// Close cancels every in-flight check and stops Start.
func (m *SessionManager) Close() {
	m.baseCancel()
	m.mu.Lock()
	for _, e := range m.entries {
		if e.cancel != nil {
			e.cancel()
		}
	}
	m.mu.Unlock()
}

// SanitizeRedirect keeps only same-site relative paths; anything else becomes "/".
func SanitizeRedirect(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") ||
		strings.HasPrefix(candidate, "//") || strings.Contains(candidate, `\`) {
		return "/"
	}
	return candidate
}
