package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/vv-events/dashboard/internal/domain/auth"
	"github.com/vv-events/dashboard/internal/ports"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

// RequestIDFromContext returns the id assigned by Logging.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Logging returns a middleware that assigns a request id and logs each request.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
			if id == "" || len(id) > 64 {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)
			r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id))

			ww := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http",
				slog.String("request_id", id),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler { //nolint:errorlint // sentinel compared by identity
						panic(err)
					}
					logger.ErrorContext(r.Context(), "panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					WriteError(w, ErrorParams{
						Code:    http.StatusInternalServerError,
						ErrCode: ErrCodeInternal,
						Err:     errors.New(msgGenericError),
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionReader resolves the session for a request's token store.
type SessionReader interface {
	Session(ctx context.Context, tokens ports.TokenStore) domainauth.SessionState
}

// Tokens returns a middleware that binds a CookieTokenStore to every request.
func Tokens(cfg CookieConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := NewCookieTokenStore(w, r, cfg)
			next.ServeHTTP(w, r.WithContext(SetTokensInContext(r.Context(), store)))
		})
	}
}

// requestTokens returns the bound token store, binding a default one when the
// Tokens middleware was not used.
func requestTokens(w http.ResponseWriter, r *http.Request) ports.TokenStore {
	if t, ok := TokensFromContext(r.Context()); ok {
		return t
	}
	return NewCookieTokenStore(w, r, CookieConfig{})
}

// AuthOptions configures RequireAuth.
type AuthOptions struct {
	Sessions  SessionReader
	LoginPath string
	// Roles, when set, restricts the route to these roles.
	Roles []domainauth.Role
}

// RequireAuth returns a middleware that requires an authenticated session.
// API and AJAX requests get 401/403 JSON; browsers are redirected to the login page.
func RequireAuth(opts AuthOptions) func(http.Handler) http.Handler {
	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := opts.Sessions.Session(r.Context(), requestTokens(w, r))
			if !state.IsAuthenticated {
				if IsBrowserRequest(r) {
					redirectToLogin(w, r, loginPath)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: ErrCodeAuthRequired,
					Err:     errors.New("authentification requise"),
				})
				return
			}

			if len(opts.Roles) > 0 && !hasAnyRole(state, opts.Roles) {
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: ErrCodeInsufficient,
					Err:     errors.New("droits insuffisants"),
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), state)))
		})
	}
}

func hasAnyRole(state domainauth.SessionState, roles []domainauth.Role) bool {
	for _, role := range roles {
		if state.HasRole(role) {
			return true
		}
	}
	return false
}

// IsAJAX reports whether the client asked for JSON rather than a page.
func IsAJAX(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.EqualFold(r.Header.Get("X-Requested-With"), "XMLHttpRequest")
}

// IsBrowserRequest reports whether a failed auth check should redirect rather than answer JSON.
// API routes and AJAX calls are never browser requests.
func IsBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") || IsAJAX(r) {
		return false
	}
	accept := r.Header.Get("Accept")
	return accept == "" || strings.Contains(accept, "text/html")
}

// redirectToLogin sends the browser to loginPath, remembering where it was going.
func redirectToLogin(w http.ResponseWriter, r *http.Request, loginPath string) {
	target := safeRedirectPath(r.URL.RequestURI())
	u := url.URL{Path: loginPath}
	if target != "/" {
		q := url.Values{}
		q.Set("redirect_uri", target)
		u.RawQuery = q.Encode()
	}
	http.Redirect(w, r, u.String(), http.StatusSeeOther)
}
