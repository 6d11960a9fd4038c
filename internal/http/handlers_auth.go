package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/vv-events/dashboard/internal/domain/model"
	apperrors "github.com/vv-events/dashboard/internal/errors"
	"github.com/vv-events/dashboard/internal/ports"
	"github.com/vv-events/dashboard/internal/service"
)

// LoginFlow is the interactive login surface used by AuthHandlers.
type LoginFlow interface {
	Login(ctx context.Context, tokens ports.TokenStore, in service.LoginInput) (service.StoreAuthResult, error)
	OAuthEnabled() bool
	BeginOAuth(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	CompleteOAuth(ctx context.Context, tokens ports.TokenStore, in service.CompleteLoginInput) (service.StoreAuthResult, error)
}

// SessionService is the session surface used by handlers and middleware.
type SessionService interface {
	SessionReader
	GetToken(tokens ports.TokenStore) (string, bool)
	Logout(ctx context.Context, tokens ports.TokenStore) (string, error)
	RequestRefresh(token string)
	LoginPath() string
	Preference(ctx context.Context, tokens ports.TokenStore, name string) (string, bool, error)
	SetPreference(ctx context.Context, tokens ports.TokenStore, name, value string) error
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Login    LoginFlow
	Sessions SessionService
	Cookies  CookieConfig
	Logger   *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// loginRequest is the POST /auth/login body.
type loginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	RedirectURI string `json:"redirect_uri,omitempty"`
}

// loginResponse is returned after a successful password login.
type loginResponse struct {
	RedirectTo string      `json:"redirect_to"`
	Welcome    string      `json:"welcome,omitempty"`
	User       *model.User `json:"user"`
}

// PasswordLogin handles POST /auth/login.
func (h *AuthHandlers) PasswordLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	res, err := h.Login.Login(r.Context(), requestTokens(w, r), service.LoginInput{
		Credentials: ports.Credentials{Email: req.Email, Password: req.Password},
		RedirectURL: req.RedirectURI,
	})
	if err != nil {
		RenderError(w, r, err, h.logger())
		return
	}

	WriteJSON(w, http.StatusOK, loginResponse{
		RedirectTo: res.RedirectTo,
		Welcome:    res.Welcome,
		User:       res.State.User,
	})
}

// OAuthStart handles GET /auth/oauth2/start?redirect_uri=<optional>.
func (h *AuthHandlers) OAuthStart(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := h.Login.BeginOAuth(r.Context(), redirectURI)
	if err != nil {
		RenderError(w, r, err, h.logger())
		return
	}

	setCookie(w, r, cookieParams{Name: OAuthStateCookie, Value: result.State, Domain: h.Cookies.Domain, MaxAge: oauthCookieMaxAge})
	setCookie(w, r, cookieParams{Name: PostLoginCookie, Value: redirectURI, Domain: h.Cookies.Domain, MaxAge: oauthCookieMaxAge})
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// OAuthCallback handles GET /auth/oauth2/callback?state=&code=|token=.
// Browsers land here, so failures redirect to the login page with a message.
func (h *AuthHandlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	expected := ""
	if c, err := r.Cookie(OAuthStateCookie); err == nil {
		expected = c.Value
	}
	redirectURI := "/"
	if c, err := r.Cookie(PostLoginCookie); err == nil {
		redirectURI = safeRedirectPath(c.Value)
	}
	clearCookie(w, r, OAuthStateCookie, h.Cookies.Domain)
	clearCookie(w, r, PostLoginCookie, h.Cookies.Domain)

	if msg := strings.TrimSpace(q.Get("error")); msg != "" {
		h.loginFailed(w, r, apperrors.Unauthorized(msg))
		return
	}

	res, err := h.Login.CompleteOAuth(r.Context(), requestTokens(w, r), service.CompleteLoginInput{
		Code:          q.Get("code"),
		Token:         q.Get("token"),
		State:         q.Get("state"),
		ExpectedState: expected,
		RedirectURL:   redirectURI,
	})
	if err != nil {
		h.loginFailed(w, r, err)
		return
	}

	http.Redirect(w, r, res.RedirectTo, http.StatusFound)
}

func (h *AuthHandlers) loginFailed(w http.ResponseWriter, r *http.Request, err error) {
	h.logger().WarnContext(r.Context(), "oauth login failed", "error", err)
	if !IsBrowserRequest(r) {
		RenderError(w, r, err, h.logger())
		return
	}
	msg := publicMessage(err)
	u := url.URL{Path: h.Sessions.LoginPath(), RawQuery: url.Values{"error": {msg}}.Encode()}
	http.Redirect(w, r, u.String(), http.StatusFound)
}

// Logout handles POST /auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	loginPath, err := h.Sessions.Logout(r.Context(), requestTokens(w, r))
	if err != nil {
		h.logger().WarnContext(r.Context(), "logout failed", "error", err)
	}

	if IsAJAX(r) {
		WriteJSON(w, http.StatusOK, map[string]string{
			"status":      "success",
			"redirect_to": loginPath,
		})
		return
	}
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

// Status handles GET /auth/status. It always answers 200 with the session state.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	state := h.Sessions.Session(r.Context(), requestTokens(w, r))
	WriteJSON(w, http.StatusOK, state)
}

// Refresh handles POST /auth/refresh: the caller's session is re-checked in the background.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := h.Sessions.GetToken(requestTokens(w, r))
	if !ok {
		RenderError(w, r, apperrors.Unauthorized("session requise"), h.logger())
		return
	}
	h.Sessions.RequestRefresh(token)
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}
