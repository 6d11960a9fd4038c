package httpx

import "time"

// Cookie names used by the dashboard.
const (
	DefaultTokenCookie = "token"
	OAuthStateCookie   = "oauth_state"
	PostLoginCookie    = "post_login_redirect"
)

// oauthCookieMaxAge bounds the OAuth round trip.
const oauthCookieMaxAge = 10 * time.Minute

// Error codes carried in the JSON "error" field.
const (
	ErrCodeInvalidJSON    = "invalid_json"
	ErrCodeInvalidPath    = "invalid_path"
	ErrCodeAuthRequired   = "authentication_required"
	ErrCodeInsufficient   = "insufficient_permissions"
	ErrCodeNotFound       = "not_found"
	ErrCodeInternal       = "internal"
	ErrCodeRouteNotFound  = "route_not_found"
	ErrCodeMethodNotFound = "method_not_allowed"
)

// Request body limits.
const (
	maxJSONBody = 1 << 20
)
