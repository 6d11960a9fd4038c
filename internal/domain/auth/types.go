package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/vv-events/dashboard/internal/domain/model"
)

// Role represents a platform authorization role.
// Compared case-insensitively; use NormalizeRole before comparing.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleOrganizer Role = "organizer"
	RoleUser      Role = "user"
)

// NormalizeRole lowercases and trims a raw role string.
func NormalizeRole(raw string) Role {
	return Role(strings.ToLower(strings.TrimSpace(raw)))
}

// RoleOf returns the normalized role of u, or "" when u is nil.
func RoleOf(u *model.User) Role {
	if u == nil {
		return ""
	}
	return NormalizeRole(u.Role)
}

// AllowList is the set of roles permitted to use the dashboard.
type AllowList []Role

// NewAllowList builds an allow-list from raw role strings.
func NewAllowList(roles ...string) AllowList {
	out := make(AllowList, 0, len(roles))
	for _, r := range roles {
		if n := NormalizeRole(r); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Allows reports whether role is on the list.
func (l AllowList) Allows(role Role) bool {
	role = NormalizeRole(string(role))
	if role == "" {
		return false
	}
	for _, r := range l {
		if r == role {
			return true
		}
	}
	return false
}

// Reason explains why a session is in its current state.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonNoToken      Reason = "no_token"
	ReasonRoleDenied   Reason = "role_denied"
	ReasonUnauthorized Reason = "unauthorized"
	ReasonTokenExpired Reason = "token_expired"
	ReasonUnreachable  Reason = "unreachable"
	ReasonLoggedOut    Reason = "logged_out"
)

// SessionState is the published view of "who is logged in".
// IsAuthenticated holds only when a token is present and the latest identity
// check, or the cached snapshot, carried an allowed role.
type SessionState struct {
	Token           string      `json:"-"`
	User            *model.User `json:"user,omitempty"`
	IsAuthenticated bool        `json:"isAuthenticated"`
	Loading         bool        `json:"loading"`
	FromCache       bool        `json:"fromCache,omitempty"`
	Degraded        bool        `json:"degraded,omitempty"`
	Reason          Reason      `json:"reason,omitempty"`
	CheckedAt       time.Time   `json:"checkedAt,omitzero"`
}

// Unauthenticated builds a signed-out state.
func Unauthenticated(reason Reason) SessionState {
	return SessionState{Reason: reason}
}

// Authenticated builds a signed-in state for token and user.
func Authenticated(token string, user *model.User, fromCache bool) SessionState {
	return SessionState{Token: token, User: user, IsAuthenticated: true, FromCache: fromCache}
}

// Role returns the normalized role of the session user.
func (s SessionState) Role() Role { return RoleOf(s.User) }

// HasRole reports whether the session user holds role.
func (s SessionState) HasRole(role Role) bool {
	return s.IsAuthenticated && s.Role() == NormalizeRole(string(role))
}

const sessionKeyLen = 32

// SessionKey derives the storage key for a token. Raw tokens never reach the cache.
func SessionKey(token string) string {
	if token == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])[:sessionKeyLen]
}

// UserKey derives the storage key for data that follows a user from one
// session to the next. It is empty when the user cannot be identified.
func UserKey(u *model.User) string {
	if u == nil {
		return ""
	}
	if id := u.ResolvedID(); id > 0 {
		return "user-" + strconv.FormatInt(id, 10)
	}
	if email := strings.ToLower(strings.TrimSpace(u.Email)); email != "" {
		return "user-" + SessionKey(email)
	}
	return ""
}
