package httpx

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieTokenStore_Token(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(r *http.Request)
		want   string
		wantOK bool
	}{
		{"none", func(*http.Request) {}, "", false},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: "abc"}) }, "abc", true},
		{"blank cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "token", Value: " "}) }, "", false},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer xyz") }, "xyz", true},
		{"bearer lowercase", func(r *http.Request) { r.Header.Set("Authorization", "bearer xyz") }, "xyz", true},
		{"basic ignored", func(r *http.Request) { r.Header.Set("Authorization", "Basic Zm9vOmJhcg==") }, "", false},
		{"cookie wins", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "token", Value: "abc"})
			r.Header.Set("Authorization", "Bearer xyz")
		}, "abc", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			store := NewCookieTokenStore(httptest.NewRecorder(), req, CookieConfig{})

			got, ok := store.Token()

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCookieTokenStore_SetToken(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		store := NewCookieTokenStore(rec, req, CookieConfig{})

		store.SetToken("abc", 0)

		c := findCookie(rec.Result().Cookies(), "token")
		require.NotNil(t, c)
		assert.Equal(t, "abc", c.Value)
		assert.Equal(t, "/", c.Path)
		assert.Equal(t, 7*24*60*60, c.MaxAge)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
		assert.True(t, c.HttpOnly)
		assert.False(t, c.Secure)

		got, ok := store.Token()
		assert.True(t, ok)
		assert.Equal(t, "abc", got)
	})

	t.Run("configured and shorter ttl", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.TLS = &tls.ConnectionState{}
		store := NewCookieTokenStore(rec, req, CookieConfig{Name: "vv", Domain: "admin.vv.test"})

		store.SetToken("abc", time.Hour)

		c := findCookie(rec.Result().Cookies(), "vv")
		require.NotNil(t, c)
		assert.Equal(t, 3600, c.MaxAge)
		assert.Equal(t, "admin.vv.test", c.Domain)
		assert.True(t, c.Secure)
	})
}

func TestCookieTokenStore_ClearToken(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "abc"})
	store := NewCookieTokenStore(rec, req, CookieConfig{})

	store.ClearToken()
	store.ClearToken()

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1, "clearing twice writes one cookie")
	assert.Equal(t, -1, cookies[0].MaxAge)
	_, ok := store.Token()
	assert.False(t, ok, "the request cookie is shadowed once cleared")
}

func TestIsSecureRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, isSecureRequest(req))

	req.Header.Set("X-Forwarded-Proto", "HTTPS")
	assert.True(t, isSecureRequest(req))
}
