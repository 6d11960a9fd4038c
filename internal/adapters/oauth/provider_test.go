package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vv-events/dashboard/internal/ports"
)

func TestNewProvider_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		config ProviderConfig
		errMsg string
	}{
		{
			name:   "missing client ID",
			config: ProviderConfig{AuthURL: "https://api.example.com/oauth2/authorize", RedirectURL: "http://localhost/cb"},
			errMsg: "client ID is required",
		},
		{
			name:   "missing auth URL",
			config: ProviderConfig{ClientID: "client", RedirectURL: "http://localhost/cb"},
			errMsg: "auth URL is required",
		},
		{
			name:   "missing redirect URL",
			config: ProviderConfig{ClientID: "client", AuthURL: "https://api.example.com/oauth2/authorize"},
			errMsg: "redirect URL is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProvider(tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestProvider_Begin(t *testing.T) {
	p, err := NewProvider(ProviderConfig{
		ClientID:    "vv-dashboard",
		AuthURL:     "https://api.example.com/oauth2/authorize/google",
		RedirectURL: "http://localhost:8080/auth/oauth2/callback",
		Scope:       "openid email",
	})
	require.NoError(t, err)

	authURL, state, err := p.Begin(context.Background(), ports.BeginInput{RedirectURL: "/events"})
	require.NoError(t, err)
	require.NotEmpty(t, state)

	u, err := url.Parse(authURL)
	require.NoError(t, err)
	assert.Equal(t, "api.example.com", u.Host)
	q := u.Query()
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, "vv-dashboard", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8080/auth/oauth2/callback", q.Get("redirect_uri"))
	assert.Equal(t, "openid email", q.Get("scope"))

	_, _, err = p.Begin(context.Background(), ports.BeginInput{})
	require.Error(t, err)
}

func TestProvider_ExchangeDirectToken(t *testing.T) {
	p, err := NewProvider(ProviderConfig{ClientID: "c", AuthURL: "https://a/x", RedirectURL: "http://l/cb"})
	require.NoError(t, err)

	tok, err := p.Exchange(context.Background(), ports.ExchangeInput{State: "s", Token: " jwt "})
	require.NoError(t, err)
	assert.Equal(t, "jwt", tok)

	_, err = p.Exchange(context.Background(), ports.ExchangeInput{State: "s", Code: "abc"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token URL is not configured")

	_, err = p.Exchange(context.Background(), ports.ExchangeInput{Token: "jwt"})
	require.Error(t, err)
}

func TestProvider_ExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "platform-jwt", "token_type": "Bearer"})
	}))
	defer srv.Close()

	p, err := NewProvider(ProviderConfig{
		ClientID:    "c",
		AuthURL:     srv.URL + "/authorize",
		TokenURL:    srv.URL + "/token",
		RedirectURL: "http://l/cb",
		HTTPClient:  srv.Client(),
	})
	require.NoError(t, err)

	tok, err := p.Exchange(context.Background(), ports.ExchangeInput{State: "s", Code: "good"})
	require.NoError(t, err)
	assert.Equal(t, "platform-jwt", tok)

	_, err = p.Exchange(context.Background(), ports.ExchangeInput{State: "s", Code: "bad"})
	require.Error(t, err)
}
