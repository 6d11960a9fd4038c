package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vv-events/dashboard/config"
	"github.com/vv-events/dashboard/internal/adapters/memory"
	"github.com/vv-events/dashboard/internal/testutil"
)

func testConfig(baseURL string) *config.AppConfig {
	cfg := &config.AppConfig{
		Auth: config.AuthConfig{
			Mode:         config.AuthModePlatform,
			AllowedRoles: []string{"admin", "organizer"},
			LoginPath:    "/login",
		},
		Platform: config.PlatformConfig{BaseURL: baseURL, Timeout: 5 * time.Second},
		Session: config.SessionConfig{
			IdentityTimeout: 2 * time.Second,
			RetryAttempts:   1,
		},
		HTTP: config.HTTPConfig{CompressionEnabled: true, CompressionLevel: 5},
	}
	cfg.Sanitize()
	return cfg
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestOpenSessionBackend_MemoryWhenRedisDisabled(t *testing.T) {
	backend, err := OpenSessionBackend(context.Background(), RedisDeps{Redis: config.RedisConfig{Enabled: false}, Logger: quietLogger()})
	require.NoError(t, err)

	assert.IsType(t, &memory.SessionCache{}, backend.Cache)
	assert.Nil(t, backend.Ready)
	assert.NoError(t, backend.Close())
}

func TestOpenSessionBackend_Redis(t *testing.T) {
	addr, ok := testutil.GetTestRedisAddr(t)
	if !ok {
		t.Skip("redis not available")
	}
	backend, err := OpenSessionBackend(context.Background(), RedisDeps{
		Redis: config.RedisConfig{Enabled: true, URI: addr, KeyPrefix: "test-session:", DialTimeout: time.Second},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	require.NotNil(t, backend.Ready)
	assert.NoError(t, backend.Ready(context.Background()))
}

func TestNewServices_Validation(t *testing.T) {
	_, err := NewServices(nil)
	require.Error(t, err)

	_, err = NewServices(&ServiceDeps{Config: testConfig("http://platform.test/api")})
	require.Error(t, err, "a session backend is required")

	_, err = NewServices(&ServiceDeps{
		Config:  testConfig("not a url"),
		Backend: SessionBackend{Cache: memory.NewSessionCache(nil)},
		Logger:  quietLogger(),
	})
	require.Error(t, err)
}

func TestNewHTTPServer_EndToEnd(t *testing.T) {
	p := testutil.NewFakePlatform(t)
	p.SeedValidTicket()
	cfg := testConfig(p.BaseURL())

	services, err := NewServices(&ServiceDeps{
		Config:  cfg,
		Backend: SessionBackend{Cache: memory.NewSessionCache(nil)},
		Logger:  quietLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(services.Sessions.Close)

	server := NewHTTPServer(&HTTPServerConfig{Config: cfg, Services: services, Logger: quietLogger()})
	assert.Equal(t, ":8080", server.Addr)

	t.Run("health is gzipped with a request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()

		server.Handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	})

	t.Run("api requires a session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
		rec := httptest.NewRecorder()

		server.Handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("status with a valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/status", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "admin-token"})
		rec := httptest.NewRecorder()

		server.Handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"isAuthenticated":true`)
	})
}

func TestShutdownHTTPServer_NilServer(t *testing.T) {
	assert.NoError(t, ShutdownHTTPServer(ShutdownConfig{}))
}

func TestRetryDelay(t *testing.T) {
	assert.Equal(t, time.Duration(-1), retryDelay(0))
	assert.Equal(t, 2*time.Second, retryDelay(2*time.Second))
}
