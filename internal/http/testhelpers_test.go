package httpx

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vv-events/dashboard/internal/adapters/authroles"
	"github.com/vv-events/dashboard/internal/adapters/memory"
	"github.com/vv-events/dashboard/internal/adapters/platformapi"
	authmocks "github.com/vv-events/dashboard/internal/mocks/auth"
	"github.com/vv-events/dashboard/internal/service"
	"github.com/vv-events/dashboard/internal/testutil"
)

// routerFixture wires the real services against an in-process platform.
type routerFixture struct {
	platform *testutil.FakePlatform
	sessions *service.SessionManager
	provider *authmocks.MockAuthProvider
	cache    *memory.SessionCache
	handler  http.Handler
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	p := testutil.NewFakePlatform(t)
	p.SeedValidTicket()

	client, err := platformapi.NewClient(platformapi.Config{BaseURL: p.BaseURL(), Timeout: 5 * time.Second})
	require.NoError(t, err)

	cache := memory.NewSessionCache(nil)
	sessions, err := service.NewSessionManager(service.SessionManagerOptions{
		Identity:        client,
		Cache:           cache,
		Roles:           authroles.NewAllowListChecker("admin", "organizer"),
		IdentityTimeout: 2 * time.Second,
		RetryDelay:      -1,
	})
	require.NoError(t, err)
	t.Cleanup(sessions.Close)

	provider := authmocks.NewMockAuthProvider()
	provider.Token = "admin-token"
	login, err := service.NewLoginService(service.LoginServiceOptions{
		Authenticator: client,
		Provider:      provider,
		Sessions:      sessions,
	})
	require.NoError(t, err)

	verifier, err := service.NewTicketVerifier(service.TicketVerifierOptions{API: client})
	require.NoError(t, err)
	catalog, err := service.NewCatalogService(service.CatalogServiceOptions{API: client})
	require.NoError(t, err)

	return &routerFixture{
		platform: p,
		sessions: sessions,
		provider: provider,
		cache:    cache,
		handler: NewRouter(RouterServices{
			Sessions: sessions,
			Login:    login,
			Verifier: verifier,
			Catalog:  catalog,
		}),
	}
}

// request builds a JSON API request; body may be nil.
func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

// withToken attaches the token cookie.
func withToken(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: DefaultTokenCookie, Value: token})
	return req
}

func (f *routerFixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

// login signs in through POST /auth/login and returns the token cookie value.
func (f *routerFixture) login(t *testing.T, email string) string {
	t.Helper()
	rec := f.serve(jsonRequest(t, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": "secret"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c := findCookie(rec.Result().Cookies(), DefaultTokenCookie)
	require.NotNil(t, c)
	return c.Value
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
