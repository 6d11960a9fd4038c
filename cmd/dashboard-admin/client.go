package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

const defaultClientTimeout = 30 * time.Second

// dashboardClient talks to the dashboard's JSON API with a cookie session,
// the same way the browser does.
type dashboardClient struct {
	base       *url.URL
	cookieName string
	jar        *cookiejar.Jar
	http       *http.Client
}

func newDashboardClient(server, cookieName string) (*dashboardClient, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(server), "/"))
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("invalid --server %q: must be an absolute http(s) URL", server)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	if cookieName == "" {
		cookieName = "token"
	}
	return &dashboardClient{
		base:       base,
		cookieName: cookieName,
		jar:        jar,
		http:       &http.Client{Jar: jar, Timeout: defaultClientTimeout},
	}, nil
}

// setToken seeds the jar with a stored session token.
func (c *dashboardClient) setToken(token string) {
	c.jar.SetCookies(c.base, []*http.Cookie{{Name: c.cookieName, Value: token, Path: "/"}})
}

// token returns the session token currently held by the jar.
func (c *dashboardClient) token() string {
	for _, ck := range c.jar.Cookies(c.base) {
		if ck.Name == c.cookieName {
			return ck.Value
		}
	}
	return ""
}

// apiError is the dashboard's JSON error body.
type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *apiError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s (%s, champ %s)", msg, e.Code, e.Field)
	}
	return fmt.Sprintf("%s (%s)", msg, e.Code)
}

// do sends a JSON request and decodes a 2xx JSON answer into out (if non-nil).
func (c *dashboardClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &apiError{Status: resp.StatusCode}
		if derr := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(apiErr); derr != nil {
			apiErr.Code = fmt.Sprintf("http_%d", resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// defaultTokenFile is where login keeps the session token between runs.
func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".vv-dashboard-token"
	}
	return filepath.Join(dir, "vv-dashboard", "token")
}

func saveToken(path, token string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

var errNotSignedIn = errors.New("not signed in: run dashboard-admin login first")

func loadToken(path string) (string, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", errNotSignedIn
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", errNotSignedIn
	}
	return token, nil
}

func removeToken(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
