// Package platformapi is the HTTP adapter for the remote HAL/REST event platform.
package platformapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/vv-events/dashboard/internal/errors"
)

const maxBodyBytes = 4 << 20

// Config captures the platform client settings.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Client    *http.Client
	Logger    *slog.Logger
}

// Client talks to the platform API on behalf of a bearer token.
type Client struct {
	base      *url.URL
	userAgent string
	client    *http.Client
	logger    *slog.Logger
}

// NewClient builds a platform client. BaseURL must be an absolute http(s) URL.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if raw == "" {
		return nil, errors.New("platform base url is required")
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse platform base url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("platform base url must be absolute http(s): %q", raw)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		base:      base,
		userAgent: fallbackString(strings.TrimSpace(cfg.UserAgent), "vv-dashboard"),
		client:    hc,
		logger:    logger.With("component", "platformapi"),
	}, nil
}

func fallbackString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// StatusError is the cause attached to every non-2xx platform answer.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d", e.Method, e.URL, e.Status)
}

// HTTPStatus returns the status the platform answered with.
func (e *StatusError) HTTPStatus() int { return e.Status }

// Status returns the platform HTTP status carried by err, or 0.
func Status(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// codeForStatus maps a platform status to an application error code.
func codeForStatus(status int) apperrors.ErrorCode {
	switch status {
	case http.StatusNotFound:
		return apperrors.ErrCodeNotFound
	case http.StatusUnauthorized:
		return apperrors.ErrCodeUnauthorized
	case http.StatusForbidden:
		return apperrors.ErrCodeForbidden
	case http.StatusConflict:
		return apperrors.ErrCodeConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.ErrCodeValidation
	default:
		return apperrors.ErrCodeUpstream
	}
}

// platformMessage pulls a human-readable message out of an error body, if any.
func platformMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	if m := strings.TrimSpace(payload.Message); m != "" {
		return m
	}
	return strings.TrimSpace(payload.Error)
}

func statusError(method, target string, status int, body []byte) error {
	se := &StatusError{Method: method, URL: target, Status: status, Body: string(body)}
	code := codeForStatus(status)
	msg := fmt.Sprintf("Erreur HTTP: %d", status)
	// catalog forms show the platform's own validation text
	if code == apperrors.ErrCodeValidation || code == apperrors.ErrCodeConflict {
		if m := platformMessage(body); m != "" {
			msg = m
		}
	}
	return apperrors.Wrap(se, code, msg)
}

// request describes one platform call. Path is relative to the base URL
// unless it is an absolute href taken from a HAL link.
type request struct {
	Method string
	Path   string
	Query  url.Values
	Token  string
	Body   any
}

// resolve turns a path or href into an absolute URL on the platform origin.
// Hrefs pointing elsewhere are refused so bearer tokens never leave the platform.
func (c *Client) resolve(p string, q url.Values) (string, error) {
	var u *url.URL
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		parsed, err := url.Parse(p)
		if err != nil {
			return "", apperrors.Wrapf(err, apperrors.ErrCodeValidation, "lien invalide: %s", p)
		}
		if !strings.EqualFold(parsed.Scheme, c.base.Scheme) || !strings.EqualFold(parsed.Host, c.base.Host) {
			return "", apperrors.Validationf("lien hors plateforme refusé: %s", parsed.Host)
		}
		u = parsed
	} else {
		clone := *c.base
		clone.Path = strings.TrimRight(c.base.Path, "/") + "/" + strings.TrimLeft(p, "/")
		u = &clone
	}
	if len(q) > 0 {
		merged := u.Query()
		for k, vs := range q {
			merged[k] = vs
		}
		u.RawQuery = merged.Encode()
	}
	return u.String(), nil
}

// do performs the request and returns the body of a 2xx answer.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	target, err := c.resolve(r.Path, r.Query)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if r.Body != nil {
		buf, marshalErr := json.Marshal(r.Body)
		if marshalErr != nil {
			return nil, apperrors.Wrap(marshalErr, apperrors.ErrCodeInternal, "encode platform request")
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "create platform request")
	}
	req.Header.Set("Accept", "application/hal+json, application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := apperrors.FromContext(err, r.Method+" "+req.URL.Path); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "%s %s", r.Method, req.URL.Path)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.DebugContext(ctx, "close platform response", "error", cerr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctxErr := apperrors.FromContext(err, "read "+req.URL.Path); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeUnavailable, "read %s", req.URL.Path)
	}

	c.logger.DebugContext(ctx, "platform request",
		"method", r.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return data, statusError(r.Method, req.URL.Path, resp.StatusCode, data)
	}
	return data, nil
}

// getJSON performs a GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, r request, out any) error {
	r.Method = http.MethodGet
	data, err := c.do(ctx, r)
	if err != nil {
		return err
	}
	return decode(data, out)
}

func decode(data []byte, out any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return apperrors.Internal("réponse vide de la plateforme")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUpstream, "réponse invalide de la plateforme")
	}
	return nil
}
