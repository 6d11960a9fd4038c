package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/vv-events/dashboard/internal/errors"
)

func TestDetermineErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", apperrors.ValidationField("name", "Nom obligatoire"), http.StatusBadRequest},
		{"unauthorized", apperrors.Unauthorized("x"), http.StatusUnauthorized},
		{"forbidden", apperrors.Forbidden("x"), http.StatusForbidden},
		{"not found", apperrors.NotFound("x"), http.StatusNotFound},
		{"conflict", apperrors.Conflict("x"), http.StatusConflict},
		{"upstream", apperrors.Wrap(errors.New("500"), apperrors.ErrCodeUpstream, "Erreur HTTP: 500"), http.StatusBadGateway},
		{"unavailable", apperrors.Wrap(errors.New("dial"), apperrors.ErrCodeUnavailable, "x"), http.StatusServiceUnavailable},
		{"timeout", apperrors.FromContext(context.DeadlineExceeded, "x"), http.StatusGatewayTimeout},
		{"wrapped app error", fmt.Errorf("get events 4: %w", apperrors.NotFound("x")), http.StatusNotFound},
		{"bare deadline", fmt.Errorf("op: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetermineErrorStatus(tt.err))
		})
	}
}

func TestRenderError(t *testing.T) {
	t.Run("app error keeps message and field", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/events", nil)

		RenderError(rec, req, fmt.Errorf("create events: %w", apperrors.ValidationField("date", "Date invalide")), nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		body := decodeResponse[ErrorBody](t, rec)
		assert.Equal(t, ErrorBody{Error: "validation", Message: "Date invalide", Field: "date"}, body)
	})

	t.Run("internal error hides its cause", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/events", nil)

		RenderError(rec, req, errors.New("dial tcp 10.0.0.3:5432: secret detail"), nil)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.False(t, strings.Contains(rec.Body.String(), "secret detail"))
		body := decodeResponse[ErrorBody](t, rec)
		assert.Equal(t, ErrCodeInternal, body.Error)
		assert.Equal(t, msgGenericError, body.Message)
	})
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{"valid", `{"key":"VV-1-1-1"}`, true},
		{"unknown field", `{"key":"VV-1-1-1","x":1}`, false},
		{"empty", ``, false},
		{"garbage", `{`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst verifyRequest

			ok := DecodeJSON(rec, req, &dst)

			require.Equal(t, tt.ok, ok)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Equal(t, ErrCodeInvalidJSON, decodeResponse[ErrorBody](t, rec).Error)
			}
		})
	}
}

func TestDecodeJSONLoose_AllowsFreeForm(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Jazz","extra":{"a":1}}`))
	var dst map[string]any

	require.True(t, DecodeJSONLoose(rec, req, &dst))
	assert.Equal(t, "Jazz", dst["name"])
}
