package httpx

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vv-events/dashboard/internal/domain/model"
	"github.com/vv-events/dashboard/internal/service"
)

func TestTicketVerify_RequiresSession(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.serve(jsonRequest(t, http.MethodPost, "/api/tickets/verify", map[string]string{"key": "VV-1-1-1"}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, ErrCodeAuthRequired, decodeResponse[ErrorBody](t, rec).Error)
}

func TestTicketVerify_Valid(t *testing.T) {
	f := newRouterFixture(t)
	token := f.login(t, "admin@vv.test")

	rec := f.serve(withToken(jsonRequest(t, http.MethodPost, "/api/tickets/verify", map[string]string{"key": "VV-1-1-1"}), token))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeResponse[model.TicketVerificationResult](t, rec)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Error)
	require.NotNil(t, res.Event)
	assert.Equal(t, "Concert", res.Event.Name)
}

func TestTicketVerify_OrganizerOwnsEvent(t *testing.T) {
	f := newRouterFixture(t)
	token := f.login(t, "orga@vv.test")

	rec := f.serve(withToken(jsonRequest(t, http.MethodPost, "/api/tickets/verify", map[string]string{"key": "VV-1-1-2"}), token))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeResponse[model.TicketVerificationResult](t, rec).IsValid)
}

func TestTicketVerify_Rejections(t *testing.T) {
	tests := []struct {
		name string
		key  string
		msg  string
	}{
		{"malformed", "VV-1-1", service.MsgInvalidKeyFormat},
		{"wrong prefix", "XX-1-1-1", service.MsgInvalidKeyFormat},
		{"unknown event", "VV-9-1-1", service.MsgEventNotFound},
		{"ticket not in order", "VV-1-1-7", service.MsgTicketNotInOrder},
	}
	f := newRouterFixture(t)
	token := f.login(t, "admin@vv.test")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.serve(withToken(jsonRequest(t, http.MethodPost, "/api/tickets/verify", map[string]string{"key": tt.key}), token))

			require.Equal(t, http.StatusOK, rec.Code, "a rejected ticket is not an HTTP error")
			res := decodeResponse[model.TicketVerificationResult](t, rec)
			assert.False(t, res.IsValid)
			assert.Equal(t, tt.msg, res.Error)
		})
	}
}

func TestTicketVerify_MalformedKeyMakesNoPlatformCalls(t *testing.T) {
	f := newRouterFixture(t)
	token := f.login(t, "admin@vv.test")
	// Warm the session so the auth check itself is served from cache.
	require.Equal(t, http.StatusOK, f.serve(withToken(jsonRequest(t, http.MethodGet, "/auth/status", nil), token)).Code)
	before := f.platform.Requests()

	rec := f.serve(withToken(jsonRequest(t, http.MethodPost, "/api/tickets/verify", map[string]string{"key": "VV-a-b-c"}), token))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.MsgInvalidKeyFormat, decodeResponse[model.TicketVerificationResult](t, rec).Error)
	assert.Equal(t, before, f.platform.Requests())
}

func TestTicketVerify_BadBody(t *testing.T) {
	f := newRouterFixture(t)
	token := f.login(t, "admin@vv.test")

	rec := f.serve(withToken(jsonRequest(t, http.MethodPost, "/api/tickets/verify", map[string]any{"ticket": 1}), token))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, ErrCodeInvalidJSON, decodeResponse[ErrorBody](t, rec).Error)
}
