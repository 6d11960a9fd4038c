package model

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerificationKey_RoundTrip(t *testing.T) {
	ids := []int64{1, 2, 17, 999, 123456789}
	for _, e := range ids {
		for _, o := range ids {
			for _, tk := range ids {
				raw := fmt.Sprintf("VV-%d-%d-%d", e, o, tk)
				key, ok := ParseVerificationKey(raw)
				require.True(t, ok, raw)
				assert.Equal(t, VerificationKey{EventID: e, OrderID: o, TicketID: tk}, key)
				assert.Equal(t, raw, key.String())
			}
		}
	}
}

func TestParseVerificationKey_Rejects(t *testing.T) {
	for _, raw := range []string{
		"",
		"not-a-key",
		"vv-1-1-1",
		"VV-1-1",
		"VV-1-1-1-1",
		"VV-0-1-1",
		"VV-1-0-1",
		"VV-1-1-0",
		"VV--1-1-1",
		"VV-a-1-1",
		"VV-1.5-1-1",
		"XX-1-1-1",
		"VV-99999999999999999999-1-1",
	} {
		_, ok := ParseVerificationKey(raw)
		assert.False(t, ok, "expected %q to be rejected", raw)
	}
}

func TestParseVerificationKey_TrimsWhitespace(t *testing.T) {
	key, ok := ParseVerificationKey("  VV-3-4-5\n")
	require.True(t, ok)
	assert.Equal(t, int64(3), key.EventID)
	assert.Equal(t, int64(4), key.OrderID)
	assert.Equal(t, int64(5), key.TicketID)
}

func TestInvalidResult(t *testing.T) {
	res := InvalidResult("fetch_event", "Événement non trouvé")
	assert.False(t, res.IsValid)
	assert.Equal(t, "Événement non trouvé", res.Error)
	assert.Equal(t, "fetch_event", res.Step)
	assert.Nil(t, res.Ticket)
}
