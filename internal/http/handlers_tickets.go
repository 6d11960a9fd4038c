package httpx

import (
	"context"
	"net/http"

	"github.com/vv-events/dashboard/internal/domain/model"
	"github.com/vv-events/dashboard/internal/service"
)

// TicketVerifier runs the verification pipeline.
type TicketVerifier interface {
	Verify(ctx context.Context, in service.VerifyInput) model.TicketVerificationResult
}

// TicketHandlers serves the scanner endpoint.
type TicketHandlers struct {
	Verifier TicketVerifier
}

type verifyRequest struct {
	Key string `json:"key"`
}

// Verify handles POST /api/tickets/verify. Rejected tickets are a normal
// outcome and answer 200 with isValid=false.
func (h *TicketHandlers) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	state, _ := GetSessionFromContext(r.Context())
	res := h.Verifier.Verify(r.Context(), service.VerifyInput{
		Key:    req.Key,
		Token:  state.Token,
		Caller: state.User,
	})
	WriteJSON(w, http.StatusOK, res)
}
