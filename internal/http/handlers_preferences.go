package httpx

import (
	"log/slog"
	"net/http"
)

// PreferenceHandlers serves the caller's preferences. The theme is kept per user.
type PreferenceHandlers struct {
	Sessions SessionService
	Logger   *slog.Logger
}

type preferenceBody struct {
	Value string `json:"value"`
}

// Get handles GET /api/preferences/{name}.
func (h *PreferenceHandlers) Get(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	value, ok, err := h.Sessions.Preference(r.Context(), requestTokens(w, r), name)
	if err != nil {
		RenderError(w, r, err, h.Logger)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"name": name, "value": value, "set": ok})
}

// Set handles PUT /api/preferences/{name} with body {"value": "..."}.
func (h *PreferenceHandlers) Set(w http.ResponseWriter, r *http.Request) {
	var body preferenceBody
	if !DecodeJSON(w, r, &body) {
		return
	}
	name := r.PathValue("name")
	if err := h.Sessions.SetPreference(r.Context(), requestTokens(w, r), name, body.Value); err != nil {
		RenderError(w, r, err, h.Logger)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"name": name, "value": body.Value})
}
