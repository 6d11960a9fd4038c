package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vv-events/dashboard/internal/domain/model"
	"github.com/vv-events/dashboard/internal/ports"
)

// CatalogService is the CRUD surface behind the dashboard tables.
type CatalogService interface {
	List(ctx context.Context, token string, kind model.ResourceKind, opts model.ListOptions) (model.ResourcePage, error)
	Get(ctx context.Context, token string, kind model.ResourceKind, id int64) (model.Resource, error)
	Create(ctx context.Context, token string, kind model.ResourceKind, payload map[string]any) (model.Resource, error)
	Update(ctx context.Context, token string, in ports.UpdateInput) (model.Resource, error)
	Delete(ctx context.Context, token string, kind model.ResourceKind, id int64) error
}

// CatalogHandlers serves /api/{resource} for every catalog kind.
// The service validates the kind and the payload.
type CatalogHandlers struct {
	Svc    CatalogService
	Logger *slog.Logger
}

func (h *CatalogHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func resourceKind(r *http.Request) model.ResourceKind {
	return model.ResourceKind(r.PathValue("resource"))
}

// List handles GET /api/{resource}?page=&size=&sort=.
func (h *CatalogHandlers) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.Svc.List(r.Context(), SessionToken(r.Context()), resourceKind(r), parseListOptions(r))
	if err != nil {
		RenderError(w, r, err, h.logger())
		return
	}
	if page.Items == nil {
		page.Items = []model.Resource{}
	}
	WriteJSON(w, http.StatusOK, page)
}

// GetByID handles GET /api/{resource}/{id}.
func (h *CatalogHandlers) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		RenderError(w, r, err, h.logger())
		return
	}
	res, err := h.Svc.Get(r.Context(), SessionToken(r.Context()), resourceKind(r), id)
	if err != nil {
		RenderError(w, r, err, h.logger())
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// Create handles POST /api/{resource}.
func (h *CatalogHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if !DecodeJSONLoose(w, r, &payload) {
		return
	}
	res, err := h.Svc.Create(r.Context(), SessionToken(r.Context()), resourceKind(r), payload)
	if err != nil {
		RenderError(w, r, err, h.logger())
		return
	}
	WriteJSON(w, http.StatusCreated, res)
}

// Update handles PUT /api/{resource}/{id}.
func (h *CatalogHandlers) Update(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

// Patch handles PATCH /api/{resource}/{id}; only the fields sent are validated.
func (h *CatalogHandlers) Patch(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *CatalogHandlers) update(w http.ResponseWriter, r *http.Request, partial bool) {
	id, err := pathID(r)
	if err != nil {
		RenderError(w, r, err, h.logger())
		return
	}
	var payload map[string]any
	if !DecodeJSONLoose(w, r, &payload) {
		return
	}
	res, err := h.Svc.Update(r.Context(), SessionToken(r.Context()), ports.UpdateInput{
		Kind:    resourceKind(r),
		ID:      id,
		Payload: payload,
		Partial: partial,
	})
	if err != nil {
		RenderError(w, r, err, h.logger())
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

// Delete handles DELETE /api/{resource}/{id}.
func (h *CatalogHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		RenderError(w, r, err, h.logger())
		return
	}
	if err := h.Svc.Delete(r.Context(), SessionToken(r.Context()), resourceKind(r), id); err != nil {
		RenderError(w, r, err, h.logger())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
