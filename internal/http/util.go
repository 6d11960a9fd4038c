package httpx

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/vv-events/dashboard/internal/domain/model"
	apperrors "github.com/vv-events/dashboard/internal/errors"
	"github.com/vv-events/dashboard/internal/service"
)

// parseIntQuery returns the integer value of a query param or a default.
// It is tolerant of missing/invalid values.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// parseListOptions reads ?page=&size=&sort= into ListOptions. Clamping is
// left to the service.
func parseListOptions(r *http.Request) model.ListOptions {
	return model.ListOptions{
		Page: parseIntQuery(r, "page", 0),
		Size: parseIntQuery(r, "size", 0),
		Sort: strings.TrimSpace(r.URL.Query().Get("sort")),
	}
}

// pathID parses the {id} path value.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.ValidationField("id", "identifiant invalide")
	}
	return id, nil
}

// safeRedirectPath keeps only same-origin relative paths; anything else is "/".
func safeRedirectPath(candidate string) string {
	return service.SanitizeRedirect(candidate)
}
