package platformapi

import (
	"encoding/json"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/vv-events/dashboard/internal/domain/model"
	apperrors "github.com/vv-events/dashboard/internal/errors"
)

// HAL collections put items under `_embedded.<rel>`; the rel name varies per
// resource, so every embedded array is flattened into one list.
const (
	exprEmbeddedItems = "values(_embedded || `{}`)[]"
	exprPage          = "page"
)

// halDocument is a decoded HAL response kept generic for JMESPath queries.
type halDocument struct {
	raw any
}

func parseHAL(data []byte) (halDocument, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return halDocument{}, apperrors.Wrap(err, apperrors.ErrCodeUpstream, "réponse invalide de la plateforme")
	}
	return halDocument{raw: raw}, nil
}

func (d halDocument) search(expr string) (any, error) {
	out, err := jmespath.Search(expr, d.raw)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeInternal, "evaluate %q", expr)
	}
	return out, nil
}

// Items returns the embedded collection items, or the top-level array when
// the platform answers with a bare list.
func (d halDocument) Items() ([]map[string]any, error) {
	if arr, ok := d.raw.([]any); ok {
		return toObjects(arr), nil
	}
	out, err := d.search(exprEmbeddedItems)
	if err != nil {
		return nil, err
	}
	arr, _ := out.([]any)
	return toObjects(arr), nil
}

// Page returns the paging envelope, zero when absent.
func (d halDocument) Page() (model.Page, error) {
	out, err := d.search(exprPage)
	if err != nil || out == nil {
		return model.Page{}, err
	}
	var p model.Page
	if err := remarshal(out, &p); err != nil {
		return model.Page{}, err
	}
	return p, nil
}

// LinkHref evaluates `_links.<rel>.href`.
func (d halDocument) LinkHref(rel string) string {
	out, err := d.search("_links." + quoteIdent(rel) + ".href")
	if err != nil {
		return ""
	}
	href, _ := out.(string)
	return href
}

func quoteIdent(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func toObjects(arr []any) []map[string]any {
	out := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// remarshal converts a generic JSON value into a typed struct.
func remarshal(in, out any) error {
	buf, err := json.Marshal(in)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "encode hal fragment")
	}
	if err := json.Unmarshal(buf, out); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeUpstream, "réponse invalide de la plateforme")
	}
	return nil
}

// decodeItems converts embedded items into typed values.
func decodeItems[T any](items []map[string]any) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := remarshal(item, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
