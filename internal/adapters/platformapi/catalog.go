package platformapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vv-events/dashboard/internal/domain/model"
	"github.com/vv-events/dashboard/internal/ports"
)

var _ ports.CatalogAPI = (*Client)(nil)

// List fetches one page of a collection.
func (c *Client) List(ctx context.Context, token string, kind model.ResourceKind, opts model.ListOptions) (model.ResourcePage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(opts.Page))
	q.Set("size", strconv.Itoa(opts.Size))
	if opts.Sort != "" {
		q.Set("sort", opts.Sort)
	}

	data, err := c.do(ctx, request{Method: http.MethodGet, Path: "/" + string(kind), Query: q, Token: token})
	if err != nil {
		return model.ResourcePage{}, err
	}
	doc, err := parseHAL(data)
	if err != nil {
		return model.ResourcePage{}, err
	}
	items, err := doc.Items()
	if err != nil {
		return model.ResourcePage{}, err
	}
	page, err := doc.Page()
	if err != nil {
		return model.ResourcePage{}, err
	}

	out := model.ResourcePage{Items: make([]model.Resource, 0, len(items)), Page: page}
	for _, item := range items {
		out.Items = append(out.Items, model.Resource(item))
	}
	return out, nil
}

// Get fetches a single resource.
func (c *Client) Get(ctx context.Context, token string, kind model.ResourceKind, id int64) (model.Resource, error) {
	var r model.Resource
	if err := c.getJSON(ctx, request{Path: idPath(string(kind), id), Token: token}, &r); err != nil {
		return nil, err
	}
	return r, nil
}

// Create posts a new resource.
func (c *Client) Create(ctx context.Context, token string, kind model.ResourceKind, payload map[string]any) (model.Resource, error) {
	data, err := c.do(ctx, request{Method: http.MethodPost, Path: "/" + string(kind), Token: token, Body: payload})
	if err != nil {
		return nil, err
	}
	return decodeResource(data)
}

// Update replaces (PUT) or patches (PATCH) a resource. The payload's self link
// is followed when it names the same id; otherwise the URL is built from the id.
func (c *Client) Update(ctx context.Context, token string, in ports.UpdateInput) (model.Resource, error) {
	method := http.MethodPut
	if in.Partial {
		method = http.MethodPatch
	}
	target := idPath(string(in.Kind), in.ID)
	if self := model.Resource(in.Payload).SelfHref(); self != "" {
		if id, ok := model.TrailingID(self); ok && id == in.ID {
			target = self
		}
	}

	body := make(map[string]any, len(in.Payload))
	for k, v := range in.Payload {
		if k == "_links" || k == "_embedded" {
			continue
		}
		body[k] = v
	}

	data, err := c.do(ctx, request{Method: method, Path: target, Token: token, Body: body})
	if err != nil {
		return nil, err
	}
	return decodeResource(data)
}

// Delete removes a resource.
func (c *Client) Delete(ctx context.Context, token string, kind model.ResourceKind, id int64) error {
	_, err := c.do(ctx, request{Method: http.MethodDelete, Path: idPath(string(kind), id), Token: token})
	return err
}

// decodeResource tolerates empty bodies (204) from write endpoints.
func decodeResource(data []byte) (model.Resource, error) {
	if len(data) == 0 {
		return model.Resource{}, nil
	}
	var r model.Resource
	if err := decode(data, &r); err != nil {
		return nil, err
	}
	return r, nil
}
