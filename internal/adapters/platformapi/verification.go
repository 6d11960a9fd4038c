package platformapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/vv-events/dashboard/internal/domain/model"
	apperrors "github.com/vv-events/dashboard/internal/errors"
	"github.com/vv-events/dashboard/internal/ports"
)

var _ ports.VerificationAPI = (*Client)(nil)

func idPath(collection string, id int64, rest ...string) string {
	parts := append([]string{collection, strconv.FormatInt(id, 10)}, rest...)
	return "/" + strings.Join(parts, "/")
}

// GetEvent fetches GET /events/{id}.
func (c *Client) GetEvent(ctx context.Context, token string, id int64) (*model.Event, error) {
	var e model.Event
	if err := c.getJSON(ctx, request{Path: idPath("events", id), Token: token}, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetOrder fetches GET /orders/{id}.
func (c *Client) GetOrder(ctx context.Context, token string, id int64) (*model.Order, error) {
	var o model.Order
	if err := c.getJSON(ctx, request{Path: idPath("orders", id), Token: token}, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// GetUser fetches GET /users/{id}.
func (c *Client) GetUser(ctx context.Context, token string, id int64) (*model.User, error) {
	return c.FollowUser(ctx, token, idPath("users", id))
}

// FollowUser fetches the user at a HAL href.
func (c *Client) FollowUser(ctx context.Context, token, href string) (*model.User, error) {
	if strings.TrimSpace(href) == "" {
		return nil, apperrors.NotFound("lien utilisateur manquant")
	}
	var u model.User
	if err := c.getJSON(ctx, request{Path: href, Token: token}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// FollowEvents fetches the event collection at a HAL href (e.g. a user's events link).
func (c *Client) FollowEvents(ctx context.Context, token, href string) ([]model.Event, error) {
	if strings.TrimSpace(href) == "" {
		return nil, apperrors.NotFound("lien événements manquant")
	}
	return collection[model.Event](ctx, c, request{Path: href, Token: token})
}

// EventParticipants fetches GET /events/{id}/participants.
func (c *Client) EventParticipants(ctx context.Context, token string, eventID int64) ([]model.User, error) {
	return collection[model.User](ctx, c, request{Path: idPath("events", eventID, "participants"), Token: token})
}

func collection[T any](ctx context.Context, c *Client, r request) ([]T, error) {
	r.Method = http.MethodGet
	data, err := c.do(ctx, r)
	if err != nil {
		return nil, err
	}
	doc, err := parseHAL(data)
	if err != nil {
		return nil, err
	}
	items, err := doc.Items()
	if err != nil {
		return nil, err
	}
	return decodeItems[T](items)
}
