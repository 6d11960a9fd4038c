package ports

import (
	"context"

	"github.com/vv-events/dashboard/internal/domain/model"
)

// VerificationAPI is the read-only platform surface used by ticket verification.
// Hrefs come from HAL links returned by the same API.
type VerificationAPI interface {
	GetEvent(ctx context.Context, token string, id int64) (*model.Event, error)
	GetOrder(ctx context.Context, token string, id int64) (*model.Order, error)
	GetUser(ctx context.Context, token string, id int64) (*model.User, error)
	FollowUser(ctx context.Context, token, href string) (*model.User, error)
	FollowEvents(ctx context.Context, token, href string) ([]model.Event, error)
	EventParticipants(ctx context.Context, token string, eventID int64) ([]model.User, error)
}

// UpdateInput describes a PUT or PATCH of a catalog resource.
type UpdateInput struct {
	Kind    model.ResourceKind
	ID      int64
	Payload map[string]any
	Partial bool
}

// CatalogAPI is the CRUD surface for dashboard tables.
type CatalogAPI interface {
	List(ctx context.Context, token string, kind model.ResourceKind, opts model.ListOptions) (model.ResourcePage, error)
	Get(ctx context.Context, token string, kind model.ResourceKind, id int64) (model.Resource, error)
	Create(ctx context.Context, token string, kind model.ResourceKind, payload map[string]any) (model.Resource, error)
	Update(ctx context.Context, token string, in UpdateInput) (model.Resource, error)
	Delete(ctx context.Context, token string, kind model.ResourceKind, id int64) error
}
