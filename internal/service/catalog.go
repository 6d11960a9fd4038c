package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vv-events/dashboard/internal/domain/model"
	apperrors "github.com/vv-events/dashboard/internal/errors"
	"github.com/vv-events/dashboard/internal/ports"
)

// CatalogServiceOptions groups dependencies for CatalogService.
type CatalogServiceOptions struct {
	API ports.CatalogAPI
	// PageSize is the default listing size.
	PageSize int
	Logger   *slog.Logger
}

// CatalogService validates dashboard table edits and forwards them to the platform.
// Validation failures never reach the network.
type CatalogService struct {
	api      ports.CatalogAPI
	pageSize int
	logger   *slog.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(opts CatalogServiceOptions) (*CatalogService, error) {
	if opts.API == nil {
		return nil, errors.New("catalog API is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		api:      opts.API,
		pageSize: opts.PageSize,
		logger:   logger.With("component", "catalog"),
	}, nil
}

func (s *CatalogService) spec(kind model.ResourceKind) (model.ResourceSpec, error) {
	spec, ok := model.SpecFor(kind)
	if !ok {
		return model.ResourceSpec{}, apperrors.NotFoundf("ressource inconnue: %s", kind)
	}
	return spec, nil
}

func validID(id int64) error {
	if id <= 0 {
		return apperrors.ValidationField("id", "identifiant invalide")
	}
	return nil
}

// validate returns a field error for the first failing field.
func validate(spec model.ResourceSpec, payload map[string]any, partial bool) error {
	if payload == nil {
		return apperrors.Validation("corps de requête manquant")
	}
	errs, field := spec.Validate(payload, partial)
	if field == "" {
		return nil
	}
	return apperrors.ValidationField(field, errs[field])
}

// List returns one page of a collection.
func (s *CatalogService) List(ctx context.Context, token string, kind model.ResourceKind, opts model.ListOptions) (model.ResourcePage, error) {
	if _, err := s.spec(kind); err != nil {
		return model.ResourcePage{}, err
	}
	page, err := s.api.List(ctx, token, kind, opts.Normalize(s.pageSize))
	if err != nil {
		return model.ResourcePage{}, fmt.Errorf("list %s: %w", kind, err)
	}
	return page, nil
}

// Get returns a single resource.
func (s *CatalogService) Get(ctx context.Context, token string, kind model.ResourceKind, id int64) (model.Resource, error) {
	if _, err := s.spec(kind); err != nil {
		return nil, err
	}
	if err := validID(id); err != nil {
		return nil, err
	}
	res, err := s.api.Get(ctx, token, kind, id)
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", kind, id, err)
	}
	return res, nil
}

// Create validates payload against the kind's rules and creates the resource.
func (s *CatalogService) Create(ctx context.Context, token string, kind model.ResourceKind, payload map[string]any) (model.Resource, error) {
	spec, err := s.spec(kind)
	if err != nil {
		return nil, err
	}
	if err := validate(spec, payload, false); err != nil {
		return nil, err
	}
	res, err := s.api.Create(ctx, token, kind, payload)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", kind, err)
	}
	s.logger.InfoContext(ctx, "resource created", "kind", kind)
	return res, nil
}

// Update replaces (PUT) or patches (PATCH) a resource. Partial updates only
// validate the fields they carry.
func (s *CatalogService) Update(ctx context.Context, token string, in ports.UpdateInput) (model.Resource, error) {
	spec, err := s.spec(in.Kind)
	if err != nil {
		return nil, err
	}
	if err := validID(in.ID); err != nil {
		return nil, err
	}
	if err := validate(spec, in.Payload, in.Partial); err != nil {
		return nil, err
	}
	res, err := s.api.Update(ctx, token, in)
	if err != nil {
		return nil, fmt.Errorf("update %s %d: %w", in.Kind, in.ID, err)
	}
	s.logger.InfoContext(ctx, "resource updated", "kind", in.Kind, "id", in.ID, "partial", in.Partial)
	return res, nil
}

// Delete removes a resource.
func (s *CatalogService) Delete(ctx context.Context, token string, kind model.ResourceKind, id int64) error {
	if _, err := s.spec(kind); err != nil {
		return err
	}
	if err := validID(id); err != nil {
		return err
	}
	if err := s.api.Delete(ctx, token, kind, id); err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	s.logger.InfoContext(ctx, "resource deleted", "kind", kind, "id", id)
	return nil
}
