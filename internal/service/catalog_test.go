package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/vv-events/dashboard/internal/adapters/platformapi"
	"github.com/vv-events/dashboard/internal/domain/model"
	apperrors "github.com/vv-events/dashboard/internal/errors"
	"github.com/vv-events/dashboard/internal/mocks"
	"github.com/vv-events/dashboard/internal/ports"
	"github.com/vv-events/dashboard/internal/testutil"
)

func newMockCatalog(t *testing.T) (*CatalogService, *mocks.MockCatalogAPI) {
	t.Helper()
	ctrl := gomock.NewController(t)
	api := mocks.NewMockCatalogAPI(ctrl)
	svc, err := NewCatalogService(CatalogServiceOptions{API: api, PageSize: 25})
	require.NoError(t, err)
	return svc, api
}

func TestNewCatalogService_RequiresAPI(t *testing.T) {
	_, err := NewCatalogService(CatalogServiceOptions{})
	require.Error(t, err)
}

func TestCatalogService_UnknownKind(t *testing.T) {
	svc, api := newMockCatalog(t)
	api.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.List(context.Background(), "tok", model.ResourceKind("tickets"), model.ListOptions{})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = svc.Create(context.Background(), "tok", model.ResourceKind("orders"), map[string]any{})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCatalogService_List_NormalizesPaging(t *testing.T) {
	svc, api := newMockCatalog(t)
	api.EXPECT().
		List(gomock.Any(), "tok", model.ResourceEvents, model.ListOptions{Page: 0, Size: 25}).
		Return(model.ResourcePage{Items: []model.Resource{{"id": float64(1)}}}, nil)

	page, err := svc.List(context.Background(), "tok", model.ResourceEvents, model.ListOptions{Page: -3})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
}

func TestCatalogService_Create_ValidatesBeforeNetwork(t *testing.T) {
	tests := []struct {
		name    string
		kind    model.ResourceKind
		payload map[string]any
		field   string
	}{
		{"missing event name", model.ResourceEvents, map[string]any{"date": "2025-06-21"}, "name"},
		{"bad event date", model.ResourceEvents, map[string]any{"name": "Concert", "date": "demain"}, "date"},
		{"bad user email", model.ResourceUsers, map[string]any{"email": "nope"}, "email"},
		{"unknown role", model.ResourceUsers, map[string]any{"email": "a@vv.test", "role": "root"}, "role"},
		{"missing place address", model.ResourcePlaces, map[string]any{"name": "Salle"}, "address"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, api := newMockCatalog(t)
			api.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			_, err := svc.Create(context.Background(), "tok", tt.kind, tt.payload)

			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, tt.field, apperrors.GetField(err))
			assert.NotEmpty(t, apperrors.GetMessage(err))
		})
	}
}

func TestCatalogService_Create_NilPayload(t *testing.T) {
	svc, api := newMockCatalog(t)
	api.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.Create(context.Background(), "tok", model.ResourceCities, nil)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCatalogService_Update(t *testing.T) {
	t.Run("partial only validates present fields", func(t *testing.T) {
		svc, api := newMockCatalog(t)
		in := ports.UpdateInput{Kind: model.ResourceEvents, ID: 4, Payload: map[string]any{"capacity": 120}, Partial: true}
		api.EXPECT().Update(gomock.Any(), "tok", in).Return(model.Resource{"id": float64(4)}, nil)

		res, err := svc.Update(context.Background(), "tok", in)
		require.NoError(t, err)
		assert.InDelta(t, 4, res["id"], 0)
	})

	t.Run("full update requires every required field", func(t *testing.T) {
		svc, api := newMockCatalog(t)
		api.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Update(context.Background(), "tok", ports.UpdateInput{
			Kind: model.ResourceEvents, ID: 4, Payload: map[string]any{"capacity": 120},
		})
		assert.Equal(t, "name", apperrors.GetField(err))
	})

	t.Run("invalid id", func(t *testing.T) {
		svc, api := newMockCatalog(t)
		api.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Update(context.Background(), "tok", ports.UpdateInput{
			Kind: model.ResourceCities, ID: 0, Payload: map[string]any{"name": "Lyon"},
		})
		assert.Equal(t, "id", apperrors.GetField(err))
	})
}

func TestCatalogService_PlatformErrorsAreWrapped(t *testing.T) {
	svc, api := newMockCatalog(t)
	api.EXPECT().Delete(gomock.Any(), "tok", model.ResourceCities, int64(9)).Return(apperrors.NotFound("Erreur HTTP: 404"))
	api.EXPECT().Get(gomock.Any(), "tok", model.ResourceCities, int64(9)).Return(nil, apperrors.Forbidden("Erreur HTTP: 403"))

	err := svc.Delete(context.Background(), "tok", model.ResourceCities, 9)
	assert.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), "delete cities 9")

	_, err = svc.Get(context.Background(), "tok", model.ResourceCities, 9)
	assert.True(t, apperrors.IsForbidden(err))
}

func TestCatalogService_AgainstPlatform(t *testing.T) {
	p := testutil.NewFakePlatform(t)
	client, err := platformapi.NewClient(platformapi.Config{BaseURL: p.BaseURL(), Timeout: 5 * time.Second})
	require.NoError(t, err)
	svc, err := NewCatalogService(CatalogServiceOptions{API: client})
	require.NoError(t, err)
	ctx := context.Background()

	created, err := svc.Create(ctx, "admin-token", model.ResourceCategories, map[string]any{"name": "Jazz"})
	require.NoError(t, err)
	id, ok := model.TrailingID(created.SelfHref())
	require.True(t, ok)

	before := p.Requests()
	_, err = svc.Create(ctx, "admin-token", model.ResourceCategories, map[string]any{"name": " "})
	require.Error(t, err)
	assert.Equal(t, before, p.Requests(), "invalid payloads never reach the platform")

	updated, err := svc.Update(ctx, "admin-token", ports.UpdateInput{
		Kind: model.ResourceCategories, ID: id, Payload: map[string]any{"name": "Jazz & Blues"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Jazz & Blues", updated["name"])

	page, err := svc.List(ctx, "admin-token", model.ResourceCategories, model.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)

	require.NoError(t, svc.Delete(ctx, "admin-token", model.ResourceCategories, id))
	_, err = svc.Get(ctx, "admin-token", model.ResourceCategories, id)
	assert.True(t, apperrors.IsNotFound(err))
}
