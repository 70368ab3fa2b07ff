package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"lodge/config"
	"lodge/infras/otel/mocks"
	pgMocks "lodge/infras/postgres/mocks"
	imageMocks "lodge/internal/domains/image/mocks"
	imageModel "lodge/internal/domains/image/model"
	ownerMocks "lodge/internal/domains/owner/mocks"
	propertyMocks "lodge/internal/domains/property/mocks"
	"lodge/internal/domains/property/model"
	"lodge/internal/domains/property/model/dto"
	"lodge/internal/domains/property/service"
	roomMocks "lodge/internal/domains/room/mocks"
	roomModel "lodge/internal/domains/room/model"
	"lodge/shared/cache"
	cacheMocks "lodge/shared/cache/mocks"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type deps struct {
	repo      *propertyMocks.MockProperty
	owner     *ownerMocks.MockOwner
	room      *roomMocks.MockRoom
	image     *imageMocks.MockImage
	publisher *imageMocks.MockPublisher
	tx        *pgMocks.MockTransactor
	cache     *cacheMocks.MockRedisCache
	local     cache.LocalCache
}

func newService(t *testing.T) (service.Property, deps) {
	ctrl := gomock.NewController(t)

	d := deps{
		repo:      propertyMocks.NewMockProperty(ctrl),
		owner:     ownerMocks.NewMockOwner(ctrl),
		room:      roomMocks.NewMockRoom(ctrl),
		image:     imageMocks.NewMockImage(ctrl),
		publisher: imageMocks.NewMockPublisher(ctrl),
		tx:        pgMocks.NewMockTransactor(ctrl),
		cache:     cacheMocks.NewMockRedisCache(ctrl),
	}

	d.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	d.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	d.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 60
	d.local = cache.NewLocalCache(cfg)

	svc := service.New(d.repo, d.owner, d.room, d.image, d.publisher, d.tx, cfg, d.cache, d.local, mocks.NewOtel())

	return svc, d
}

func userCtx() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")
}

func TestPropertyService_Create(t *testing.T) {
	req := dto.CreatePropertyRequest{
		Name:    "Pondok Café Hills",
		Type:    model.TypeCabin,
		City:    "Bogor",
		Region:  "West Java",
		OwnerID: "0f1e2d3c-4b5a-4968-8776-655443322110",
	}

	t.Run("slug from name", func(t *testing.T) {
		svc, d := newService(t)

		d.owner.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p model.Property) error {
			assert.Equal(t, "pondok-cafe-hills", p.Slug)
			assert.Equal(t, model.StatusDraft, p.Status)
			assert.Equal(t, "14:00", p.CheckInTime)
			assert.NotNil(t, p.Amenities)

			return nil
		})

		id, err := svc.Create(userCtx(), req)

		require.NoError(t, err)
		assert.NotEmpty(t, id)

		time.Sleep(10 * time.Millisecond)
	})

	t.Run("evicts the local catalog before returning", func(t *testing.T) {
		svc, d := newService(t)

		d.local.Set("catalog:properties", []string{"stale"})
		d.local.Set("user:get:1", "kept")

		d.owner.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)

		_, err := svc.Create(userCtx(), req)
		require.NoError(t, err)

		_, ok := d.local.Get("catalog:properties")
		assert.False(t, ok)

		_, ok = d.local.Get("user:get:1")
		assert.True(t, ok)

		time.Sleep(10 * time.Millisecond)
	})

	t.Run("taken slug gets a suffix", func(t *testing.T) {
		svc, d := newService(t)

		d.owner.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p model.Property) error {
			assert.True(t, strings.HasPrefix(p.Slug, "pondok-cafe-hills-"))
			assert.Len(t, p.Slug, len("pondok-cafe-hills-")+6)

			return nil
		})

		_, err := svc.Create(userCtx(), req)
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
	})

	t.Run("unknown owner", func(t *testing.T) {
		svc, d := newService(t)

		d.owner.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		_, err := svc.Create(userCtx(), req)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("racing insert on the same slug", func(t *testing.T) {
		svc, d := newService(t)

		d.owner.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: "23505"})

		_, err := svc.Create(userCtx(), req)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("database failure has a display message", func(t *testing.T) {
		svc, d := newService(t)

		d.owner.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))

		_, err := svc.Create(userCtx(), req)
		require.Error(t, err)
		assert.Equal(t, "Failed to create property", err.Error())
	})
}

func TestPropertyService_GetBySlug(t *testing.T) {
	property := model.Property{ID: "p-1", Slug: "cabin-a", Name: "Cabin A", Status: model.StatusDraft}

	t.Run("admin sees drafts with rooms and images", func(t *testing.T) {
		svc, d := newService(t)

		d.cache.EXPECT().Get(gomock.Any(), "property:slug:cabin-a", gomock.Any()).Return(errors.New("miss"))
		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(property, nil)
		d.room.EXPECT().ListByProperties(gomock.Any(), []string{"p-1"}).Return([]roomModel.Room{{ID: "r-1", PropertyID: "p-1", Name: "Loft"}}, nil)
		d.image.EXPECT().
			ListByOwner(gomock.Any(), imageModel.Owner{Type: imageModel.EntityProperty, ID: "p-1"}).
			Return([]imageModel.Image{{ID: "i-1", IsCover: true}, {ID: "i-2", SortOrder: 1}}, nil)

		res, err := svc.GetBySlug(context.Background(), "cabin-a", false)

		require.NoError(t, err)
		assert.Equal(t, "Cabin A", res.Name)
		require.Len(t, res.Rooms, 1)
		require.Len(t, res.Images, 2)
		assert.True(t, res.Images[0].IsCover)

		time.Sleep(10 * time.Millisecond)
	})

	t.Run("public page hides drafts", func(t *testing.T) {
		svc, d := newService(t)

		d.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, _ string, v any) error {
			v.(*dto.PropertyDetailResponse).Status = model.StatusDraft

			return nil
		})

		_, err := svc.GetBySlug(context.Background(), "cabin-a", true)
		assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
	})

	t.Run("missing slug", func(t *testing.T) {
		svc, d := newService(t)

		d.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
		d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Property{}, nil)

		_, err := svc.GetBySlug(context.Background(), "nope", true)
		assert.True(t, failure.IsNotFound(err))
	})
}

func TestPropertyService_Update(t *testing.T) {
	svc, d := newService(t)
	owner := "0f1e2d3c-4b5a-4968-8776-655443322110"
	featured := false

	d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	d.owner.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	d.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
		assert.Equal(t, false, fields["featured"])
		assert.Equal(t, owner, fields["owner_id"])
		assert.NotContains(t, fields, "name")

		return nil
	})

	require.NoError(t, svc.Update(userCtx(), dto.UpdatePropertyRequest{Featured: &featured, OwnerID: &owner}, "p-1"))

	time.Sleep(10 * time.Millisecond)
}

func TestPropertyService_Delete(t *testing.T) {
	svc, d := newService(t)

	propertyImages := []imageModel.Image{{ID: "i-1", PublicID: "a"}}
	roomImages := []imageModel.Image{{ID: "i-2", PublicID: "b"}}

	d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	d.room.EXPECT().ListByProperties(gomock.Any(), []string{"p-1"}).Return([]roomModel.Room{{ID: "r-1"}, {ID: "r-2"}}, nil)
	d.tx.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fn func(*sqlx.Tx) error) error {
		return fn(nil)
	})
	d.image.EXPECT().DeleteByOwnersTx(gomock.Any(), gomock.Any(), imageModel.EntityProperty, []string{"p-1"}).Return(propertyImages, nil)
	d.image.EXPECT().DeleteByOwnersTx(gomock.Any(), gomock.Any(), imageModel.EntityRoom, []string{"r-1", "r-2"}).Return(roomImages, nil)
	d.repo.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
	d.publisher.EXPECT().AssetCleanup(gomock.Any(), "owner_deleted", propertyImages[0], roomImages[0]).Return(nil)

	require.NoError(t, svc.Delete(userCtx(), "p-1"))

	time.Sleep(10 * time.Millisecond)
}

func TestPropertyService_DeleteRollsBack(t *testing.T) {
	svc, d := newService(t)

	d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	d.room.EXPECT().ListByProperties(gomock.Any(), gomock.Any()).Return(nil, nil)
	d.tx.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fn func(*sqlx.Tx) error) error {
		return fn(nil)
	})
	d.image.EXPECT().DeleteByOwnersTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	d.repo.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("deadlock"))

	err := svc.Delete(userCtx(), "p-1")

	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
}
