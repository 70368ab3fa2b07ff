package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"lodge/config"
	"lodge/infras/otel/mocks"
	ownerMocks "lodge/internal/domains/owner/mocks"
	"lodge/internal/domains/owner/model"
	"lodge/internal/domains/owner/model/dto"
	"lodge/internal/domains/owner/service"
	cacheMocks "lodge/shared/cache/mocks"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setup(t *testing.T) (service.Owner, *ownerMocks.MockOwner, *cacheMocks.MockRedisCache) {
	ctrl := gomock.NewController(t)

	mockRepo := ownerMocks.NewMockOwner(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	return service.New(mockRepo, cfg, mockCache, mocks.NewOtel()), mockRepo, mockCache
}

func TestOwnerService_Create(t *testing.T) {
	svc, mockRepo, _ := setup(t)
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")

	mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, o model.Owner) error {
		assert.Equal(t, "Hana", o.Name)
		assert.Equal(t, "admin-1", o.CreatedBy)
		assert.NotEmpty(t, o.ID)

		return nil
	})

	id, err := svc.Create(ctx, dto.CreateOwnerRequest{Name: "Hana"})

	require.NoError(t, err)
	assert.NotEmpty(t, id)

	mockRepo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	_, err = svc.Create(ctx, dto.CreateOwnerRequest{Name: "Hana"})

	require.Error(t, err)
	assert.Equal(t, "Failed to create owner", err.Error())

	time.Sleep(10 * time.Millisecond)
}

func TestOwnerService_Get(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*ownerMocks.MockOwner, *cacheMocks.MockRedisCache)
		wantCode  int
		wantName  string
	}{
		{
			name: "cache hit",
			setupMock: func(_ *ownerMocks.MockOwner, c *cacheMocks.MockRedisCache) {
				c.EXPECT().Get(gomock.Any(), "owner:get:o-1", gomock.Any()).DoAndReturn(func(_ context.Context, _ string, v any) error {
					v.(*dto.OwnerResponse).Name = "Cached"

					return nil
				})
			},
			wantName: "Cached",
		},
		{
			name: "from repository",
			setupMock: func(r *ownerMocks.MockOwner, c *cacheMocks.MockRedisCache) {
				c.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
				r.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Owner{ID: "o-1", Name: "Hana"}, nil)
			},
			wantName: "Hana",
		},
		{
			name: "not found",
			setupMock: func(r *ownerMocks.MockOwner, c *cacheMocks.MockRedisCache) {
				c.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
				r.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Owner{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, mockCache := setup(t)
			tt.setupMock(mockRepo, mockCache)

			res, err := svc.Get(context.Background(), "o-1")

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, res.Name)

			time.Sleep(10 * time.Millisecond)
		})
	}
}

func TestOwnerService_GetAll(t *testing.T) {
	svc, mockRepo, mockCache := setup(t)

	mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss")).Times(2)
	mockRepo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
	mockRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Owner{{ID: "1"}, {ID: "2"}}, nil)

	res, err := svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 2}, gDto.FilterGroup{})

	require.NoError(t, err)
	assert.Len(t, res.Owners, 2)
	assert.Equal(t, 3, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)

	time.Sleep(10 * time.Millisecond)
}

func TestOwnerService_Update(t *testing.T) {
	svc, mockRepo, _ := setup(t)
	name := "Renamed"

	mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	mockRepo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
		assert.Equal(t, "Renamed", fields["name"])
		assert.NotContains(t, fields, "email")

		return nil
	})

	require.NoError(t, svc.Update(context.Background(), dto.UpdateOwnerRequest{Name: &name}, "o-1"))

	mockRepo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

	err := svc.Update(context.Background(), dto.UpdateOwnerRequest{Name: &name}, "missing")
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))

	time.Sleep(10 * time.Millisecond)
}

func TestOwnerService_Delete(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(*ownerMocks.MockOwner)
		wantCode  int
	}{
		{
			name: "success",
			setupMock: func(r *ownerMocks.MockOwner) {
				r.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				r.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "still referenced by a property",
			setupMock: func(r *ownerMocks.MockOwner) {
				r.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				r.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: "23503"})
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "missing",
			setupMock: func(r *ownerMocks.MockOwner) {
				r.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mockRepo, _ := setup(t)
			tt.setupMock(mockRepo)

			err := svc.Delete(context.Background(), "o-1")

			if tt.wantCode == 0 {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))
			}

			time.Sleep(10 * time.Millisecond)
		})
	}
}
