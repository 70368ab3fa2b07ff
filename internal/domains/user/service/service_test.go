package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"lodge/config"
	"lodge/infras/otel/mocks"
	pgMocks "lodge/infras/postgres/mocks"
	sessionMocks "lodge/internal/domains/auth/mocks"
	userMocks "lodge/internal/domains/user/mocks"
	"lodge/internal/domains/user/model"
	"lodge/internal/domains/user/model/dto"
	"lodge/internal/domains/user/service"
	cacheMocks "lodge/shared/cache/mocks"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"
	"lodge/shared/password"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type deps struct {
	repo     *userMocks.MockUser
	sessions *sessionMocks.MockSession
	tx       *pgMocks.MockTransactor
	cache    *cacheMocks.MockRedisCache
}

func newService(t *testing.T) (service.User, deps) {
	ctrl := gomock.NewController(t)

	d := deps{
		repo:     userMocks.NewMockUser(ctrl),
		sessions: sessionMocks.NewMockSession(ctrl),
		tx:       pgMocks.NewMockTransactor(ctrl),
		cache:    cacheMocks.NewMockRedisCache(ctrl),
	}

	d.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	d.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	d.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	return service.New(d.repo, d.sessions, d.tx, cfg, d.cache, mocks.NewOtel()), d
}

func adminCtx() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")
}

func TestUserService_Create(t *testing.T) {
	req := dto.CreateUserRequest{Email: "host@lodge.test", Password: "s3cretpass"}

	t.Run("hashes password and defaults role", func(t *testing.T) {
		svc, d := newService(t)

		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		d.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u model.User) error {
			assert.Equal(t, constant.RoleRegular, u.Role)
			assert.True(t, u.Active)
			assert.NoError(t, password.Verify("s3cretpass", u.Password))
			assert.Equal(t, "admin-1", u.CreatedBy)

			return nil
		})

		id, err := svc.Create(adminCtx(), req)

		require.NoError(t, err)
		assert.NotEmpty(t, id)

		time.Sleep(10 * time.Millisecond)
	})

	t.Run("email taken", func(t *testing.T) {
		svc, d := newService(t)

		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)

		_, err := svc.Create(adminCtx(), req)
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestUserService_Get(t *testing.T) {
	lastLogin := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		user     model.User
		wantCode int
	}{
		{
			name: "found",
			user: model.User{ID: "u-1", Email: "a@b.c", Role: constant.RoleAdmin, LastLogin: &lastLogin},
		},
		{
			name:     "not found",
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newService(t)

			d.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss"))
			d.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.user, nil)

			res, err := svc.Get(context.Background(), "u-1")
			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, constant.RoleAdmin, res.Role)
			require.NotNil(t, res.LastLogin)

			time.Sleep(10 * time.Millisecond)
		})
	}
}

func TestUserService_Update(t *testing.T) {
	t.Run("empty patch", func(t *testing.T) {
		svc, _ := newService(t)

		err := svc.Update(adminCtx(), dto.UpdateUserRequest{}, "u-1")
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	})

	t.Run("deactivate", func(t *testing.T) {
		svc, d := newService(t)

		active := false

		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		d.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, false, fields[model.FieldActive])

				return nil
			})

		require.NoError(t, svc.Update(adminCtx(), dto.UpdateUserRequest{Active: &active}, "u-1"))

		time.Sleep(10 * time.Millisecond)
	})
}

func TestUserService_Delete(t *testing.T) {
	t.Run("sessions go first", func(t *testing.T) {
		svc, d := newService(t)

		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		d.tx.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, fn func(*sqlx.Tx) error) error { return fn(nil) })

		gomock.InOrder(
			d.sessions.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
			d.repo.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		)

		require.NoError(t, svc.Delete(adminCtx(), "u-1"))

		time.Sleep(10 * time.Millisecond)
	})

	t.Run("session failure keeps the user", func(t *testing.T) {
		svc, d := newService(t)

		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		d.tx.EXPECT().WithTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, fn func(*sqlx.Tx) error) error { return fn(nil) })
		d.sessions.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("lock timeout"))

		err := svc.Delete(adminCtx(), "u-1")
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
	})

	t.Run("missing user", func(t *testing.T) {
		svc, d := newService(t)

		d.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

		assert.True(t, failure.IsNotFound(svc.Delete(adminCtx(), "u-1")))
	})
}
