package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"lodge/config"
	"lodge/infras/otel/mocks"
	articleMocks "lodge/internal/domains/article/mocks"
	"lodge/internal/domains/article/model"
	"lodge/internal/domains/article/model/dto"
	"lodge/internal/domains/article/service"
	"lodge/shared/cache"
	cacheMocks "lodge/shared/cache/mocks"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newService(t *testing.T) (service.Article, *articleMocks.MockArticle, *cacheMocks.MockRedisCache) {
	ctrl := gomock.NewController(t)

	repo := articleMocks.NewMockArticle(ctrl)
	redis := cacheMocks.NewMockRedisCache(ctrl)

	redis.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	redis.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	redis.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	return service.New(repo, cfg, redis, cache.NewLocalCache(cfg), mocks.NewOtel()), repo, redis
}

func authorCtx() context.Context {
	return context.WithValue(context.Background(), constant.ContextKeyUserID, "author-1")
}

func TestArticleService_Create(t *testing.T) {
	t.Run("published on create", func(t *testing.T) {
		svc, repo, _ := newService(t)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a model.Article) error {
			assert.Equal(t, "hidden-waterfalls-of-bali", a.Slug)
			assert.True(t, a.Published)
			assert.NotNil(t, a.PublishedAt)
			require.NotNil(t, a.AuthorID)
			assert.Equal(t, "author-1", *a.AuthorID)
			assert.NotNil(t, a.Tags)

			return nil
		})

		id, err := svc.Create(authorCtx(), dto.CreateArticleRequest{Title: "Hidden Waterfalls of Bali", Published: true})

		require.NoError(t, err)
		assert.NotEmpty(t, id)

		time.Sleep(10 * time.Millisecond)
	})

	t.Run("draft keeps published_at empty", func(t *testing.T) {
		svc, repo, _ := newService(t)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a model.Article) error {
			assert.Nil(t, a.PublishedAt)

			return nil
		})

		_, err := svc.Create(authorCtx(), dto.CreateArticleRequest{Title: "Draft"})
		require.NoError(t, err)

		time.Sleep(10 * time.Millisecond)
	})

	t.Run("slug conflict", func(t *testing.T) {
		svc, repo, _ := newService(t)

		repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
		repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(&pq.Error{Code: "23505"})

		_, err := svc.Create(authorCtx(), dto.CreateArticleRequest{Title: "Dup"})
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})
}

func TestArticleService_GetBySlug(t *testing.T) {
	tests := []struct {
		name       string
		article    model.Article
		publicOnly bool
		wantCode   int
	}{
		{
			name:       "published article is public",
			article:    model.Article{ID: "a-1", Slug: "north-trail", Published: true},
			publicOnly: true,
		},
		{
			name:       "draft is hidden from the public",
			article:    model.Article{ID: "a-2", Slug: "north-trail"},
			publicOnly: true,
			wantCode:   http.StatusNotFound,
		},
		{
			name:    "draft is visible to the back office",
			article: model.Article{ID: "a-2", Slug: "north-trail"},
		},
		{
			name:       "missing slug",
			publicOnly: true,
			wantCode:   http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, redis := newService(t)

			redis.EXPECT().Get(gomock.Any(), "article:slug:north-trail", gomock.Any()).Return(errors.New("miss"))
			repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.article, nil)

			res, err := svc.GetBySlug(context.Background(), "north-trail", tt.publicOnly)

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.article.ID, res.ID)

			time.Sleep(10 * time.Millisecond)
		})
	}
}

func TestArticleService_Update(t *testing.T) {
	published := true
	unpublished := false
	stamped := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		existing      model.Article
		req           dto.UpdateArticleRequest
		wantStampSent bool
	}{
		{
			name:          "first publish stamps published_at",
			existing:      model.Article{ID: "a-1", Slug: "s"},
			req:           dto.UpdateArticleRequest{Published: &published},
			wantStampSent: true,
		},
		{
			name:     "republish keeps the first stamp",
			existing: model.Article{ID: "a-1", Slug: "s", PublishedAt: &stamped},
			req:      dto.UpdateArticleRequest{Published: &published},
		},
		{
			name:     "unpublish leaves published_at alone",
			existing: model.Article{ID: "a-1", Slug: "s", Published: true, PublishedAt: &stamped},
			req:      dto.UpdateArticleRequest{Published: &unpublished},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newService(t)

			repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(tt.existing, nil)
			repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
					_, sent := fields[model.FieldPublishedAt]
					assert.Equal(t, tt.wantStampSent, sent)
					assert.Equal(t, *tt.req.Published, fields[model.FieldPublished])

					return nil
				})

			require.NoError(t, svc.Update(authorCtx(), tt.req, "a-1"))

			time.Sleep(10 * time.Millisecond)
		})
	}
}

func TestArticleService_Delete(t *testing.T) {
	t.Run("deletes", func(t *testing.T) {
		svc, repo, _ := newService(t)

		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Article{ID: "a-1", Slug: "s"}, nil)
		repo.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		require.NoError(t, svc.Delete(authorCtx(), "a-1"))

		time.Sleep(10 * time.Millisecond)
	})

	t.Run("missing", func(t *testing.T) {
		svc, repo, _ := newService(t)

		repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Article{}, nil)

		err := svc.Delete(authorCtx(), "a-404")
		assert.True(t, failure.IsNotFound(err))
	})
}
