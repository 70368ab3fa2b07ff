package service

import (
	"context"
	"fmt"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/infras/postgres"
	"lodge/internal/domains/article/model"
	"lodge/internal/domains/article/model/dto"
	"lodge/internal/domains/article/repository"
	"lodge/shared"
	"lodge/shared/cache"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"
	"lodge/shared/slug"
	"lodge/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetArticle       = "article:get"
	cacheGetAllArticle    = "article:gets"
	cacheCountArticle     = "article:count"
	cacheGetArticleBySlug = "article:slug"

	slugSuffixLength = 6
)

type Article interface {
	Create(ctx context.Context, req dto.CreateArticleRequest) (string, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetArticlesResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.ArticleResponse, error)
	GetBySlug(ctx context.Context, slug string, publicOnly bool) (dto.ArticleResponse, error)
	Update(ctx context.Context, req dto.UpdateArticleRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo  repository.Article
	cfg   *config.Config
	cache cache.RedisCache
	local cache.LocalCache
	otel  otel.Otel
}

func New(repo repository.Article, cfg *config.Config, cache cache.RedisCache, local cache.LocalCache, otel otel.Otel) Article {
	return &serviceImpl{
		repo:  repo,
		cfg:   cfg,
		cache: cache,
		local: local,
		otel:  otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateArticleRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	base := req.Slug
	if base == constant.Empty {
		base = slug.Make(req.Title)
	}

	key, err := s.uniqueSlug(ctx, base)
	if err != nil {
		return id, err
	}

	article := req.ToModel(user, key)

	if err = s.repo.Insert(ctx, article); err != nil {
		log.Error().Err(err).Str("slug", key).Msg("failed to create article")

		if postgres.IsUniqueViolation(err) {
			return id, failure.Conflict("article slug is already used") // nolint:wrapcheck
		}

		return id, failure.Operation("Failed to create article", err)
	}

	s.invalidate(ctx)

	return article.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetArticlesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllArticle, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get articles")

		return res, fmt.Errorf("failed to get articles: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save articles to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountArticle, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count articles")

		return res, fmt.Errorf("failed to count articles: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save article count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ArticleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.cached(ctx, shared.BuildCacheKey(cacheGetArticle, id), shared.FilterByID(id, model.FieldID, model.TableName))
}

// GetBySlug returns unpublished articles only to back-office callers.
func (s *serviceImpl) GetBySlug(ctx context.Context, key string, publicOnly bool) (res dto.ArticleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetBySlug")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res, err = s.cached(ctx, shared.BuildCacheKey(cacheGetArticleBySlug, key), shared.FilterByID(key, model.FieldSlug, model.TableName))
	if err != nil {
		return res, err
	}

	if publicOnly && !res.Published {
		return dto.ArticleResponse{}, failure.NotFound("article not found") // nolint:wrapcheck
	}

	return res, nil
}

func (s *serviceImpl) cached(ctx context.Context, cacheKey string, filter gDto.FilterGroup) (res dto.ArticleResponse, err error) {
	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	article, err := s.get(ctx, filter)
	if err != nil {
		return res, err
	}

	res.FromModel(article)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save article to cache")
		}
	}()

	return res, nil
}

// Update applies a sparse patch. Flipping published to true stamps published_at once;
// unpublishing keeps the original timestamp.
func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateArticleRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	article, err := s.get(ctx, filter)
	if err != nil {
		return err
	}

	fields := shared.TransformFields(req, user)

	if req.Published != nil && *req.Published && article.PublishedAt == nil {
		fields[model.FieldPublishedAt] = timezone.Now()
	}

	if err = s.repo.Update(ctx, fields, filter); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to update article")

		if postgres.IsUniqueViolation(err) {
			return failure.Conflict("article slug is already used") // nolint:wrapcheck
		}

		return failure.Operation("Failed to update article", err)
	}

	s.invalidate(ctx, shared.BuildCacheKey(cacheGetArticle, id), shared.BuildCacheKey(cacheGetArticleBySlug, article.Slug))

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	article, err := s.get(ctx, filter)
	if err != nil {
		return err
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete article")

		return failure.Operation("Failed to delete article", err)
	}

	s.invalidate(ctx, shared.BuildCacheKey(cacheGetArticle, id), shared.BuildCacheKey(cacheGetArticleBySlug, article.Slug))

	return nil
}

func (s *serviceImpl) get(ctx context.Context, filter gDto.FilterGroup) (model.Article, error) {
	article, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get article")

		return article, fmt.Errorf("failed to get article: %w", err)
	}

	if article.ID == constant.Empty {
		return article, failure.NotFound("article not found") // nolint:wrapcheck
	}

	return article, nil
}

func (s *serviceImpl) uniqueSlug(ctx context.Context, base string) (string, error) {
	if base == constant.Empty {
		base = model.EntityName
	}

	taken, err := s.repo.Exist(ctx, shared.FilterByID(base, model.FieldSlug, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check slug availability")

		return base, fmt.Errorf("failed to check slug availability: %w", err)
	}

	if !taken {
		return base, nil
	}

	return slug.WithSuffix(base, uuid.NewString()[:slugSuffixLength]), nil
}

func (s *serviceImpl) invalidate(ctx context.Context, keys ...string) {
	s.local.DeletePrefix(constant.CacheCatalogPrefix)

	go func() {
		c := context.WithoutCancel(ctx)

		for _, key := range keys {
			if err := s.cache.Delete(c, key); err != nil {
				log.Error().Err(err).Str("key", key).Msg("failed to delete article from cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllArticle)
		shared.InvalidateCaches(c, s.cache, cacheCountArticle)
		shared.InvalidateCatalog(c, s.cache, s.local)
	}()
}
