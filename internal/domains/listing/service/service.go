package service

import (
	"context"
	"fmt"

	"lodge/config"
	"lodge/infras/otel"
	articleModel "lodge/internal/domains/article/model"
	articleRepository "lodge/internal/domains/article/repository"
	imageModel "lodge/internal/domains/image/model"
	imageRepository "lodge/internal/domains/image/repository"
	"lodge/internal/domains/listing"
	propertyModel "lodge/internal/domains/property/model"
	propertyRepository "lodge/internal/domains/property/repository"
	roomModel "lodge/internal/domains/room/model"
	roomRepository "lodge/internal/domains/room/repository"
	"lodge/shared"
	"lodge/shared/cache"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

var (
	cacheCatalogProperties = shared.BuildCacheKey(constant.CacheCatalogPrefix, "properties")
	cacheCatalogArticles   = shared.BuildCacheKey(constant.CacheCatalogPrefix, "articles")
)

// Listing serves public search. Catalog read failures degrade to an empty result.
type Listing interface {
	SearchProperties(ctx context.Context, criteria listing.PropertyCriteria) (listing.Result[listing.Property], error)
	SearchArticles(ctx context.Context, criteria listing.ArticleCriteria) (listing.Result[listing.Article], error)
	Featured(ctx context.Context, limit int) ([]listing.Property, error)
}

type serviceImpl struct {
	propertyRepo propertyRepository.Property
	roomRepo     roomRepository.Room
	imageRepo    imageRepository.Image
	articleRepo  articleRepository.Article
	cfg          *config.Config
	cache        cache.RedisCache
	local        cache.LocalCache
	locale       language.Tag
	otel         otel.Otel
}

func New(
	propertyRepo propertyRepository.Property,
	roomRepo roomRepository.Room,
	imageRepo imageRepository.Image,
	articleRepo articleRepository.Article,
	cfg *config.Config,
	cache cache.RedisCache,
	local cache.LocalCache,
	otel otel.Otel,
) Listing {
	locale, err := language.Parse(cfg.App.Locale)
	if err != nil {
		locale = language.English
	}

	return &serviceImpl{
		propertyRepo: propertyRepo,
		roomRepo:     roomRepo,
		imageRepo:    imageRepo,
		articleRepo:  articleRepo,
		cfg:          cfg,
		cache:        cache,
		local:        local,
		locale:       locale,
		otel:         otel,
	}
}

func (s *serviceImpl) SearchProperties(ctx context.Context, criteria listing.PropertyCriteria) (res listing.Result[listing.Property], err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SearchProperties")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	props, err := loadCatalog(ctx, s, cacheCatalogProperties, s.loadProperties)
	if err != nil {
		log.Error().Err(err).Msg("property catalog unavailable, serving empty result")

		props = nil
	}

	if criteria.Locale == language.Und {
		criteria.Locale = s.locale
	}

	return listing.SearchProperties(props, criteria), nil
}

func (s *serviceImpl) SearchArticles(ctx context.Context, criteria listing.ArticleCriteria) (res listing.Result[listing.Article], err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SearchArticles")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	articles, err := loadCatalog(ctx, s, cacheCatalogArticles, s.loadArticles)
	if err != nil {
		log.Error().Err(err).Msg("article catalog unavailable, serving empty result")

		articles = nil
	}

	return listing.SearchArticles(articles, criteria), nil
}

func (s *serviceImpl) Featured(ctx context.Context, limit int) ([]listing.Property, error) {
	if limit <= 0 {
		limit = constant.DefaultValueLimit
	}

	res, err := s.SearchProperties(ctx, listing.PropertyCriteria{FeaturedOnly: true, Page: 1, Limit: limit})
	if err != nil {
		return nil, err
	}

	return res.Items, nil
}

// loadCatalog reads through the in-process cache, then redis, then the database.
func loadCatalog[T any](ctx context.Context, s *serviceImpl, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	if value, ok := s.local.Get(key); ok {
		if items, ok := value.([]T); ok {
			return items, nil
		}
	}

	var items []T

	if err := s.cache.Get(ctx, key, &items); err == nil {
		s.local.Set(key, items)

		return items, nil
	}

	items, err := load(ctx)
	if err != nil {
		return nil, err
	}

	s.local.Set(key, items)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, key, items, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to save catalog to cache")
		}
	}()

	return items, nil
}

func (s *serviceImpl) loadProperties(ctx context.Context) ([]listing.Property, error) {
	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    propertyModel.FieldStatus,
				Value:    propertyModel.StatusActive,
				Operator: gDto.FilterOperatorEq,
				Table:    propertyModel.TableName,
			},
		},
	}

	params := gDto.QueryParams{SortBy: propertyModel.FieldPriority, SortDir: gDto.SortDirDesc}

	models, err := s.propertyRepo.GetAll(ctx, params, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load active properties: %w", err)
	}

	ids := make([]string, len(models))
	for i, mod := range models {
		ids[i] = mod.ID
	}

	rooms, err := s.roomRepo.ListByProperties(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog rooms: %w", err)
	}

	roomsByProperty := make(map[string][]listing.Room, len(models))
	for _, room := range rooms {
		roomsByProperty[room.PropertyID] = append(roomsByProperty[room.PropertyID], toRoom(room))
	}

	covers := make(map[string]string, len(models))

	images, err := s.imageRepo.ListCovers(ctx, imageModel.EntityProperty, ids)
	if err != nil {
		log.Warn().Err(err).Msg("catalog loaded without cover images")
	}

	for _, image := range images {
		covers[image.EntityID] = image.SecureURL
	}

	props := make([]listing.Property, len(models))
	for i, mod := range models {
		props[i] = toProperty(mod, roomsByProperty[mod.ID], covers[mod.ID])
	}

	return props, nil
}

func (s *serviceImpl) loadArticles(ctx context.Context) ([]listing.Article, error) {
	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    articleModel.FieldPublished,
				Value:    true,
				Operator: gDto.FilterOperatorEq,
				Table:    articleModel.TableName,
			},
		},
	}

	models, err := s.articleRepo.GetAll(ctx, gDto.QueryParams{}, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load published articles: %w", err)
	}

	articles := make([]listing.Article, len(models))
	for i, mod := range models {
		articles[i] = toArticle(mod)
	}

	return articles, nil
}

func toRoom(room roomModel.Room) listing.Room {
	return listing.Room{
		ID:            room.ID,
		Name:          room.Name,
		Capacity:      room.Capacity,
		PricePerNight: room.PricePerNight,
	}
}

func toProperty(mod propertyModel.Property, rooms []listing.Room, cover string) listing.Property {
	if rooms == nil {
		rooms = []listing.Room{}
	}

	return listing.Property{
		ID:          mod.ID,
		Slug:        mod.Slug,
		Name:        mod.Name,
		Description: mod.Description,
		Type:        mod.Type,
		City:        mod.City,
		Region:      mod.Region,
		Status:      mod.Status,
		MaxGuests:   mod.MaxGuests,
		Amenities:   append([]string{}, mod.Amenities...),
		Rating:      mod.Rating,
		Featured:    mod.Featured,
		Priority:    mod.Priority,
		CoverURL:    cover,
		Rooms:       rooms,
	}
}

func toArticle(mod articleModel.Article) listing.Article {
	return listing.Article{
		ID:            mod.ID,
		Slug:          mod.Slug,
		Title:         mod.Title,
		Excerpt:       mod.Excerpt,
		FeaturedImage: mod.FeaturedImage,
		Tags:          append([]string{}, mod.Tags...),
		Published:     mod.Published,
		PublishedAt:   mod.PublishedAt,
		CreatedAt:     mod.CreatedAt,
	}
}
