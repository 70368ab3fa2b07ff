package service

import (
	"context"
	"fmt"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/infras/postgres"
	"lodge/internal/domains/image/event"
	imageModel "lodge/internal/domains/image/model"
	imageDto "lodge/internal/domains/image/model/dto"
	imageRepository "lodge/internal/domains/image/repository"
	ownerModel "lodge/internal/domains/owner/model"
	ownerRepository "lodge/internal/domains/owner/repository"
	"lodge/internal/domains/property/model"
	"lodge/internal/domains/property/model/dto"
	"lodge/internal/domains/property/repository"
	roomDto "lodge/internal/domains/room/model/dto"
	roomRepository "lodge/internal/domains/room/repository"
	"lodge/shared"
	"lodge/shared/cache"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"
	"lodge/shared/slug"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetProperty    = "property:get"
	cacheGetAllProperty = "property:gets"
	cacheCountProperty  = "property:count"

	slugSuffixLength = 6
)

type Property interface {
	Create(ctx context.Context, req dto.CreatePropertyRequest) (string, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetPropertiesResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.PropertyResponse, error)
	GetBySlug(ctx context.Context, slug string, publicOnly bool) (dto.PropertyDetailResponse, error)
	Update(ctx context.Context, req dto.UpdatePropertyRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo      repository.Property
	ownerRepo ownerRepository.Owner
	roomRepo  roomRepository.Room
	imageRepo imageRepository.Image
	publisher event.Publisher
	tx        postgres.Transactor
	cfg       *config.Config
	cache     cache.RedisCache
	local     cache.LocalCache
	otel      otel.Otel
}

func New(
	repo repository.Property,
	ownerRepo ownerRepository.Owner,
	roomRepo roomRepository.Room,
	imageRepo imageRepository.Image,
	publisher event.Publisher,
	tx postgres.Transactor,
	cfg *config.Config,
	cache cache.RedisCache,
	local cache.LocalCache,
	otel otel.Otel,
) Property {
	return &serviceImpl{
		repo:      repo,
		ownerRepo: ownerRepo,
		roomRepo:  roomRepo,
		imageRepo: imageRepo,
		publisher: publisher,
		tx:        tx,
		cfg:       cfg,
		cache:     cache,
		local:     local,
		otel:      otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreatePropertyRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	if err = s.ensureOwner(ctx, req.OwnerID); err != nil {
		return id, err
	}

	base := req.Slug
	if base == constant.Empty {
		base = slug.Make(req.Name)
	}

	key, err := s.uniqueSlug(ctx, base)
	if err != nil {
		return id, err
	}

	property := req.ToModel(user, key)

	if err = s.repo.Insert(ctx, property); err != nil {
		log.Error().Err(err).Str("slug", key).Msg("failed to create property")

		if postgres.IsUniqueViolation(err) {
			return id, failure.Conflict("property slug is already used") // nolint:wrapcheck
		}

		return id, failure.Operation("Failed to create property", err)
	}

	s.invalidate(ctx, property.ID)

	return property.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetPropertiesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllProperty, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for properties")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get properties")

		return res, fmt.Errorf("failed to get properties: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save properties to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountProperty, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count properties")

		return res, fmt.Errorf("failed to count properties: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save property count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.PropertyResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetProperty, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	property, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get property")

		return res, fmt.Errorf("failed to get property: %w", err)
	}

	if property.ID == constant.Empty {
		return res, failure.NotFound("property not found") // nolint:wrapcheck
	}

	res.FromModel(property)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save property to cache")
		}
	}()

	return res, nil
}

// GetBySlug loads the property page with its rooms and ordered images. With publicOnly set,
// a property that is not active is reported as missing.
func (s *serviceImpl) GetBySlug(ctx context.Context, key string, publicOnly bool) (res dto.PropertyDetailResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetBySlug")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(constant.CachePropertyDetailPrefix, key)

	if err = s.cache.Get(ctx, cacheKey, &res); err != nil {
		res, err = s.loadDetail(ctx, key)
		if err != nil {
			return res, err
		}

		go func() {
			c := context.WithoutCancel(ctx)

			if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
				log.Error().Err(err).Msg("failed to save property detail to cache")
			}
		}()
	}

	if publicOnly && res.Status != model.StatusActive {
		return dto.PropertyDetailResponse{}, failure.NotFound("property not found") // nolint:wrapcheck
	}

	return res, nil
}

func (s *serviceImpl) loadDetail(ctx context.Context, key string) (res dto.PropertyDetailResponse, err error) {
	property, err := s.repo.Get(ctx, shared.FilterByID(key, model.FieldSlug, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("slug", key).Msg("failed to get property by slug")

		return res, fmt.Errorf("failed to get property: %w", err)
	}

	if property.ID == constant.Empty {
		return res, failure.NotFound("property not found") // nolint:wrapcheck
	}

	rooms, err := s.roomRepo.ListByProperties(ctx, []string{property.ID})
	if err != nil {
		return res, fmt.Errorf("failed to get property rooms: %w", err)
	}

	images, err := s.imageRepo.ListByOwner(ctx, imageModel.Owner{Type: imageModel.EntityProperty, ID: property.ID})
	if err != nil {
		return res, fmt.Errorf("failed to get property images: %w", err)
	}

	res.FromModel(property)
	res.Rooms = roomDto.FromModels(rooms)
	res.Images = imageDto.FromModels(images)

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdatePropertyRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check property existence")

		return fmt.Errorf("failed to check property existence: %w", err)
	}

	if !exist {
		return failure.NotFound("property not found") // nolint:wrapcheck
	}

	if req.OwnerID != nil {
		if err = s.ensureOwner(ctx, *req.OwnerID); err != nil {
			return err
		}
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, user), filter); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to update property")

		if postgres.IsUniqueViolation(err) {
			return failure.Conflict("property slug is already used") // nolint:wrapcheck
		}

		return failure.Operation("Failed to update property", err)
	}

	s.invalidate(ctx, id)

	return nil
}

// Delete removes the property, its rooms and every image record owned by either. The
// remote assets are handed to the cleanup worker once the transaction commits.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check property existence")

		return fmt.Errorf("failed to check property existence: %w", err)
	}

	if !exist {
		return failure.NotFound("property not found") // nolint:wrapcheck
	}

	rooms, err := s.roomRepo.ListByProperties(ctx, []string{id})
	if err != nil {
		return fmt.Errorf("failed to get property rooms: %w", err)
	}

	roomIDs := make([]string, len(rooms))
	for i, room := range rooms {
		roomIDs[i] = room.ID
	}

	var removed []imageModel.Image

	err = s.tx.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		propertyImages, err := s.imageRepo.DeleteByOwnersTx(ctx, tx, imageModel.EntityProperty, []string{id})
		if err != nil {
			return err
		}

		roomImages, err := s.imageRepo.DeleteByOwnersTx(ctx, tx, imageModel.EntityRoom, roomIDs)
		if err != nil {
			return err
		}

		removed = append(propertyImages, roomImages...)

		return s.repo.DeleteTx(ctx, tx, filter)
	})
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete property")

		return failure.Operation("Failed to delete property", err)
	}

	if err := s.publisher.AssetCleanup(ctx, event.ReasonOwnerDeleted, removed...); err != nil {
		log.Error().Err(err).Int("count", len(removed)).Msg("remote assets of deleted property are orphaned")
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *serviceImpl) ensureOwner(ctx context.Context, ownerID string) error {
	exist, err := s.ownerRepo.Exist(ctx, shared.FilterByID(ownerID, ownerModel.FieldID, ownerModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check owner existence")

		return fmt.Errorf("failed to check owner existence: %w", err)
	}

	if !exist {
		return failure.NotFound("owner not found") // nolint:wrapcheck
	}

	return nil
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

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	s.local.DeletePrefix(constant.CacheCatalogPrefix)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetProperty, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete property from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllProperty)
		shared.InvalidateCaches(c, s.cache, cacheCountProperty)
		shared.InvalidateCaches(c, s.cache, constant.CachePropertyDetailPrefix)
		shared.InvalidateCatalog(c, s.cache, s.local)
	}()
}
