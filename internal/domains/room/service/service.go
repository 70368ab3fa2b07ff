package service

import (
	"context"
	"fmt"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/infras/postgres"
	"lodge/internal/domains/image/event"
	imageModel "lodge/internal/domains/image/model"
	imageRepository "lodge/internal/domains/image/repository"
	propertyModel "lodge/internal/domains/property/model"
	propertyRepository "lodge/internal/domains/property/repository"
	"lodge/internal/domains/room/model"
	"lodge/internal/domains/room/model/dto"
	"lodge/internal/domains/room/repository"
	"lodge/shared"
	"lodge/shared/cache"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetRoom        = "room:get"
	cacheGetAllRoom     = "room:gets"
	cacheCountRoom      = "room:count"
	cacheListByProperty = "room:property"
)

type Room interface {
	Create(ctx context.Context, req dto.CreateRoomRequest) (string, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	ListByProperty(ctx context.Context, propertyID string) ([]dto.RoomResponse, error)
	Get(ctx context.Context, id string) (dto.RoomResponse, error)
	Update(ctx context.Context, req dto.UpdateRoomRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo         repository.Room
	propertyRepo propertyRepository.Property
	imageRepo    imageRepository.Image
	publisher    event.Publisher
	tx           postgres.Transactor
	cfg          *config.Config
	cache        cache.RedisCache
	local        cache.LocalCache
	otel         otel.Otel
}

func New(
	repo repository.Room,
	propertyRepo propertyRepository.Property,
	imageRepo imageRepository.Image,
	publisher event.Publisher,
	tx postgres.Transactor,
	cfg *config.Config,
	cache cache.RedisCache,
	local cache.LocalCache,
	otel otel.Otel,
) Room {
	return &serviceImpl{
		repo:         repo,
		propertyRepo: propertyRepo,
		imageRepo:    imageRepo,
		publisher:    publisher,
		tx:           tx,
		cfg:          cfg,
		cache:        cache,
		local:        local,
		otel:         otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoomRequest) (id string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	exist, err := s.propertyRepo.Exist(ctx, shared.FilterByID(req.PropertyID, propertyModel.FieldID, propertyModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check property existence")

		return id, fmt.Errorf("failed to check property existence: %w", err)
	}

	if !exist {
		return id, failure.NotFound("property not found") // nolint:wrapcheck
	}

	room := req.ToModel(user)

	if err = s.repo.Insert(ctx, room); err != nil {
		log.Error().Err(err).Msg("failed to create room")

		return id, failure.Operation("Failed to create room", err)
	}

	s.invalidate(ctx, room.ID, room.PropertyID)

	return room.ID, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRoom, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rooms to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return shared.ReadThrough(ctx, s.cache, shared.BuildCacheKeyWithQuery(cacheCountRoom, req, filter), s.cfg.Cache.TTL,
		func(ctx context.Context) (int, error) {
			total, err := s.repo.Count(ctx, filter)
			if err != nil {
				log.Error().Err(err).Msg("failed to count rooms")

				return 0, fmt.Errorf("failed to count rooms: %w", err)
			}

			return total, nil
		})
}

// ListByProperty returns every room of one property, cached per property.
func (s *serviceImpl) ListByProperty(ctx context.Context, propertyID string) (res []dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ListByProperty")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return shared.ReadThrough(ctx, s.cache, shared.BuildCacheKey(cacheListByProperty, propertyID), s.cfg.Cache.TTL,
		func(ctx context.Context) ([]dto.RoomResponse, error) {
			rooms, err := s.repo.ListByProperties(ctx, []string{propertyID})
			if err != nil {
				log.Error().Err(err).Str("propertyID", propertyID).Msg("failed to list rooms of property")

				return nil, fmt.Errorf("failed to list rooms: %w", err)
			}

			return dto.FromModels(rooms), nil
		})
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return shared.ReadThrough(ctx, s.cache, shared.BuildCacheKey(cacheGetRoom, id), s.cfg.Cache.TTL,
		func(ctx context.Context) (found dto.RoomResponse, err error) {
			room, err := s.get(ctx, id)
			if err != nil {
				return found, err
			}

			found.FromModel(room)

			return found, nil
		})
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateRoomRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	room, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	if err = s.repo.Update(ctx, shared.TransformFields(req, user), shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update room")

		return failure.Operation("Failed to update room", err)
	}

	s.invalidate(ctx, id, room.PropertyID)

	return nil
}

// Delete removes the room and its image records. The property itself is never touched.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	room, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	var removed []imageModel.Image

	err = s.tx.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		removed, err = s.imageRepo.DeleteByOwnersTx(ctx, tx, imageModel.EntityRoom, []string{id})
		if err != nil {
			return err
		}

		return s.repo.DeleteTx(ctx, tx, shared.FilterByID(id, model.FieldID, model.TableName))
	})
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete room")

		return failure.Operation("Failed to delete room", err)
	}

	if err := s.publisher.AssetCleanup(ctx, event.ReasonOwnerDeleted, removed...); err != nil {
		log.Error().Err(err).Int("count", len(removed)).Msg("remote assets of deleted room are orphaned")
	}

	s.invalidate(ctx, id, room.PropertyID)

	return nil
}

func (s *serviceImpl) get(ctx context.Context, id string) (model.Room, error) {
	room, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return room, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return room, failure.NotFound("room not found") // nolint:wrapcheck
	}

	return room, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id, propertyID string) {
	s.local.DeletePrefix(constant.CacheCatalogPrefix)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetRoom, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete room from cache")
		}

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheListByProperty, propertyID)); err != nil {
			log.Error().Err(err).Msg("failed to delete property rooms from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoom)
		shared.InvalidateCaches(c, s.cache, cacheCountRoom)
		shared.InvalidateCaches(c, s.cache, constant.CachePropertyDetailPrefix)
		shared.InvalidateCatalog(c, s.cache, s.local)
	}()
}
