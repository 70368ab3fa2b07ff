package service

import (
	"context"
	"errors"
	"fmt"
	"path"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/infras/s3"
	"lodge/internal/domains/image/event"
	"lodge/internal/domains/image/model"
	"lodge/internal/domains/image/model/dto"
	"lodge/internal/domains/image/quality"
	"lodge/internal/domains/image/repository"
	propertyModel "lodge/internal/domains/property/model"
	propertyRepository "lodge/internal/domains/property/repository"
	roomModel "lodge/internal/domains/room/model"
	roomRepository "lodge/internal/domains/room/repository"
	"lodge/shared"
	"lodge/shared/cache"
	"lodge/shared/constant"
	"lodge/shared/failure"
	gModel "lodge/shared/model"
	"lodge/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetImage = "image:get"

	msgRejected      = "Image rejected by quality validation"
	msgNotImage      = "File is not a readable image"
	msgIncomplete    = "File was not received completely"
	msgUploadFailed  = "Failed to upload image"
	msgPersistFailed = "Failed to save image"
)

type Image interface {
	Upload(ctx context.Context, req dto.UploadRequest) (dto.UploadResult, error)
	UploadBatch(ctx context.Context, req dto.BatchUploadRequest) (dto.BatchUploadResult, error)
	List(ctx context.Context, owner model.Owner) (dto.GetImagesResponse, error)
	Get(ctx context.Context, id string) (dto.ImageResponse, error)
	Update(ctx context.Context, req dto.UpdateImageRequest, id string) error
	SetCover(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	TransformedURL(ctx context.Context, id string, req dto.TransformRequest) (dto.TransformResponse, error)
}

type serviceImpl struct {
	repo         repository.Image
	propertyRepo propertyRepository.Property
	roomRepo     roomRepository.Room
	store        s3.Store
	publisher    event.Publisher
	rules        quality.Rules
	cfg          *config.Config
	cache        cache.RedisCache
	local        cache.LocalCache
	otel         otel.Otel
}

func New(
	repo repository.Image,
	propertyRepo propertyRepository.Property,
	roomRepo roomRepository.Room,
	store s3.Store,
	publisher event.Publisher,
	cfg *config.Config,
	cache cache.RedisCache,
	local cache.LocalCache,
	otel otel.Otel,
) Image {
	return &serviceImpl{
		repo:         repo,
		propertyRepo: propertyRepo,
		roomRepo:     roomRepo,
		store:        store,
		publisher:    publisher,
		rules:        quality.RulesFromConfig(cfg),
		cfg:          cfg,
		cache:        cache,
		local:        local,
		otel:         otel,
	}
}

func (s *serviceImpl) Upload(ctx context.Context, req dto.UploadRequest) (res dto.UploadResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Upload")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	owner, err := s.resolveOwner(ctx, req.EntityType, req.EntityID)
	if err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	res = s.uploadOne(ctx, owner, dto.Payload{FileName: req.FileName, Data: req.Data, Size: req.Size}, req.UploadOptions, user)
	if res.Success {
		s.invalidate(ctx, owner, constant.Empty)
	}

	return res, nil
}

func (s *serviceImpl) UploadBatch(ctx context.Context, req dto.BatchUploadRequest) (res dto.BatchUploadResult, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UploadBatch")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	owner, err := s.resolveOwner(ctx, req.EntityType, req.EntityID)
	if err != nil {
		return res, err
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	res.Results = make([]dto.UploadResult, 0, len(req.Payloads))

	for _, payload := range req.Payloads {
		opts := dto.UploadOptions{IsCover: req.FirstAsCover && res.Summary.Successful == 0}

		res.Add(s.uploadOne(ctx, owner, payload, opts, user))
	}

	log.Info().
		Str("owner", owner.String()).
		Int("total", res.Summary.Total).
		Int("successful", res.Summary.Successful).
		Int("failed", res.Summary.Failed).
		Msg("batch upload finished")

	if res.Summary.Successful > 0 {
		s.invalidate(ctx, owner, constant.Empty)
	}

	return res, nil
}

// uploadOne validates before touching the asset store. A rejected payload never reaches it.
func (s *serviceImpl) uploadOne(ctx context.Context, owner model.Owner, payload dto.Payload, opts dto.UploadOptions, user string) dto.UploadResult {
	res := dto.UploadResult{FileName: payload.FileName}

	info, err := s3.Inspect(payload.Data)
	if err != nil {
		log.Warn().Err(err).Str("file", payload.FileName).Msg("upload is not a readable image")

		res.Validation.FromVerdict(quality.Reject(msgNotImage))
		res.Error = stringPtr(msgNotImage)

		return res
	}

	verdict := quality.Validate(quality.Metadata{
		Width:  info.Width,
		Height: info.Height,
		Format: info.Format,
		Bytes:  payload.Bytes(),
	}, s.rules)

	// A partial payload is never uploaded, whatever the rules allow.
	if payload.Partial() && verdict.IsValid {
		verdict.IsValid = false
		verdict.Errors = append(verdict.Errors, msgIncomplete)
	}

	res.Validation.FromVerdict(verdict)

	if !verdict.IsValid {
		log.Info().Strs("errors", verdict.Errors).Str("file", payload.FileName).Msg("image rejected by quality rules")

		res.Error = stringPtr(msgRejected)

		return res
	}

	asset, err := s.store.Upload(ctx, payload.Data, s3.UploadOptions{
		Folder:      path.Join(s.cfg.External.S3.Folder, string(owner.Type)),
		FileName:    payload.FileName,
		ContentType: info.ContentType,
	})
	if err != nil {
		log.Error().Err(err).Str("file", payload.FileName).Msg("failed to upload image to asset store")

		res.Error = stringPtr(msgUploadFailed)

		return res
	}

	now := timezone.Now()
	score := verdict.Score

	saved, err := s.repo.CreateWithPlacement(ctx, model.Image{
		ID:           uuid.NewString(),
		EntityType:   owner.Type,
		EntityID:     owner.ID,
		PublicID:     asset.PublicID,
		SecureURL:    asset.SecureURL,
		Width:        asset.Width,
		Height:       asset.Height,
		Format:       quality.NormalizeFormat(asset.Format),
		Bytes:        asset.Bytes,
		AltText:      opts.AltText,
		Title:        opts.Title,
		Description:  opts.Description,
		IsCover:      opts.IsCover,
		SortOrder:    opts.SortOrder,
		QualityScore: &score,
		Metadata:     gModel.NewMetadata(user, now),
	})
	if err != nil {
		log.Error().Err(err).Str("publicID", asset.PublicID).Msg("failed to persist image, removing uploaded asset")

		s.removeRemote(ctx, model.Image{PublicID: asset.PublicID, EntityType: owner.Type, EntityID: owner.ID})

		res.Error = stringPtr(msgPersistFailed)

		return res
	}

	img := dto.ImageResponse{}
	img.FromModel(saved)

	res.Success = true
	res.Image = &img

	return res
}

func (s *serviceImpl) List(ctx context.Context, owner model.Owner) (res dto.GetImagesResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".List")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(constant.CacheImageListPrefix, string(owner.Type), owner.ID)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	images, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		log.Error().Err(err).Str("owner", owner.String()).Msg("failed to list images")

		return res, fmt.Errorf("failed to list images: %w", err)
	}

	res.Images = dto.FromModels(images)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save images to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.ImageResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetImage, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		return res, nil
	}

	img, err := s.get(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(img)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save image to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateImageRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	img, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	fields := shared.TransformFields(req, user)
	if req.IsCover != nil && !*req.IsCover {
		fields[model.FieldIsCover] = false
	}

	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to update image")

		return failure.Operation("Failed to update image", err)
	}

	if req.IsCover != nil && *req.IsCover {
		if err = s.setCover(ctx, img, user); err != nil {
			return err
		}
	}

	s.invalidate(ctx, img.Owner(), id)

	return nil
}

func (s *serviceImpl) SetCover(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".SetCover")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	img, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	if err = s.setCover(ctx, img, user); err != nil {
		return err
	}

	s.invalidate(ctx, img.Owner(), id)

	return nil
}

func (s *serviceImpl) setCover(ctx context.Context, img model.Image, user string) error {
	err := s.repo.SetCover(ctx, img.Owner(), img.ID, user)
	if errors.Is(err, repository.ErrImageNotOwned) {
		return failure.NotFound("image not found") // nolint:wrapcheck
	}

	if err != nil {
		log.Error().Err(err).Str("id", img.ID).Msg("failed to set cover image")

		return failure.Operation("Failed to set cover image", err)
	}

	return nil
}

// Delete removes the local record even when the remote asset cannot be deleted. The remote
// failure is queued for the cleanup worker.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	img, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	remoteErr := s.store.Delete(ctx, img.PublicID)
	if remoteErr != nil {
		log.Error().Err(remoteErr).Str("publicID", img.PublicID).Msg("failed to delete remote asset, deleting local record anyway")
	}

	if err = s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete image")

		return failure.Operation("Failed to delete image", err)
	}

	if remoteErr != nil {
		if err := s.publisher.AssetCleanup(ctx, event.ReasonRemoteDeleteFailed, img); err != nil {
			log.Error().Err(err).Str("publicID", img.PublicID).Msg("remote asset is orphaned")
		}
	}

	s.invalidate(ctx, img.Owner(), id)

	return nil
}

func (s *serviceImpl) TransformedURL(ctx context.Context, id string, req dto.TransformRequest) (res dto.TransformResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".TransformedURL")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	img, err := s.Get(ctx, id)
	if err != nil {
		return res, err
	}

	res.URL = s.store.TransformedURL(img.PublicID, req.ToTransform())

	return res, nil
}

func (s *serviceImpl) get(ctx context.Context, id string) (model.Image, error) {
	img, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get image")

		return img, fmt.Errorf("failed to get image: %w", err)
	}

	if img.ID == constant.Empty {
		return img, failure.NotFound("image not found") // nolint:wrapcheck
	}

	return img, nil
}

func (s *serviceImpl) resolveOwner(ctx context.Context, entityType, entityID string) (model.Owner, error) {
	t, err := model.ParseEntityType(entityType)
	if err != nil {
		return model.Owner{}, failure.BadRequest(err) // nolint:wrapcheck
	}

	owner := model.Owner{Type: t, ID: entityID}

	var exist bool

	switch t {
	case model.EntityProperty:
		exist, err = s.propertyRepo.Exist(ctx, shared.FilterByID(entityID, propertyModel.FieldID, propertyModel.TableName))
	case model.EntityRoom:
		exist, err = s.roomRepo.Exist(ctx, shared.FilterByID(entityID, roomModel.FieldID, roomModel.TableName))
	}

	if err != nil {
		log.Error().Err(err).Str("owner", owner.String()).Msg("failed to check image owner")

		return owner, fmt.Errorf("failed to check image owner: %w", err)
	}

	if !exist {
		return owner, failure.NotFound(string(t) + " not found") // nolint:wrapcheck
	}

	return owner, nil
}

// removeRemote deletes an asset whose record could not be kept, falling back to the worker.
func (s *serviceImpl) removeRemote(ctx context.Context, img model.Image) {
	if err := s.store.Delete(ctx, img.PublicID); err != nil {
		log.Error().Err(err).Str("publicID", img.PublicID).Msg("failed to remove uploaded asset")

		if err := s.publisher.AssetCleanup(ctx, event.ReasonRemoteDeleteFailed, img); err != nil {
			log.Error().Err(err).Str("publicID", img.PublicID).Msg("remote asset is orphaned")
		}
	}
}

func (s *serviceImpl) invalidate(ctx context.Context, owner model.Owner, id string) {
	s.local.DeletePrefix(constant.CacheCatalogPrefix)

	go func() {
		c := context.WithoutCancel(ctx)

		if id != constant.Empty {
			if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetImage, id)); err != nil {
				log.Error().Err(err).Msg("failed to delete image from cache")
			}
		}

		if err := s.cache.Delete(c, shared.BuildCacheKey(constant.CacheImageListPrefix, string(owner.Type), owner.ID)); err != nil {
			log.Error().Err(err).Msg("failed to delete image list from cache")
		}

		shared.InvalidateCaches(c, s.cache, constant.CachePropertyDetailPrefix)
		shared.InvalidateCatalog(c, s.cache, s.local)
	}()
}

func stringPtr(s string) *string {
	return &s
}
