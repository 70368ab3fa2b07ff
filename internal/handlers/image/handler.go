package image

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/internal/domains/image/model"
	"lodge/internal/domains/image/model/dto"
	"lodge/internal/domains/image/service"
	"lodge/shared"
	"lodge/shared/constant"
	"lodge/shared/failure"
	"lodge/shared/validator"
	"lodge/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const (
	formEntityType   = "entity_type"
	formEntityID     = "entity_id"
	formAltText      = "alt_text"
	formTitle        = "title"
	formDescription  = "description"
	formIsCover      = "is_cover"
	formSortOrder    = "sort_order"
	formFirstAsCover = "first_as_cover"

	queryWidth   = "width"
	queryHeight  = "height"
	queryQuality = "quality"
	queryFormat  = "format"
)

type Handler struct {
	service service.Image
	cfg     *config.Config
	otel    otel.Otel
}

func New(service service.Image, cfg *config.Config, otel otel.Otel) Handler {
	return Handler{
		service: service,
		cfg:     cfg,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/images", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.UploadImage)
		routerGroup.Post("/batch", handler.UploadImages)
		routerGroup.Get("/", handler.GetImages)
		routerGroup.Get("/{id}", handler.GetImageByID)
		routerGroup.Get("/{id}/transform", handler.GetTransformedURL)
		routerGroup.Patch("/{id}", handler.UpdateImage)
		routerGroup.Put("/{id}/cover", handler.SetCover)
		routerGroup.Delete("/{id}", handler.DeleteImage)
	})
}

// UploadImage uploads one image for a property or room.
// @Summary Upload an image
// @Description The image is scored before upload. Rejected images return success=false with the validation report.
// @Tags Image
// @Accept multipart/form-data
// @Produce json
// @Param entity_type formData string true "Owner type (property or room)"
// @Param entity_id formData string true "Owner ID"
// @Param file formData file true "Image file"
// @Param alt_text formData string false "Alternative text"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param is_cover formData boolean false "Make this image the cover"
// @Param sort_order formData integer false "Sort order"
// @Success 201 {object} response.Data[dto.UploadResult] "Image uploaded"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 422 {object} response.Data[dto.UploadResult] "Image rejected"
// @Failure 500 {object} response.Error
// @Router /v1/images [post]
// @Security BearerAuth
func (handler *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UploadImage")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")

		response.WithError(w, failure.BadRequest(err))

		return
	}

	req := dto.UploadRequest{
		EntityType: r.FormValue(formEntityType),
		EntityID:   r.FormValue(formEntityID),
		UploadOptions: dto.UploadOptions{
			AltText:     optional(r.FormValue(formAltText)),
			Title:       optional(r.FormValue(formTitle)),
			Description: optional(r.FormValue(formDescription)),
		},
	}

	if isCover := shared.ConvertStringToBool(r.FormValue(formIsCover)); isCover != nil {
		req.IsCover = *isCover
	}

	if sortOrder := r.FormValue(formSortOrder); sortOrder != "" {
		if order, err := shared.ConvertStringToInt(sortOrder); err == nil {
			req.SortOrder = order
		}
	}

	if _, header, err := r.FormFile(constant.FormFile); err == nil {
		req.File = header
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	payload, err := handler.read(req.File)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("file", req.File.Filename).Msg("failed to read uploaded file")

		response.WithError(w, failure.BadRequest(err))

		return
	}

	req.FileName = payload.FileName
	req.Data = payload.Data
	req.Size = payload.Size

	res, err := handler.service.Upload(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to upload image")

		response.WithError(w, err)

		return
	}

	if !res.Success {
		response.WithJSON(w, http.StatusUnprocessableEntity, res)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Image uploaded successfully by user " + user)

	response.WithJSON(w, http.StatusCreated, res)
}

// UploadImages uploads several images for one owner.
// @Summary Upload images in batch
// @Description Files are processed one after another. The summary counts accepted and rejected files.
// @Tags Image
// @Accept multipart/form-data
// @Produce json
// @Param entity_type formData string true "Owner type (property or room)"
// @Param entity_id formData string true "Owner ID"
// @Param files formData []file true "Image files"
// @Param first_as_cover formData boolean false "Make the first accepted file the cover"
// @Success 200 {object} response.Data[dto.BatchUploadResult] "Batch result"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/images/batch [post]
// @Security BearerAuth
func (handler *Handler) UploadImages(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UploadImages")
	defer scope.End()

	if err := r.ParseMultipartForm(constant.RequestMaxMemory); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to parse multipart form")

		response.WithError(w, failure.BadRequest(err))

		return
	}

	req := dto.BatchUploadRequest{
		EntityType: r.FormValue(formEntityType),
		EntityID:   r.FormValue(formEntityID),
		Files:      r.MultipartForm.File[constant.FormFiles],
	}

	if firstAsCover := shared.ConvertStringToBool(r.FormValue(formFirstAsCover)); firstAsCover != nil {
		req.FirstAsCover = *firstAsCover
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request")

		response.WithError(w, err)

		return
	}

	if maxFiles := handler.cfg.Image.MaxBatchFiles; maxFiles > 0 && len(req.Files) > maxFiles {
		err := failure.BadRequestFromString(fmt.Sprintf("At most %d files can be uploaded at once", maxFiles))
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	req.Payloads = make([]dto.Payload, 0, len(req.Files))

	for _, header := range req.Files {
		payload, err := handler.read(header)
		if err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Str("file", header.Filename).Msg("failed to read uploaded file")

			response.WithError(w, failure.BadRequest(err))

			return
		}

		req.Payloads = append(req.Payloads, payload)
	}

	res, err := handler.service.UploadBatch(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to upload images")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// GetImages lists the images of a property or room, cover first.
// @Summary List images of an owner
// @Tags Image
// @Produce json
// @Param entity_type query string true "Owner type (property or room)"
// @Param entity_id query string true "Owner ID"
// @Success 200 {object} response.Data[dto.GetImagesResponse] "Images"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/images [get]
func (handler *Handler) GetImages(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetImages")
	defer scope.End()

	query := r.URL.Query()

	entityType, err := model.ParseEntityType(query.Get(formEntityType))
	if err != nil {
		scope.TraceError(err)

		response.WithError(w, failure.BadRequest(err))

		return
	}

	entityID := query.Get(formEntityID)
	if err := validator.ValidateVar(entityID, "required,uuid"); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	images, err := handler.service.List(ctx, model.Owner{Type: entityType, ID: entityID})
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to list images")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, images)
}

// GetImageByID retrieves one image.
// @Summary Get an image by ID
// @Tags Image
// @Produce json
// @Param id path string true "Image ID"
// @Success 200 {object} response.Data[dto.ImageResponse] "Image"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/images/{id} [get]
func (handler *Handler) GetImageByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetImageByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	image, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get image by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, image)
}

// GetTransformedURL builds a resized delivery URL for an image.
// @Summary Get a transformed image URL
// @Tags Image
// @Produce json
// @Param id path string true "Image ID"
// @Param width query integer false "Width in pixels"
// @Param height query integer false "Height in pixels"
// @Param quality query integer false "Quality 1-100"
// @Param format query string false "Output format"
// @Success 200 {object} response.Data[dto.TransformResponse] "URL"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/images/{id}/transform [get]
func (handler *Handler) GetTransformedURL(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetTransformedURL")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	query := r.URL.Query()

	req := dto.TransformRequest{
		Width:   queryInt(query.Get(queryWidth)),
		Height:  queryInt(query.Get(queryHeight)),
		Quality: queryInt(query.Get(queryQuality)),
		Format:  query.Get(queryFormat),
	}

	if err := validator.ValidateStruct(&req); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	res, err := handler.service.TransformedURL(ctx, id, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to build transformed URL")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// UpdateImage edits image metadata. is_cover=true moves the cover to this image.
// @Summary Update an image by ID
// @Tags Image
// @Accept json
// @Produce json
// @Param id path string true "Image ID"
// @Param request body dto.UpdateImageRequest true "Update Image Request"
// @Success 200 {object} response.Message "Image updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/images/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateImage")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	req := dto.UpdateImageRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update image")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Image updated successfully")
}

// SetCover makes an image the cover of its owner.
// @Summary Set the cover image
// @Tags Image
// @Produce json
// @Param id path string true "Image ID"
// @Success 200 {object} response.Message "Cover updated successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/images/{id}/cover [put]
// @Security BearerAuth
func (handler *Handler) SetCover(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SetCover")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.SetCover(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to set cover image")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Cover image set by user " + user)

	response.WithMessage(w, http.StatusOK, "Cover updated successfully")
}

// DeleteImage removes an image record and its stored asset.
// @Summary Delete an image by ID
// @Tags Image
// @Produce json
// @Param id path string true "Image ID"
// @Success 200 {object} response.Message "Image deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/images/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteImage")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete image")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Image deleted successfully")
}

// read loads the whole file unless oversize files are rejected outright, in which case it stops
// one byte past the ceiling. Size always carries the declared length.
func (handler *Handler) read(header *multipart.FileHeader) (dto.Payload, error) {
	payload := dto.Payload{FileName: header.Filename, Size: header.Size}

	file, err := header.Open()
	if err != nil {
		return payload, fmt.Errorf("failed to open %s: %w", header.Filename, err)
	}
	defer file.Close()

	reader := io.Reader(file)
	if rules := handler.cfg.Image.Quality; rules.AutoReject && rules.MaxBytes > 0 {
		reader = io.LimitReader(file, rules.MaxBytes+1)
	}

	if payload.Data, err = io.ReadAll(reader); err != nil {
		return payload, fmt.Errorf("failed to read %s: %w", header.Filename, err)
	}

	return payload, nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}

	return &value
}

func queryInt(value string) int {
	if value == "" {
		return 0
	}

	parsed, err := shared.ConvertStringToInt(value)
	if err != nil {
		return 0
	}

	return parsed
}
