package owner

import (
	"net/http"

	"lodge/infras/otel"
	"lodge/internal/domains/owner/model"
	"lodge/internal/domains/owner/model/dto"
	"lodge/internal/domains/owner/service"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/validator"
	"lodge/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Owner
	otel    otel.Otel
}

func New(service service.Owner, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/owners", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateOwner)
		routerGroup.Get("/", handler.GetOwners)
		routerGroup.Get("/{id}", handler.GetOwnerByID)
		routerGroup.Patch("/{id}", handler.UpdateOwner)
		routerGroup.Delete("/{id}", handler.DeleteOwner)
	})
}

// CreateOwner handles the creation of a new owner.
// @Summary Create a new owner
// @Tags Owner
// @Accept json
// @Produce json
// @Param request body dto.CreateOwnerRequest true "Create Owner Request"
// @Success 201 {object} response.Data[string] "Owner ID"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/owners [post]
// @Security BearerAuth
func (handler *Handler) CreateOwner(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateOwner")
	defer scope.End()

	req := dto.CreateOwnerRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	id, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create owner")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Owner created successfully")

	response.WithJSON(w, http.StatusCreated, id)
}

// GetOwners retrieves all owners based on query parameters.
// @Summary Get all owners
// @Tags Owner
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param name query string false "Filter by name"
// @Param email query string false "Filter by email"
// @Param company query string false "Filter by company"
// @Success 200 {object} response.Data[dto.GetOwnersResponse] "List of owners"
// @Failure 500 {object} response.Error
// @Router /v1/owners [get]
// @Security BearerAuth
func (handler *Handler) GetOwners(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetOwners")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.AllowSortBy(model.FieldName, model.FieldCompany, constant.FieldCreatedAt)

	query := r.URL.Query()

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}
	filterGroup.AppendIfPresent(model.FieldName, gDto.FilterOperatorLike, query.Get(model.FieldName), model.TableName)
	filterGroup.AppendIfPresent(model.FieldEmail, gDto.FilterOperatorEq, query.Get(model.FieldEmail), model.TableName)
	filterGroup.AppendIfPresent(model.FieldCompany, gDto.FilterOperatorLike, query.Get(model.FieldCompany), model.TableName)

	owners, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get owners")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, owners)
}

// GetOwnerByID retrieves an owner by ID.
// @Summary Get an owner by ID
// @Tags Owner
// @Produce json
// @Param id path string true "Owner ID"
// @Success 200 {object} response.Data[dto.OwnerResponse] "Owner details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/owners/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetOwnerByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetOwnerByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	owner, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get owner by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, owner)
}

// UpdateOwner applies a sparse patch to an owner.
// @Summary Update an owner by ID
// @Tags Owner
// @Accept json
// @Produce json
// @Param id path string true "Owner ID"
// @Param request body dto.UpdateOwnerRequest true "Update Owner Request"
// @Success 200 {object} response.Message "Owner updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/owners/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateOwner(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateOwner")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	req := dto.UpdateOwnerRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update owner")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Owner updated successfully")
}

// DeleteOwner deletes an owner that no property references.
// @Summary Delete an owner by ID
// @Tags Owner
// @Produce json
// @Param id path string true "Owner ID"
// @Success 200 {object} response.Message "Owner deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/owners/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteOwner(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteOwner")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete owner")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Owner deleted successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Owner deleted successfully")
}
