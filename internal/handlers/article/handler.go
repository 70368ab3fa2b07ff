package article

import (
	"net/http"

	"lodge/infras/otel"
	"lodge/internal/domains/article/model"
	"lodge/internal/domains/article/model/dto"
	"lodge/internal/domains/article/service"
	"lodge/shared"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/validator"
	"lodge/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Article
	otel    otel.Otel
}

func New(service service.Article, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/articles", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateArticle)
		routerGroup.Get("/", handler.GetArticles)
		routerGroup.Get("/slug/{slug}", handler.GetArticleBySlug)
		routerGroup.Get("/{id}", handler.GetArticleByID)
		routerGroup.Patch("/{id}", handler.UpdateArticle)
		routerGroup.Delete("/{id}", handler.DeleteArticle)
	})
}

// CreateArticle handles the creation of a blog article.
// @Summary Create a new article
// @Description Create an article authored by the caller. Publishing stamps published_at.
// @Tags Article
// @Accept json
// @Produce json
// @Param request body dto.CreateArticleRequest true "Create Article Request"
// @Success 201 {object} response.Data[string] "Article ID"
// @Failure 400 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/articles [post]
// @Security BearerAuth
func (handler *Handler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateArticle")
	defer scope.End()

	req := dto.CreateArticleRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	id, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create article")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Article created successfully by user " + user)

	response.WithJSON(w, http.StatusCreated, id)
}

// GetArticles retrieves articles for the back-office, drafts included.
// @Summary Get all articles
// @Tags Article
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param title query string false "Filter by title"
// @Param published query boolean false "Filter by published flag"
// @Success 200 {object} response.Data[dto.GetArticlesResponse] "List of articles"
// @Failure 500 {object} response.Error
// @Router /v1/articles [get]
// @Security BearerAuth
func (handler *Handler) GetArticles(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetArticles")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	queryParams.FromRequest(r, true)
	queryParams.AllowSortBy(model.FieldTitle, model.FieldPublishedAt, constant.FieldCreatedAt)

	query := r.URL.Query()

	filterGroup := gDto.FilterGroup{Operator: gDto.FilterGroupOperatorAnd}
	filterGroup.AppendIfPresent(model.FieldTitle, gDto.FilterOperatorLike, query.Get(model.FieldTitle), model.TableName)

	if published := shared.ConvertStringToBool(query.Get(model.FieldPublished)); published != nil {
		filterGroup.Filters = append(filterGroup.Filters, gDto.Filter{
			Field:    model.FieldPublished,
			Operator: gDto.FilterOperatorEq,
			Value:    *published,
			Table:    model.TableName,
		})
	}

	articles, err := handler.service.GetAll(ctx, queryParams, filterGroup)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get articles")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, articles)
}

// GetArticleByID retrieves an article by ID.
// @Summary Get an article by ID
// @Tags Article
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} response.Data[dto.ArticleResponse] "Article"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/articles/{id} [get]
// @Security BearerAuth
func (handler *Handler) GetArticleByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetArticleByID")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	article, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get article by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, article)
}

// GetArticleBySlug retrieves a published article by slug.
// @Summary Get an article by slug
// @Description Drafts are only visible to admins.
// @Tags Article
// @Produce json
// @Param slug path string true "Article slug"
// @Success 200 {object} response.Data[dto.ArticleResponse] "Article"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/articles/slug/{slug} [get]
func (handler *Handler) GetArticleBySlug(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetArticleBySlug")
	defer scope.End()

	slug := chi.URLParam(r, constant.RequestParamSlug)
	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

	article, err := handler.service.GetBySlug(ctx, slug, role != constant.RoleAdmin)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("slug", slug).Msg("failed to get article by slug")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, article)
}

// UpdateArticle applies a sparse patch to an article.
// @Summary Update an article by ID
// @Tags Article
// @Accept json
// @Produce json
// @Param id path string true "Article ID"
// @Param request body dto.UpdateArticleRequest true "Update Article Request"
// @Success 200 {object} response.Message "Article updated successfully"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 409 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/articles/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateArticle")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	req := dto.UpdateArticleRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update article")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	scope.AddEvent("Article updated successfully by user " + user)

	response.WithMessage(w, http.StatusOK, "Article updated successfully")
}

// DeleteArticle deletes an article.
// @Summary Delete an article by ID
// @Tags Article
// @Produce json
// @Param id path string true "Article ID"
// @Success 200 {object} response.Message "Article deleted successfully"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/articles/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteArticle")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	if err := handler.service.Delete(ctx, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete article")

		response.WithError(w, err)

		return
	}

	response.WithMessage(w, http.StatusOK, "Article deleted successfully")
}
