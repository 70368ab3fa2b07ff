package search

import (
	"net/http"

	"lodge/infras/otel"
	"lodge/internal/domains/listing"
	"lodge/internal/domains/listing/service"
	"lodge/shared"
	"lodge/shared/constant"
	"lodge/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
)

type Handler struct {
	service service.Listing
	otel    otel.Otel
}

func New(service service.Listing, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/search", func(routerGroup chi.Router) {
		routerGroup.Get("/properties", handler.SearchProperties)
		routerGroup.Get("/articles", handler.SearchArticles)
		routerGroup.Get("/featured", handler.Featured)
	})
}

// SearchProperties filters, sorts and paginates the active catalog.
// @Summary Search properties
// @Description Text search over name, description, city and region with structured filters. Amenities are conjunctive.
// @Tags Search
// @Produce json
// @Param q query string false "Free text"
// @Param region query string false "Region"
// @Param type query string false "cabin, villa or loft"
// @Param featured query boolean false "Featured only"
// @Param guests query integer false "Minimum guest capacity"
// @Param min_price query number false "Minimum nightly price"
// @Param max_price query number false "Maximum nightly price"
// @Param amenities query []string false "Required amenities" collectionFormat(multi)
// @Param sort query string false "priority, name, price-low, price-high or rating"
// @Param page query integer false "Page, 1-based"
// @Param limit query integer false "Page size"
// @Success 200 {object} response.Data[listing.Result[listing.Property]] "Matching properties"
// @Router /v1/search/properties [get]
func (handler *Handler) SearchProperties(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SearchProperties")
	defer scope.End()

	criteria := listing.ParsePropertyCriteria(r.URL.Query())
	criteria.Locale = preferredLocale(r)

	res, err := handler.service.SearchProperties(ctx, criteria)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to search properties")

		response.WithError(w, err)

		return
	}

	scope.SetAttribute("search.total", res.TotalCount)

	response.WithJSON(w, http.StatusOK, res)
}

// SearchArticles searches published articles.
// @Summary Search articles
// @Tags Search
// @Produce json
// @Param q query string false "Free text over title, excerpt and tags"
// @Param tag query string false "Exact tag"
// @Param page query integer false "Page, 1-based"
// @Param limit query integer false "Page size"
// @Success 200 {object} response.Data[listing.Result[listing.Article]] "Matching articles"
// @Router /v1/search/articles [get]
func (handler *Handler) SearchArticles(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".SearchArticles")
	defer scope.End()

	criteria := listing.ParseArticleCriteria(r.URL.Query())

	res, err := handler.service.SearchArticles(ctx, criteria)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to search articles")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

// Featured lists featured properties by priority.
// @Summary Featured properties
// @Tags Search
// @Produce json
// @Param limit query integer false "Maximum number of properties"
// @Success 200 {object} response.Data[[]listing.Property] "Featured properties"
// @Router /v1/search/featured [get]
func (handler *Handler) Featured(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Featured")
	defer scope.End()

	limit, err := shared.ConvertStringToInt(r.URL.Query().Get(constant.RequestParamLimit))
	if err != nil {
		limit = constant.DefaultValueLimit
	}

	res, err := handler.service.Featured(ctx, limit)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get featured properties")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, res)
}

func preferredLocale(r *http.Request) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get(constant.RequestHeaderAcceptLanguage))
	if err != nil || len(tags) == 0 {
		return language.Und
	}

	return tags[0]
}
