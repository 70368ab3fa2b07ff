package suggestion

import (
	"net/http"

	"lodge/infras/otel"
	"lodge/internal/domains/suggestion"
	"lodge/shared/constant"
	"lodge/transport/http/response"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service suggestion.Suggestion
	otel    otel.Otel
}

func New(service suggestion.Suggestion, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/suggestions", func(routerGroup chi.Router) {
		routerGroup.Get("/next-weekend", handler.NextWeekend)
		routerGroup.Get("/immediate", handler.Immediate)
	})
}

// NextWeekend suggests the coming Thursday to Saturday stay.
// @Summary Next weekend dates
// @Tags Suggestion
// @Produce json
// @Success 200 {object} response.Data[suggestion.StayDatesResponse] "Stay dates"
// @Router /v1/suggestions/next-weekend [get]
func (handler *Handler) NextWeekend(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".NextWeekend")
	defer scope.End()

	response.WithJSON(w, http.StatusOK, handler.service.NextWeekend(ctx))
}

// Immediate suggests a one night stay starting today, or tomorrow after noon.
// @Summary Immediate stay dates
// @Tags Suggestion
// @Produce json
// @Success 200 {object} response.Data[suggestion.StayDatesResponse] "Stay dates"
// @Router /v1/suggestions/immediate [get]
func (handler *Handler) Immediate(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Immediate")
	defer scope.End()

	response.WithJSON(w, http.StatusOK, handler.service.ImmediateDates(ctx))
}
