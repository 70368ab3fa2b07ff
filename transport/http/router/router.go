package router

import (
	"lodge/internal/handlers/article"
	"lodge/internal/handlers/auth"
	"lodge/internal/handlers/image"
	"lodge/internal/handlers/owner"
	"lodge/internal/handlers/property"
	"lodge/internal/handlers/room"
	"lodge/internal/handlers/search"
	"lodge/internal/handlers/suggestion"
	"lodge/internal/handlers/user"
	"lodge/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Auth       auth.Handler
	Property   property.Handler
	Room       room.Handler
	Owner      owner.Handler
	Article    article.Handler
	Image      image.Handler
	User       user.Handler
	Search     search.Handler
	Suggestion suggestion.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	App            middleware.AppMiddleware
	AuthRole       middleware.AuthRole
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Use(r.App.RateLimit())
		routerGroup.Use(r.AuthRole.APIKey)
		routerGroup.Use(r.AuthRole.Auth)
		routerGroup.Use(r.AuthRole.RBAC)

		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.Property.Router(routerGroup)
		r.DomainHandlers.Room.Router(routerGroup)
		r.DomainHandlers.Owner.Router(routerGroup)
		r.DomainHandlers.Article.Router(routerGroup)
		r.DomainHandlers.Image.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.Search.Router(routerGroup)
		r.DomainHandlers.Suggestion.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers, app middleware.AppMiddleware, authRole middleware.AuthRole) Router {
	return Router{
		DomainHandlers: domainHandlers,
		App:            app,
		AuthRole:       authRole,
	}
}
