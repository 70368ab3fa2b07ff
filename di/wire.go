//go:build wireinject
// +build wireinject

package di

import (
	"lodge/config"
	"lodge/infras/jwt"
	"lodge/infras/kafka"
	"lodge/infras/otel"
	"lodge/infras/postgres"
	"lodge/infras/redis"
	"lodge/infras/s3"
	articleRepository "lodge/internal/domains/article/repository"
	articleService "lodge/internal/domains/article/service"
	authRepository "lodge/internal/domains/auth/repository"
	authService "lodge/internal/domains/auth/service"
	imageEvent "lodge/internal/domains/image/event"
	imageRepository "lodge/internal/domains/image/repository"
	imageService "lodge/internal/domains/image/service"
	listingService "lodge/internal/domains/listing/service"
	ownerRepository "lodge/internal/domains/owner/repository"
	ownerService "lodge/internal/domains/owner/service"
	propertyRepository "lodge/internal/domains/property/repository"
	propertyService "lodge/internal/domains/property/service"
	roomRepository "lodge/internal/domains/room/repository"
	roomService "lodge/internal/domains/room/service"
	"lodge/internal/domains/suggestion"
	userRepository "lodge/internal/domains/user/repository"
	userService "lodge/internal/domains/user/service"
	articleHandler "lodge/internal/handlers/article"
	authHandler "lodge/internal/handlers/auth"
	imageHandler "lodge/internal/handlers/image"
	ownerHandler "lodge/internal/handlers/owner"
	propertyHandler "lodge/internal/handlers/property"
	roomHandler "lodge/internal/handlers/room"
	searchHandler "lodge/internal/handlers/search"
	suggestionHandler "lodge/internal/handlers/suggestion"
	userHandler "lodge/internal/handlers/user"
	"lodge/internal/worker"
	"lodge/permissions"
	"lodge/shared/cache"
	"lodge/shared/timezone"
	"lodge/transport/http"
	"lodge/transport/http/middleware"
	"lodge/transport/http/router"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	wire.Bind(new(postgres.Transactor), new(*postgres.Connection)),
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	cache.NewLocalCache,
	timezone.SystemClock,
)

var repositories = wire.NewSet(
	propertyRepository.New,
	roomRepository.New,
	ownerRepository.New,
	articleRepository.New,
	imageRepository.New,
	userRepository.New,
	authRepository.New,
)

var domains = wire.NewSet(
	imageEvent.New,
	propertyService.New,
	roomService.New,
	ownerService.New,
	articleService.New,
	imageService.New,
	userService.New,
	authService.New,
	listingService.New,
	suggestion.New,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	propertyHandler.New,
	roomHandler.New,
	ownerHandler.New,
	articleHandler.New,
	imageHandler.New,
	userHandler.New,
	searchHandler.New,
	suggestionHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		repositories,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeWorker() *worker.AssetCleanup {
	wire.Build(
		config.Get,
		otel.New,
		kafka.New,
		s3.New,
		worker.NewAssetCleanup,
	)

	return &worker.AssetCleanup{}
}
