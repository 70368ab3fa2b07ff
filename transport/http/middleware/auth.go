package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"lodge/config"
	"lodge/infras/jwt"
	"lodge/infras/otel"
	"lodge/permissions"
	"lodge/shared/constant"
	"lodge/shared/failure"
	"lodge/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// trustedCaller marks requests authenticated by API key.
type trustedCaller struct{}

var tokenErrors = []struct {
	err     error
	message string
}{
	{jwt.ErrExpiredToken, "Token has expired"},
	{jwt.ErrInvalidToken, "Invalid token"},
	{jwt.ErrInvalidClaim, "Invalid token claims"},
}

type Auth interface {
	Auth(http.Handler) http.Handler
	APIKey(http.Handler) http.Handler
}

type Role interface {
	RBAC(http.Handler) http.Handler
}

// AuthRole is the full access-control chain: APIKey, then Auth, then RBAC.
type AuthRole interface {
	Auth
	Role
}

type authRole struct {
	jwtService jwt.JWT
	otel       otel.Otel
	permission *permissions.PermissionData
	cfg        *config.Config
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, permissions *permissions.PermissionData, cfg *config.Config) AuthRole {
	return &authRole{
		jwtService: jwtService,
		otel:       otel,
		permission: permissions,
		cfg:        cfg,
	}
}

func isTrusted(ctx context.Context) bool {
	trusted, _ := ctx.Value(trustedCaller{}).(bool)

	return trusted
}

// Auth resolves the caller from a bearer token. Public routes never require one,
// but a valid token there still identifies the caller.
func (m *authRole) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if isTrusted(ctx) {
			next.ServeHTTP(w, r)

			return
		}

		_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "auth.middleware")
		defer scope.End()

		route := routePattern(r)
		header := r.Header.Get(constant.RequestHeaderAuthorization)

		scope.SetAttributes(map[string]any{"http.route": route, "http.method": r.Method})

		if m.public(route, r.Method) {
			if claims, err := m.claims(ctx, header); err == nil {
				r = r.WithContext(withClaims(ctx, claims))
			}

			next.ServeHTTP(w, r)

			return
		}

		claims, err := m.claims(ctx, header)
		if err != nil {
			scope.TraceError(err)
			response.WithError(w, err)

			return
		}

		next.ServeHTTP(w, r.WithContext(withClaims(ctx, claims)))
	})
}

func (m *authRole) public(route, method string) bool {
	return m.permission != nil && m.permission.FindPermissions(route, method).Skip
}

func (m *authRole) claims(ctx context.Context, header string) (*jwt.Claims, error) {
	if header == constant.Empty {
		return nil, failure.Unauthorized("Missing authorization header")
	}

	token, err := jwt.ExtractTokenFromHeader(header)
	if err != nil {
		return nil, failure.Unauthorized("Invalid authorization header format")
	}

	claims, err := m.jwtService.ValidateToken(ctx, token, jwt.AccessToken)
	if err != nil {
		for _, known := range tokenErrors {
			if errors.Is(err, known.err) {
				return nil, failure.Unauthorized(known.message)
			}
		}

		return nil, failure.Unauthorized("Token validation failed")
	}

	if claims.UserID == constant.Empty || claims.Email == constant.Empty {
		log.Warn().Str("tokenID", claims.TokenID).Msg("Access token without subject claims")

		return nil, failure.Unauthorized("Invalid token claims")
	}

	return claims, nil
}

func withClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	for key, value := range map[any]string{
		constant.ContextKeyUserID:    claims.UserID,
		constant.ContextKeyUserEmail: claims.Email,
		constant.ContextKeyUserRole:  claims.Role,
		constant.ContextKeyTokenID:   claims.TokenID,
	} {
		ctx = context.WithValue(ctx, key, value)
	}

	return ctx
}

// RBAC enforces the role list of the matched route. It must run after Auth.
func (m *authRole) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if isTrusted(ctx) {
			next.ServeHTTP(w, r)

			return
		}

		_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "rbac.middleware")
		defer scope.End()

		if m.permission == nil {
			scope.TraceError(failure.ForbiddenError)
			response.WithError(w, failure.ForbiddenError)

			return
		}

		if m.permission.Skip {
			next.ServeHTTP(w, r)

			return
		}

		permission := m.permission.FindPermissions(routePattern(r), r.Method)
		role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

		if !permission.Allows(role) {
			scope.SetAttributes(map[string]any{
				"user_role":     role,
				"allowed_roles": permission.Permissions,
			})
			scope.TraceError(failure.ForbiddenError)
			response.WithError(w, failure.ForbiddenError)

			return
		}

		next.ServeHTTP(w, r)
	})
}

// APIKey admits internal callers as admin. Requests without the header continue as clients.
func (m *authRole) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(constant.RequestHeaderAPIKey)
		if key == constant.Empty {
			next.ServeHTTP(w, r)

			return
		}

		_, scope := m.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, "api_key.middleware")
		defer scope.End()

		expected := m.cfg.App.APIKey
		if expected == constant.Empty || subtle.ConstantTimeCompare([]byte(key), []byte(expected)) != 1 {
			scope.TraceError(failure.ForbiddenError)
			response.WithError(w, failure.ForbiddenError)

			return
		}

		ctx := context.WithValue(r.Context(), trustedCaller{}, true)
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleAdmin)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// routePattern resolves the chi pattern for the request before routing completes.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}

	return rctx.Routes.Find(chi.NewRouteContext(), r.Method, r.URL.Path)
}
