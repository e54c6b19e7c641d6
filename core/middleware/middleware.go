package middleware

import (
	"context"
	"slices"
	"time"

	"book-my-session/core/cache"
	"book-my-session/core/constants"
	"book-my-session/core/controller"
	"book-my-session/core/errors"
	"book-my-session/core/logger"
	"book-my-session/core/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Middleware struct {
	jwtSecret string
	cache     cache.Cache
	controller.BaseController
}

// NewMiddleware builds the auth middleware. tokenCache may be nil, which disables
// the revoked-token check.
func NewMiddleware(jwtSecret string, tokenCache cache.Cache) *Middleware {
	return &Middleware{
		jwtSecret:      jwtSecret,
		cache:          tokenCache,
		BaseController: controller.NewBaseController(),
	}
}

// AuthMiddleware verifies the bearer token and stores the caller in the echo context.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return m.ErrorResponse(c, errors.NewAppError(errors.ErrMissingAuthorizationHeader, "Access denied. No token provided.", nil))
			}

			claims, err := utils.ValidateAndParseToken(m.jwtSecret, header)
			if err != nil {
				return m.ErrorResponse(c, err)
			}

			if m.cache != nil && claims.ID != "" {
				revoked, cacheErr := m.cache.IsTokenBlacklisted(c.Request().Context(), claims.ID)
				if cacheErr != nil {
					logger.Warn("Middleware:AuthMiddleware:BlacklistCheck:Error", "error", cacheErr)
				} else if revoked {
					return m.ErrorResponse(c, errors.NewAppError(errors.ErrUnauthorized, "Token has been revoked", nil))
				}
			}

			c.Set(constants.ContextKeyUserID, claims.UserID)
			c.Set(constants.ContextKeyRole, claims.Role)
			c.Set(constants.ContextKeyEmail, claims.Email)
			c.Set(constants.ContextKeyClaims, claims)
			return next(c)
		}
	}
}

// RequireRole must run after AuthMiddleware.
func (m *Middleware) RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(constants.ContextKeyRole).(string)
			if !slices.Contains(roles, role) {
				return m.ErrorResponse(c, errors.NewAppError(errors.ErrForbidden, "Access denied. Insufficient permissions.", nil))
			}
			return next(c)
		}
	}
}

// Timeout bounds the request context so storage calls give up together with the client.
func (m *Middleware) Timeout(d time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if d <= 0 {
				return next(c)
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), d)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// UserIDFromContext returns the authenticated caller or uuid.Nil.
func UserIDFromContext(c echo.Context) uuid.UUID {
	id, _ := c.Get(constants.ContextKeyUserID).(uuid.UUID)
	return id
}

// ClaimsFromContext returns the verified token claims, or nil outside AuthMiddleware.
func ClaimsFromContext(c echo.Context) *utils.TokenClaims {
	claims, _ := c.Get(constants.ContextKeyClaims).(*utils.TokenClaims)
	return claims
}
