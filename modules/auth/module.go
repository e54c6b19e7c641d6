package auth

import (
	"book-my-session/core/cache"
	"book-my-session/core/middleware"
	"book-my-session/modules/auth/controller"
	"book-my-session/modules/auth/router"
	"book-my-session/modules/auth/service"

	"github.com/labstack/echo/v4"
)

// Init registers the session routes. tokenCache may be nil when redis is disabled.
func Init(e *echo.Echo, mw *middleware.Middleware, tokenCache cache.Cache) {
	var revoker service.TokenRevoker
	if tokenCache != nil {
		revoker = tokenCache
	}
	authController := controller.NewAuthController(service.NewAuthService(revoker))

	router.NewAuthRouter(authController).Setup(e, mw)
}
