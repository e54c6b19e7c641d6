package router

import (
	"book-my-session/core/middleware"
	"book-my-session/modules/auth/controller"

	"github.com/labstack/echo/v4"
)

type AuthRouter struct {
	controller *controller.AuthController
}

func NewAuthRouter(controller *controller.AuthController) *AuthRouter {
	return &AuthRouter{controller: controller}
}

func (r *AuthRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	authRoutes := e.Group("/api/v1/private/auth")
	authRoutes.Use(mw.AuthMiddleware())

	authRoutes.POST("/logout", r.controller.Logout)
}
