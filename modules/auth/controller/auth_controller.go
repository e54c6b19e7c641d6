package controller

import (
	"book-my-session/core/controller"
	"book-my-session/core/middleware"
	"book-my-session/modules/auth/service"

	"github.com/labstack/echo/v4"
)

type AuthController struct {
	service service.AuthService
	controller.BaseController
}

func NewAuthController(service service.AuthService) *AuthController {
	return &AuthController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// Logout revokes the bearer token used for this request
// POST /api/v1/private/auth/logout
func (c *AuthController) Logout(ctx echo.Context) error {
	if appErr := c.service.Logout(ctx.Request().Context(), middleware.ClaimsFromContext(ctx)); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Logout success")
}
