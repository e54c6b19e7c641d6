package controller

import (
	"book-my-session/core/controller"
	"book-my-session/core/middleware"
	"book-my-session/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

type CalendarController struct {
	service service.CalendarService
	controller.BaseController
}

func NewCalendarController(service service.CalendarService) *CalendarController {
	return &CalendarController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// GetConnections returns all calendar connections for the current user
// GET /api/v1/private/calendar/connections
func (c *CalendarController) GetConnections(ctx echo.Context) error {
	result, appErr := c.service.GetConnections(ctx.Request().Context(), middleware.UserIDFromContext(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Calendar connections retrieved successfully")
}

// DisconnectCalendar disconnects a calendar provider
// DELETE /api/v1/private/calendar/connections/:provider
func (c *CalendarController) DisconnectCalendar(ctx echo.Context) error {
	if appErr := c.service.DisconnectCalendar(ctx.Request().Context(), middleware.UserIDFromContext(ctx), ctx.Param("provider")); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, nil, "Disconnected successfully")
}
