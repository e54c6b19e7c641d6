package router

import (
	"book-my-session/core/middleware"
	"book-my-session/modules/slot/controller"

	"github.com/labstack/echo/v4"
)

type SlotRouter struct {
	controller *controller.SlotController
}

func NewSlotRouter(controller *controller.SlotController) *SlotRouter {
	return &SlotRouter{controller: controller}
}

func (r *SlotRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	private := v1.Group("/private", mw.AuthMiddleware())
	private.GET("/speakers/:speaker/slots", r.controller.GetAvailability)
}
