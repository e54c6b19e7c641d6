package router

import (
	"time"

	"book-my-session/core/middleware"
	"book-my-session/modules/booking/controller"

	"github.com/labstack/echo/v4"
)

type BookingRouter struct {
	controller *controller.BookingController
}

func NewBookingRouter(controller *controller.BookingController) *BookingRouter {
	return &BookingRouter{controller: controller}
}

func (r *BookingRouter) Setup(e *echo.Echo, mw *middleware.Middleware, timeout time.Duration) {
	v1 := e.Group("/api/v1")
	private := v1.Group("/private", mw.AuthMiddleware(), mw.Timeout(timeout))

	private.POST("/speakers/:speaker/bookings", r.controller.Reserve)

	bookings := private.Group("/bookings")
	bookings.GET("", r.controller.ListMyBookings)
	bookings.GET("/:id", r.controller.GetBooking)
}
