package controller

import (
	"book-my-session/core/controller"
	"book-my-session/core/errors"
	"book-my-session/core/middleware"
	"book-my-session/modules/booking/dto"
	"book-my-session/modules/booking/service"

	"github.com/labstack/echo/v4"
)

type BookingController struct {
	service service.BookingService
	controller.BaseController
}

func NewBookingController(service service.BookingService) *BookingController {
	return &BookingController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// Reserve books a slot of the given speaker for the caller
// @Summary Reserve a slot
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param speaker path string true "Speaker profile id, owner id or slug"
// @Param request body dto.ReserveRequest true "Slot"
// @Success 201 {object} dto.BookingResponse
// @Failure 400 {object} errors.AppError
// @Failure 404 {object} errors.AppError
// @Failure 409 {object} errors.AppError
// @Router /private/speakers/{speaker}/bookings [post]
func (c *BookingController) Reserve(ctx echo.Context) error {
	req := new(dto.ReserveRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	result, appErr := c.service.Reserve(ctx.Request().Context(), dto.ReserveCommand{
		CallerID:   middleware.UserIDFromContext(ctx),
		SpeakerRef: ctx.Param("speaker"),
		SlotID:     req.SlotID,
	})
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.CreatedResponse(ctx, result, "Slot booked successfully")
}

// GetBooking returns one booking visible to the caller
// @Summary Get booking
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} dto.BookingResponse
// @Failure 404 {object} errors.AppError
// @Router /private/bookings/{id} [get]
func (c *BookingController) GetBooking(ctx echo.Context) error {
	result, appErr := c.service.GetBooking(ctx.Request().Context(), middleware.UserIDFromContext(ctx), ctx.Param("id"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Booking retrieved successfully")
}

// ListMyBookings lists the caller's bookings
// @Summary List my bookings
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Success 200 {array} dto.BookingResponse
// @Router /private/bookings [get]
func (c *BookingController) ListMyBookings(ctx echo.Context) error {
	result, appErr := c.service.ListMyBookings(ctx.Request().Context(), middleware.UserIDFromContext(ctx))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Bookings retrieved successfully")
}
