package controller

import (
	"book-my-session/core/controller"
	"book-my-session/modules/slot/service"

	"github.com/labstack/echo/v4"
)

type SlotController struct {
	service service.AvailabilityService
	controller.BaseController
}

func NewSlotController(service service.AvailabilityService) *SlotController {
	return &SlotController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// GetAvailability lists a speaker's slots
// @Summary Speaker availability
// @Description Free slots (or slots with booking counts, depending on configuration) ordered by start time
// @Tags Slot
// @Security BearerAuth
// @Produce json
// @Param speaker path string true "Speaker profile id, owner id or slug"
// @Success 200 {object} dto.AvailabilityResponse
// @Failure 404 {object} errors.AppError
// @Router /private/speakers/{speaker}/slots [get]
func (c *SlotController) GetAvailability(ctx echo.Context) error {
	result, appErr := c.service.GetAvailability(ctx.Request().Context(), ctx.Param("speaker"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	if result.Empty {
		return c.SuccessResponse(ctx, result, "Speaker has no available slots")
	}
	return c.SuccessResponse(ctx, result, "Slots retrieved successfully")
}
