package controller

import (
	"strconv"

	"book-my-session/core/controller"
	"book-my-session/core/errors"
	"book-my-session/core/middleware"
	"book-my-session/modules/speaker/dto"
	"book-my-session/modules/speaker/service"

	"github.com/labstack/echo/v4"
)

type SpeakerController struct {
	service service.SpeakerService
	controller.BaseController
}

func NewSpeakerController(service service.SpeakerService) *SpeakerController {
	return &SpeakerController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// SetupProfile creates or updates the caller's speaker profile and generates slots
// @Summary Set up speaker profile
// @Tags Speaker
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SetupProfileRequest true "Profile"
// @Success 200 {object} dto.SpeakerProfileResponse
// @Failure 400 {object} errors.AppError
// @Failure 403 {object} errors.AppError
// @Router /private/speakers/profile [post]
func (c *SpeakerController) SetupProfile(ctx echo.Context) error {
	req := new(dto.SetupProfileRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	result, appErr := c.service.SetupProfile(ctx.Request().Context(), middleware.UserIDFromContext(ctx), req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Speaker profile saved and slots generated successfully")
}

// ListSpeakers lists speakers
// @Summary List speakers
// @Tags Speaker
// @Security BearerAuth
// @Produce json
// @Param expertise query string false "Expertise (substring, case-insensitive)"
// @Param min_price query number false "Minimum price per session"
// @Param max_price query number false "Maximum price per session"
// @Success 200 {array} dto.SpeakerResponse
// @Failure 404 {object} errors.AppError
// @Router /private/speakers [get]
func (c *SpeakerController) ListSpeakers(ctx echo.Context) error {
	query := &dto.ListSpeakersQuery{Expertise: ctx.QueryParam("expertise")}

	var err error
	if query.MinPrice, err = parseOptionalFloat(ctx.QueryParam("min_price")); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "min_price must be a number", nil)
	}
	if query.MaxPrice, err = parseOptionalFloat(ctx.QueryParam("max_price")); err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "max_price must be a number", nil)
	}

	result, appErr := c.service.ListSpeakers(ctx.Request().Context(), query)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}
	return c.SuccessResponse(ctx, result, "Speakers retrieved successfully")
}

func parseOptionalFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
