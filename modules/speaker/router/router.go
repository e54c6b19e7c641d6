package router

import (
	"book-my-session/core/constants"
	"book-my-session/core/middleware"
	"book-my-session/modules/speaker/controller"

	"github.com/labstack/echo/v4"
)

type SpeakerRouter struct {
	controller *controller.SpeakerController
}

func NewSpeakerRouter(controller *controller.SpeakerController) *SpeakerRouter {
	return &SpeakerRouter{controller: controller}
}

func (r *SpeakerRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")
	speakers := v1.Group("/private/speakers", mw.AuthMiddleware())

	speakers.GET("", r.controller.ListSpeakers)
	speakers.POST("/profile", r.controller.SetupProfile, mw.RequireRole(constants.RoleSpeaker))
}
