package speaker

import (
	"book-my-session/core/database"
	"book-my-session/core/middleware"
	slotService "book-my-session/modules/slot/service"
	"book-my-session/modules/speaker/controller"
	"book-my-session/modules/speaker/repository"
	"book-my-session/modules/speaker/router"
	"book-my-session/modules/speaker/service"
	userRepository "book-my-session/modules/user/repository"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, generator slotService.GenerationService) service.SpeakerService {
	repo := repository.NewSpeakerRepository(db)
	users := userRepository.NewUserRepository(db)
	svc := service.NewSpeakerService(db, repo, users, generator)
	ctrl := controller.NewSpeakerController(svc)

	router.NewSpeakerRouter(ctrl).Setup(e, mw)

	return svc
}
