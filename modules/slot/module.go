package slot

import (
	"book-my-session/core/config"
	"book-my-session/core/database"
	"book-my-session/core/middleware"
	"book-my-session/modules/slot/controller"
	"book-my-session/modules/slot/repository"
	"book-my-session/modules/slot/router"
	"book-my-session/modules/slot/service"

	"github.com/labstack/echo/v4"
)

// NewGenerationService wires the slot generator used by speaker profile setup.
func NewGenerationService(db database.IDatabase, cfg *config.Config) (service.GenerationService, error) {
	window, err := service.NewWindow(cfg.Slots)
	if err != nil {
		return nil, err
	}
	return service.NewGenerationService(repository.NewSlotRepository(db), service.GenerationOptions{
		Window:       window,
		Days:         cfg.Slots.Days,
		StartDate:    cfg.Slots.StartDate,
		Regeneration: cfg.Slots.Regeneration,
	}), nil
}

func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, speakers service.SpeakerResolver, cfg *config.Config) service.AvailabilityService {
	repo := repository.NewSlotRepository(db)
	svc := service.NewAvailabilityService(repo, speakers, cfg.Booking.AvailabilityView, cfg.Slots.DisplayLocation())
	ctrl := controller.NewSlotController(svc)

	router.NewSlotRouter(ctrl).Setup(e, mw)

	return svc
}
