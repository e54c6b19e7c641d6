package booking

import (
	"book-my-session/core/config"
	"book-my-session/core/database"
	"book-my-session/core/middleware"
	"book-my-session/modules/booking/controller"
	"book-my-session/modules/booking/repository"
	"book-my-session/modules/booking/router"
	"book-my-session/modules/booking/service"
	slotRepository "book-my-session/modules/slot/repository"

	"github.com/labstack/echo/v4"
)

func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, speakers service.SpeakerResolver, notifier service.Notifier, cfg *config.Config) service.BookingService {
	repo := repository.NewBookingRepository(db)
	svc := service.NewBookingService(repo, slotRepository.NewSlotRepository(db), speakers, notifier, service.Options{
		Policy:   cfg.Booking.Policy,
		Location: cfg.Slots.DisplayLocation(),
	})
	ctrl := controller.NewBookingController(svc)

	router.NewBookingRouter(ctrl).Setup(e, mw, cfg.Booking.RequestTimeout)

	return svc
}
