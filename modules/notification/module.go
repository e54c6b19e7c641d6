package notification

import (
	"book-my-session/core/config"
	"book-my-session/core/database"
	"book-my-session/core/logger"
	"book-my-session/core/middleware"
	bookingRepository "book-my-session/modules/booking/repository"
	"book-my-session/modules/notification/controller"
	"book-my-session/modules/notification/mailer"
	"book-my-session/modules/notification/repository"
	"book-my-session/modules/notification/router"
	"book-my-session/modules/notification/service"
	userRepository "book-my-session/modules/user/repository"

	"github.com/labstack/echo/v4"
)

type Module struct {
	Inbox      service.NotificationService
	Dispatcher service.Dispatcher
}

// Init registers the inbox routes and builds the booking confirmation dispatcher.
// bridge may be nil to skip calendar events.
func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, bridge service.CalendarBridge, cfg *config.Config) *Module {
	repo := repository.NewNotificationRepository(db)
	svc := service.NewNotificationService(repo)
	ctrl := controller.NewNotificationController(svc)

	router.NewNotificationRouter(ctrl).Setup(e, mw)

	var m mailer.Mailer = mailer.LogMailer{}
	if cfg.Mail.Enabled {
		smtpMailer, err := mailer.NewSMTPMailer(cfg.Mail)
		if err != nil {
			logger.Warn("Notification:Init:Mailer:Error", "error", err, "fallback", "log")
		} else {
			m = smtpMailer
		}
	}

	dispatcher := service.NewDispatcher(
		bookingRepository.NewBookingRepository(db),
		userRepository.NewUserRepository(db),
		bridge,
		m,
		svc,
		service.DispatcherOptions{Location: cfg.Slots.DisplayLocation()},
	)

	return &Module{Inbox: svc, Dispatcher: dispatcher}
}
