package calendar

import (
	"book-my-session/core/config"
	"book-my-session/core/database"
	"book-my-session/core/middleware"
	"book-my-session/modules/calendar/controller"
	"book-my-session/modules/calendar/repository"
	"book-my-session/modules/calendar/router"
	"book-my-session/modules/calendar/service"

	"github.com/labstack/echo/v4"
)

// Init registers the connection routes and returns the bridge used by the
// notification dispatcher.
func Init(e *echo.Echo, db database.IDatabase, mw *middleware.Middleware, cfg *config.Config) service.Bridge {
	repo := repository.NewCalendarRepository(db)
	calendarService := service.NewCalendarService(repo)
	calendarController := controller.NewCalendarController(calendarService)

	router.NewCalendarRouter(calendarController).Setup(e, mw)

	holder := service.NewCredentialHolder(cfg.GoogleAPI, repo)
	return service.NewGoogleBridge(holder, cfg.GoogleAPI.CalendarBaseURL, cfg.GoogleAPI.CalendarID)
}
