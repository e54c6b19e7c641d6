package server

import (
	"context"
	"net/http"
	"time"

	"book-my-session/core/cache"
	"book-my-session/core/database"
	"book-my-session/core/logger"

	"github.com/labstack/echo/v4"
)

type healthStatus struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
	Time     string `json:"time"`
}

// healthHandler answers 503 only when the database is down. Redis backs token
// revocation and the queue, so losing it degrades the service without stopping it.
func healthHandler(db database.IDatabase, tokenCache cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := healthStatus{Status: "ok", Database: "up", Redis: "disabled", Time: time.Now().UTC().Format(time.RFC3339)}

		if tokenCache != nil {
			status.Redis = "up"
			if err := tokenCache.Ping(ctx); err != nil {
				logger.Warn("Server:Health:Redis:Error", "error", err)
				status.Status, status.Redis = "degraded", "down"
			}
		}

		if err := db.PingContext(ctx); err != nil {
			logger.Warn("Server:Health:Ping:Error", "error", err)
			status.Status, status.Database = "degraded", "down"
			return c.JSON(http.StatusServiceUnavailable, status)
		}
		return c.JSON(http.StatusOK, status)
	}
}
