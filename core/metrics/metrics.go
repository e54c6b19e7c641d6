package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bms_reservations_total",
			Help: "Reservation attempts by policy and outcome code",
		},
		[]string{"policy", "outcome"},
	)

	SlotsGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bms_slots_generated_total",
			Help: "Slots inserted by the generator",
		},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bms_notifications_total",
			Help: "Confirmation side effects by channel and status",
		},
		[]string{"channel", "status"},
	)

	CalendarEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bms_calendar_events_total",
			Help: "Calendar bridge calls by status",
		},
		[]string{"status"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bms_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bms_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func RecordReservation(policy, outcome string) {
	ReservationsTotal.WithLabelValues(policy, outcome).Inc()
}

func RecordSlotsGenerated(n int) {
	SlotsGenerated.Add(float64(n))
}

func RecordNotification(channel, status string) {
	NotificationsSent.WithLabelValues(channel, status).Inc()
}

func RecordCalendarEvent(status string) {
	CalendarEvents.WithLabelValues(status).Inc()
}

// HTTPMiddleware records count and latency per matched route.
func HTTPMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Response().Status)).Inc()
			HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
