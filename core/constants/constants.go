package constants

import "time"

// Database defaults
const (
	DatabaseDriverPostgres  = "postgres"
	DatabaseDriverSQLite    = "sqlite"
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
)

// Roles
const (
	RoleUser    = "user"
	RoleSpeaker = "speaker"
)

// Echo context keys set by the auth middleware
const (
	ContextKeyUserID = "user_id"
	ContextKeyRole   = "role"
	ContextKeyEmail  = "email"
	ContextKeyClaims = "claims"
)

// Reservation policies
const (
	BookingPolicyExclusive = "exclusive"
	BookingPolicyShared    = "shared"
)

// Availability views
const (
	AvailabilityViewFree      = "free"
	AvailabilityViewOccupancy = "occupancy"
)

// Slot regeneration policies
const (
	RegenerationAppend = "append"
	RegenerationReject = "reject"
)

// Slot defaults
const (
	DefaultSlotWindowStart   = "09:00"
	DefaultSlotWindowEnd     = "16:00"
	DefaultSlotDuration      = time.Hour
	DefaultDisplayOffset     = "+05:30"
	DefaultSlotDays          = 1
	DefaultRequestTimeout    = 10 * time.Second
	DefaultNotifySweepPeriod = time.Minute
)

// Background tasks
const (
	TaskBookingConfirmation = "booking:confirmation"
	TaskBookingSweep        = "booking:sweep"
	QueueNotifications      = "notifications"
)

// Notification types for the in-app inbox
const (
	NotificationTypeBookingConfirmed = "booking_confirmed"
	NotificationTypeSessionBooked    = "session_booked"
)

// Redis keys
const (
	RedisTokenBlacklistPrefix = "auth:blacklist:"
)

const CalendarProviderGoogle = "google"

// Pagination
const (
	DefaultPageNumber = 1
	DefaultPageSize   = 20
	MaxPageSize       = 100
)
