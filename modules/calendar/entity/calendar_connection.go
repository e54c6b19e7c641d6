package entity

import (
	"time"

	"book-my-session/core/entity"

	"github.com/google/uuid"
)

// CalendarConnection is a stored, refreshable provider credential of one user.
type CalendarConnection struct {
	entity.BaseEntity
	UserID         uuid.UUID  `db:"user_id" json:"user_id"`
	Provider       string     `db:"provider" json:"provider"`
	AccessToken    string     `db:"access_token" json:"-"`
	RefreshToken   string     `db:"refresh_token" json:"-"`
	TokenExpiresAt *time.Time `db:"token_expires_at" json:"token_expires_at,omitempty"`
	CalendarEmail  string     `db:"calendar_email" json:"calendar_email"`
	IsActive       bool       `db:"is_active" json:"is_active"`
}
