package dto

import (
	"time"

	"github.com/google/uuid"
)

type SetupProfileRequest struct {
	Expertise       string   `json:"expertise" validate:"required"`
	PricePerSession *float64 `json:"price_per_session" validate:"required"`
}

type SpeakerProfileResponse struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	Slug            string    `json:"slug"`
	Expertise       string    `json:"expertise"`
	PricePerSession float64   `json:"price_per_session"`
	SlotsCreated    int       `json:"slots_created"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type SpeakerResponse struct {
	ID              uuid.UUID `json:"id"`
	Slug            string    `json:"slug"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Email           string    `json:"email"`
	Expertise       string    `json:"expertise"`
	PricePerSession float64   `json:"price_per_session"`
}

type ListSpeakersQuery struct {
	Expertise string
	MinPrice  *float64
	MaxPrice  *float64
}
