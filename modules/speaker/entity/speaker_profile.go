package entity

import (
	"book-my-session/core/entity"

	"github.com/google/uuid"
)

type SpeakerProfile struct {
	entity.BaseEntity
	UserID          uuid.UUID `db:"user_id" json:"user_id"`
	Slug            string    `db:"slug" json:"slug"`
	Expertise       string    `db:"expertise" json:"expertise"`
	PricePerSession float64   `db:"price_per_session" json:"price_per_session"`
}

// SpeakerListing is a profile joined with the owner's public name.
type SpeakerListing struct {
	SpeakerProfile
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	Email     string `db:"email" json:"email"`
}

// SpeakerFilter holds the optional listing filters. Nil means "not set".
type SpeakerFilter struct {
	Expertise string
	MinPrice  *float64
	MaxPrice  *float64
}
