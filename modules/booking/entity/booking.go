package entity

import (
	"time"

	"github.com/google/uuid"
)

// Booking is append-only. NotifiedAt is set once, when confirmations are dispatched.
type Booking struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Reference        string     `db:"reference" json:"reference"`
	SlotID           uuid.UUID  `db:"slot_id" json:"slot_id"`
	UserID           uuid.UUID  `db:"user_id" json:"user_id"`
	SpeakerProfileID uuid.UUID  `db:"speaker_profile_id" json:"speaker_profile_id"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	NotifiedAt       *time.Time `db:"notified_at" json:"notified_at,omitempty"`
}

// BookingDetail joins a booking with its slot bounds and the speaker's owner.
type BookingDetail struct {
	Booking
	SlotStart     time.Time `db:"slot_start" json:"slot_start"`
	SlotEnd       time.Time `db:"slot_end" json:"slot_end"`
	SpeakerUserID uuid.UUID `db:"speaker_user_id" json:"speaker_user_id"`
	SpeakerSlug   string    `db:"speaker_slug" json:"speaker_slug"`
}
