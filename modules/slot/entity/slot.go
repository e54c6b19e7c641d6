package entity

import (
	"time"

	"github.com/google/uuid"
)

// Slot is an immutable bookable interval. Times are stored in UTC.
type Slot struct {
	ID               uuid.UUID `db:"id" json:"id"`
	SpeakerProfileID uuid.UUID `db:"speaker_profile_id" json:"speaker_profile_id"`
	Start            time.Time `db:"slot_start" json:"slot_start"`
	End              time.Time `db:"slot_end" json:"slot_end"`
	Claimed          bool      `db:"claimed" json:"claimed"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

type SlotOccupancy struct {
	Slot
	BookingCount int `db:"booking_count" json:"booking_count"`
}
