package dto

import (
	"time"

	"github.com/google/uuid"
)

type ReserveRequest struct {
	SlotID string `json:"slot_id" validate:"required"`
}

// ReserveCommand is the engine input. CallerID comes from the verified session.
type ReserveCommand struct {
	CallerID   uuid.UUID
	SpeakerRef string
	SlotID     string
}

// BookingResponse carries slot bounds in the display offset (RFC 3339).
type BookingResponse struct {
	ID               uuid.UUID `json:"id"`
	Reference        string    `json:"reference"`
	SlotID           uuid.UUID `json:"slot_id"`
	SpeakerProfileID uuid.UUID `json:"speaker_profile_id"`
	SpeakerSlug      string    `json:"speaker_slug,omitempty"`
	StartTime        string    `json:"start_time"`
	EndTime          string    `json:"end_time"`
	CreatedAt        time.Time `json:"created_at"`
	Notified         bool      `json:"notified"`
}
