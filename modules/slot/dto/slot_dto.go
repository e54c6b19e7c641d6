package dto

import "github.com/google/uuid"

// SlotResponse carries instants in the display offset (RFC 3339).
type SlotResponse struct {
	ID           uuid.UUID `json:"id"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	BookingCount *int      `json:"booking_count,omitempty"`
}

type AvailabilityResponse struct {
	SpeakerProfileID uuid.UUID      `json:"speaker_profile_id"`
	SpeakerSlug      string         `json:"speaker_slug"`
	View             string         `json:"view"`
	UTCOffset        string         `json:"utc_offset"`
	Empty            bool           `json:"empty"`
	Slots            []SlotResponse `json:"slots"`
}
