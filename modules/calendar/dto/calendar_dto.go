package dto

import (
	"time"

	"github.com/google/uuid"
)

type CalendarConnectionResponse struct {
	ID            string `json:"id"`
	Provider      string `json:"provider"`
	CalendarEmail string `json:"calendar_email"`
	IsActive      bool   `json:"is_active"`
	ConnectedAt   string `json:"connected_at"`
}

type CalendarConnectionListResponse struct {
	Connections []CalendarConnectionResponse `json:"connections"`
}

type Attendee struct {
	Email       string
	DisplayName string
}

// EventRequest describes one shared event. OwnerUserID selects whose calendar
// credential is used.
type EventRequest struct {
	OwnerUserID uuid.UUID
	RequestID   string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Attendees   []Attendee
}

// EventReference is the provider's handle on a created event.
type EventReference struct {
	ID       string `json:"id"`
	HTMLLink string `json:"html_link"`
	MeetLink string `json:"meet_link,omitempty"`
}

// Link prefers the join link over the calendar page.
func (r *EventReference) Link() string {
	if r == nil {
		return ""
	}
	if r.MeetLink != "" {
		return r.MeetLink
	}
	return r.HTMLLink
}
