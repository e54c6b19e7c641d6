package mailer

import (
	"fmt"
	"net/mail"
	"time"

	ics "github.com/arran4/golang-ical"
)

const InviteContentType = "text/calendar; charset=utf-8; method=REQUEST"

type Invite struct {
	UID         string
	Title       string
	Description string
	URL         string
	Start       time.Time
	End         time.Time
	Organizer   mail.Address
	Attendees   []mail.Address
	Stamp       time.Time
}

// BuildInvite renders a single-event REQUEST calendar.
func BuildInvite(in Invite) (Attachment, error) {
	if in.UID == "" {
		return Attachment{}, fmt.Errorf("invite: uid is required")
	}
	if !in.End.After(in.Start) {
		return Attachment{}, fmt.Errorf("invite: end must be after start")
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodRequest)
	cal.SetProductId("-//Book My Session//Booking//EN")

	event := cal.AddEvent(in.UID)
	event.SetDtStampTime(in.Stamp.UTC())
	event.SetStartAt(in.Start.UTC())
	event.SetEndAt(in.End.UTC())
	event.SetSummary(in.Title)
	if in.Description != "" {
		event.SetDescription(in.Description)
	}
	if in.URL != "" {
		event.SetURL(in.URL)
	}
	event.SetOrganizer("mailto:"+in.Organizer.Address, ics.WithCN(in.Organizer.Name))
	for _, a := range in.Attendees {
		event.AddAttendee(a.Address, ics.WithCN(a.Name), ics.WithRSVP(true))
	}

	return Attachment{
		Filename:    "invite.ics",
		ContentType: InviteContentType,
		Data:        []byte(cal.Serialize()),
	}, nil
}
