package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"book-my-session/core/constants"
	"book-my-session/core/errors"
	"book-my-session/core/logger"
	"book-my-session/core/metrics"
	"book-my-session/core/utils"
	bookingEntity "book-my-session/modules/booking/entity"
	calendarDto "book-my-session/modules/calendar/dto"
	"book-my-session/modules/notification/dto"
	"book-my-session/modules/notification/mailer"
	userEntity "book-my-session/modules/user/entity"

	"github.com/google/uuid"
)

type BookingStore interface {
	GetDetail(ctx context.Context, id uuid.UUID) (*bookingEntity.BookingDetail, error)
	MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type ContactDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userEntity.User, error)
}

type CalendarBridge interface {
	CreateEvent(ctx context.Context, req calendarDto.EventRequest) (*calendarDto.EventReference, *errors.AppError)
}

type Inbox interface {
	Create(ctx context.Context, req *dto.CreateNotificationRequest) *errors.AppError
}

// Dispatcher fires the side effects of one committed booking.
type Dispatcher interface {
	Dispatch(ctx context.Context, bookingID uuid.UUID) *errors.AppError
}

type DispatcherOptions struct {
	Location *time.Location
	Now      func() time.Time
}

type dispatcher struct {
	bookings BookingStore
	contacts ContactDirectory
	calendar CalendarBridge
	mail     mailer.Mailer
	inbox    Inbox
	opts     DispatcherOptions
}

// NewDispatcher wires the side effects. calendar and inbox may be nil.
func NewDispatcher(bookings BookingStore, contacts ContactDirectory, calendar CalendarBridge, m mailer.Mailer, inbox Inbox, opts DispatcherOptions) Dispatcher {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if m == nil {
		m = mailer.LogMailer{}
	}
	return &dispatcher{
		bookings: bookings,
		contacts: contacts,
		calendar: calendar,
		mail:     m,
		inbox:    inbox,
		opts:     opts,
	}
}

type party struct {
	user    *userEntity.User
	address mail.Address
}

func newParty(u *userEntity.User) party {
	name := u.FullName()
	if name == "" {
		name = u.Email
	}
	return party{user: u, address: mail.Address{Name: name, Address: u.Email}}
}

// Dispatch loads the booking and both contacts, claims the booking's notified
// marker and then runs calendar, e-mail and inbox in that order. Only the loads
// and the claim can fail the call; side-effect failures are logged.
func (d *dispatcher) Dispatch(ctx context.Context, bookingID uuid.UUID) *errors.AppError {
	logger.Info("Dispatcher:Dispatch:Start", "booking_id", bookingID)

	detail, err := d.bookings.GetDetail(ctx, bookingID)
	if err != nil {
		logger.Error("Dispatcher:Dispatch:GetDetail:Error", "error", err, "booking_id", bookingID)
		return errors.NewAppError(errors.ErrStorage, "Failed to load booking", err)
	}
	if detail == nil {
		return errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
	}
	if detail.NotifiedAt != nil {
		logger.Info("Dispatcher:Dispatch:AlreadyNotified", "booking_id", bookingID)
		return nil
	}

	requester, err := d.contacts.GetByID(ctx, detail.UserID)
	if err != nil {
		logger.Error("Dispatcher:Dispatch:GetRequester:Error", "error", err, "booking_id", bookingID)
		return errors.NewAppError(errors.ErrStorage, "Failed to load contacts", err)
	}
	speaker, err := d.contacts.GetByID(ctx, detail.SpeakerUserID)
	if err != nil {
		logger.Error("Dispatcher:Dispatch:GetSpeaker:Error", "error", err, "booking_id", bookingID)
		return errors.NewAppError(errors.ErrStorage, "Failed to load contacts", err)
	}

	claimed, err := d.bookings.MarkNotified(ctx, bookingID, d.opts.Now().UTC())
	if err != nil {
		logger.Error("Dispatcher:Dispatch:MarkNotified:Error", "error", err, "booking_id", bookingID)
		return errors.NewAppError(errors.ErrStorage, "Failed to mark booking notified", err)
	}
	if !claimed {
		logger.Info("Dispatcher:Dispatch:AlreadyNotified", "booking_id", bookingID)
		return nil
	}

	// the marker stays claimed: a missing contact will not appear on retry
	if requester == nil || requester.Email == "" || speaker == nil || speaker.Email == "" {
		logger.Error("Dispatcher:Dispatch:MissingContact", "booking_id", bookingID,
			"requester_found", requester != nil, "speaker_found", speaker != nil)
		metrics.RecordNotification("email", "integrity")
		return errors.NewAppError(errors.ErrIntegrity, "Booking contact details are missing", nil)
	}

	from, to := newParty(requester), newParty(speaker)
	event := d.createEvent(ctx, detail, from, to)
	d.sendEmails(ctx, detail, from, to, event)
	d.recordInbox(ctx, detail, from, to, event)

	logger.Info("Dispatcher:Dispatch:Done", "booking_id", bookingID, "calendar_event", event != nil)
	return nil
}

func (d *dispatcher) title(speaker party) string {
	return fmt.Sprintf("Session with %s", speaker.address.Name)
}

func (d *dispatcher) createEvent(ctx context.Context, detail *bookingEntity.BookingDetail, requester, speaker party) *calendarDto.EventReference {
	if d.calendar == nil {
		return nil
	}
	ref, appErr := d.calendar.CreateEvent(ctx, calendarDto.EventRequest{
		OwnerUserID: detail.SpeakerUserID,
		RequestID:   detail.ID.String(),
		Title:       d.title(speaker),
		Description: fmt.Sprintf("Booking reference %s", detail.Reference),
		Start:       detail.SlotStart,
		End:         detail.SlotEnd,
		Attendees: []calendarDto.Attendee{
			{Email: requester.address.Address, DisplayName: requester.address.Name},
			{Email: speaker.address.Address, DisplayName: speaker.address.Name},
		},
	})
	if appErr != nil {
		logger.Warn("Dispatcher:Dispatch:Calendar:Error", "error", appErr, "booking_id", detail.ID)
		metrics.RecordNotification("calendar", "failed")
		return nil
	}
	metrics.RecordNotification("calendar", "sent")
	return ref
}

func (d *dispatcher) sendEmails(ctx context.Context, detail *bookingEntity.BookingDetail, requester, speaker party, event *calendarDto.EventReference) {
	var attachments []mailer.Attachment
	invite, err := mailer.BuildInvite(mailer.Invite{
		UID:         detail.Reference + "@book-my-session",
		Title:       d.title(speaker),
		Description: fmt.Sprintf("Booking reference %s", detail.Reference),
		URL:         event.Link(),
		Start:       detail.SlotStart,
		End:         detail.SlotEnd,
		Organizer:   speaker.address,
		Attendees:   []mail.Address{requester.address, speaker.address},
		Stamp:       d.opts.Now(),
	})
	if err != nil {
		logger.Warn("Dispatcher:Dispatch:Invite:Error", "error", err, "booking_id", detail.ID)
	} else {
		attachments = append(attachments, invite)
	}

	messages := []mailer.Message{
		{
			To:          requester.address,
			Subject:     fmt.Sprintf("Your session with %s is confirmed (%s)", speaker.address.Name, detail.Reference),
			Body:        d.body(detail, requester, speaker, event),
			Attachments: attachments,
		},
		{
			To:          speaker.address,
			Subject:     fmt.Sprintf("New session booked by %s (%s)", requester.address.Name, detail.Reference),
			Body:        d.body(detail, speaker, requester, event),
			Attachments: attachments,
		},
	}

	for _, msg := range messages {
		if err := d.mail.Send(ctx, msg); err != nil {
			logger.Warn("Dispatcher:Dispatch:Email:Error", "error", err, "booking_id", detail.ID, "to", msg.To.Address)
			metrics.RecordNotification("email", "failed")
			continue
		}
		metrics.RecordNotification("email", "sent")
	}
}

func (d *dispatcher) body(detail *bookingEntity.BookingDetail, recipient, counterpart party, event *calendarDto.EventReference) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", recipient.address.Name)
	fmt.Fprintf(&b, "Your session with %s is confirmed.\n\n", counterpart.address.Name)
	fmt.Fprintf(&b, "Reference: %s\n", detail.Reference)
	fmt.Fprintf(&b, "Starts:    %s\n", utils.FormatDisplay(detail.SlotStart, d.opts.Location))
	fmt.Fprintf(&b, "Ends:      %s\n", utils.FormatDisplay(detail.SlotEnd, d.opts.Location))
	if link := event.Link(); link != "" {
		fmt.Fprintf(&b, "Join:      %s\n", link)
	}
	b.WriteString("\nThe calendar invite is attached.\n")
	return b.String()
}

func (d *dispatcher) recordInbox(ctx context.Context, detail *bookingEntity.BookingDetail, requester, speaker party, event *calendarDto.EventReference) {
	if d.inbox == nil {
		return
	}
	data := map[string]any{
		"booking_id": detail.ID.String(),
		"reference":  detail.Reference,
		"slot_id":    detail.SlotID.String(),
		"start_time": utils.FormatDisplay(detail.SlotStart, d.opts.Location),
		"end_time":   utils.FormatDisplay(detail.SlotEnd, d.opts.Location),
	}
	if link := event.Link(); link != "" {
		data["event_link"] = link
	}

	entries := []dto.CreateNotificationRequest{
		{
			UserID:  requester.user.ID,
			Title:   "Booking confirmed",
			Message: fmt.Sprintf("Your session with %s is confirmed.", speaker.address.Name),
			Type:    constants.NotificationTypeBookingConfirmed,
			Data:    data,
		},
		{
			UserID:  speaker.user.ID,
			Title:   "New session booked",
			Message: fmt.Sprintf("%s booked a session with you.", requester.address.Name),
			Type:    constants.NotificationTypeSessionBooked,
			Data:    data,
		},
	}
	for i := range entries {
		if appErr := d.inbox.Create(ctx, &entries[i]); appErr != nil {
			logger.Warn("Dispatcher:Dispatch:Inbox:Error", "error", appErr, "booking_id", detail.ID, "user_id", entries[i].UserID)
			metrics.RecordNotification("inbox", "failed")
			continue
		}
		metrics.RecordNotification("inbox", "sent")
	}
}
