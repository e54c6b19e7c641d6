package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"book-my-session/core/constants"
	"book-my-session/core/errors"
	bookingEntity "book-my-session/modules/booking/entity"
	calendarDto "book-my-session/modules/calendar/dto"
	"book-my-session/modules/notification/dto"
	"book-my-session/modules/notification/mailer"
	userEntity "book-my-session/modules/user/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type callLog struct {
	mu    sync.Mutex
	steps []string
}

func (l *callLog) add(step string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.steps = append(l.steps, step)
}

type mockBookings struct{ mock.Mock }

func (m *mockBookings) GetDetail(ctx context.Context, id uuid.UUID) (*bookingEntity.BookingDetail, error) {
	args := m.Called(ctx, id)
	detail, _ := args.Get(0).(*bookingEntity.BookingDetail)
	return detail, args.Error(1)
}

func (m *mockBookings) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

type mockContacts struct{ mock.Mock }

func (m *mockContacts) GetByID(ctx context.Context, id uuid.UUID) (*userEntity.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*userEntity.User)
	return user, args.Error(1)
}

type mockCalendar struct{ mock.Mock }

func (m *mockCalendar) CreateEvent(ctx context.Context, req calendarDto.EventRequest) (*calendarDto.EventReference, *errors.AppError) {
	args := m.Called(ctx, req)
	ref, _ := args.Get(0).(*calendarDto.EventReference)
	appErr, _ := args.Get(1).(*errors.AppError)
	return ref, appErr
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, msg mailer.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type mockInbox struct{ mock.Mock }

func (m *mockInbox) Create(ctx context.Context, req *dto.CreateNotificationRequest) *errors.AppError {
	appErr, _ := m.Called(ctx, req).Get(0).(*errors.AppError)
	return appErr
}

type harness struct {
	bookings *mockBookings
	contacts *mockContacts
	calendar *mockCalendar
	mail     *mockMailer
	inbox    *mockInbox
	log      *callLog
	detail   *bookingEntity.BookingDetail
	bo       *userEntity.User
	ana      *userEntity.User
	now      time.Time
}

func newHarness() *harness {
	start := time.Date(2030, 1, 7, 3, 30, 0, 0, time.UTC)
	bo := &userEntity.User{ID: uuid.New(), FirstName: "Bo", LastName: "Tester", Email: "bo@example.com"}
	ana := &userEntity.User{ID: uuid.New(), FirstName: "Ana", LastName: "Tester", Email: "ana@example.com"}
	return &harness{
		bookings: &mockBookings{},
		contacts: &mockContacts{},
		calendar: &mockCalendar{},
		mail:     &mockMailer{},
		inbox:    &mockInbox{},
		log:      &callLog{},
		bo:       bo,
		ana:      ana,
		now:      time.Date(2030, 1, 6, 10, 0, 0, 0, time.UTC),
		detail: &bookingEntity.BookingDetail{
			Booking: bookingEntity.Booking{
				ID:               uuid.New(),
				Reference:        "BMS-7K2QX9PA",
				SlotID:           uuid.New(),
				UserID:           bo.ID,
				SpeakerProfileID: uuid.New(),
				CreatedAt:        time.Date(2030, 1, 6, 9, 59, 0, 0, time.UTC),
			},
			SlotStart:     start,
			SlotEnd:       start.Add(time.Hour),
			SpeakerUserID: ana.ID,
			SpeakerSlug:   "ana-tester-abc123",
		},
	}
}

func (h *harness) dispatcher() Dispatcher {
	loc := time.FixedZone("UTC+05:30", 19800)
	return NewDispatcher(h.bookings, h.contacts, h.calendar, h.mail, h.inbox, DispatcherOptions{
		Location: loc,
		Now:      func() time.Time { return h.now },
	})
}

func (h *harness) expectLoads() {
	h.bookings.On("GetDetail", mock.Anything, h.detail.ID).Return(h.detail, nil).Once()
	h.contacts.On("GetByID", mock.Anything, h.bo.ID).Return(h.bo, nil)
	h.contacts.On("GetByID", mock.Anything, h.ana.ID).Return(h.ana, nil)
}

func (h *harness) expectSideEffects(calendarErr *errors.AppError) {
	h.bookings.On("MarkNotified", mock.Anything, h.detail.ID, h.now).Return(true, nil).Once()

	var ref *calendarDto.EventReference
	if calendarErr == nil {
		ref = &calendarDto.EventReference{ID: "evt-1", MeetLink: "https://meet.google.com/abc-defg-hij"}
	}
	h.calendar.On("CreateEvent", mock.Anything, mock.MatchedBy(func(req calendarDto.EventRequest) bool {
		return req.OwnerUserID == h.ana.ID && req.RequestID == h.detail.ID.String() && len(req.Attendees) == 2
	})).Run(func(mock.Arguments) { h.log.add("calendar") }).Return(ref, calendarErr).Once()

	h.mail.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { h.log.add("email:" + args.Get(1).(mailer.Message).To.Address) }).
		Return(nil).Twice()

	h.inbox.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { h.log.add("inbox:" + args.Get(1).(*dto.CreateNotificationRequest).Type) }).
		Return(nil).Twice()
}

func (h *harness) assertAll(t *testing.T) {
	h.bookings.AssertExpectations(t)
	h.contacts.AssertExpectations(t)
	h.calendar.AssertExpectations(t)
	h.mail.AssertExpectations(t)
	h.inbox.AssertExpectations(t)
}

func TestDispatchRunsSideEffectsInOrder(t *testing.T) {
	h := newHarness()
	h.expectLoads()
	h.expectSideEffects(nil)

	require.Nil(t, h.dispatcher().Dispatch(context.Background(), h.detail.ID))

	assert.Equal(t, []string{
		"calendar",
		"email:bo@example.com",
		"email:ana@example.com",
		"inbox:" + constants.NotificationTypeBookingConfirmed,
		"inbox:" + constants.NotificationTypeSessionBooked,
	}, h.log.steps)
	h.assertAll(t)
}

func TestDispatchEmailContent(t *testing.T) {
	h := newHarness()
	h.expectLoads()
	h.expectSideEffects(nil)

	require.Nil(t, h.dispatcher().Dispatch(context.Background(), h.detail.ID))

	var toRequester mailer.Message
	for _, call := range h.mail.Calls {
		if msg := call.Arguments.Get(1).(mailer.Message); msg.To.Address == "bo@example.com" {
			toRequester = msg
		}
	}
	assert.Equal(t, "Your session with Ana Tester is confirmed (BMS-7K2QX9PA)", toRequester.Subject)
	assert.Contains(t, toRequester.Body, "2030-01-07T09:00:00+05:30")
	assert.Contains(t, toRequester.Body, "https://meet.google.com/abc-defg-hij")
	require.Len(t, toRequester.Attachments, 1)
	assert.Equal(t, mailer.InviteContentType, toRequester.Attachments[0].ContentType)
	assert.Contains(t, string(toRequester.Attachments[0].Data), "BMS-7K2QX9PA@book-my-session")

	var inboxData map[string]any
	for _, call := range h.inbox.Calls {
		req := call.Arguments.Get(1).(*dto.CreateNotificationRequest)
		if req.UserID == h.bo.ID {
			inboxData = req.Data
		}
	}
	assert.Equal(t, "BMS-7K2QX9PA", inboxData["reference"])
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", inboxData["event_link"])
}

func TestDispatchCalendarFailureStillSendsEmail(t *testing.T) {
	h := newHarness()
	h.expectLoads()
	h.expectSideEffects(errors.NewAppError(errors.ErrDependency, "calendar unavailable", nil))

	require.Nil(t, h.dispatcher().Dispatch(context.Background(), h.detail.ID))

	assert.Equal(t, "calendar", h.log.steps[0])
	assert.Len(t, h.log.steps, 5)
	for _, call := range h.mail.Calls {
		msg := call.Arguments.Get(1).(mailer.Message)
		assert.NotContains(t, msg.Body, "Join:")
		assert.Len(t, msg.Attachments, 1)
	}
	h.assertAll(t)
}

func TestDispatchEmailFailureIsNotFatal(t *testing.T) {
	h := newHarness()
	h.expectLoads()
	h.bookings.On("MarkNotified", mock.Anything, h.detail.ID, h.now).Return(true, nil).Once()
	h.calendar.On("CreateEvent", mock.Anything, mock.Anything).Return(nil, nil).Once()
	h.mail.On("Send", mock.Anything, mock.Anything).Return(fmt.Errorf("smtp: 421")).Twice()
	h.inbox.On("Create", mock.Anything, mock.Anything).Return(nil).Twice()

	assert.Nil(t, h.dispatcher().Dispatch(context.Background(), h.detail.ID))
	h.assertAll(t)
}

func TestDispatchSkipsNotifiedBookings(t *testing.T) {
	t.Run("marker already set on load", func(t *testing.T) {
		h := newHarness()
		notified := h.now.Add(-time.Minute)
		h.detail.NotifiedAt = &notified
		h.bookings.On("GetDetail", mock.Anything, h.detail.ID).Return(h.detail, nil).Once()

		assert.Nil(t, h.dispatcher().Dispatch(context.Background(), h.detail.ID))
		h.assertAll(t)
		h.mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})

	t.Run("marker claimed by a concurrent run", func(t *testing.T) {
		h := newHarness()
		h.expectLoads()
		h.bookings.On("MarkNotified", mock.Anything, h.detail.ID, h.now).Return(false, nil).Once()

		assert.Nil(t, h.dispatcher().Dispatch(context.Background(), h.detail.ID))
		h.calendar.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything)
		h.mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		h.inbox.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestDispatchFailures(t *testing.T) {
	t.Run("unknown booking", func(t *testing.T) {
		h := newHarness()
		h.bookings.On("GetDetail", mock.Anything, h.detail.ID).Return(nil, nil).Once()

		appErr := h.dispatcher().Dispatch(context.Background(), h.detail.ID)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrNotFound, appErr.Code)
	})

	t.Run("contact lookup error leaves the marker alone", func(t *testing.T) {
		h := newHarness()
		h.bookings.On("GetDetail", mock.Anything, h.detail.ID).Return(h.detail, nil).Once()
		h.contacts.On("GetByID", mock.Anything, h.bo.ID).Return(nil, fmt.Errorf("connection reset"))

		appErr := h.dispatcher().Dispatch(context.Background(), h.detail.ID)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrStorage, appErr.Code)
		h.bookings.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing contact is an integrity error", func(t *testing.T) {
		h := newHarness()
		h.bookings.On("GetDetail", mock.Anything, h.detail.ID).Return(h.detail, nil).Once()
		h.contacts.On("GetByID", mock.Anything, h.bo.ID).Return(h.bo, nil)
		h.contacts.On("GetByID", mock.Anything, h.ana.ID).Return(nil, nil)
		h.bookings.On("MarkNotified", mock.Anything, h.detail.ID, h.now).Return(true, nil).Once()

		appErr := h.dispatcher().Dispatch(context.Background(), h.detail.ID)
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrIntegrity, appErr.Code)
		h.mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestNewDispatcherWithoutOptionalParts(t *testing.T) {
	h := newHarness()
	h.expectLoads()
	h.bookings.On("MarkNotified", mock.Anything, h.detail.ID, mock.Anything).Return(true, nil).Once()

	d := NewDispatcher(h.bookings, h.contacts, nil, nil, nil, DispatcherOptions{})
	assert.Nil(t, d.Dispatch(context.Background(), h.detail.ID))
}
