package service

import (
	"context"
	"strings"
	"time"

	"book-my-session/core/constants"
	"book-my-session/core/database"
	"book-my-session/core/errors"
	"book-my-session/core/logger"
	"book-my-session/core/metrics"
	"book-my-session/core/utils"
	"book-my-session/modules/booking/dto"
	"book-my-session/modules/booking/entity"
	"book-my-session/modules/booking/repository"
	slotEntity "book-my-session/modules/slot/entity"
	speakerEntity "book-my-session/modules/speaker/entity"

	"github.com/google/uuid"
)

type SpeakerResolver interface {
	Resolve(ctx context.Context, ref string) (*speakerEntity.SpeakerProfile, *errors.AppError)
}

type SlotReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*slotEntity.Slot, error)
}

// Notifier receives bookings after they are committed. Errors are logged by the
// caller and never change the reservation outcome.
type Notifier interface {
	BookingCommitted(ctx context.Context, bookingID uuid.UUID) error
}

type BookingService interface {
	Reserve(ctx context.Context, cmd dto.ReserveCommand) (*dto.BookingResponse, *errors.AppError)
	GetBooking(ctx context.Context, callerID uuid.UUID, bookingID string) (*dto.BookingResponse, *errors.AppError)
	ListMyBookings(ctx context.Context, callerID uuid.UUID) ([]dto.BookingResponse, *errors.AppError)
}

type Options struct {
	Policy   string // exclusive | shared
	Location *time.Location
	Now      func() time.Time
}

type bookingService struct {
	repo     repository.BookingRepository
	slots    SlotReader
	speakers SpeakerResolver
	notifier Notifier
	opts     Options
}

func NewBookingService(repo repository.BookingRepository, slots SlotReader, speakers SpeakerResolver, notifier Notifier, opts Options) BookingService {
	if opts.Policy == "" {
		opts.Policy = constants.BookingPolicyExclusive
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &bookingService{
		repo:     repo,
		slots:    slots,
		speakers: speakers,
		notifier: notifier,
		opts:     opts,
	}
}

// Reserve books one slot for the caller. The storage engine decides every race:
// a conditional update under the exclusive policy, the (user_id, slot_id)
// constraint under the shared policy.
func (s *bookingService) Reserve(ctx context.Context, cmd dto.ReserveCommand) (*dto.BookingResponse, *errors.AppError) {
	logger.Info("BookingService:Reserve:Start", "caller_id", cmd.CallerID, "speaker", cmd.SpeakerRef, "slot_id", cmd.SlotID, "policy", s.opts.Policy)

	resp, appErr := s.reserve(ctx, cmd)
	if appErr != nil {
		metrics.RecordReservation(s.opts.Policy, string(appErr.Code))
		return nil, appErr
	}
	metrics.RecordReservation(s.opts.Policy, "success")
	return resp, nil
}

func (s *bookingService) reserve(ctx context.Context, cmd dto.ReserveCommand) (*dto.BookingResponse, *errors.AppError) {
	if cmd.CallerID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Unauthorized", nil)
	}
	rawSlotID := strings.TrimSpace(cmd.SlotID)
	if rawSlotID == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Slot ID is required.", nil)
	}
	slotID, err := uuid.Parse(rawSlotID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Slot ID is not valid.", err)
	}

	profile, appErr := s.speakers.Resolve(ctx, cmd.SpeakerRef)
	if appErr != nil {
		return nil, appErr
	}

	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		logger.Error("BookingService:Reserve:GetSlot:Error", "error", err, "slot_id", slotID)
		return nil, errors.NewAppError(errors.ErrStorage, "Failed to reserve slot, please retry", err)
	}
	if slot == nil || slot.SpeakerProfileID != profile.ID {
		return nil, errors.NewAppError(errors.ErrNotFound, "Slot not found", nil)
	}

	reference, err := utils.GenerateBookingReference()
	if err != nil {
		logger.Error("BookingService:Reserve:GenerateReference:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to reserve slot, please retry", err)
	}

	booking := &entity.Booking{
		ID:               uuid.New(),
		Reference:        reference,
		SlotID:           slot.ID,
		UserID:           cmd.CallerID,
		SpeakerProfileID: profile.ID,
		CreatedAt:        s.opts.Now().UTC(),
	}

	if appErr := s.commit(ctx, booking); appErr != nil {
		return nil, appErr
	}

	logger.Info("BookingService:Reserve:Committed", "booking_id", booking.ID, "reference", booking.Reference, "slot_id", slot.ID)
	s.afterCommit(ctx, booking.ID)

	return &dto.BookingResponse{
		ID:               booking.ID,
		Reference:        booking.Reference,
		SlotID:           booking.SlotID,
		SpeakerProfileID: booking.SpeakerProfileID,
		SpeakerSlug:      profile.Slug,
		StartTime:        utils.FormatDisplay(slot.Start, s.opts.Location),
		EndTime:          utils.FormatDisplay(slot.End, s.opts.Location),
		CreatedAt:        booking.CreatedAt,
	}, nil
}

func (s *bookingService) commit(ctx context.Context, booking *entity.Booking) *errors.AppError {
	var (
		ok  bool
		err error
	)
	switch s.opts.Policy {
	case constants.BookingPolicyShared:
		ok, err = s.repo.InsertShared(ctx, booking)
	default:
		ok, err = s.repo.ClaimExclusive(ctx, booking)
	}

	if err != nil {
		if database.IsUniqueViolation(err) {
			return s.classifyLoss(ctx, booking)
		}
		logger.Error("BookingService:Reserve:Commit:Error", "error", err, "slot_id", booking.SlotID)
		return errors.NewAppError(errors.ErrStorage, "Failed to reserve slot, please retry", err)
	}
	if !ok {
		return s.classifyLoss(ctx, booking)
	}
	return nil
}

// classifyLoss runs after the storage engine refused the write. It only picks the
// message; the outcome was already decided.
func (s *bookingService) classifyLoss(ctx context.Context, booking *entity.Booking) *errors.AppError {
	mine, err := s.repo.ExistsForUserSlot(ctx, booking.UserID, booking.SlotID)
	if err != nil {
		logger.Error("BookingService:Reserve:ClassifyLoss:Error", "error", err, "slot_id", booking.SlotID)
		return errors.NewAppError(errors.ErrStorage, "Failed to reserve slot, please retry", err)
	}
	if mine {
		return errors.NewAppError(errors.ErrAlreadyBooked, "You have already booked this slot", nil)
	}
	if s.opts.Policy == constants.BookingPolicyShared {
		// the only constraint left is the booking reference
		return errors.NewAppError(errors.ErrStorage, "Failed to reserve slot, please retry", nil)
	}
	return errors.NewAppError(errors.ErrSlotAlreadyClaimed, "This slot has already been booked", nil)
}

func (s *bookingService) afterCommit(ctx context.Context, bookingID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	// the booking stands even if the client has gone away
	if err := s.notifier.BookingCommitted(context.WithoutCancel(ctx), bookingID); err != nil {
		logger.Warn("BookingService:Reserve:Notify:Error", "error", err, "booking_id", bookingID)
	}
}

func (s *bookingService) GetBooking(ctx context.Context, callerID uuid.UUID, bookingID string) (*dto.BookingResponse, *errors.AppError) {
	if callerID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Unauthorized", nil)
	}
	id, err := uuid.Parse(strings.TrimSpace(bookingID))
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Booking ID is not valid.", err)
	}

	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		logger.Error("BookingService:GetBooking:Error", "error", err, "booking_id", id)
		return nil, errors.NewAppError(errors.ErrStorage, "Failed to load booking", err)
	}
	if detail == nil || (detail.UserID != callerID && detail.SpeakerUserID != callerID) {
		return nil, errors.NewAppError(errors.ErrNotFound, "Booking not found", nil)
	}
	return s.toResponse(detail), nil
}

func (s *bookingService) ListMyBookings(ctx context.Context, callerID uuid.UUID) ([]dto.BookingResponse, *errors.AppError) {
	if callerID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Unauthorized", nil)
	}
	details, err := s.repo.ListByUser(ctx, callerID)
	if err != nil {
		logger.Error("BookingService:ListMyBookings:Error", "error", err, "user_id", callerID)
		return nil, errors.NewAppError(errors.ErrStorage, "Failed to load bookings", err)
	}

	result := make([]dto.BookingResponse, 0, len(details))
	for i := range details {
		result = append(result, *s.toResponse(&details[i]))
	}
	return result, nil
}

func (s *bookingService) toResponse(d *entity.BookingDetail) *dto.BookingResponse {
	return &dto.BookingResponse{
		ID:               d.ID,
		Reference:        d.Reference,
		SlotID:           d.SlotID,
		SpeakerProfileID: d.SpeakerProfileID,
		SpeakerSlug:      d.SpeakerSlug,
		StartTime:        utils.FormatDisplay(d.SlotStart, s.opts.Location),
		EndTime:          utils.FormatDisplay(d.SlotEnd, s.opts.Location),
		CreatedAt:        d.CreatedAt,
		Notified:         d.NotifiedAt != nil,
	}
}
