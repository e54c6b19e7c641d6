package service

import (
	"context"
	"time"

	"book-my-session/core/constants"
	"book-my-session/core/database"
	"book-my-session/core/errors"
	"book-my-session/core/logger"
	"book-my-session/core/metrics"
	"book-my-session/modules/slot/repository"

	"github.com/google/uuid"
)

type GenerationService interface {
	// Materialize writes the profile's slot inventory through q, which is expected
	// to be the transaction that also wrote the profile.
	Materialize(ctx context.Context, q database.Queryer, profileID uuid.UUID) (int, *errors.AppError)
}

type GenerationOptions struct {
	Window       Window
	Days         int
	StartDate    string // YYYY-MM-DD in the window location, empty = tomorrow
	Regeneration string // append | reject
	Now          func() time.Time
}

type generationService struct {
	repo repository.SlotRepository
	opts GenerationOptions
}

func NewGenerationService(repo repository.SlotRepository, opts GenerationOptions) GenerationService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Days <= 0 {
		opts.Days = constants.DefaultSlotDays
	}
	if opts.Regeneration == "" {
		opts.Regeneration = constants.RegenerationAppend
	}
	return &generationService{repo: repo, opts: opts}
}

func (s *generationService) firstDay(now time.Time) time.Time {
	loc := s.opts.Window.Location
	if s.opts.StartDate != "" {
		if d, err := time.ParseInLocation(time.DateOnly, s.opts.StartDate, loc); err == nil {
			return d
		}
	}
	y, m, d := now.In(loc).Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, loc)
}

func (s *generationService) Materialize(ctx context.Context, q database.Queryer, profileID uuid.UUID) (int, *errors.AppError) {
	logger.Info("SlotGenerationService:Materialize:Start", "profile_id", profileID, "policy", s.opts.Regeneration)

	now := s.opts.Now()
	slots := GenerateDays(profileID, s.firstDay(now), s.opts.Days, s.opts.Window, now)
	if len(slots) == 0 {
		logger.Warn("SlotGenerationService:Materialize:EmptyWindow", "profile_id", profileID)
		return 0, nil
	}

	skipExisting := true
	if s.opts.Regeneration == constants.RegenerationReject {
		booked, err := s.repo.CountBookingsForProfile(ctx, q, profileID)
		if err != nil {
			logger.Error("SlotGenerationService:Materialize:CountBookings:Error", "error", err, "profile_id", profileID)
			return 0, errors.NewAppError(errors.ErrStorage, "Failed to check existing bookings", err)
		}
		if booked > 0 {
			logger.Warn("SlotGenerationService:Materialize:Rejected", "profile_id", profileID, "bookings", booked)
			return 0, errors.NewAppError(errors.ErrAlreadyExists, "Slots cannot be regenerated while bookings exist", nil)
		}
		if err := s.repo.DeleteByProfile(ctx, q, profileID); err != nil {
			logger.Error("SlotGenerationService:Materialize:Delete:Error", "error", err, "profile_id", profileID)
			return 0, errors.NewAppError(errors.ErrStorage, "Failed to replace slots", err)
		}
		skipExisting = false
	}

	n, err := s.repo.InsertBatch(ctx, q, slots, skipExisting)
	if err != nil {
		logger.Error("SlotGenerationService:Materialize:Insert:Error", "error", err, "profile_id", profileID)
		return 0, errors.NewAppError(errors.ErrStorage, "Failed to create slots", err)
	}

	metrics.RecordSlotsGenerated(int(n))
	logger.Info("SlotGenerationService:Materialize:Success", "profile_id", profileID, "inserted", n, "candidates", len(slots))
	return int(n), nil
}
