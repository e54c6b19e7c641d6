package service

import (
	"context"
	"time"

	"book-my-session/core/constants"
	"book-my-session/core/errors"
	"book-my-session/core/logger"
	"book-my-session/core/utils"
	"book-my-session/modules/slot/dto"
	"book-my-session/modules/slot/entity"
	"book-my-session/modules/slot/repository"
	speakerEntity "book-my-session/modules/speaker/entity"
)

// SpeakerResolver finds a profile by id, owner id or slug.
type SpeakerResolver interface {
	Resolve(ctx context.Context, ref string) (*speakerEntity.SpeakerProfile, *errors.AppError)
}

type AvailabilityService interface {
	GetAvailability(ctx context.Context, speakerRef string) (*dto.AvailabilityResponse, *errors.AppError)
}

type availabilityService struct {
	repo     repository.SlotRepository
	speakers SpeakerResolver
	view     string
	loc      *time.Location
}

func NewAvailabilityService(repo repository.SlotRepository, speakers SpeakerResolver, view string, loc *time.Location) AvailabilityService {
	if view == "" {
		view = constants.AvailabilityViewFree
	}
	if loc == nil {
		loc = time.UTC
	}
	return &availabilityService{repo: repo, speakers: speakers, view: view, loc: loc}
}

func (s *availabilityService) GetAvailability(ctx context.Context, speakerRef string) (*dto.AvailabilityResponse, *errors.AppError) {
	profile, appErr := s.speakers.Resolve(ctx, speakerRef)
	if appErr != nil {
		return nil, appErr
	}

	resp := &dto.AvailabilityResponse{
		SpeakerProfileID: profile.ID,
		SpeakerSlug:      profile.Slug,
		View:             s.view,
		UTCOffset:        time.Time{}.In(s.loc).Format("-07:00"),
		Slots:            []dto.SlotResponse{},
	}

	switch s.view {
	case constants.AvailabilityViewOccupancy:
		rows, err := s.repo.ListWithOccupancy(ctx, profile.ID)
		if err != nil {
			logger.Error("AvailabilityService:GetAvailability:ListWithOccupancy:Error", "error", err, "profile_id", profile.ID)
			return nil, errors.NewAppError(errors.ErrStorage, "Failed to load slots", err)
		}
		for _, row := range rows {
			count := row.BookingCount
			item := s.toResponse(row.Slot)
			item.BookingCount = &count
			resp.Slots = append(resp.Slots, item)
		}
	default:
		rows, err := s.repo.ListFree(ctx, profile.ID)
		if err != nil {
			logger.Error("AvailabilityService:GetAvailability:ListFree:Error", "error", err, "profile_id", profile.ID)
			return nil, errors.NewAppError(errors.ErrStorage, "Failed to load slots", err)
		}
		for _, row := range rows {
			resp.Slots = append(resp.Slots, s.toResponse(row))
		}
	}

	resp.Empty = len(resp.Slots) == 0
	return resp, nil
}

func (s *availabilityService) toResponse(slot entity.Slot) dto.SlotResponse {
	return dto.SlotResponse{
		ID:        slot.ID,
		StartTime: utils.FormatDisplay(slot.Start, s.loc),
		EndTime:   utils.FormatDisplay(slot.End, s.loc),
	}
}
