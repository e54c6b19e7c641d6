package service

import (
	"context"
	"strings"
	"time"

	"book-my-session/core/database"
	coreEntity "book-my-session/core/entity"
	"book-my-session/core/errors"
	"book-my-session/core/logger"
	slotService "book-my-session/modules/slot/service"
	"book-my-session/modules/speaker/dto"
	"book-my-session/modules/speaker/entity"
	"book-my-session/modules/speaker/repository"
	userRepository "book-my-session/modules/user/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type SpeakerService interface {
	SetupProfile(ctx context.Context, userID uuid.UUID, req *dto.SetupProfileRequest) (*dto.SpeakerProfileResponse, *errors.AppError)
	ListSpeakers(ctx context.Context, query *dto.ListSpeakersQuery) ([]dto.SpeakerResponse, *errors.AppError)
	Resolve(ctx context.Context, ref string) (*entity.SpeakerProfile, *errors.AppError)
}

type speakerService struct {
	db        database.IDatabase
	repo      repository.SpeakerRepository
	users     userRepository.UserRepository
	generator slotService.GenerationService
	now       func() time.Time
}

func NewSpeakerService(db database.IDatabase, repo repository.SpeakerRepository, users userRepository.UserRepository, generator slotService.GenerationService) SpeakerService {
	return &speakerService{
		db:        db,
		repo:      repo,
		users:     users,
		generator: generator,
		now:       time.Now,
	}
}

// SetupProfile upserts the caller's profile and materializes its slots in one transaction.
func (s *speakerService) SetupProfile(ctx context.Context, userID uuid.UUID, req *dto.SetupProfileRequest) (*dto.SpeakerProfileResponse, *errors.AppError) {
	logger.Info("SpeakerService:SetupProfile:Start", "user_id", userID)

	if userID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Unauthorized", nil)
	}
	expertise := strings.TrimSpace(req.Expertise)
	if expertise == "" || req.PricePerSession == nil {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Expertise and price per session are required.", nil)
	}
	if *req.PricePerSession < 0 {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Price per session must not be negative.", nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		logger.Error("SpeakerService:SetupProfile:GetUser:Error", "error", err, "user_id", userID)
		return nil, errors.NewAppError(errors.ErrStorage, "Failed to load user", err)
	}
	if user == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "User not found", nil)
	}

	now := s.now().UTC()
	profile := &entity.SpeakerProfile{
		BaseEntity: coreEntity.BaseEntity{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:          userID,
		Slug:            newSlug(user.FullName()),
		Expertise:       expertise,
		PricePerSession: *req.PricePerSession,
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		logger.Error("SpeakerService:SetupProfile:BeginTx:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrStorage, "Failed to save profile", err)
	}
	defer tx.Rollback()

	saved, err := s.repo.Upsert(ctx, tx, profile)
	if err != nil {
		logger.Error("SpeakerService:SetupProfile:Upsert:Error", "error", err, "user_id", userID)
		if database.IsUniqueViolation(err) {
			return nil, errors.NewAppError(errors.ErrAlreadyExists, "Profile slug already taken, please retry", err)
		}
		return nil, errors.NewAppError(errors.ErrStorage, "Failed to save profile", err)
	}

	created, appErr := s.generator.Materialize(ctx, tx, saved.ID)
	if appErr != nil {
		return nil, appErr
	}

	if err := tx.Commit(); err != nil {
		logger.Error("SpeakerService:SetupProfile:Commit:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrStorage, "Failed to save profile", err)
	}

	logger.Info("SpeakerService:SetupProfile:Success", "profile_id", saved.ID, "slots_created", created)
	return &dto.SpeakerProfileResponse{
		ID:              saved.ID,
		UserID:          saved.UserID,
		Slug:            saved.Slug,
		Expertise:       saved.Expertise,
		PricePerSession: saved.PricePerSession,
		SlotsCreated:    created,
		CreatedAt:       saved.CreatedAt,
		UpdatedAt:       saved.UpdatedAt,
	}, nil
}

func (s *speakerService) ListSpeakers(ctx context.Context, query *dto.ListSpeakersQuery) ([]dto.SpeakerResponse, *errors.AppError) {
	filter := entity.SpeakerFilter{}
	if query != nil {
		filter.Expertise = query.Expertise
		filter.MinPrice = query.MinPrice
		filter.MaxPrice = query.MaxPrice
	}
	if (filter.MinPrice != nil && *filter.MinPrice < 0) || (filter.MaxPrice != nil && *filter.MaxPrice < 0) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Price filters must not be negative", nil)
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "min_price must not exceed max_price", nil)
	}

	listings, err := s.repo.List(ctx, filter)
	if err != nil {
		logger.Error("SpeakerService:ListSpeakers:Error", "error", err)
		return nil, errors.NewAppError(errors.ErrStorage, "Failed to load speakers", err)
	}
	if len(listings) == 0 {
		return nil, errors.NewAppError(errors.ErrNotFound, "No speakers found matching the criteria.", nil)
	}

	result := make([]dto.SpeakerResponse, 0, len(listings))
	for _, l := range listings {
		result = append(result, dto.SpeakerResponse{
			ID:              l.ID,
			Slug:            l.Slug,
			FirstName:       l.FirstName,
			LastName:        l.LastName,
			Email:           l.Email,
			Expertise:       l.Expertise,
			PricePerSession: l.PricePerSession,
		})
	}
	return result, nil
}

// Resolve accepts a profile id, the owner's user id, or the public slug.
func (s *speakerService) Resolve(ctx context.Context, ref string) (*entity.SpeakerProfile, *errors.AppError) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Speaker identifier is required", nil)
	}

	var (
		profile *entity.SpeakerProfile
		err     error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		profile, err = s.repo.GetByIDOrUserID(ctx, id)
	} else {
		profile, err = s.repo.GetBySlug(ctx, strings.ToLower(ref))
	}
	if err != nil {
		logger.Error("SpeakerService:Resolve:Error", "error", err, "ref", ref)
		return nil, errors.NewAppError(errors.ErrStorage, "Failed to load speaker", err)
	}
	if profile == nil {
		return nil, errors.NewAppError(errors.ErrNotFound, "Speaker not found", nil)
	}
	return profile, nil
}

func newSlug(name string) string {
	base := slug.Make(name)
	if base == "" {
		base = "speaker"
	}
	suffix, err := gonanoid.Generate("0123456789abcdefghijklmnopqrstuvwxyz", 6)
	if err != nil {
		suffix = strings.ReplaceAll(uuid.NewString()[:6], "-", "")
	}
	return base + "-" + suffix
}
