package service

import (
	"context"
	"strings"
	"time"

	"book-my-session/core/constants"
	"book-my-session/core/errors"
	"book-my-session/core/logger"
	"book-my-session/modules/calendar/dto"
	"book-my-session/modules/calendar/repository"

	"github.com/google/uuid"
)

type CalendarService interface {
	GetConnections(ctx context.Context, userID uuid.UUID) (*dto.CalendarConnectionListResponse, *errors.AppError)
	DisconnectCalendar(ctx context.Context, userID uuid.UUID, provider string) *errors.AppError
}

type calendarService struct {
	repo repository.CalendarRepository
}

func NewCalendarService(repo repository.CalendarRepository) CalendarService {
	return &calendarService{repo: repo}
}

func (s *calendarService) GetConnections(ctx context.Context, userID uuid.UUID) (*dto.CalendarConnectionListResponse, *errors.AppError) {
	if userID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Unauthorized", nil)
	}
	connections, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		logger.Error("CalendarService:GetConnections:Error", "error", err, "user_id", userID)
		return nil, errors.NewAppError(errors.ErrStorage, "Failed to get connections", err)
	}

	result := &dto.CalendarConnectionListResponse{Connections: []dto.CalendarConnectionResponse{}}
	for _, conn := range connections {
		result.Connections = append(result.Connections, dto.CalendarConnectionResponse{
			ID:            conn.ID.String(),
			Provider:      conn.Provider,
			CalendarEmail: conn.CalendarEmail,
			IsActive:      conn.IsActive,
			ConnectedAt:   conn.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, nil
}

func (s *calendarService) DisconnectCalendar(ctx context.Context, userID uuid.UUID, provider string) *errors.AppError {
	if userID == uuid.Nil {
		return errors.NewAppError(errors.ErrUnauthorized, "Unauthorized", nil)
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider != constants.CalendarProviderGoogle {
		return errors.NewAppError(errors.ErrInvalidInput, "Invalid provider", nil)
	}

	ok, err := s.repo.Disconnect(ctx, userID, provider)
	if err != nil {
		logger.Error("CalendarService:DisconnectCalendar:Error", "error", err, "user_id", userID)
		return errors.NewAppError(errors.ErrStorage, "Failed to disconnect", err)
	}
	if !ok {
		return errors.NewAppError(errors.ErrNotFound, "No active calendar connection", nil)
	}
	return nil
}
