package service

import (
	"context"
	"strings"
	"time"

	coreEntity "book-my-session/core/entity"
	"book-my-session/core/errors"
	"book-my-session/core/logger"
	"book-my-session/core/params"
	"book-my-session/modules/notification/dto"
	"book-my-session/modules/notification/entity"
	"book-my-session/modules/notification/repository"

	"github.com/google/uuid"
)

type NotificationService interface {
	Create(ctx context.Context, req *dto.CreateNotificationRequest) *errors.AppError
	GetMyNotifications(ctx context.Context, userID uuid.UUID, queryParams params.QueryParams) (*entity.PaginatedNotificationEntity, *errors.AppError)
	MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) *errors.AppError
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) *errors.AppError
	CountUnread(ctx context.Context, userID uuid.UUID) (int, *errors.AppError)
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

func (s *notificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) *errors.AppError {
	now := time.Now().UTC()
	notif := &entity.Notification{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    req.Type,
		Data:    entity.JSONB(req.Data),
		IsRead:  false,
		BaseEntity: coreEntity.BaseEntity{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	if err := s.repo.Create(ctx, notif); err != nil {
		logger.Error("NotificationService:Create:Error", "error", err, "user_id", req.UserID)
		return errors.NewAppError(errors.ErrStorage, "Failed to create notification", err)
	}
	return nil
}

func (s *notificationService) GetMyNotifications(ctx context.Context, userID uuid.UUID, queryParams params.QueryParams) (*entity.PaginatedNotificationEntity, *errors.AppError) {
	if userID == uuid.Nil {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Unauthorized", nil)
	}
	result, err := s.repo.GetByUserID(ctx, userID, queryParams)
	if err != nil {
		logger.Error("NotificationService:GetMyNotifications:Error", "error", err, "user_id", userID)
		return nil, errors.NewAppError(errors.ErrStorage, "Failed to get notifications", err)
	}
	return result, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID uuid.UUID, ids []string) *errors.AppError {
	if userID == uuid.Nil {
		return errors.NewAppError(errors.ErrUnauthorized, "Unauthorized", nil)
	}
	if len(ids) == 0 {
		return errors.NewAppError(errors.ErrInvalidInput, "At least one notification ID is required.", nil)
	}

	parsed := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return errors.NewAppError(errors.ErrInvalidInput, "Notification ID is not valid: "+raw, err)
		}
		parsed = append(parsed, id)
	}

	if err := s.repo.MarkAsRead(ctx, userID, parsed); err != nil {
		logger.Error("NotificationService:MarkAsRead:Error", "error", err, "user_id", userID)
		return errors.NewAppError(errors.ErrStorage, "Failed to mark as read", err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) *errors.AppError {
	if userID == uuid.Nil {
		return errors.NewAppError(errors.ErrUnauthorized, "Unauthorized", nil)
	}
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		logger.Error("NotificationService:MarkAllAsRead:Error", "error", err, "user_id", userID)
		return errors.NewAppError(errors.ErrStorage, "Failed to mark all as read", err)
	}
	return nil
}

func (s *notificationService) CountUnread(ctx context.Context, userID uuid.UUID) (int, *errors.AppError) {
	if userID == uuid.Nil {
		return 0, errors.NewAppError(errors.ErrUnauthorized, "Unauthorized", nil)
	}
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		logger.Error("NotificationService:CountUnread:Error", "error", err, "user_id", userID)
		return 0, errors.NewAppError(errors.ErrStorage, "Failed to count unread", err)
	}
	return count, nil
}
