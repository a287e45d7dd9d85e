package service

import (
	"context"

	"habithero/internal/domain"
	"habithero/internal/repository"
	"habithero/internal/ws"
	"habithero/pkg/logger"
)

type NotificationService interface {
	List(ctx context.Context, userID int64) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	emitter          Emitter
	log              logger.Logger
}

func NewNotificationService(notificationRepo repository.NotificationRepository, emitter Emitter, log logger.Logger) NotificationService {
	return &notificationService{notificationRepo: notificationRepo, emitter: emitter, log: log}
}

func (s *notificationService) List(ctx context.Context, userID int64) ([]*domain.Notification, error) {
	return s.notificationRepo.ListByUser(ctx, userID, 50)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	if err := s.notificationRepo.MarkRead(ctx, notificationID, userID); err != nil {
		return err
	}

	s.pushUnreadCount(ctx, userID)
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	updated, err := s.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}

	if updated > 0 {
		s.pushUnreadCount(ctx, userID)
	}
	return updated, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}

// Счётчик уходит во все вкладки пользователя, чтобы бейджи не расходились
func (s *notificationService) pushUnreadCount(ctx context.Context, userID int64) {
	count, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		s.log.Warn("Failed to count unread notifications", "user_id", userID, "error", err)
		return
	}

	s.emitter.EmitToUser(userID, ws.EventNotificationCount, map[string]any{"count": count})
}
