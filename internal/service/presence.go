package service

import (
	"context"
	"time"

	"habithero/internal/config"
	"habithero/internal/domain"
	"habithero/internal/repository"
	"habithero/internal/ws"
	apperrors "habithero/pkg/errors"
	"habithero/pkg/logger"
)

type PresenceService interface {
	MarkOnline(ctx context.Context, userID int64) error
	MarkOffline(ctx context.Context, userID int64, reason string) error
	Touch(ctx context.Context, userID int64) error
	Status(ctx context.Context, viewerID, targetID int64) (*domain.PresenceStatus, error)
	BroadcastToFriends(ctx context.Context, userID int64, event string, data any)
}

type presenceService struct {
	userRepo   repository.UserRepository
	friendRepo repository.FriendRepository
	emitter    Emitter
	cfg        config.PresenceConfig
	log        logger.Logger
}

func NewPresenceService(
	userRepo repository.UserRepository,
	friendRepo repository.FriendRepository,
	emitter Emitter,
	cfg config.PresenceConfig,
	log logger.Logger,
) PresenceService {
	return &presenceService{
		userRepo:   userRepo,
		friendRepo: friendRepo,
		emitter:    emitter,
		cfg:        cfg,
		log:        log,
	}
}

func (s *presenceService) MarkOnline(ctx context.Context, userID int64) error {
	now := time.Now().UTC()
	if err := s.userRepo.SetPresence(ctx, userID, true, now); err != nil {
		return err
	}

	s.BroadcastToFriends(ctx, userID, ws.EventUserStatus, statusPayload(userID, domain.StatusOnline, domain.PresenceReasonConnected, now))
	return nil
}

func (s *presenceService) MarkOffline(ctx context.Context, userID int64, reason string) error {
	now := time.Now().UTC()
	if err := s.userRepo.SetPresence(ctx, userID, false, now); err != nil {
		return err
	}

	s.BroadcastToFriends(ctx, userID, ws.EventUserStatus, statusPayload(userID, domain.StatusOffline, reason, now))
	return nil
}

// Touch обновляет last_seen_at без рассылки — heartbeat активного соединения
func (s *presenceService) Touch(ctx context.Context, userID int64) error {
	return s.userRepo.SetPresence(ctx, userID, true, time.Now().UTC())
}

// Status отвечает на запрос статуса. Запрос чужого статуса разрешён только
// друзьям — иначе ошибка доступа, а не "offline" (иначе по ответам можно
// перечислять пользователей). Зависший online-флаг чинится на месте
func (s *presenceService) Status(ctx context.Context, viewerID, targetID int64) (*domain.PresenceStatus, error) {
	if viewerID != targetID {
		accepted, err := s.friendRepo.IsAccepted(ctx, viewerID, targetID)
		if err != nil {
			return nil, err
		}
		if !accepted {
			return nil, apperrors.ErrNotFriends
		}
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	isOnline := user.IsOnline
	if isOnline && time.Since(user.LastSeenAt) > s.cfg.IdleThreshold {
		// Самокоррекция: last_seen_at не трогаем, меняем только флаг
		if err := s.userRepo.SetPresence(ctx, targetID, false, user.LastSeenAt); err != nil {
			s.log.Warn("Failed to self-correct stale presence", "user_id", targetID, "error", err)
		}
		isOnline = false
	}

	status := domain.StatusOffline
	if isOnline {
		status = domain.StatusOnline
	}

	return &domain.PresenceStatus{
		UserID:     targetID,
		IsOnline:   isOnline,
		Status:     status,
		LastSeenAt: user.LastSeenAt,
	}, nil
}

// BroadcastToFriends шлёт событие в персональные комнаты всех принятых
// друзей. Пустой список друзей — no-op
func (s *presenceService) BroadcastToFriends(ctx context.Context, userID int64, event string, data any) {
	friendIDs, err := s.friendRepo.ListAcceptedIDs(ctx, userID)
	if err != nil {
		s.log.Error("Failed to resolve friends for broadcast", "user_id", userID, "error", err)
		return
	}

	for _, friendID := range friendIDs {
		s.emitter.EmitToUser(friendID, event, data)
	}
}

func statusPayload(userID int64, status, reason string, at time.Time) map[string]any {
	return map[string]any{
		"user_id":   userID,
		"status":    status,
		"reason":    reason,
		"timestamp": at.Format(time.RFC3339),
	}
}
