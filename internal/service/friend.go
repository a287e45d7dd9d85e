package service

import (
	"context"
	"fmt"
	"time"

	"habithero/internal/domain"
	"habithero/internal/repository"
	"habithero/internal/ws"
	apperrors "habithero/pkg/errors"
	"habithero/pkg/logger"
)

type FriendService interface {
	SendRequest(ctx context.Context, userID int64, friendUsername string) (*domain.Friendship, error)
	Accept(ctx context.Context, userID, requestID int64) (*domain.Friendship, error)
	Reject(ctx context.Context, userID, requestID int64) error
	Remove(ctx context.Context, userID, friendID int64) error
	Block(ctx context.Context, userID, targetID int64) error
	ListFriends(ctx context.Context, userID int64) ([]*domain.User, error)
	ListPending(ctx context.Context, userID int64) ([]*domain.Friendship, error)
}

type friendService struct {
	friendRepo       repository.FriendRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	emitter          Emitter
	log              logger.Logger
}

func NewFriendService(
	friendRepo repository.FriendRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	emitter Emitter,
	log logger.Logger,
) FriendService {
	return &friendService{
		friendRepo:       friendRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		emitter:          emitter,
		log:              log,
	}
}

func (s *friendService) SendRequest(ctx context.Context, userID int64, friendUsername string) (*domain.Friendship, error) {
	target, err := s.userRepo.GetByUsername(ctx, friendUsername)
	if err != nil {
		return nil, apperrors.ErrUserNotFound
	}
	if target.ID == userID {
		return nil, apperrors.ErrBadRequest
	}

	// Повторная заявка поверх существующей пары запрещена в любом статусе
	if existing, err := s.friendRepo.GetBetween(ctx, userID, target.ID); err == nil && existing != nil {
		return nil, apperrors.ErrBadRequest
	}

	sender, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	friendship := &domain.Friendship{
		UserID:    userID,
		FriendID:  target.ID,
		Status:    domain.FriendStatusPending,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.friendRepo.CreateRequest(ctx, friendship); err != nil {
		return nil, err
	}

	notification := &domain.Notification{
		UserID:    target.ID,
		Text:      fmt.Sprintf("%s sent you a friend request", sender.Username),
		Link:      "/friends",
		Timestamp: time.Now().UTC(),
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.log.Warn("Failed to create friend request notification", "error", err)
	}

	s.emitter.EmitToUser(target.ID, ws.EventFriendRequest, map[string]any{
		"request_id":      friendship.ID,
		"sender_id":       userID,
		"sender_username": sender.Username,
	})

	return friendship, nil
}

func (s *friendService) Accept(ctx context.Context, userID, requestID int64) (*domain.Friendship, error) {
	friendship, err := s.friendRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	// Принять может только адресат заявки
	if friendship.FriendID != userID {
		return nil, apperrors.ErrForbidden
	}
	if friendship.Status != domain.FriendStatusPending {
		return nil, apperrors.ErrBadRequest
	}

	if err := s.friendRepo.UpdateStatus(ctx, requestID, domain.FriendStatusAccepted); err != nil {
		return nil, err
	}
	friendship.Status = domain.FriendStatusAccepted

	accepter, err := s.userRepo.GetByID(ctx, userID)
	if err == nil {
		notification := &domain.Notification{
			UserID:    friendship.UserID,
			Text:      fmt.Sprintf("%s accepted your friend request", accepter.Username),
			Link:      "/friends",
			Timestamp: time.Now().UTC(),
		}
		if err := s.notificationRepo.Create(ctx, notification); err != nil {
			s.log.Warn("Failed to create accept notification", "error", err)
		}
	}

	return friendship, nil
}

func (s *friendService) Reject(ctx context.Context, userID, requestID int64) error {
	friendship, err := s.friendRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if friendship.FriendID != userID {
		return apperrors.ErrForbidden
	}
	if friendship.Status != domain.FriendStatusPending {
		return apperrors.ErrBadRequest
	}

	return s.friendRepo.Delete(ctx, requestID)
}

func (s *friendService) Remove(ctx context.Context, userID, friendID int64) error {
	friendship, err := s.friendRepo.GetBetween(ctx, userID, friendID)
	if err != nil {
		return err
	}
	if friendship.Status != domain.FriendStatusAccepted {
		return apperrors.ErrNotFriends
	}

	return s.friendRepo.Delete(ctx, friendship.ID)
}

func (s *friendService) Block(ctx context.Context, userID, targetID int64) error {
	friendship, err := s.friendRepo.GetBetween(ctx, userID, targetID)
	if err != nil {
		if _, uerr := s.userRepo.GetByID(ctx, targetID); uerr != nil {
			return apperrors.ErrUserNotFound
		}
		friendship = &domain.Friendship{
			UserID:    userID,
			FriendID:  targetID,
			Status:    domain.FriendStatusBlocked,
			CreatedAt: time.Now().UTC(),
		}
		return s.friendRepo.CreateRequest(ctx, friendship)
	}

	return s.friendRepo.UpdateStatus(ctx, friendship.ID, domain.FriendStatusBlocked)
}

func (s *friendService) ListFriends(ctx context.Context, userID int64) ([]*domain.User, error) {
	ids, err := s.friendRepo.ListAcceptedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	friends := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			s.log.Warn("Friend row references missing user", "friend_id", id, "error", err)
			continue
		}
		user.PasswordHash = ""
		friends = append(friends, user)
	}

	return friends, nil
}

func (s *friendService) ListPending(ctx context.Context, userID int64) ([]*domain.Friendship, error) {
	all, err := s.friendRepo.ListForUser(ctx, userID, domain.FriendStatusPending)
	if err != nil {
		return nil, err
	}

	// Входящие заявки: пользователь — адресат, не инициатор
	incoming := make([]*domain.Friendship, 0, len(all))
	for _, f := range all {
		if f.FriendID == userID {
			incoming = append(incoming, f)
		}
	}

	return incoming, nil
}
