package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"habithero/internal/domain"
	"habithero/internal/repository"
	"habithero/internal/ws"
	apperrors "habithero/pkg/errors"
	"habithero/pkg/logger"
)

// Снапы живут сутки с момента отправки
const snapTTL = 24 * time.Hour

type SnapService interface {
	Send(ctx context.Context, senderID, receiverID int64, habitID *int64, contentType, content, caption string) (*domain.Snap, error)
	ListReceived(ctx context.Context, userID int64) ([]*domain.Snap, error)
	ListSent(ctx context.Context, userID int64) ([]*domain.Snap, error)
	View(ctx context.Context, userID, snapID int64) (*domain.Snap, error)
	React(ctx context.Context, userID, snapID int64, emoji string) (*domain.SnapReaction, error)
}

type snapService struct {
	snapRepo         repository.SnapRepository
	friendRepo       repository.FriendRepository
	userRepo         repository.UserRepository
	notificationRepo repository.NotificationRepository
	emitter          Emitter
	log              logger.Logger
}

func NewSnapService(
	snapRepo repository.SnapRepository,
	friendRepo repository.FriendRepository,
	userRepo repository.UserRepository,
	notificationRepo repository.NotificationRepository,
	emitter Emitter,
	log logger.Logger,
) SnapService {
	return &snapService{
		snapRepo:         snapRepo,
		friendRepo:       friendRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		emitter:          emitter,
		log:              log,
	}
}

func (s *snapService) Send(ctx context.Context, senderID, receiverID int64, habitID *int64, contentType, content, caption string) (*domain.Snap, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.ErrEmptyContent
	}
	switch contentType {
	case domain.SnapContentText, domain.SnapContentImage, domain.SnapContentVideo:
	default:
		return nil, apperrors.ErrBadRequest
	}

	accepted, err := s.friendRepo.IsAccepted(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, apperrors.ErrNotFriends
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	snap := &domain.Snap{
		SenderID:    senderID,
		ReceiverID:  receiverID,
		HabitID:     habitID,
		ContentType: contentType,
		Content:     content,
		Caption:     strings.TrimSpace(caption),
		ExpiresAt:   now.Add(snapTTL),
		CreatedAt:   now,
	}
	if err := s.snapRepo.Create(ctx, snap); err != nil {
		return nil, err
	}

	notification := &domain.Notification{
		UserID:    receiverID,
		Text:      fmt.Sprintf("%s sent you a snap", sender.Username),
		Link:      "/snaps",
		Timestamp: now,
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.log.Warn("Failed to create snap notification", "error", err)
	}

	s.emitter.EmitToUser(receiverID, ws.EventNewSnap, map[string]any{
		"snap_id":         snap.ID,
		"sender_id":       senderID,
		"sender_username": sender.Username,
		"content_type":    snap.ContentType,
		"expires_at":      snap.ExpiresAt.Format(time.RFC3339),
	})

	return snap, nil
}

func (s *snapService) ListReceived(ctx context.Context, userID int64) ([]*domain.Snap, error) {
	return s.snapRepo.ListReceived(ctx, userID, 50)
}

func (s *snapService) ListSent(ctx context.Context, userID int64) ([]*domain.Snap, error) {
	return s.snapRepo.ListSent(ctx, userID, 50)
}

// View помечает снап просмотренным; доступен только получателю, просроченный
// снап ведёт себя как несуществующий
func (s *snapService) View(ctx context.Context, userID, snapID int64) (*domain.Snap, error) {
	snap, err := s.snapRepo.GetByID(ctx, snapID)
	if err != nil {
		return nil, err
	}
	if snap.ReceiverID != userID {
		return nil, apperrors.ErrForbidden
	}
	if time.Now().UTC().After(snap.ExpiresAt) {
		return nil, apperrors.ErrSnapNotFound
	}

	if !snap.IsViewed {
		if err := s.snapRepo.MarkViewed(ctx, snapID); err != nil {
			return nil, err
		}
		snap.IsViewed = true
	}

	return snap, nil
}

func (s *snapService) React(ctx context.Context, userID, snapID int64, emoji string) (*domain.SnapReaction, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" || len(emoji) > 16 {
		return nil, apperrors.ErrBadRequest
	}

	snap, err := s.snapRepo.GetByID(ctx, snapID)
	if err != nil {
		return nil, err
	}
	if snap.SenderID != userID && snap.ReceiverID != userID {
		return nil, apperrors.ErrForbidden
	}

	reaction := &domain.SnapReaction{
		SnapID:    snapID,
		UserID:    userID,
		Emoji:     emoji,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.snapRepo.AddReaction(ctx, reaction); err != nil {
		return nil, err
	}

	return reaction, nil
}
