package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"habithero/internal/config"
	"habithero/internal/domain"
	"habithero/internal/repository"
	"habithero/internal/ws"
	apperrors "habithero/pkg/errors"
	"habithero/pkg/logger"
)

// ChatService — единственная реализация операций чата; HTTP-handler и
// socket-адаптер лишь транспортные обёртки над ней
type ChatService interface {
	SendMessage(ctx context.Context, senderID, receiverID int64, content string) (*domain.ChatMessage, bool, error)
	GetMessages(ctx context.Context, viewerID, otherID int64, page int) (*ConversationPage, error)
	MarkRead(ctx context.Context, readerID, senderID int64) ([]int64, error)
	ConfirmDelivered(ctx context.Context, receiverID, messageID int64) error
	EditMessage(ctx context.Context, userID, messageID int64, content string) (*domain.ChatMessage, error)
	DeleteMessage(ctx context.Context, userID, messageID int64, deleteType string) error
	ForwardMessage(ctx context.Context, userID, messageID, toFriendID int64) (*domain.ChatMessage, error)
	RecentChats(ctx context.Context, userID int64) ([]*domain.ChatPreview, error)
}

type ConversationPage struct {
	Messages []*domain.ChatMessage `json:"messages"`
	Total    int                   `json:"total"`
	HasNext  bool                  `json:"has_next"`
}

type chatService struct {
	chatRepo   repository.ChatRepository
	friendRepo repository.FriendRepository
	userRepo   repository.UserRepository
	emitter    Emitter
	cfg        config.ChatConfig
	log        logger.Logger
}

func NewChatService(
	chatRepo repository.ChatRepository,
	friendRepo repository.FriendRepository,
	userRepo repository.UserRepository,
	emitter Emitter,
	cfg config.ChatConfig,
	log logger.Logger,
) ChatService {
	return &chatService{
		chatRepo:   chatRepo,
		friendRepo: friendRepo,
		userRepo:   userRepo,
		emitter:    emitter,
		cfg:        cfg,
		log:        log,
	}
}

// SendMessage: дедупликация, проверка дружбы, снимок presence получателя для
// начального статуса, затем атомарная запись сообщения с уведомлением и
// рассылка new_message. Второй результат — true, если отправка оказалась
// повтором и вернулось уже существующее сообщение
func (s *chatService) SendMessage(ctx context.Context, senderID, receiverID int64, content string) (*domain.ChatMessage, bool, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, false, apperrors.ErrEmptyContent
	}
	if receiverID <= 0 || receiverID == senderID {
		return nil, false, apperrors.ErrBadRequest
	}

	// Повтор в пределах окна — это ретрай клиента, не новое сообщение
	duplicate, err := s.chatRepo.FindRecentDuplicate(ctx, senderID, receiverID, content, s.cfg.DedupWindow)
	if err != nil {
		return nil, false, err
	}
	if duplicate != nil {
		s.log.Info("Duplicate send absorbed", "message_id", duplicate.ID, "sender_id", senderID)
		return duplicate, true, nil
	}

	accepted, err := s.friendRepo.IsAccepted(ctx, senderID, receiverID)
	if err != nil {
		return nil, false, err
	}
	if !accepted {
		return nil, false, apperrors.ErrNotFriends
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, false, err
	}

	// Снимок presence на момент отправки: best-effort, не гарантия доставки
	receiver, err := s.userRepo.GetByID(ctx, receiverID)
	if err != nil {
		return nil, false, err
	}

	status := domain.MessageStatusSent
	if receiver.IsOnline {
		status = domain.MessageStatusDelivered
	}

	message := &domain.ChatMessage{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		Status:     status,
	}
	notification := &domain.Notification{
		UserID: receiverID,
		Text:   fmt.Sprintf("New message from %s", sender.Username),
		Link:   fmt.Sprintf("/chat/%d", senderID),
	}

	if err := s.chatRepo.CreateMessage(ctx, message, notification); err != nil {
		return nil, false, err
	}

	s.emitter.EmitToUser(receiverID, ws.EventNewMessage, s.messagePayload(message, sender.Username))
	return message, false, nil
}

func (s *chatService) GetMessages(ctx context.Context, viewerID, otherID int64, page int) (*ConversationPage, error) {
	accepted, err := s.friendRepo.IsAccepted(ctx, viewerID, otherID)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, apperrors.ErrNotFriends
	}

	if page < 1 {
		page = 1
	}

	// Открытие первой страницы — это прочтение всего непрочитанного.
	// Читаем историю после, чтобы снимок уже отражал новые статусы
	if page == 1 {
		if _, err := s.MarkRead(ctx, viewerID, otherID); err != nil {
			s.log.Error("Failed to mark conversation read on open", "error", err)
		}
	}

	messages, total, err := s.chatRepo.ListConversation(ctx, viewerID, otherID, s.cfg.PageSize, (page-1)*s.cfg.PageSize)
	if err != nil {
		return nil, err
	}

	return &ConversationPage{
		Messages: messages,
		Total:    total,
		HasNext:  page*s.cfg.PageSize < total,
	}, nil
}

// MarkRead пачкой переводит все непрочитанные сообщения от senderID в read и
// до возврата шлёт отправителю message_status_update по каждому id плюс
// сводное messages_read
func (s *chatService) MarkRead(ctx context.Context, readerID, senderID int64) ([]int64, error) {
	if senderID <= 0 {
		return nil, apperrors.ErrBadRequest
	}

	ids, err := s.chatRepo.MarkConversationRead(ctx, senderID, readerID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return ids, nil
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, id := range ids {
		s.emitter.EmitToUser(senderID, ws.EventStatusUpdate, map[string]any{
			"message_id": id,
			"status":     domain.MessageStatusRead,
			"timestamp":  now,
		})
	}
	s.emitter.EmitToUser(senderID, ws.EventMessagesRead, map[string]any{
		"reader_id":   readerID,
		"sender_id":   senderID,
		"count":       len(ids),
		"message_ids": ids,
		"timestamp":   now,
	})

	return ids, nil
}

// ConfirmDelivered — подтверждение получателя, что new_message реально дошёл.
// Повышает статус только вперёд: read не откатывается
func (s *chatService) ConfirmDelivered(ctx context.Context, receiverID, messageID int64) error {
	message, err := s.chatRepo.GetMessageByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.ReceiverID != receiverID {
		return apperrors.ErrForbidden
	}

	upgraded, err := s.chatRepo.MarkDelivered(ctx, messageID)
	if err != nil {
		return err
	}
	if !upgraded {
		return nil
	}

	s.emitter.EmitToUser(message.SenderID, ws.EventStatusUpdate, map[string]any{
		"message_id": messageID,
		"status":     domain.MessageStatusDelivered,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
	return nil
}

func (s *chatService) EditMessage(ctx context.Context, userID, messageID int64, content string) (*domain.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.ErrEmptyContent
	}

	message, err := s.chatRepo.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.SenderID != userID {
		return nil, apperrors.ErrNotMessageSender
	}
	if time.Since(message.Timestamp) > s.cfg.EditWindow {
		return nil, apperrors.ErrTimeWindowExpired
	}

	if err := s.chatRepo.UpdateContent(ctx, messageID, content); err != nil {
		return nil, err
	}

	message.Content = content
	message.Edited = true

	s.emitter.EmitToUser(message.ReceiverID, ws.EventMessageEdited, map[string]any{
		"message_id":  messageID,
		"new_content": content,
		"edited_by":   userID,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
	return message, nil
}

func (s *chatService) DeleteMessage(ctx context.Context, userID, messageID int64, deleteType string) error {
	message, err := s.chatRepo.GetMessageByID(ctx, messageID)
	if err != nil {
		return err
	}

	switch deleteType {
	case domain.DeleteTypeMe:
		// Скрытие только у запросившего; строка и вторая сторона не трогаются
		switch userID {
		case message.SenderID:
			return s.chatRepo.SetDeletedFor(ctx, messageID, true)
		case message.ReceiverID:
			return s.chatRepo.SetDeletedFor(ctx, messageID, false)
		default:
			return apperrors.ErrForbidden
		}

	case domain.DeleteTypeEveryone:
		if message.SenderID != userID {
			return apperrors.ErrNotMessageSender
		}
		if time.Since(message.Timestamp) > s.cfg.DeleteWindow {
			return apperrors.ErrTimeWindowExpired
		}

		if err := s.chatRepo.DeleteMessage(ctx, messageID); err != nil {
			return err
		}

		s.emitter.EmitToUser(message.ReceiverID, ws.EventMessageDeleted, map[string]any{
			"message_id": messageID,
			"deleted_by": userID,
		})
		return nil

	default:
		return apperrors.ErrBadRequest
	}
}

// ForwardMessage создаёт новое сообщение от пересылающего; оригинал не
// меняется, original_message_id — просто ссылка назад
func (s *chatService) ForwardMessage(ctx context.Context, userID, messageID, toFriendID int64) (*domain.ChatMessage, error) {
	original, err := s.chatRepo.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if original.SenderID != userID && original.ReceiverID != userID {
		return nil, apperrors.ErrForbidden
	}

	accepted, err := s.friendRepo.IsAccepted(ctx, userID, toFriendID)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, apperrors.ErrNotFriends
	}

	sender, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	receiver, err := s.userRepo.GetByID(ctx, toFriendID)
	if err != nil {
		return nil, err
	}

	status := domain.MessageStatusSent
	if receiver.IsOnline {
		status = domain.MessageStatusDelivered
	}

	forwarded := &domain.ChatMessage{
		SenderID:          userID,
		ReceiverID:        toFriendID,
		Content:           original.Content,
		Status:            status,
		IsForwarded:       true,
		OriginalMessageID: &messageID,
	}
	notification := &domain.Notification{
		UserID: toFriendID,
		Text:   fmt.Sprintf("%s forwarded you a message", sender.Username),
		Link:   fmt.Sprintf("/chat/%d", userID),
	}

	if err := s.chatRepo.CreateMessage(ctx, forwarded, notification); err != nil {
		return nil, err
	}

	s.emitter.EmitToUser(toFriendID, ws.EventNewMessage, s.messagePayload(forwarded, sender.Username))
	return forwarded, nil
}

func (s *chatService) RecentChats(ctx context.Context, userID int64) ([]*domain.ChatPreview, error) {
	return s.chatRepo.ListRecentChats(ctx, userID, 20)
}

func (s *chatService) messagePayload(m *domain.ChatMessage, senderUsername string) map[string]any {
	return map[string]any{
		"id":              m.ID,
		"sender_id":       m.SenderID,
		"sender_username": senderUsername,
		"receiver_id":     m.ReceiverID,
		"content":         m.Content,
		"timestamp":       m.Timestamp.UTC().Format(time.RFC3339),
		"is_read":         m.IsRead,
		"status":          m.Status,
		"is_forwarded":    m.IsForwarded,
	}
}
