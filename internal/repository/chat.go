package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habithero/internal/domain"
	apperrors "habithero/pkg/errors"
	"habithero/pkg/logger"
)

type ChatRepository interface {
	CreateMessage(ctx context.Context, message *domain.ChatMessage, notification *domain.Notification) error
	FindRecentDuplicate(ctx context.Context, senderID, receiverID int64, content string, window time.Duration) (*domain.ChatMessage, error)
	GetMessageByID(ctx context.Context, messageID int64) (*domain.ChatMessage, error)
	ListConversation(ctx context.Context, viewerID, otherID int64, limit, offset int) ([]*domain.ChatMessage, int, error)
	MarkConversationRead(ctx context.Context, senderID, receiverID int64) ([]int64, error)
	MarkDelivered(ctx context.Context, messageID int64) (bool, error)
	UpdateContent(ctx context.Context, messageID int64, content string) error
	DeleteMessage(ctx context.Context, messageID int64) error
	SetDeletedFor(ctx context.Context, messageID int64, forSender bool) error
	ListRecentChats(ctx context.Context, userID int64, limit int) ([]*domain.ChatPreview, error)
}

type chatRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewChatRepository(db *pgxpool.Pool, log logger.Logger) ChatRepository {
	return &chatRepository{db: db, log: log}
}

const messageColumns = `id, sender_id, receiver_id, content, timestamp, is_read, status, edited, is_forwarded, original_message_id, deleted_for_sender, deleted_for_receiver`

// CreateMessage пишет сообщение и уведомление получателю одной транзакцией.
// Timestamp берётся как максимум из now() и последнего timestamp отправителя,
// чтобы порядок per-sender не убывал даже при сдвиге часов
func (r *chatRepository) CreateMessage(ctx context.Context, message *domain.ChatMessage, notification *domain.Notification) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin tx", "error", err)
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO chat_messages (sender_id, receiver_id, content, timestamp, is_read, status, edited, is_forwarded, original_message_id)
		VALUES (
			$1, $2, $3,
			GREATEST(now(), COALESCE((SELECT MAX(timestamp) FROM chat_messages WHERE sender_id = $1), now())),
			false, $4, false, $5, $6
		)
		RETURNING id, timestamp
	`

	err = tx.QueryRow(ctx, query,
		message.SenderID, message.ReceiverID, message.Content,
		message.Status, message.IsForwarded, message.OriginalMessageID,
	).Scan(&message.ID, &message.Timestamp)

	if err != nil {
		r.log.Error("Failed to create message", "error", err)
		return err
	}

	if notification != nil {
		notifQuery := `
			INSERT INTO notifications (user_id, text, link, is_read, timestamp)
			VALUES ($1, $2, $3, false, $4)
			RETURNING id
		`
		err = tx.QueryRow(ctx, notifQuery,
			notification.UserID, notification.Text, notification.Link, message.Timestamp,
		).Scan(&notification.ID)

		if err != nil {
			r.log.Error("Failed to create notification", "error", err)
			return err
		}
		notification.Timestamp = message.Timestamp
	}

	return tx.Commit(ctx)
}

func (r *chatRepository) FindRecentDuplicate(ctx context.Context, senderID, receiverID int64, content string, window time.Duration) (*domain.ChatMessage, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM chat_messages
		WHERE sender_id = $1 AND receiver_id = $2 AND content = $3 AND timestamp > $4
		ORDER BY timestamp DESC
		LIMIT 1
	`

	message, err := r.scanMessage(r.db.QueryRow(ctx, query, senderID, receiverID, content, time.Now().UTC().Add(-window)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.log.Error("Failed to check duplicate", "error", err)
		return nil, err
	}

	return message, nil
}

func (r *chatRepository) GetMessageByID(ctx context.Context, messageID int64) (*domain.ChatMessage, error) {
	query := `SELECT ` + messageColumns + ` FROM chat_messages WHERE id = $1`

	message, err := r.scanMessage(r.db.QueryRow(ctx, query, messageID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		r.log.Error("Failed to get message", "error", err, "message_id", messageID)
		return nil, err
	}

	return message, nil
}

// ListConversation отдаёт страницу истории между двумя пользователями,
// скрывая строки, удалённые "для себя" со стороны viewer
func (r *chatRepository) ListConversation(ctx context.Context, viewerID, otherID int64, limit, offset int) ([]*domain.ChatMessage, int, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM chat_messages
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		  AND NOT (sender_id = $1 AND deleted_for_sender)
		  AND NOT (receiver_id = $1 AND deleted_for_receiver)
		ORDER BY timestamp DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, viewerID, otherID, limit, offset)
	if err != nil {
		r.log.Error("Failed to list conversation", "error", err)
		return nil, 0, err
	}
	defer rows.Close()

	var messages []*domain.ChatMessage
	for rows.Next() {
		message, err := r.scanMessage(rows)
		if err != nil {
			r.log.Error("Failed to scan message", "error", err)
			return nil, 0, err
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := `
		SELECT COUNT(*)
		FROM chat_messages
		WHERE ((sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1))
		  AND NOT (sender_id = $1 AND deleted_for_sender)
		  AND NOT (receiver_id = $1 AND deleted_for_receiver)
	`
	var total int
	if err := r.db.QueryRow(ctx, countQuery, viewerID, otherID).Scan(&total); err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// MarkConversationRead атомарно переводит все непрочитанные сообщения от
// senderID к receiverID в read. is_read и status меняются одним UPDATE,
// поэтому разойтись они не могут. Той же транзакцией гасятся уведомления
// об этих сообщениях: открытый чат и есть их прочтение
func (r *chatRepository) MarkConversationRead(ctx context.Context, senderID, receiverID int64) ([]int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin tx", "error", err)
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE chat_messages
		SET is_read = true, status = 'read'
		WHERE sender_id = $1 AND receiver_id = $2 AND is_read = false
		RETURNING id
	`

	rows, err := tx.Query(ctx, query, senderID, receiverID)
	if err != nil {
		r.log.Error("Failed to mark messages read", "error", err)
		return nil, err
	}

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) > 0 {
		notifQuery := `
			UPDATE notifications
			SET is_read = true
			WHERE user_id = $1 AND link = $2 AND is_read = false
		`
		if _, err := tx.Exec(ctx, notifQuery, receiverID, fmt.Sprintf("/chat/%d", senderID)); err != nil {
			r.log.Error("Failed to mark chat notifications read", "error", err)
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return ids, nil
}

// MarkDelivered повышает статус до delivered, если сообщение ещё не прочитано.
// Возвращает false, когда повышать было нечего
func (r *chatRepository) MarkDelivered(ctx context.Context, messageID int64) (bool, error) {
	query := `
		UPDATE chat_messages
		SET status = 'delivered'
		WHERE id = $1 AND status = 'sent'
	`

	tag, err := r.db.Exec(ctx, query, messageID)
	if err != nil {
		r.log.Error("Failed to mark delivered", "error", err, "message_id", messageID)
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (r *chatRepository) UpdateContent(ctx context.Context, messageID int64, content string) error {
	query := `UPDATE chat_messages SET content = $2, edited = true WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, messageID, content)
	if err != nil {
		r.log.Error("Failed to update message", "error", err, "message_id", messageID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMessageNotFound
	}

	return nil
}

func (r *chatRepository) DeleteMessage(ctx context.Context, messageID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM chat_messages WHERE id = $1`, messageID)
	if err != nil {
		r.log.Error("Failed to delete message", "error", err, "message_id", messageID)
		return err
	}

	return nil
}

func (r *chatRepository) SetDeletedFor(ctx context.Context, messageID int64, forSender bool) error {
	query := `UPDATE chat_messages SET deleted_for_sender = true WHERE id = $1`
	if !forSender {
		query = `UPDATE chat_messages SET deleted_for_receiver = true WHERE id = $1`
	}

	tag, err := r.db.Exec(ctx, query, messageID)
	if err != nil {
		r.log.Error("Failed to hide message", "error", err, "message_id", messageID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMessageNotFound
	}

	return nil
}

func (r *chatRepository) ListRecentChats(ctx context.Context, userID int64, limit int) ([]*domain.ChatPreview, error) {
	query := `
		SELECT u.id, u.username, u.is_online,
		       (SELECT content FROM chat_messages m2
		        WHERE (m2.sender_id = $1 AND m2.receiver_id = u.id) OR (m2.sender_id = u.id AND m2.receiver_id = $1)
		        ORDER BY m2.timestamp DESC LIMIT 1),
		       MAX(m.timestamp),
		       COUNT(*) FILTER (WHERE m.sender_id = u.id AND m.receiver_id = $1 AND NOT m.is_read)
		FROM chat_messages m
		JOIN users u ON u.id = CASE WHEN m.sender_id = $1 THEN m.receiver_id ELSE m.sender_id END
		WHERE m.sender_id = $1 OR m.receiver_id = $1
		GROUP BY u.id, u.username, u.is_online
		ORDER BY MAX(m.timestamp) DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		r.log.Error("Failed to list recent chats", "error", err)
		return nil, err
	}
	defer rows.Close()

	var previews []*domain.ChatPreview
	for rows.Next() {
		preview := &domain.ChatPreview{}
		err := rows.Scan(
			&preview.UserID, &preview.Username, &preview.IsOnline,
			&preview.LastMessage, &preview.LastMessageTime, &preview.UnreadCount,
		)
		if err != nil {
			return nil, err
		}
		previews = append(previews, preview)
	}

	return previews, rows.Err()
}

func (r *chatRepository) scanMessage(row pgx.Row) (*domain.ChatMessage, error) {
	message := &domain.ChatMessage{}
	err := row.Scan(
		&message.ID, &message.SenderID, &message.ReceiverID, &message.Content,
		&message.Timestamp, &message.IsRead, &message.Status, &message.Edited,
		&message.IsForwarded, &message.OriginalMessageID,
		&message.DeletedForSender, &message.DeletedForReceiver,
	)
	if err != nil {
		return nil, err
	}
	return message, nil
}
