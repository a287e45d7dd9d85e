package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"habithero/internal/domain"
	apperrors "habithero/pkg/errors"
	"habithero/pkg/logger"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
}

type notificationRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewNotificationRepository(db *pgxpool.Pool, log logger.Logger) NotificationRepository {
	return &notificationRepository{db: db, log: log}
}

func (r *notificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	query := `
		INSERT INTO notifications (user_id, text, link, is_read, timestamp)
		VALUES ($1, $2, $3, false, $4)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		notification.UserID, notification.Text, notification.Link, notification.Timestamp,
	).Scan(&notification.ID)

	if err != nil {
		r.log.Error("Failed to create notification", "error", err)
		return err
	}

	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, text, link, is_read, timestamp
		FROM notifications
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		r.log.Error("Failed to list notifications", "error", err, "user_id", userID)
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		notification := &domain.Notification{}
		err := rows.Scan(
			&notification.ID, &notification.UserID, &notification.Text,
			&notification.Link, &notification.IsRead, &notification.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}

	return notifications, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, notificationID, userID int64) error {
	query := `UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`

	tag, err := r.db.Exec(ctx, query, notificationID, userID)
	if err != nil {
		r.log.Error("Failed to mark notification read", "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`, userID)
	if err != nil {
		r.log.Error("Failed to mark all notifications read", "error", err)
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = false`, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count unread notifications", "error", err)
		return 0, err
	}

	return count, nil
}
