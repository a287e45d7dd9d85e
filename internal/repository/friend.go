package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habithero/internal/domain"
	apperrors "habithero/pkg/errors"
	"habithero/pkg/logger"
)

type FriendRepository interface {
	IsAccepted(ctx context.Context, userID, otherID int64) (bool, error)
	ListAcceptedIDs(ctx context.Context, userID int64) ([]int64, error)
	GetBetween(ctx context.Context, userID, otherID int64) (*domain.Friendship, error)
	GetByID(ctx context.Context, requestID int64) (*domain.Friendship, error)
	CreateRequest(ctx context.Context, friendship *domain.Friendship) error
	UpdateStatus(ctx context.Context, requestID int64, status string) error
	Delete(ctx context.Context, requestID int64) error
	ListForUser(ctx context.Context, userID int64, status string) ([]*domain.Friendship, error)
}

type friendRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewFriendRepository(db *pgxpool.Pool, log logger.Logger) FriendRepository {
	return &friendRepository{db: db, log: log}
}

// IsAccepted — предикат авторизации чата и presence: пара хранится в одном
// направлении, проверяем оба
func (r *friendRepository) IsAccepted(ctx context.Context, userID, otherID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM friends
			WHERE ((user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1))
			  AND status = 'accepted'
		)
	`

	var accepted bool
	if err := r.db.QueryRow(ctx, query, userID, otherID).Scan(&accepted); err != nil {
		r.log.Error("Failed to check friendship", "error", err)
		return false, err
	}

	return accepted, nil
}

func (r *friendRepository) ListAcceptedIDs(ctx context.Context, userID int64) ([]int64, error) {
	query := `
		SELECT CASE WHEN user_id = $1 THEN friend_id ELSE user_id END
		FROM friends
		WHERE (user_id = $1 OR friend_id = $1) AND status = 'accepted'
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list friends", "error", err, "user_id", userID)
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *friendRepository) GetBetween(ctx context.Context, userID, otherID int64) (*domain.Friendship, error) {
	query := `
		SELECT id, user_id, friend_id, status, created_at
		FROM friends
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`

	friendship, err := r.scanFriendship(r.db.QueryRow(ctx, query, userID, otherID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.log.Error("Failed to get friendship", "error", err)
		return nil, err
	}

	return friendship, nil
}

func (r *friendRepository) GetByID(ctx context.Context, requestID int64) (*domain.Friendship, error) {
	query := `SELECT id, user_id, friend_id, status, created_at FROM friends WHERE id = $1`

	friendship, err := r.scanFriendship(r.db.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.log.Error("Failed to get friendship by id", "error", err)
		return nil, err
	}

	return friendship, nil
}

func (r *friendRepository) CreateRequest(ctx context.Context, friendship *domain.Friendship) error {
	query := `
		INSERT INTO friends (user_id, friend_id, status, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		friendship.UserID, friendship.FriendID, friendship.Status, friendship.CreatedAt,
	).Scan(&friendship.ID)

	if err != nil {
		r.log.Error("Failed to create friend request", "error", err)
		return err
	}

	return nil
}

func (r *friendRepository) UpdateStatus(ctx context.Context, requestID int64, status string) error {
	query := `UPDATE friends SET status = $2 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, requestID, status)
	if err != nil {
		r.log.Error("Failed to update friendship status", "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	return nil
}

func (r *friendRepository) Delete(ctx context.Context, requestID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM friends WHERE id = $1`, requestID)
	if err != nil {
		r.log.Error("Failed to delete friendship", "error", err)
		return err
	}

	return nil
}

func (r *friendRepository) ListForUser(ctx context.Context, userID int64, status string) ([]*domain.Friendship, error) {
	query := `
		SELECT id, user_id, friend_id, status, created_at
		FROM friends
		WHERE (user_id = $1 OR friend_id = $1) AND status = $2
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID, status)
	if err != nil {
		r.log.Error("Failed to list friendships", "error", err)
		return nil, err
	}
	defer rows.Close()

	var friendships []*domain.Friendship
	for rows.Next() {
		friendship, err := r.scanFriendship(rows)
		if err != nil {
			return nil, err
		}
		friendships = append(friendships, friendship)
	}

	return friendships, rows.Err()
}

func (r *friendRepository) scanFriendship(row pgx.Row) (*domain.Friendship, error) {
	friendship := &domain.Friendship{}
	err := row.Scan(
		&friendship.ID, &friendship.UserID, &friendship.FriendID,
		&friendship.Status, &friendship.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return friendship, nil
}
