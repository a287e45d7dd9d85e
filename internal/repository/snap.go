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

type SnapRepository interface {
	Create(ctx context.Context, snap *domain.Snap) error
	GetByID(ctx context.Context, snapID int64) (*domain.Snap, error)
	ListReceived(ctx context.Context, userID int64, limit int) ([]*domain.Snap, error)
	ListSent(ctx context.Context, userID int64, limit int) ([]*domain.Snap, error)
	MarkViewed(ctx context.Context, snapID int64) error
	AddReaction(ctx context.Context, reaction *domain.SnapReaction) error
}

type snapRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewSnapRepository(db *pgxpool.Pool, log logger.Logger) SnapRepository {
	return &snapRepository{db: db, log: log}
}

const snapColumns = `id, sender_id, receiver_id, habit_id, content_type, content, caption, is_viewed, expires_at, created_at`

func (r *snapRepository) Create(ctx context.Context, snap *domain.Snap) error {
	query := `
		INSERT INTO snaps (sender_id, receiver_id, habit_id, content_type, content, caption, is_viewed, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, $7, $8)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		snap.SenderID, snap.ReceiverID, snap.HabitID, snap.ContentType,
		snap.Content, snap.Caption, snap.ExpiresAt, snap.CreatedAt,
	).Scan(&snap.ID)

	if err != nil {
		r.log.Error("Failed to create snap", "error", err)
		return err
	}

	return nil
}

func (r *snapRepository) GetByID(ctx context.Context, snapID int64) (*domain.Snap, error) {
	query := `SELECT ` + snapColumns + ` FROM snaps WHERE id = $1`

	snap, err := r.scanSnap(r.db.QueryRow(ctx, query, snapID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSnapNotFound
		}
		r.log.Error("Failed to get snap", "error", err, "snap_id", snapID)
		return nil, err
	}

	return snap, nil
}

func (r *snapRepository) ListReceived(ctx context.Context, userID int64, limit int) ([]*domain.Snap, error) {
	query := `
		SELECT ` + snapColumns + `
		FROM snaps
		WHERE receiver_id = $1 AND expires_at > now()
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.listSnaps(ctx, query, userID, limit)
}

func (r *snapRepository) ListSent(ctx context.Context, userID int64, limit int) ([]*domain.Snap, error) {
	query := `
		SELECT ` + snapColumns + `
		FROM snaps
		WHERE sender_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.listSnaps(ctx, query, userID, limit)
}

func (r *snapRepository) MarkViewed(ctx context.Context, snapID int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE snaps SET is_viewed = true WHERE id = $1`, snapID)
	if err != nil {
		r.log.Error("Failed to mark snap viewed", "error", err, "snap_id", snapID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSnapNotFound
	}

	return nil
}

func (r *snapRepository) AddReaction(ctx context.Context, reaction *domain.SnapReaction) error {
	query := `
		INSERT INTO snap_reactions (snap_id, user_id, emoji, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (snap_id, user_id) DO UPDATE SET emoji = $3
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		reaction.SnapID, reaction.UserID, reaction.Emoji, reaction.CreatedAt,
	).Scan(&reaction.ID)

	if err != nil {
		r.log.Error("Failed to add snap reaction", "error", err)
		return err
	}

	return nil
}

func (r *snapRepository) listSnaps(ctx context.Context, query string, userID int64, limit int) ([]*domain.Snap, error) {
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		r.log.Error("Failed to list snaps", "error", err, "user_id", userID)
		return nil, err
	}
	defer rows.Close()

	var snaps []*domain.Snap
	for rows.Next() {
		snap, err := r.scanSnap(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}

func (r *snapRepository) scanSnap(row pgx.Row) (*domain.Snap, error) {
	snap := &domain.Snap{}
	err := row.Scan(
		&snap.ID, &snap.SenderID, &snap.ReceiverID, &snap.HabitID,
		&snap.ContentType, &snap.Content, &snap.Caption, &snap.IsViewed,
		&snap.ExpiresAt, &snap.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return snap, nil
}
