package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"habithero/internal/domain"
	apperrors "habithero/pkg/errors"
	"habithero/pkg/logger"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, userID int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	SetPresence(ctx context.Context, userID int64, isOnline bool, lastSeenAt time.Time) error
	ListIdleOnline(ctx context.Context, olderThan time.Time) ([]*domain.User, error)
}

type userRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewUserRepository(db *pgxpool.Pool, log logger.Logger) UserRepository {
	return &userRepository{db: db, log: log}
}

const userColumns = `id, username, email, password_hash, bio, avatar_url, is_online, last_seen_at, last_login_at, created_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, bio, is_online, last_seen_at, created_at)
		VALUES ($1, $2, $3, $4, false, $5, $5)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		user.Username, user.Email, user.PasswordHash, user.Bio, user.CreatedAt,
	).Scan(&user.ID)

	if err != nil {
		r.log.Error("Failed to create user", "error", err)
		return err
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		r.log.Error("Failed to get user", "error", err, "user_id", userID)
		return nil, err
	}

	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := r.scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		r.log.Error("Failed to get user by username", "error", err)
		return nil, err
	}

	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET email = $2, bio = $3, avatar_url = $4, last_login_at = $5
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, user.ID, user.Email, user.Bio, user.AvatarURL, user.LastLoginAt)
	if err != nil {
		r.log.Error("Failed to update user", "error", err, "user_id", user.ID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

func (r *userRepository) SetPresence(ctx context.Context, userID int64, isOnline bool, lastSeenAt time.Time) error {
	query := `UPDATE users SET is_online = $2, last_seen_at = $3 WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, userID, isOnline, lastSeenAt)
	if err != nil {
		r.log.Error("Failed to set presence", "error", err, "user_id", userID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

// ListIdleOnline возвращает пользователей, помеченных online, но не подававших
// признаков жизни дольше порога. Используется reaper-ом
func (r *userRepository) ListIdleOnline(ctx context.Context, olderThan time.Time) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_online = true AND last_seen_at < $1`

	rows, err := r.db.Query(ctx, query, olderThan)
	if err != nil {
		r.log.Error("Failed to list idle users", "error", err)
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			r.log.Error("Failed to scan user", "error", err)
			return nil, err
		}
		users = append(users, user)
	}

	return users, rows.Err()
}

func (r *userRepository) scanUser(row pgx.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Bio,
		&user.AvatarURL, &user.IsOnline, &user.LastSeenAt, &user.LastLoginAt, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
