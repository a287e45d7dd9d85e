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

type HabitRepository interface {
	Create(ctx context.Context, habit *domain.Habit) error
	GetByID(ctx context.Context, habitID int64) (*domain.Habit, error)
	ListByUser(ctx context.Context, userID int64) ([]*domain.Habit, error)
	Update(ctx context.Context, habit *domain.Habit) error
	Delete(ctx context.Context, habitID int64) error
	CreateLog(ctx context.Context, log *domain.HabitLog) error
	ListLogs(ctx context.Context, habitID int64, limit int) ([]*domain.HabitLog, error)
}

type habitRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewHabitRepository(db *pgxpool.Pool, log logger.Logger) HabitRepository {
	return &habitRepository{db: db, log: log}
}

func (r *habitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	query := `
		INSERT INTO habits (user_id, name, description, frequency, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		habit.UserID, habit.Name, habit.Description, habit.Frequency, habit.CreatedAt,
	).Scan(&habit.ID)

	if err != nil {
		r.log.Error("Failed to create habit", "error", err)
		return err
	}

	return nil
}

func (r *habitRepository) GetByID(ctx context.Context, habitID int64) (*domain.Habit, error) {
	query := `
		SELECT id, user_id, name, description, frequency, last_done_at, created_at
		FROM habits
		WHERE id = $1
	`

	habit := &domain.Habit{}
	err := r.db.QueryRow(ctx, query, habitID).Scan(
		&habit.ID, &habit.UserID, &habit.Name, &habit.Description,
		&habit.Frequency, &habit.LastDoneAt, &habit.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrHabitNotFound
		}
		r.log.Error("Failed to get habit", "error", err, "habit_id", habitID)
		return nil, err
	}

	return habit, nil
}

func (r *habitRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Habit, error) {
	query := `
		SELECT id, user_id, name, description, frequency, last_done_at, created_at
		FROM habits
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list habits", "error", err, "user_id", userID)
		return nil, err
	}
	defer rows.Close()

	var habits []*domain.Habit
	for rows.Next() {
		habit := &domain.Habit{}
		err := rows.Scan(
			&habit.ID, &habit.UserID, &habit.Name, &habit.Description,
			&habit.Frequency, &habit.LastDoneAt, &habit.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		habits = append(habits, habit)
	}

	return habits, rows.Err()
}

func (r *habitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	query := `
		UPDATE habits
		SET name = $2, description = $3, frequency = $4, last_done_at = $5
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		habit.ID, habit.Name, habit.Description, habit.Frequency, habit.LastDoneAt,
	)
	if err != nil {
		r.log.Error("Failed to update habit", "error", err, "habit_id", habit.ID)
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrHabitNotFound
	}

	return nil
}

func (r *habitRepository) Delete(ctx context.Context, habitID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM habits WHERE id = $1`, habitID)
	if err != nil {
		r.log.Error("Failed to delete habit", "error", err, "habit_id", habitID)
		return err
	}

	return nil
}

func (r *habitRepository) CreateLog(ctx context.Context, habitLog *domain.HabitLog) error {
	query := `
		INSERT INTO habit_logs (user_id, habit_id, note, completed_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRow(ctx, query,
		habitLog.UserID, habitLog.HabitID, habitLog.Note, habitLog.CompletedAt,
	).Scan(&habitLog.ID)

	if err != nil {
		r.log.Error("Failed to create habit log", "error", err)
		return err
	}

	return nil
}

func (r *habitRepository) ListLogs(ctx context.Context, habitID int64, limit int) ([]*domain.HabitLog, error) {
	query := `
		SELECT id, user_id, habit_id, note, completed_at
		FROM habit_logs
		WHERE habit_id = $1
		ORDER BY completed_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, habitID, limit)
	if err != nil {
		r.log.Error("Failed to list habit logs", "error", err)
		return nil, err
	}
	defer rows.Close()

	var logs []*domain.HabitLog
	for rows.Next() {
		habitLog := &domain.HabitLog{}
		err := rows.Scan(
			&habitLog.ID, &habitLog.UserID, &habitLog.HabitID,
			&habitLog.Note, &habitLog.CompletedAt,
		)
		if err != nil {
			return nil, err
		}
		logs = append(logs, habitLog)
	}

	return logs, rows.Err()
}
