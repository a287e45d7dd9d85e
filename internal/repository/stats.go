package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"habithero/pkg/logger"
)

// UserStats — агрегаты для страницы аналитики
type UserStats struct {
	HabitCount       int `json:"habit_count"`
	CompletionsTotal int `json:"completions_total"`
	CompletionsWeek  int `json:"completions_week"`
	FriendCount      int `json:"friend_count"`
	MessagesSent     int `json:"messages_sent"`
	SnapsSent        int `json:"snaps_sent"`
}

type StatsRepository interface {
	GetUserStats(ctx context.Context, userID int64) (*UserStats, error)
}

type statsRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewStatsRepository(db *pgxpool.Pool, log logger.Logger) StatsRepository {
	return &statsRepository{db: db, log: log}
}

func (r *statsRepository) GetUserStats(ctx context.Context, userID int64) (*UserStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM habits WHERE user_id = $1),
			(SELECT COUNT(*) FROM habit_logs WHERE user_id = $1),
			(SELECT COUNT(*) FROM habit_logs WHERE user_id = $1 AND completed_at > $2),
			(SELECT COUNT(*) FROM friends WHERE (user_id = $1 OR friend_id = $1) AND status = 'accepted'),
			(SELECT COUNT(*) FROM chat_messages WHERE sender_id = $1),
			(SELECT COUNT(*) FROM snaps WHERE sender_id = $1)
	`

	stats := &UserStats{}
	weekAgo := time.Now().UTC().AddDate(0, 0, -7)
	err := r.db.QueryRow(ctx, query, userID, weekAgo).Scan(
		&stats.HabitCount, &stats.CompletionsTotal, &stats.CompletionsWeek,
		&stats.FriendCount, &stats.MessagesSent, &stats.SnapsSent,
	)
	if err != nil {
		r.log.Error("Failed to get user stats", "error", err, "user_id", userID)
		return nil, err
	}

	return stats, nil
}
