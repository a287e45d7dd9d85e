package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"habithero/pkg/logger"
)

type Repositories struct {
	User         UserRepository
	Friend       FriendRepository
	Chat         ChatRepository
	Habit        HabitRepository
	Snap         SnapRepository
	Notification NotificationRepository
	Stats        StatsRepository
	RateLimit    RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, redis *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db, log),
		Friend:       NewFriendRepository(db, log),
		Chat:         NewChatRepository(db, log),
		Habit:        NewHabitRepository(db, log),
		Snap:         NewSnapRepository(db, log),
		Notification: NewNotificationRepository(db, log),
		Stats:        NewStatsRepository(db, log),
		RateLimit:    NewRateLimitRepository(redis, log),
	}
}
