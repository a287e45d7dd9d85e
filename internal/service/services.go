package service

import (
	"habithero/internal/config"
	"habithero/internal/repository"
	"habithero/pkg/logger"
)

type Services struct {
	Auth         AuthService
	User         UserService
	Friend       FriendService
	Chat         ChatService
	Presence     PresenceService
	Habit        HabitService
	Snap         SnapService
	Notification NotificationService
	Stats        StatsService
	RateLimit    RateLimitService
	Reaper       *PresenceReaper
}

func NewServices(repos *repository.Repositories, emitter Emitter, cfg *config.Config, log logger.Logger) *Services {
	presence := NewPresenceService(repos.User, repos.Friend, emitter, cfg.Presence, log)

	return &Services{
		Auth:         NewAuthService(repos.User, cfg.JWT, log),
		User:         NewUserService(repos.User, log),
		Friend:       NewFriendService(repos.Friend, repos.User, repos.Notification, emitter, log),
		Chat:         NewChatService(repos.Chat, repos.Friend, repos.User, emitter, cfg.Chat, log),
		Presence:     presence,
		Habit:        NewHabitService(repos.Habit, log),
		Snap:         NewSnapService(repos.Snap, repos.Friend, repos.User, repos.Notification, emitter, log),
		Notification: NewNotificationService(repos.Notification, emitter, log),
		Stats:        NewStatsService(repos.Stats, log),
		RateLimit:    NewRateLimitService(repos.RateLimit, log),
		Reaper:       NewPresenceReaper(presence, repos.User, cfg.Presence, log),
	}
}
