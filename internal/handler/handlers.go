package handler

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"habithero/internal/config"
	"habithero/internal/service"
	"habithero/internal/ws"
	"habithero/pkg/logger"
)

type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Friend       *FriendHandler
	Chat         *ChatHandler
	Habit        *HabitHandler
	Snap         *SnapHandler
	Notification *NotificationHandler
	Analytics    *AnalyticsHandler
	WebSocket    *WebSocketHandler
}

func NewHandlers(services *service.Services, hub *ws.Hub, db *pgxpool.Pool, redisClient *redis.Client, cfg *config.Config, log logger.Logger) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(cfg, db, redisClient),
		Auth:         NewAuthHandler(services.Auth, log),
		User:         NewUserHandler(services.User, services.Presence, log),
		Friend:       NewFriendHandler(services.Friend, log),
		Chat:         NewChatHandler(services.Chat, log),
		Habit:        NewHabitHandler(services.Habit, log),
		Snap:         NewSnapHandler(services.Snap, log),
		Notification: NewNotificationHandler(services.Notification, log),
		Analytics:    NewAnalyticsHandler(services.Stats, log),
		WebSocket:    NewWebSocketHandler(hub, services.Auth, services.Chat, services.Presence, cfg.Presence, log),
	}
}
