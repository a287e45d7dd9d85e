package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"habithero/internal/config"
	"habithero/internal/handler"
	"habithero/internal/middleware"
	"habithero/internal/repository"
	"habithero/internal/service"
	"habithero/internal/ws"
	"habithero/pkg/logger"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	appLogger := logger.New(cfg.Log.Level)

	// Подключение к PostgreSQL
	dbPool, err := pgxpool.New(context.Background(), cfg.Database.DSN)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(context.Background()); err != nil {
		appLogger.Fatal("Failed to ping database", "error", err)
	}
	appLogger.Info("Database connection established")

	// Подключение к Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}
	appLogger.Info("Redis connection established")

	// Хаб socket-комнат: единая точка рассылки realtime-событий
	hub := ws.NewHub(appLogger)

	// Инициализация репозиториев и сервисов
	repos := repository.NewRepositories(dbPool, rdb, appLogger)
	services := service.NewServices(repos, hub, cfg, appLogger)

	// Фоновая зачистка зависших online-статусов
	services.Reaper.Start()
	defer services.Reaper.Stop()

	// Инициализация middleware
	authMiddleware := middleware.NewAuthMiddleware(services.Auth, appLogger)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(services.RateLimit, appLogger)

	// Инициализация handlers
	handlers := handler.NewHandlers(services, hub, dbPool, rdb, cfg, appLogger)

	// Настройка роутера
	router := setupRouter(handlers, authMiddleware, rateLimitMiddleware, cfg, appLogger)

	// Запуск HTTP сервера
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		appLogger.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exited")
}

func setupRouter(
	handlers *handler.Handlers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimitMiddleware *middleware.RateLimitMiddleware,
	cfg *config.Config,
	log logger.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler())

	// Health check
	router.GET("/health", handlers.Health.Check)
	router.GET("/ready", handlers.Health.Ready)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Публичные endpoints
		public := v1.Group("/auth")
		{
			public.POST("/register", rateLimitMiddleware.Limit("register", 10, time.Minute), handlers.Auth.Register)
			public.POST("/login", rateLimitMiddleware.Limit("login", 20, time.Minute), handlers.Auth.Login)
			public.POST("/refresh", handlers.Auth.RefreshToken)
		}

		// Защищенные endpoints
		protected := v1.Group("")
		protected.Use(authMiddleware.RequireAuth())
		{
			// Пользователи
			users := protected.Group("/users")
			{
				users.GET("/me", handlers.User.GetMe)
				users.PUT("/me", handlers.User.UpdateMe)
				users.GET("/:id/status", handlers.User.GetStatus)
			}

			// Друзья
			friends := protected.Group("/friends")
			{
				friends.GET("", handlers.Friend.List)
				friends.POST("/requests", handlers.Friend.SendRequest)
				friends.GET("/requests", handlers.Friend.ListPending)
				friends.POST("/requests/:id/accept", handlers.Friend.Accept)
				friends.POST("/requests/:id/reject", handlers.Friend.Reject)
				friends.DELETE("/:id", handlers.Friend.Remove)
				friends.POST("/:id/block", handlers.Friend.Block)
			}

			// Чат
			chat := protected.Group("/chat")
			{
				chat.GET("/recent", handlers.Chat.RecentChats)
				chat.POST("/messages", rateLimitMiddleware.Limit("send_message", 60, time.Minute), handlers.Chat.SendMessage)
				chat.GET("/messages/:id", handlers.Chat.GetMessages)
				chat.POST("/messages/read", handlers.Chat.MarkRead)
				chat.PUT("/messages/:id", handlers.Chat.EditMessage)
				chat.DELETE("/messages/:id", handlers.Chat.DeleteMessage)
				chat.POST("/messages/:id/forward", handlers.Chat.ForwardMessage)
			}

			// Привычки
			habits := protected.Group("/habits")
			{
				habits.POST("", handlers.Habit.Create)
				habits.GET("", handlers.Habit.List)
				habits.GET("/:id", handlers.Habit.Get)
				habits.PUT("/:id", handlers.Habit.Update)
				habits.DELETE("/:id", handlers.Habit.Delete)
				habits.POST("/:id/complete", handlers.Habit.Complete)
				habits.GET("/:id/logs", handlers.Habit.Logs)
			}

			// Снапы
			snaps := protected.Group("/snaps")
			{
				snaps.POST("", handlers.Snap.Send)
				snaps.GET("/received", handlers.Snap.ListReceived)
				snaps.GET("/sent", handlers.Snap.ListSent)
				snaps.POST("/:id/view", handlers.Snap.View)
				snaps.POST("/:id/react", handlers.Snap.React)
			}

			// Уведомления
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", handlers.Notification.List)
				notifications.GET("/unread-count", handlers.Notification.UnreadCount)
				notifications.POST("/:id/read", handlers.Notification.MarkRead)
				notifications.POST("/read-all", handlers.Notification.MarkAllRead)
			}

			// Аналитика
			protected.GET("/analytics/stats", handlers.Analytics.UserStats)
		}
	}

	// WebSocket endpoint
	router.GET("/ws", handlers.WebSocket.Handle)

	return router
}
