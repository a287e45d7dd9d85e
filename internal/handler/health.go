package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"habithero/internal/config"
)

type HealthHandler struct {
	environment string
	db          *pgxpool.Pool
	redis       *redis.Client
}

func NewHealthHandler(cfg *config.Config, db *pgxpool.Pool, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		environment: cfg.Environment,
		db:          db,
		redis:       redisClient,
	}
}

func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "habithero",
	})
}

// Ready проверяет доступность зависимостей; любой отказ — 503
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "component": "database"})
		return
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "component": "redis"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "ready",
		"environment": h.environment,
	})
}
