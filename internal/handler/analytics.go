package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"habithero/internal/middleware"
	"habithero/internal/service"
	apperrors "habithero/pkg/errors"
	"habithero/pkg/logger"
)

type AnalyticsHandler struct {
	statsService service.StatsService
	log          logger.Logger
}

func NewAnalyticsHandler(statsService service.StatsService, log logger.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		statsService: statsService,
		log:          log,
	}
}

func (h *AnalyticsHandler) UserStats(c *gin.Context) {
	stats, err := h.statsService.UserStats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
