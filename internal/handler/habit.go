package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"habithero/internal/middleware"
	"habithero/internal/service"
	apperrors "habithero/pkg/errors"
	"habithero/pkg/logger"
)

type HabitHandler struct {
	habitService service.HabitService
	log          logger.Logger
}

func NewHabitHandler(habitService service.HabitService, log logger.Logger) *HabitHandler {
	return &HabitHandler{
		habitService: habitService,
		log:          log,
	}
}

type HabitRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
}

type UpdateHabitRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Frequency   string `json:"frequency"`
}

type CompleteHabitRequest struct {
	Note string `json:"note"`
}

func (h *HabitHandler) Create(c *gin.Context) {
	var req HabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	habit, err := h.habitService.Create(c.Request.Context(), middleware.UserID(c), req.Name, req.Description, req.Frequency)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, habit)
}

func (h *HabitHandler) List(c *gin.Context) {
	habits, err := h.habitService.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"habits": habits})
}

func (h *HabitHandler) Get(c *gin.Context) {
	habitID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}

	habit, err := h.habitService.GetByID(c.Request.Context(), middleware.UserID(c), habitID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Update(c *gin.Context) {
	habitID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}

	var req UpdateHabitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	habit, err := h.habitService.Update(c.Request.Context(), middleware.UserID(c), habitID, req.Name, req.Description, req.Frequency)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, habit)
}

func (h *HabitHandler) Delete(c *gin.Context) {
	habitID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}

	if err := h.habitService.Delete(c.Request.Context(), middleware.UserID(c), habitID); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *HabitHandler) Complete(c *gin.Context) {
	habitID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}

	var req CompleteHabitRequest
	// Тело необязательно
	_ = c.ShouldBindJSON(&req)

	habitLog, err := h.habitService.Complete(c.Request.Context(), middleware.UserID(c), habitID, req.Note)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, habitLog)
}

func (h *HabitHandler) Logs(c *gin.Context) {
	habitID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.habitService.Logs(c.Request.Context(), middleware.UserID(c), habitID, limit)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
