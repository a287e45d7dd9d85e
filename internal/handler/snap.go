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

type SnapHandler struct {
	snapService service.SnapService
	log         logger.Logger
}

func NewSnapHandler(snapService service.SnapService, log logger.Logger) *SnapHandler {
	return &SnapHandler{
		snapService: snapService,
		log:         log,
	}
}

type SendSnapRequest struct {
	ReceiverID  int64  `json:"receiver_id" binding:"required"`
	HabitID     *int64 `json:"habit_id"`
	ContentType string `json:"content_type" binding:"required"`
	Content     string `json:"content" binding:"required"`
	Caption     string `json:"caption"`
}

type ReactRequest struct {
	Emoji string `json:"emoji" binding:"required"`
}

func (h *SnapHandler) Send(c *gin.Context) {
	var req SendSnapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	snap, err := h.snapService.Send(c.Request.Context(), middleware.UserID(c), req.ReceiverID, req.HabitID, req.ContentType, req.Content, req.Caption)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error(), "reason": apperrors.Reason(err)})
		return
	}

	c.JSON(http.StatusCreated, snap)
}

func (h *SnapHandler) ListReceived(c *gin.Context) {
	snaps, err := h.snapService.ListReceived(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"snaps": snaps})
}

func (h *SnapHandler) ListSent(c *gin.Context) {
	snaps, err := h.snapService.ListSent(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"snaps": snaps})
}

func (h *SnapHandler) View(c *gin.Context) {
	snapID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snap id"})
		return
	}

	snap, err := h.snapService.View(c.Request.Context(), middleware.UserID(c), snapID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error(), "reason": apperrors.Reason(err)})
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (h *SnapHandler) React(c *gin.Context) {
	snapID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snap id"})
		return
	}

	var req ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	reaction, err := h.snapService.React(c.Request.Context(), middleware.UserID(c), snapID, req.Emoji)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, reaction)
}
