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

type UserHandler struct {
	userService     service.UserService
	presenceService service.PresenceService
	log             logger.Logger
}

func NewUserHandler(userService service.UserService, presenceService service.PresenceService, log logger.Logger) *UserHandler {
	return &UserHandler{
		userService:     userService,
		presenceService: presenceService,
		log:             log,
	}
}

type UpdateProfileRequest struct {
	Bio       string  `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), middleware.UserID(c), req.Bio, req.AvatarURL)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetStatus — HTTP-вариант запроса presence; отвечает тем же снимком, что и
// socket-событие request_status
func (h *UserHandler) GetStatus(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	status, err := h.presenceService.Status(c.Request.Context(), middleware.UserID(c), targetID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error(), "reason": apperrors.Reason(err)})
		return
	}

	c.JSON(http.StatusOK, status)
}
