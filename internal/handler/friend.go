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

type FriendHandler struct {
	friendService service.FriendService
	log           logger.Logger
}

func NewFriendHandler(friendService service.FriendService, log logger.Logger) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
		log:           log,
	}
}

type FriendRequestRequest struct {
	Username string `json:"username" binding:"required"`
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	var req FriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	friendship, err := h.friendService.SendRequest(c.Request.Context(), middleware.UserID(c), req.Username)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error(), "reason": apperrors.Reason(err)})
		return
	}

	c.JSON(http.StatusCreated, friendship)
}

func (h *FriendHandler) Accept(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	friendship, err := h.friendService.Accept(c.Request.Context(), middleware.UserID(c), requestID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error(), "reason": apperrors.Reason(err)})
		return
	}

	c.JSON(http.StatusOK, friendship)
}

func (h *FriendHandler) Reject(c *gin.Context) {
	requestID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	if err := h.friendService.Reject(c.Request.Context(), middleware.UserID(c), requestID); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rejected": true})
}

func (h *FriendHandler) Remove(c *gin.Context) {
	friendID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.friendService.Remove(c.Request.Context(), middleware.UserID(c), friendID); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error(), "reason": apperrors.Reason(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"removed": true})
}

func (h *FriendHandler) Block(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	if err := h.friendService.Block(c.Request.Context(), middleware.UserID(c), targetID); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"blocked": true})
}

func (h *FriendHandler) List(c *gin.Context) {
	friends, err := h.friendService.ListFriends(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

func (h *FriendHandler) ListPending(c *gin.Context) {
	requests, err := h.friendService.ListPending(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}
