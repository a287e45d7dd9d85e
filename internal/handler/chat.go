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

type ChatHandler struct {
	chatService service.ChatService
	log         logger.Logger
}

func NewChatHandler(chatService service.ChatService, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		log:         log,
	}
}

type SendMessageRequest struct {
	ReceiverID int64  `json:"receiver_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

type EditMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type DeleteMessageRequest struct {
	DeleteType string `json:"delete_type" binding:"required"`
}

type ForwardMessageRequest struct {
	ToFriendID int64 `json:"to_friend_id" binding:"required"`
}

type MarkReadRequest struct {
	SenderID int64 `json:"sender_id" binding:"required"`
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	message, duplicate, err := h.chatService.SendMessage(c.Request.Context(), middleware.UserID(c), req.ReceiverID, req.Content)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error(), "reason": apperrors.Reason(err)})
		return
	}

	status := http.StatusCreated
	if duplicate {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"message": message, "duplicate": duplicate})
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	otherID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	result, err := h.chatService.GetMessages(c.Request.Context(), middleware.UserID(c), otherID, page)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error(), "reason": apperrors.Reason(err)})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	ids, err := h.chatService.MarkRead(c.Request.Context(), middleware.UserID(c), req.SenderID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked": len(ids), "message_ids": ids})
}

func (h *ChatHandler) EditMessage(c *gin.Context) {
	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var req EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	message, err := h.chatService.EditMessage(c.Request.Context(), middleware.UserID(c), messageID, req.Content)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error(), "reason": apperrors.Reason(err)})
		return
	}

	c.JSON(http.StatusOK, message)
}

func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var req DeleteMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := h.chatService.DeleteMessage(c.Request.Context(), middleware.UserID(c), messageID, req.DeleteType); err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error(), "reason": apperrors.Reason(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *ChatHandler) ForwardMessage(c *gin.Context) {
	messageID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var req ForwardMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	message, err := h.chatService.ForwardMessage(c.Request.Context(), middleware.UserID(c), messageID, req.ToFriendID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error(), "reason": apperrors.Reason(err)})
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *ChatHandler) RecentChats(c *gin.Context) {
	chats, err := h.chatService.RecentChats(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"chats": chats})
}
