package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"habithero/internal/config"
	"habithero/internal/domain"
	"habithero/internal/service"
	"habithero/internal/ws"
	apperrors "habithero/pkg/errors"
	"habithero/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // В продакшене нужно проверять origin
	},
}

type WebSocketHandler struct {
	hub             *ws.Hub
	authService     service.AuthService
	chatService     service.ChatService
	presenceService service.PresenceService
	cfg             config.PresenceConfig
	log             logger.Logger
}

func NewWebSocketHandler(
	hub *ws.Hub,
	authService service.AuthService,
	chatService service.ChatService,
	presenceService service.PresenceService,
	cfg config.PresenceConfig,
	log logger.Logger,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:             hub,
		authService:     authService,
		chatService:     chatService,
		presenceService: presenceService,
		cfg:             cfg,
		log:             log,
	}
}

// Handle апгрейдит соединение и гоняет кадры до разрыва. Токен принимается
// query-параметром: браузерный WebSocket не умеет выставлять заголовки
func (h *WebSocketHandler) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}

	user, err := h.authService.ValidateToken(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := ws.NewClient(conn, user.ID, h.log)
	h.hub.Register(client)

	ctx := context.Background()
	if err := h.presenceService.MarkOnline(ctx, user.ID); err != nil {
		h.log.Error("Failed to mark user online", "user_id", user.ID, "error", err)
	}

	h.log.Info("WebSocket connected", "user_id", user.ID, "client_id", client.ID)

	go client.WritePump()

	client.ReadPump(func(event string, data json.RawMessage) {
		h.dispatch(ctx, client, event, data)
	})

	// ReadPump вернулся — соединение мертво
	h.hub.Unregister(client)
	client.CloseSend()
	h.log.Info("WebSocket disconnected", "user_id", user.ID, "client_id", client.ID)

	// Grace-пауза: при переподключении или второй вкладке offline не шлём
	userID := user.ID
	time.AfterFunc(h.cfg.DisconnectGrace, func() {
		if h.hub.UserConnections(userID) > 0 {
			return
		}
		if err := h.presenceService.MarkOffline(context.Background(), userID, domain.PresenceReasonDisconnected); err != nil {
			h.log.Error("Failed to mark user offline", "user_id", userID, "error", err)
		}
	})
}

func (h *WebSocketHandler) dispatch(ctx context.Context, client *ws.Client, event string, data json.RawMessage) {
	// Любой входящий кадр — признак жизни
	if err := h.presenceService.Touch(ctx, client.UserID); err != nil {
		h.log.Warn("Failed to touch presence", "user_id", client.UserID, "error", err)
	}

	switch event {
	case ws.EventJoinChat:
		h.handleJoinChat(ctx, client, data)
	case ws.EventTyping:
		h.handleTyping(client, data)
	case ws.EventSendMessage:
		h.handleSendMessage(ctx, client, data)
	case ws.EventMarkRead:
		h.handleMarkRead(ctx, client, data)
	case ws.EventMessageDelivered:
		h.handleDelivered(ctx, client, data)
	case ws.EventRequestStatus:
		h.handleRequestStatus(ctx, client, data)
	case ws.EventUserLeaving:
		h.handleUserLeaving(ctx, client)
	default:
		client.Emit(ws.EventChatError, map[string]string{"error": "unknown event: " + event})
	}
}

func (h *WebSocketHandler) handleJoinChat(ctx context.Context, client *ws.Client, data json.RawMessage) {
	var payload ws.JoinChatPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.UserID.Int64() <= 0 {
		client.Emit(ws.EventChatError, map[string]string{"error": "invalid join_chat payload"})
		return
	}

	otherID := payload.UserID.Int64()
	if _, err := h.presenceService.Status(ctx, client.UserID, otherID); err != nil {
		client.Emit(ws.EventChatError, map[string]any{"error": err.Error(), "reason": apperrors.Reason(err)})
		return
	}

	room := ws.ChatRoom(client.UserID, otherID)
	h.hub.Join(client, room)
	client.Emit(ws.EventChatJoined, map[string]any{"room": room, "user_id": otherID})
}

func (h *WebSocketHandler) handleTyping(client *ws.Client, data json.RawMessage) {
	var payload ws.TypingPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.ReceiverID.Int64() <= 0 {
		return
	}

	room := ws.ChatRoom(client.UserID, payload.ReceiverID.Int64())
	h.hub.EmitToRoomExcept(room, client, ws.EventUserTyping, map[string]any{
		"sender_id": client.UserID,
		"is_typing": payload.IsTyping,
	})
}

func (h *WebSocketHandler) handleSendMessage(ctx context.Context, client *ws.Client, data json.RawMessage) {
	var payload ws.SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		client.Emit(ws.EventSendMessageError, map[string]string{"error": "invalid send_message payload"})
		return
	}

	message, _, err := h.chatService.SendMessage(ctx, client.UserID, payload.ReceiverID.Int64(), payload.Content)
	if err != nil {
		client.Emit(ws.EventSendMessageError, map[string]any{
			"error":   err.Error(),
			"reason":  apperrors.Reason(err),
			"temp_id": payload.TempID,
		})
		return
	}

	// Подтверждение отправителю с temp_id для сверки оптимистичного рендера
	client.Emit(ws.EventMessageDeliveredAck, map[string]any{
		"message_id": message.ID,
		"temp_id":    payload.TempID,
		"status":     message.Status,
		"timestamp":  message.Timestamp.UTC().Format(time.RFC3339),
	})
}

func (h *WebSocketHandler) handleMarkRead(ctx context.Context, client *ws.Client, data json.RawMessage) {
	var payload ws.MarkReadPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.SenderID.Int64() <= 0 {
		client.Emit(ws.EventChatError, map[string]string{"error": "invalid mark_read payload"})
		return
	}

	if _, err := h.chatService.MarkRead(ctx, client.UserID, payload.SenderID.Int64()); err != nil {
		client.Emit(ws.EventChatError, map[string]any{"error": err.Error(), "reason": apperrors.Reason(err)})
	}
}

func (h *WebSocketHandler) handleDelivered(ctx context.Context, client *ws.Client, data json.RawMessage) {
	var payload ws.DeliveredPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.MessageID.Int64() <= 0 {
		return
	}

	if err := h.chatService.ConfirmDelivered(ctx, client.UserID, payload.MessageID.Int64()); err != nil {
		h.log.Warn("Delivery confirmation rejected", "user_id", client.UserID, "message_id", payload.MessageID.Int64(), "error", err)
	}
}

func (h *WebSocketHandler) handleRequestStatus(ctx context.Context, client *ws.Client, data json.RawMessage) {
	var payload ws.RequestStatusPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.UserID.Int64() <= 0 {
		client.Emit(ws.EventChatError, map[string]string{"error": "invalid request_status payload"})
		return
	}

	status, err := h.presenceService.Status(ctx, client.UserID, payload.UserID.Int64())
	if err != nil {
		client.Emit(ws.EventChatError, map[string]any{"error": err.Error(), "reason": apperrors.Reason(err)})
		return
	}

	client.Emit(ws.EventStatusResponse, status)
}

// handleUserLeaving — явный уход со страницы чата: offline сразу, без grace
func (h *WebSocketHandler) handleUserLeaving(ctx context.Context, client *ws.Client) {
	if err := h.presenceService.MarkOffline(ctx, client.UserID, domain.PresenceReasonLeftChat); err != nil {
		h.log.Error("Failed to mark leaving user offline", "user_id", client.UserID, "error", err)
	}
}
