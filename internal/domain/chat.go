package domain

import "time"

type ChatMessage struct {
	ID                 int64     `json:"id"`
	SenderID           int64     `json:"sender_id"`
	ReceiverID         int64     `json:"receiver_id"`
	Content            string    `json:"content"`
	Timestamp          time.Time `json:"timestamp"`
	IsRead             bool      `json:"is_read"`
	Status             string    `json:"status"`
	Edited             bool      `json:"edited"`
	IsForwarded        bool      `json:"is_forwarded"`
	OriginalMessageID  *int64    `json:"original_message_id,omitempty"`
	DeletedForSender   bool      `json:"-"`
	DeletedForReceiver bool      `json:"-"`
}

// Статусы доставки; допускаются только переходы вперёд, read — конечный.
// Инвариант: status == read тогда и только тогда, когда is_read == true
const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
)

const (
	DeleteTypeMe       = "me"
	DeleteTypeEveryone = "everyone"
)

// ChatPreview — элемент списка недавних диалогов
type ChatPreview struct {
	UserID          int64      `json:"user_id"`
	Username        string     `json:"username"`
	IsOnline        bool       `json:"is_online"`
	LastMessage     string     `json:"last_message"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`
	UnreadCount     int        `json:"unread_count"`
}
