package ws

import (
	"bytes"
	"strconv"
)

// Имена событий, входящих от клиента
const (
	EventJoinChat         = "join_chat"
	EventTyping           = "typing"
	EventSendMessage      = "send_message"
	EventMarkRead         = "mark_read"
	EventMessageDelivered = "message_delivered"
	EventRequestStatus    = "request_status"
	EventUserLeaving      = "user_leaving"
)

// Имена событий, уходящих клиентам
const (
	EventUserStatus          = "user_status"
	EventChatJoined          = "chat_joined"
	EventChatError           = "chat_error"
	EventUserTyping          = "user_typing"
	EventNewMessage          = "new_message"
	EventMessageDeliveredAck = "message_delivered"
	EventSendMessageError    = "send_message_error"
	EventStatusUpdate        = "message_status_update"
	EventMessagesRead        = "messages_read"
	EventMessageDeleted      = "message_deleted"
	EventMessageEdited       = "message_edited"
	EventStatusResponse      = "status_response"
	EventNotificationCount   = "notification_count_update"
	EventFriendRequest       = "friend_request"
	EventNewSnap             = "new_snap"
)

// Envelope — формат кадра в обе стороны: имя события плюс произвольные данные
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// ID принимает идентификатор и числом, и строкой — клиенты шлют и так, и так
type ID int64

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*id = ID(v)
	return nil
}

func (id ID) Int64() int64 { return int64(id) }

type JoinChatPayload struct {
	UserID ID `json:"user_id"`
}

type TypingPayload struct {
	ReceiverID ID   `json:"receiver_id"`
	IsTyping   bool `json:"is_typing"`
}

type SendMessagePayload struct {
	ReceiverID ID     `json:"receiver_id"`
	Content    string `json:"content"`
	TempID     string `json:"temp_id"`
}

type MarkReadPayload struct {
	SenderID ID `json:"sender_id"`
}

type DeliveredPayload struct {
	MessageID ID `json:"message_id"`
}

type RequestStatusPayload struct {
	UserID ID `json:"user_id"`
}
