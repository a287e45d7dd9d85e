package domain

import "time"

type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Bio          string     `json:"bio"`
	AvatarURL    *string    `json:"avatar_url,omitempty"`
	IsOnline     bool       `json:"is_online"`
	LastSeenAt   time.Time  `json:"last_seen_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// PresenceStatus — ответ на запрос статуса пользователя
type PresenceStatus struct {
	UserID     int64     `json:"user_id"`
	IsOnline   bool      `json:"is_online"`
	Status     string    `json:"status"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Причины смены presence-статуса, уходят друзьям в событии user_status
const (
	PresenceReasonConnected    = "connected"
	PresenceReasonDisconnected = "disconnected"
	PresenceReasonLeftChat     = "left_chat"
	PresenceReasonIdle         = "idle"
)
