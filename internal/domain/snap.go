package domain

import "time"

type Snap struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	ReceiverID  int64     `json:"receiver_id"`
	HabitID     *int64    `json:"habit_id,omitempty"`
	ContentType string    `json:"content_type"`
	Content     string    `json:"content"`
	Caption     string    `json:"caption,omitempty"`
	IsViewed    bool      `json:"is_viewed"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

type SnapReaction struct {
	ID        int64     `json:"id"`
	SnapID    int64     `json:"snap_id"`
	UserID    int64     `json:"user_id"`
	Emoji     string    `json:"emoji"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	SnapContentText  = "text"
	SnapContentImage = "image"
	SnapContentVideo = "video"
)
