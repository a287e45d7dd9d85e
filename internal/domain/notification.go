package domain

import "time"

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Text      string    `json:"text"`
	Link      string    `json:"link"`
	IsRead    bool      `json:"is_read"`
	Timestamp time.Time `json:"timestamp"`
}
