package domain

import "time"

type Habit struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Frequency   string     `json:"frequency"`
	LastDoneAt  *time.Time `json:"last_done_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type HabitLog struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	HabitID     int64     `json:"habit_id"`
	Note        string    `json:"note,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

const (
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)
