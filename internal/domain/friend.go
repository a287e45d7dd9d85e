package domain

import "time"

// Friendship — неупорядоченная пара пользователей; строка хранится один раз,
// в любом направлении user_id/friend_id
type Friendship struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	FriendID  int64     `json:"friend_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	FriendStatusPending  = "pending"
	FriendStatusAccepted = "accepted"
	FriendStatusBlocked  = "blocked"
)

// OtherID возвращает идентификатор второго участника пары
func (f *Friendship) OtherID(userID int64) int64 {
	if f.UserID == userID {
		return f.FriendID
	}
	return f.UserID
}
