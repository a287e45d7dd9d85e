package ws

import "fmt"

// UserRoom — персональный канал пользователя; туда уходят все адресные
// события независимо от числа его соединений
func UserRoom(userID int64) string {
	return fmt.Sprintf("user:%d", userID)
}

// ChatRoom — канал пары собеседников. Имя каноническое: меньший id всегда
// первый, поэтому обе стороны сходятся на одном имени без координации
func ChatRoom(userA, userB int64) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("chat:%d:%d", userA, userB)
}
