package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserRoom(t *testing.T) {
	assert.Equal(t, "user:42", UserRoom(42))
}

func TestChatRoom(t *testing.T) {
	// Имя каноническое: не зависит от порядка аргументов
	assert.Equal(t, "chat:7:12", ChatRoom(7, 12))
	assert.Equal(t, "chat:7:12", ChatRoom(12, 7))
	assert.Equal(t, ChatRoom(1, 2), ChatRoom(2, 1))
}
