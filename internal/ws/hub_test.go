package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habithero/pkg/logger"
)

func newTestClient(userID int64) *Client {
	return NewClient(nil, userID, logger.New("error"))
}

func drain(c *Client) []Envelope {
	var frames []Envelope
	for {
		select {
		case raw := <-c.send:
			var env Envelope
			if err := json.Unmarshal(raw, &env); err == nil {
				frames = append(frames, env)
			}
		default:
			return frames
		}
	}
}

func TestHubRegister(t *testing.T) {
	hub := NewHub(logger.New("error"))
	client := newTestClient(1)

	hub.Register(client)
	assert.Equal(t, 1, hub.UserConnections(1))

	// Персональная комната создаётся при регистрации
	hub.EmitToUser(1, "ping", nil)
	assert.Len(t, drain(client), 1)

	hub.Unregister(client)
	assert.Equal(t, 0, hub.UserConnections(1))

	hub.EmitToUser(1, "ping", nil)
	assert.Empty(t, drain(client))
}

func TestHubMultipleConnections(t *testing.T) {
	hub := NewHub(logger.New("error"))
	first := newTestClient(1)
	second := newTestClient(1)

	hub.Register(first)
	hub.Register(second)
	assert.Equal(t, 2, hub.UserConnections(1))

	// Адресное событие приходит во все соединения пользователя
	hub.EmitToUser(1, "ping", nil)
	assert.Len(t, drain(first), 1)
	assert.Len(t, drain(second), 1)

	hub.Unregister(first)
	assert.Equal(t, 1, hub.UserConnections(1))
}

func TestHubEmitToRoomExcept(t *testing.T) {
	hub := NewHub(logger.New("error"))
	alice := newTestClient(1)
	bob := newTestClient(2)

	hub.Register(alice)
	hub.Register(bob)

	room := ChatRoom(1, 2)
	hub.Join(alice, room)
	hub.Join(bob, room)

	hub.EmitToRoomExcept(room, alice, "user_typing", map[string]any{"sender_id": 1})

	assert.Empty(t, drain(alice))

	frames := drain(bob)
	require.Len(t, frames, 1)
	assert.Equal(t, "user_typing", frames[0].Event)
}

func TestHubUnregisterLeavesAllRooms(t *testing.T) {
	hub := NewHub(logger.New("error"))
	alice := newTestClient(1)
	bob := newTestClient(2)

	hub.Register(alice)
	hub.Register(bob)

	room := ChatRoom(1, 2)
	hub.Join(alice, room)
	hub.Join(bob, room)

	hub.Unregister(alice)

	hub.EmitToRoom(room, "ping", nil)
	assert.Empty(t, drain(alice))
	assert.Len(t, drain(bob), 1)
}
