package ws

import (
	"encoding/json"
	"sync"

	"habithero/pkg/logger"
)

// Hub держит членство соединений в именованных комнатах. Отправка —
// fire-and-forget: медленный клиент теряет кадры, но не блокирует остальных
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]struct{}
	conns map[int64]int
	log   logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		conns: make(map[int64]int),
		log:   log,
	}
}

// Register добавляет соединение и включает его в персональную комнату.
// Повторная регистрация того же клиента — no-op
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := c.rooms[UserRoom(c.UserID)]; !ok {
		h.conns[c.UserID]++
	}
	h.joinLocked(c, UserRoom(c.UserID))
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	registered := false
	for room := range c.rooms {
		if room == UserRoom(c.UserID) {
			registered = true
		}
		if members, ok := h.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	c.rooms = make(map[string]struct{})

	if registered {
		h.conns[c.UserID]--
		if h.conns[c.UserID] <= 0 {
			delete(h.conns, c.UserID)
		}
	}
}

func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.joinLocked(c, room)
}

func (h *Hub) joinLocked(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

// UserConnections возвращает число живых соединений пользователя;
// используется grace-логикой отключения
func (h *Hub) UserConnections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.conns[userID]
}

func (h *Hub) EmitToUser(userID int64, event string, data any) {
	h.EmitToRoom(UserRoom(userID), event, data)
}

func (h *Hub) EmitToRoom(room, event string, data any) {
	h.emit(room, nil, event, data)
}

// EmitToRoomExcept рассылает всем в комнате, кроме указанного соединения
// (typing-индикатор не возвращается автору)
func (h *Hub) EmitToRoomExcept(room string, except *Client, event string, data any) {
	h.emit(room, except, event, data)
}

func (h *Hub) emit(room string, except *Client, event string, data any) {
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		h.log.Error("Failed to marshal event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.rooms[room] {
		if c == except {
			continue
		}
		select {
		case c.send <- frame:
		default:
			h.log.Warn("Dropping frame for slow client", "client_id", c.ID, "event", event)
		}
	}
}
