package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"habithero/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

type Client struct {
	ID     uuid.UUID
	UserID int64

	conn *websocket.Conn
	send chan []byte
	log  logger.Logger

	// членство в комнатах; защищено мьютексом хаба
	rooms map[string]struct{}
}

func NewClient(conn *websocket.Conn, userID int64, log logger.Logger) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, 64),
		log:    log,
		rooms:  make(map[string]struct{}),
	}
}

// Emit отправляет событие только в это соединение
func (c *Client) Emit(event string, data any) {
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		c.log.Error("Failed to marshal event", "event", event, "error", err)
		return
	}

	select {
	case c.send <- frame:
	default:
		c.log.Warn("Dropping frame for slow client", "client_id", c.ID, "event", event)
	}
}

// ReadPump читает кадры и передаёт их обработчику. Возвращается при
// закрытии соединения
func (c *Client) ReadPump(handle func(event string, data json.RawMessage)) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("Unexpected close", "client_id", c.ID, "error", err)
			}
			return
		}

		var frame struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &frame); err != nil || frame.Event == "" {
			c.Emit(EventChatError, map[string]string{"error": "malformed frame"})
			continue
		}

		handle(frame.Event, frame.Data)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) CloseSend() {
	close(c.send)
}
