package realtime

import (
	"encoding/json"
	"time"

	"github.com/campuscarry/campuscarry-api/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBufferSize = 64
)

// Client frame actions
const (
	ActionJoinRoom  = "join-room"
	ActionLeaveRoom = "leave-room"
)

// Command is a frame sent by the browser
type Command struct {
	Action  string `json:"action"`
	MatchID uint   `json:"match_id"`
}

// Client is one websocket connection. rooms is guarded by the hub's lock.
type Client struct {
	id    string
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	rooms map[string]struct{}

	logger *zap.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, logger *zap.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		rooms:  make(map[string]struct{}),
		logger: logger.With(zap.String("client_id", id)),
	}
}

// readPump applies join and leave commands until the connection fails
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(raw, &cmd); err != nil || cmd.MatchID == 0 {
			c.logger.Debug("ignoring malformed frame", zap.ByteString("frame", raw))
			continue
		}

		room := models.MatchRoom(cmd.MatchID)
		switch cmd.Action {
		case ActionJoinRoom:
			c.hub.Join(c, room)
			c.logger.Debug("joined room", zap.String("room", room))
		case ActionLeaveRoom:
			c.hub.Leave(c, room)
			c.logger.Debug("left room", zap.String("room", room))
		default:
			c.logger.Debug("ignoring unknown action", zap.String("action", cmd.Action))
		}
	}
}

// writePump forwards queued frames and keeps the connection alive with pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
