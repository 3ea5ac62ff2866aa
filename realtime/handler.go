package realtime

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// NewUpgrader accepts connections from the configured frontend origin, or any origin when it is empty
func NewUpgrader(allowedOrigin string) websocket.Upgrader {
	allowedOrigin = strings.TrimRight(allowedOrigin, "/")
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowedOrigin == "" {
				return true
			}
			return strings.EqualFold(strings.TrimRight(origin, "/"), allowedOrigin)
		},
	}
}

// ServeWS handles GET /ws
func ServeWS(hub *Hub, upgrader websocket.Upgrader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error
			logger.Debug("websocket upgrade failed", zap.Error(err))
			return
		}

		client := newClient(hub, conn, logger)
		if !hub.register(client) {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			_ = conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}
