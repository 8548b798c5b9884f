package websocket

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"go-notification-relay/internal/infrastructure/hub"
	"go-notification-relay/internal/infrastructure/logger"
)

// WebSocketHandler upgrades HTTP requests, registers the resulting connection
// with the hub, and runs the read loop that handles client events. Unregister
// happens exactly once per connection no matter how the read loop ends.
type WebSocketHandler struct {
	hub      *hub.Hub
	logger   logger.Logger
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(hubInstance *hub.Hub, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:    hubInstance,
		logger: log.WithField("handler", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Cross-origin is accepted from any origin; there is no
				// authentication handshake on the realtime channel.
				return true
			},
		},
	}
}

// Connect handles a WebSocket upgrade request.
func (h *WebSocketHandler) Connect(c *gin.Context) {
	if !h.hub.IsRunning() {
		h.logger.Error("hub is not running")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Service temporarily unavailable",
		})
		return
	}

	wsConn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("failed to upgrade connection: %v", err)
		return
	}

	conn := hub.NewWebSocketConnection(wsConn, h.logger)

	id, err := h.hub.Register(conn)
	if err != nil {
		h.logger.Errorf("failed to register websocket connection: %v", err)
		_ = conn.Close()
		return
	}

	log := h.logger.WithField("connection_id", id)
	log.Info("websocket connection registered")

	greeting := hub.NewEvent(hub.EventConnected, gin.H{"connectionId": id})
	if err := conn.Send(c.Request.Context(), greeting); err != nil {
		log.Errorf("failed to send connected event: %v", err)
	}

	h.readLoop(id, conn, wsConn, log)
}

// readLoop consumes client frames until the transport reports the connection
// closed, then removes the connection from the hub. The only client event in
// the protocol is join_room.
func (h *WebSocketHandler) readLoop(
	id string,
	conn *hub.WebSocketConnection,
	wsConn *websocket.Conn,
	log logger.Logger,
) {
	defer func() {
		h.hub.Unregister(id)
		_ = conn.Close()
		log.Info("websocket connection unregistered")
	}()

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				log.Errorf("websocket read error: %v", err)
			}
			return
		}

		var event hub.Event
		if err := json.Unmarshal(data, &event); err != nil {
			log.Warnf("ignoring malformed client event: %v", err)
			continue
		}

		switch event.Name {
		case hub.EventJoinRoom:
			group, ok := event.Payload.(string)
			if !ok || group == "" {
				log.Warn("ignoring join_room event without a group id")
				continue
			}
			if err := h.hub.Join(id, group); err != nil {
				log.Errorf("failed to join group %s: %v", group, err)
			}
		default:
			log.Debugf("ignoring client event %s", event.Name)
		}
	}
}

// GetConnections reports live WebSocket connections for diagnostics.
func (h *WebSocketHandler) GetConnections(c *gin.Context) {
	var info []gin.H
	for _, m := range h.hub.Snapshot() {
		if m.Conn.Transport() != "websocket" {
			continue
		}
		info = append(info, gin.H{
			"id":        m.ID,
			"transport": m.Conn.Transport(),
			"closed":    m.Conn.IsClosed(),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_connections": len(info),
		"connections":       info,
		"hub_running":       h.hub.IsRunning(),
	})
}
