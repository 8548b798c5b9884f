package sse

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-notification-relay/internal/infrastructure/hub"
	"go-notification-relay/internal/infrastructure/logger"
)

// ServerSentEventHandler bridges SSE transport events to the hub: register on
// accept, unregister exactly once when the stream ends, whatever the cause.
type ServerSentEventHandler struct {
	hub    *hub.Hub
	logger logger.Logger
}

func NewServerSentEventHandler(hubInstance *hub.Hub, log logger.Logger) *ServerSentEventHandler {
	return &ServerSentEventHandler{
		hub:    hubInstance,
		logger: log.WithField("handler", "sse"),
	}
}

// Connect handles an SSE connection request and holds the response open until
// the client disconnects or the hub shuts the connection down.
func (h *ServerSentEventHandler) Connect(c *gin.Context) {
	if !h.hub.IsRunning() {
		h.logger.Error("hub is not running")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Service temporarily unavailable",
		})
		return
	}

	conn := hub.NewSSEConnection(c.Request.Context(), c.Writer, h.logger)

	id, err := h.hub.Register(conn)
	if err != nil {
		h.logger.Errorf("failed to register sse connection: %v", err)
		_ = conn.Close()
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to register connection",
		})
		return
	}
	defer h.hub.Unregister(id)

	log := h.logger.WithField("connection_id", id)
	log.Info("sse connection registered")

	greeting := hub.NewEvent(hub.EventConnected, gin.H{"connectionId": id})
	if err := conn.Send(c.Request.Context(), greeting); err != nil {
		log.Errorf("failed to send connected event: %v", err)
		_ = conn.Close()
		return
	}

	select {
	case <-conn.Context().Done():
		log.Info("sse connection closed by hub")
	case <-c.Request.Context().Done():
		log.Info("sse client disconnected")
		_ = conn.Close()
	}
}

// GetConnections reports the hub's live membership for diagnostics.
func (h *ServerSentEventHandler) GetConnections(c *gin.Context) {
	members := h.hub.Snapshot()
	info := make([]gin.H, len(members))

	for i, m := range members {
		info[i] = gin.H{
			"id":        m.ID,
			"transport": m.Conn.Transport(),
			"closed":    m.Conn.IsClosed(),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_connections": len(members),
		"connections":       info,
		"hub_running":       h.hub.IsRunning(),
	})
}
