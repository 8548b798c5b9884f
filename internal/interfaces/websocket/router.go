package websocket

import (
	"github.com/gin-gonic/gin"

	"go-notification-relay/internal/infrastructure/hub"
	"go-notification-relay/internal/infrastructure/logger"
)

// InitWebSocketRouter initializes WebSocket routes.
func InitWebSocketRouter(log logger.Logger, hubInstance *hub.Hub, rg *gin.RouterGroup) {
	wsHandler := NewWebSocketHandler(hubInstance, log)

	wsGroup := rg.Group("/ws")
	wsGroup.GET("", wsHandler.Connect)

	apiGroup := rg.Group("/api/v1/ws")
	apiGroup.GET("/connections", wsHandler.GetConnections)
}
