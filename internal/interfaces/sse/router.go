package sse

import (
	"github.com/gin-gonic/gin"

	"go-notification-relay/internal/infrastructure/hub"
	"go-notification-relay/internal/infrastructure/logger"
)

func InitSSERouter(log logger.Logger, hubInstance *hub.Hub, rg *gin.RouterGroup) {
	sseHandler := NewServerSentEventHandler(hubInstance, log)

	sseGroup := rg.Group("/sse")
	sseGroup.GET("", sseHandler.Connect)

	apiGroup := rg.Group("/api/v1")
	apiGroup.GET("/connections", sseHandler.GetConnections)
}
