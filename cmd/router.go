package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-notification-relay/internal/infrastructure/hub"
	"go-notification-relay/internal/infrastructure/logger"
	"go-notification-relay/internal/interfaces/rest/v1/handler"
	"go-notification-relay/internal/interfaces/sse"
	"go-notification-relay/internal/interfaces/websocket"
	"go-notification-relay/internal/notification"
)

func InitRouter(hubInstance *hub.Hub, store notification.Store, log logger.Logger) http.Handler {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	rootGroup := router.Group("")

	rootGroup.GET("/hub/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "healthy",
			"hub_running": hubInstance.IsRunning(),
			"connections": hubInstance.ConnectionCount(),
		})
	})

	notificationHandler := handler.NewNotificationHandler(store, hubInstance, log)
	rootGroup.POST("/notification", notificationHandler.Create)
	rootGroup.GET("/notification", notificationHandler.List)

	sse.InitSSERouter(log, hubInstance, rootGroup)
	websocket.InitWebSocketRouter(log, hubInstance, rootGroup)

	return router
}
