package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-notification-relay/internal/infrastructure/hub"
	"go-notification-relay/internal/infrastructure/logger"
	"go-notification-relay/internal/notification"
)

// NotificationHandler serves the notification write/read endpoints. The
// broadcaster is injected at construction, so a handler can never observe an
// uninitialized realtime subsystem.
type NotificationHandler struct {
	store       notification.Store
	broadcaster hub.Broadcaster
	logger      logger.Logger
}

type createNotificationRequest struct {
	Message string `json:"message" binding:"required"`
	UserID  string `json:"userId"  binding:"required"`
}

type apiResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
}

func NewNotificationHandler(
	store notification.Store,
	broadcaster hub.Broadcaster,
	log logger.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		store:       store,
		broadcaster: broadcaster,
		logger:      log.WithField("handler", "notification"),
	}
}

// Create handles POST /notification: validate, persist, broadcast, respond.
// Validation failures reject the request before any side effect; broadcast
// failures are invisible to the caller by contract.
func (h *NotificationHandler) Create(c *gin.Context) {
	var req createNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("invalid notification request: %v", err)
		c.JSON(http.StatusBadRequest, apiResponse{
			Message: "Bad Request",
			Success: false,
		})
		return
	}

	record, err := h.store.Create(c.Request.Context(), req.Message, req.UserID)
	if err != nil {
		h.logger.Errorf("failed to persist notification: %v", err)
		c.JSON(http.StatusInternalServerError, apiResponse{
			Message: "Internal Server Error",
			Success: false,
		})
		return
	}

	// Fan-out runs outside the request's response cycle; its context must
	// outlive this handler.
	event := hub.NewEvent(hub.EventNotification, record)
	if err := h.broadcaster.Broadcast(context.WithoutCancel(c.Request.Context()), event); err != nil {
		h.logger.Errorf("failed to broadcast notification %s: %v", record.ID, err)
	}

	c.JSON(http.StatusCreated, apiResponse{
		Message: "Notification Sent Successfully",
		Success: true,
		Data:    record,
	})
}

// List handles GET /notification.
func (h *NotificationHandler) List(c *gin.Context) {
	records, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Errorf("failed to list notifications: %v", err)
		c.JSON(http.StatusInternalServerError, apiResponse{
			Message: "Internal Server Error",
			Success: false,
		})
		return
	}

	if len(records) == 0 {
		c.JSON(http.StatusNotFound, apiResponse{
			Message: "No Notification Found",
			Success: false,
		})
		return
	}

	c.JSON(http.StatusOK, apiResponse{
		Message: "Notifications Fetched Successfully",
		Success: true,
		Data:    records,
	})
}
