package handlers

import (
	"net/http"

	"task-assignment-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NotificationHandler serves the caller's inbox.
type NotificationHandler struct {
	notifications *service.NotificationService
	logger        logrus.FieldLogger
}

func NewNotificationHandler(notifications *service.NotificationService, logger logrus.FieldLogger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// ListUnread handles GET /api/tasks/notifications
func (h *NotificationHandler) ListUnread(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	notifications, err := h.notifications.ListUnread(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkRead handles PATCH /api/tasks/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
