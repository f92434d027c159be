package handlers

import (
	"net/http"

	"task-assignment-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// UserHandler serves the member directory.
type UserHandler struct {
	users  *service.UserService
	logger logrus.FieldLogger
}

func NewUserHandler(users *service.UserService, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// ListMembers returns every member account (admin only)
// GET /api/tasks/users/list
func (h *UserHandler) ListMembers(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	members, err := h.users.ListMembers(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, members)
}
