package handlers

import (
	"net/http"

	"task-assignment-api/internal/apperrors"
	"task-assignment-api/internal/authz"
	"task-assignment-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// respondError writes the client-safe message for err and logs the detail.
func respondError(c *gin.Context, logger logrus.FieldLogger, err error) {
	kind := apperrors.KindOf(err)
	status := kind.HTTPStatus()

	entry := logger.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
		"kind":   kind.String(),
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	body := gin.H{"error": apperrors.PublicMessage(err)}
	if kind == apperrors.KindTransient {
		body["retryable"] = true
	}
	c.JSON(status, body)
}

// actorOrAbort fetches the caller, writing 401 when the token carried none.
func actorOrAbort(c *gin.Context) (authz.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User ID not found in token",
		})
	}
	return actor, ok
}
