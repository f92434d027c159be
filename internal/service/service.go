// Package service implements the task lifecycle: credential store, task
// repository and notification dispatcher. Every exported operation checks
// the caller with authz before touching the store.
package service

import (
	"context"
	"errors"
	"strings"

	"task-assignment-api/internal/apperrors"
	"task-assignment-api/internal/models"

	"gorm.io/gorm"
)

// IDGenerator hands out human-readable task identifiers.
type IDGenerator interface {
	Next(ctx context.Context) (string, error)
}

// Notifier records an assignment notification for a recipient.
type Notifier interface {
	NotifyAssignment(ctx context.Context, recipientID, taskTitle, taskRefID string) (*models.Notification, error)
}

// UserLookup resolves user records for denormalized name snapshots.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound error and anything
// else to an Unexpected one.
func notFoundOr(err error, notFoundMsg, failMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(notFoundMsg)
	}
	return apperrors.Unexpected(failMsg, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
