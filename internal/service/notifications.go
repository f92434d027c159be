package service

import (
	"context"
	"time"

	"task-assignment-api/internal/apperrors"
	"task-assignment-api/internal/authz"
	"task-assignment-api/internal/models"
	"task-assignment-api/internal/realtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const assignmentTitle = "New Task Assigned"

// NotificationService is the notification dispatcher.
type NotificationService struct {
	db     *gorm.DB
	events realtime.Publisher
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewNotificationService(db *gorm.DB, events realtime.Publisher, logger logrus.FieldLogger) *NotificationService {
	if events == nil {
		events = realtime.Discard{}
	}
	return &NotificationService{db: db, events: events, logger: logger, now: time.Now}
}

// NotifyAssignment creates one unread notification. It is not idempotent:
// each call produces a new record.
func (s *NotificationService) NotifyAssignment(ctx context.Context, recipientID, taskTitle, taskRefID string) (*models.Notification, error) {
	if recipientID == "" {
		return nil, apperrors.Validation("Notification recipient is required")
	}
	n := models.Notification{
		ID:            uuid.NewString(),
		UserID:        recipientID,
		Title:         assignmentTitle,
		Message:       "You have been assigned a new task: " + taskTitle,
		RelatedTaskID: taskRefID,
		Read:          false,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		return nil, apperrors.Unexpected("Failed to create notification", err)
	}

	s.events.Publish(ctx, recipientID, realtime.Event{
		Type:           realtime.EventNotificationCreated,
		TaskID:         taskRefID,
		NotificationID: n.ID,
	})
	return &n, nil
}

// ListUnread returns the unread notifications of userID, newest first.
func (s *NotificationService) ListUnread(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications := []models.Notification{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_read = ?", userID, false).
		Order("created_at desc, id desc").
		Find(&notifications).Error; err != nil {
		return nil, apperrors.Unexpected("Error fetching notifications", err)
	}
	return notifications, nil
}

// MarkRead flags a notification of the caller as read.
func (s *NotificationService) MarkRead(ctx context.Context, actor authz.Actor, id string) error {
	var n models.Notification
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		return notFoundOr(err, "Notification not found", "Error updating notification")
	}
	if err := authz.Authorize(actor, authz.OpReadNotification, n.UserID); err != nil {
		return err
	}
	if n.Read {
		return nil
	}
	if err := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error; err != nil {
		return apperrors.Unexpected("Error updating notification", err)
	}
	return nil
}
