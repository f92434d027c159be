package realtime

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"
)

// Event types pushed to connected clients.
const (
	EventTaskCreated         = "task_created"
	EventTaskUpdated         = "task_updated"
	EventTaskStatusChanged   = "task_status_changed"
	EventTaskDeleted         = "task_deleted"
	EventNotificationCreated = "notification_created"
)

// Event is the payload clients receive over the websocket.
type Event struct {
	Type           string `json:"type"`
	UserID         string `json:"userId"`
	TaskID         string `json:"taskId,omitempty"`
	NotificationID string `json:"notificationId,omitempty"`
	Version        int    `json:"version"`
}

// Publisher delivers events to a user's clients. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, userID string, evt Event)
}

// LocalPublisher delivers straight to the hub of this instance.
type LocalPublisher struct {
	hub    *Hub
	logger logrus.FieldLogger
}

func NewLocalPublisher(hub *Hub, logger logrus.FieldLogger) *LocalPublisher {
	return &LocalPublisher{hub: hub, logger: logger}
}

func (p *LocalPublisher) Publish(_ context.Context, userID string, evt Event) {
	data, err := encodeEvent(userID, evt)
	if err != nil {
		p.logger.WithError(err).WithField("event", evt.Type).Warn("realtime: encode event")
		return
	}
	p.hub.Broadcast(userID, data)
}

func encodeEvent(userID string, evt Event) ([]byte, error) {
	evt.UserID = userID
	if evt.Version == 0 {
		evt.Version = 1
	}
	return sonic.Marshal(evt)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, string, Event) {}
