package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"task-assignment-api/internal/auth"
	"task-assignment-api/internal/authz"
	"task-assignment-api/internal/models"
	"task-assignment-api/internal/realtime"
	"task-assignment-api/internal/taskid"
	"task-assignment-api/internal/testutil"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	adminActor = authz.Actor{ID: "admin-1", Email: "sahil.l@admin.com", Role: models.RoleAdmin}
	u1         = authz.Actor{ID: "u1", Email: "rahul@taskmanager.com", Role: models.RoleMember}
	u2         = authz.Actor{ID: "u2", Email: "priya@taskmanager.com", Role: models.RoleMember}
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []realtime.Event
	users  []string
}

func (p *recordingPublisher) Publish(_ context.Context, userID string, evt realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = append(p.users, userID)
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db            *gorm.DB
	users         *UserService
	tasks         *TaskService
	notifications *NotificationService
	events        *recordingPublisher
	hook          *test.Hook
}

// stepClock returns a clock that advances by one second per call.
func stepClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	tokens, err := auth.NewTokenManager(auth.TokenConfig{Secret: "test", Issuer: "iss", Audience: "aud", TTL: time.Hour})
	require.NoError(t, err)

	events := &recordingPublisher{}
	users := NewUserService(db, tokens, nil, logger)
	notifications := NewNotificationService(db, events, logger)
	tasks := NewTaskService(db, taskid.NewGenerator(db, taskid.Options{}), notifications, users, events, logger)
	tasks.now = stepClock()
	notifications.now = stepClock()

	return &fixture{db: db, users: users, tasks: tasks, notifications: notifications, events: events, hook: hook}
}

func (f *fixture) seedUser(t *testing.T, id, name string, role models.Role) {
	t.Helper()
	require.NoError(t, f.db.Create(&models.User{
		ID: id, FullName: name, Email: id + "@example.com", PasswordHash: "x", Role: role,
	}).Error)
}

func (f *fixture) createTask(t *testing.T, title, assignee string) *models.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), adminActor, CreateTaskInput{Title: title, AssignedUserID: assignee})
	require.NoError(t, err)
	return task
}

type failingNotifier struct{ calls int }

func (n *failingNotifier) NotifyAssignment(context.Context, string, string, string) (*models.Notification, error) {
	n.calls++
	return nil, errors.New("notifications table unavailable")
}

type failingIDs struct{}

func (failingIDs) Next(context.Context) (string, error) {
	return "", errors.New("store unavailable")
}
