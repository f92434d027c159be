package service

import (
	"context"
	"strings"
	"time"

	"task-assignment-api/internal/apperrors"
	"task-assignment-api/internal/authz"
	"task-assignment-api/internal/models"
	"task-assignment-api/internal/realtime"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const defaultAssignerName = "Admin"

// CreateTaskInput holds the fields an admin supplies for a new task.
type CreateTaskInput struct {
	Title            string
	Description      string
	AssignedUserID   string
	AssignedUserName string
}

// UpdateTaskInput holds the fields to change; nil means unchanged.
type UpdateTaskInput struct {
	Title            *string
	Description      *string
	Status           *models.TaskStatus
	AssignedUserID   *string
	AssignedUserName *string
}

// TaskService is the role-scoped task repository.
type TaskService struct {
	db       *gorm.DB
	ids      IDGenerator
	notifier Notifier
	users    UserLookup
	events   realtime.Publisher
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewTaskService(
	db *gorm.DB,
	ids IDGenerator,
	notifier Notifier,
	users UserLookup,
	events realtime.Publisher,
	logger logrus.FieldLogger,
) *TaskService {
	if events == nil {
		events = realtime.Discard{}
	}
	return &TaskService{
		db:       db,
		ids:      ids,
		notifier: notifier,
		users:    users,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *TaskService) scoped(ctx context.Context, actor authz.Actor) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.Task{})
	if owner := authz.Scope(actor); owner != "" {
		query = query.Where("assigned_user_id = ?", owner)
	}
	return query
}

// List returns the tasks visible to actor, newest first, optionally
// filtered by status.
func (s *TaskService) List(ctx context.Context, actor authz.Actor, status models.TaskStatus) ([]models.Task, error) {
	if err := authz.Authorize(actor, authz.OpListTasks, ""); err != nil {
		return nil, err
	}
	query := s.scoped(ctx, actor)
	if status != "" {
		if !status.Valid() {
			return nil, apperrors.Validation("Invalid status filter")
		}
		query = query.Where("status = ?", status)
	}

	tasks := []models.Task{}
	if err := query.Order("created_at desc, id desc").Find(&tasks).Error; err != nil {
		return nil, apperrors.Unexpected("Error fetching tasks", err)
	}
	return tasks, nil
}

// Get returns a single task visible to actor.
func (s *TaskService) Get(ctx context.Context, actor authz.Actor, id string) (*models.Task, error) {
	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.OpViewTask, task.AssignedUserID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) find(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, notFoundOr(err, "Task not found", "Failed to fetch task")
	}
	return &task, nil
}

// Create persists a new Pending task with the next sequential taskId and
// then notifies the assignee. A failed notification is logged and does not
// undo the task.
func (s *TaskService) Create(ctx context.Context, actor authz.Actor, in CreateTaskInput) (*models.Task, error) {
	if err := authz.Authorize(actor, authz.OpCreateTask, ""); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	assigneeID := strings.TrimSpace(in.AssignedUserID)
	if title == "" {
		return nil, apperrors.Validation("Title is required")
	}
	if assigneeID == "" {
		return nil, apperrors.Validation("Assigned user is required")
	}

	taskID, err := s.ids.Next(ctx)
	if err != nil {
		return nil, err
	}

	task := models.Task{
		ID:               uuid.NewString(),
		TaskID:           taskID,
		Title:            title,
		Description:      in.Description,
		Status:           models.StatusPending,
		AssignedUserID:   assigneeID,
		AssignedUserName: s.snapshotName(ctx, assigneeID, in.AssignedUserName, ""),
		AssignedByUserID: actor.ID,
		AssignedByName:   s.snapshotName(ctx, actor.ID, "", defaultAssignerName),
		CreatedAt:        s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&task).Error; err != nil {
		return nil, apperrors.Unexpected("Error creating task", err)
	}

	log := s.logger.WithFields(logrus.Fields{
		"task_id":     task.TaskID,
		"id":          task.ID,
		"assignee_id": task.AssignedUserID,
	})
	if _, err := s.notifier.NotifyAssignment(ctx, task.AssignedUserID, task.Title, task.ID); err != nil {
		log.WithError(err).Error("task created but assignment notification failed")
	}
	s.events.Publish(ctx, task.AssignedUserID, realtime.Event{Type: realtime.EventTaskCreated, TaskID: task.ID})

	log.Info("task created")
	return &task, nil
}

// snapshotName prefers an explicitly supplied name, then the user's current
// full name, then fallback.
func (s *TaskService) snapshotName(ctx context.Context, userID, supplied, fallback string) string {
	if name := strings.TrimSpace(supplied); name != "" {
		return name
	}
	if s.users != nil {
		if u, err := s.users.FindByID(ctx, userID); err == nil && u.FullName != "" {
			return u.FullName
		}
	}
	return fallback
}

// Update changes any subset of a task's fields. Admin only.
func (s *TaskService) Update(ctx context.Context, actor authz.Actor, id string, in UpdateTaskInput) (*models.Task, error) {
	if err := authz.Authorize(actor, authz.OpUpdateTask, ""); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperrors.Validation("Title must not be empty")
		}
		updates["title"] = title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, apperrors.Validation("Invalid status")
		}
		updates["status"] = *in.Status
	}
	if in.AssignedUserID != nil {
		assigneeID := strings.TrimSpace(*in.AssignedUserID)
		if assigneeID == "" {
			return nil, apperrors.Validation("Assigned user must not be empty")
		}
		updates["assigned_user_id"] = assigneeID
		name := ""
		if in.AssignedUserName != nil {
			name = *in.AssignedUserName
		}
		updates["assigned_user_name"] = s.snapshotName(ctx, assigneeID, name, "")
	} else if in.AssignedUserName != nil {
		updates["assigned_user_name"] = strings.TrimSpace(*in.AssignedUserName)
	}

	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	previousAssignee := task.AssignedUserID

	now := s.now().UTC()
	updates["updated_at"] = now
	if err := s.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, apperrors.Unexpected("Error updating task", err)
	}

	task, err = s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	evt := realtime.Event{Type: realtime.EventTaskUpdated, TaskID: task.ID}
	s.events.Publish(ctx, task.AssignedUserID, evt)
	if previousAssignee != task.AssignedUserID {
		s.events.Publish(ctx, previousAssignee, evt)
	}
	return task, nil
}

// UpdateStatus changes only the status. Members may only touch their own
// tasks.
func (s *TaskService) UpdateStatus(ctx context.Context, actor authz.Actor, id string, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, apperrors.Validation("Invalid status")
	}
	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(actor, authz.OpUpdateTaskStatus, task.AssignedUserID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(map[string]any{
		"status":     status,
		"updated_at": now,
	}).Error; err != nil {
		return nil, apperrors.Unexpected("Error updating status", err)
	}
	task.Status = status
	task.UpdatedAt = &now

	s.events.Publish(ctx, task.AssignedUserID, realtime.Event{Type: realtime.EventTaskStatusChanged, TaskID: task.ID})
	return task, nil
}

// Delete removes a task. Deleting an id that does not exist is NotFound.
// Notifications that reference the task are left in place.
func (s *TaskService) Delete(ctx context.Context, actor authz.Actor, id string) error {
	if err := authz.Authorize(actor, authz.OpDeleteTask, ""); err != nil {
		return err
	}
	task, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if res.Error != nil {
		return apperrors.Unexpected("Error deleting task", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("Task not found")
	}

	s.events.Publish(ctx, task.AssignedUserID, realtime.Event{Type: realtime.EventTaskDeleted, TaskID: task.ID})
	return nil
}

// Stats counts the actor's visible tasks by status. The counts come from a
// single statement, so they describe one snapshot.
func (s *TaskService) Stats(ctx context.Context, actor authz.Actor) (*models.TaskStats, error) {
	if err := authz.Authorize(actor, authz.OpListTasks, ""); err != nil {
		return nil, err
	}

	type row struct {
		Status models.TaskStatus
		Count  int64
	}
	var rows []row
	if err := s.scoped(ctx, actor).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Unexpected("Error fetching stats", err)
	}

	stats := &models.TaskStats{}
	for _, r := range rows {
		switch r.Status {
		case models.StatusPending:
			stats.Pending = r.Count
		case models.StatusInProgress:
			stats.InProgress = r.Count
		case models.StatusCompleted:
			stats.Completed = r.Count
		}
	}
	stats.Total = stats.Pending + stats.InProgress + stats.Completed
	return stats, nil
}
