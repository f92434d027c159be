package handlers

import (
	"net/http"

	"task-assignment-api/internal/models"
	"task-assignment-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	AssignedUserID   string `json:"assignedUserId"`
	AssignedUserName string `json:"assignedUserName"`
}

// UpdateTaskRequest represents the request payload for updating a task
type UpdateTaskRequest struct {
	Title            *string            `json:"title"`
	Description      *string            `json:"description"`
	Status           *models.TaskStatus `json:"status"`
	AssignedUserID   *string            `json:"assignedUserId"`
	AssignedUserName *string            `json:"assignedUserName"`
}

// UpdateTaskStatusRequest represents a minimal request to change status
type UpdateTaskStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

// TaskHandler serves the /tasks routes.
type TaskHandler struct {
	tasks  *service.TaskService
	logger logrus.FieldLogger
}

func NewTaskHandler(tasks *service.TaskService, logger logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

/*
GetTasks handles GET /api/tasks
Returns the tasks visible to the caller, newest first.
Optional query param: status to filter by task status.
*/
func (h *TaskHandler) GetTasks(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	tasks, err := h.tasks.List(c.Request.Context(), actor, models.TaskStatus(c.Query("status")))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// GetTaskByID handles GET /api/tasks/:id
func (h *TaskHandler) GetTaskByID(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	task, err := h.tasks.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// GetStats handles GET /api/tasks/stats
func (h *TaskHandler) GetStats(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	stats, err := h.tasks.Stats(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

/*
CreateTask handles POST /api/tasks
Creates a Pending task with the next sequential taskId and notifies the assignee
*/
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	task, err := h.tasks.Create(c.Request.Context(), actor, service.CreateTaskInput{
		Title:            req.Title,
		Description:      req.Description,
		AssignedUserID:   req.AssignedUserID,
		AssignedUserName: req.AssignedUserName,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask handles PUT /api/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), actor, c.Param("id"), service.UpdateTaskInput{
		Title:            req.Title,
		Description:      req.Description,
		Status:           req.Status,
		AssignedUserID:   req.AssignedUserID,
		AssignedUserName: req.AssignedUserName,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    task,
	})
}

// UpdateTaskStatus handles PATCH /api/tasks/:id/status
// Members may only change the status of their own tasks
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req UpdateTaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}

	task, err := h.tasks.UpdateStatus(c.Request.Context(), actor, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Status updated",
		"task":    task,
	})
}

// DeleteTask handles DELETE /api/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	taskID := c.Param("id")
	if err := h.tasks.Delete(c.Request.Context(), actor, taskID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted",
		"id":      taskID,
	})
}
