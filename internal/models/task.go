package models

import (
	"time"
)

// TaskStatus represents the status of a task
type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Task represents an assignment from an admin to a member.
// AssignedUserName and AssignedByName are snapshots taken at write time and
// are not refreshed when the user record changes.
type Task struct {
	ID               string     `json:"id" gorm:"primaryKey"`
	TaskID           string     `json:"taskId" gorm:"column:task_id;uniqueIndex;not null"`
	Title            string     `json:"title" gorm:"not null"`
	Description      string     `json:"description"`
	Status           TaskStatus `json:"status" gorm:"not null;index"`
	AssignedUserID   string     `json:"assignedUserId" gorm:"column:assigned_user_id;index"`
	AssignedUserName string     `json:"assignedUserName" gorm:"column:assigned_user_name"`
	AssignedByUserID string     `json:"assignedByUserId" gorm:"column:assigned_by_user_id"`
	AssignedByName   string     `json:"assignedBy" gorm:"column:assigned_by_name"`
	CreatedAt        time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt        *time.Time `json:"updatedAt,omitempty" gorm:"autoUpdateTime:false"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// TaskStats holds per-status counts over a scoped task set.
type TaskStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
}
