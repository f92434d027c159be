package models

import "time"

// Notification is an inbox entry owned by its recipient.
type Notification struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"userId" gorm:"column:user_id;index;not null"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	RelatedTaskID string    `json:"relatedTaskId" gorm:"column:related_task_id;index"`
	Read          bool      `json:"read" gorm:"column:is_read;not null"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TableName specifies the table name for Notification Model
func (Notification) TableName() string {
	return "notifications"
}

// All returns every model that takes part in migrations.
func All() []any {
	return []any{&User{}, &Task{}, &TaskCounter{}, &Notification{}}
}
