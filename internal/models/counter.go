package models

// TaskCounterKey is the well-known name of the task counter row.
const TaskCounterKey = "tasks"

// TaskCounter is the singleton source of sequential task numbers.
type TaskCounter struct {
	Name           string `gorm:"primaryKey"`
	LastTaskNumber int64  `gorm:"column:last_task_number;not null"`
}

// TableName specifies the table name for TaskCounter Model
func (TaskCounter) TableName() string {
	return "task_counters"
}
