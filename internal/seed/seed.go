// Package seed resets a database to a known demo dataset.
package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"task-assignment-api/internal/auth"
	"task-assignment-api/internal/models"
	"task-assignment-api/internal/taskid"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AdminEmail     = "sahil.l@admin.com"
	AdminPassword  = "Sahil@123"
	MemberPassword = "User@123"
	adminName      = "Sahil Admin"
)

var memberNames = []string{
	"Rahul Sharma",
	"Priya Patel",
	"Amit Verma",
	"Sneha Gupta",
	"Vikram Singh",
}

var sampleTasks = []struct{ title, description string }{
	{"Market Research", "Analyze competitor pricing"},
	{"UI Design", "Create mocks for mobile app"},
	{"Backend API", "Implement user auth"},
	{"QA Testing", "Bug hunting in staging"},
	{"Client Meeting", "Discuss project roadmap"},
	{"Documentation", "Write technical specs"},
	{"Team Building", "Organize Friday lunch"},
	{"Bug Fixes", "Resolve critical issue #404"},
	{"Security Audit", "Check for JWT vulnerabilities"},
	{"Optimization", "Improve page load speed"},
}

var statusCycle = []models.TaskStatus{models.StatusPending, models.StatusInProgress, models.StatusCompleted}

// Result lists what was written.
type Result struct {
	Admin   models.User
	Members []models.User
	Tasks   []models.Task
}

// memberEmail turns "Rahul Sharma" into rahul.sharma@taskmanager.com.
func memberEmail(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", ".") + "@taskmanager.com"
}

// Run wipes users, tasks, notifications and the task counter, then writes
// one admin, five members, two tasks per member and sets the counter to the
// number of tasks written. Everything happens in one transaction.
func Run(ctx context.Context, db *gorm.DB) (*Result, error) {
	adminHash, err := auth.HashPassword(AdminPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing admin password: %w", err)
	}
	memberHash, err := auth.HashPassword(MemberPassword)
	if err != nil {
		return nil, fmt.Errorf("hashing member password: %w", err)
	}

	res := &Result{}
	now := time.Now().UTC()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Notification{}, &models.Task{}, &models.User{}, &models.TaskCounter{}} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return fmt.Errorf("clearing %T: %w", model, err)
			}
		}

		res.Admin = models.User{
			ID:           uuid.NewString(),
			FullName:     adminName,
			Email:        AdminEmail,
			PasswordHash: adminHash,
			Role:         models.RoleAdmin,
			CreatedAt:    now,
		}
		if err := tx.Create(&res.Admin).Error; err != nil {
			return fmt.Errorf("creating admin: %w", err)
		}

		for _, name := range memberNames {
			member := models.User{
				ID:           uuid.NewString(),
				FullName:     name,
				Email:        memberEmail(name),
				PasswordHash: memberHash,
				Role:         models.RoleMember,
				CreatedAt:    now,
			}
			if err := tx.Create(&member).Error; err != nil {
				return fmt.Errorf("creating member %s: %w", member.Email, err)
			}
			res.Members = append(res.Members, member)
		}

		for i, sample := range sampleTasks {
			assignee := res.Members[i%len(res.Members)]
			task := models.Task{
				ID:               uuid.NewString(),
				TaskID:           taskid.Format(int64(i + 1)),
				Title:            sample.title,
				Description:      sample.description,
				Status:           statusCycle[i%len(statusCycle)],
				AssignedUserID:   assignee.ID,
				AssignedUserName: assignee.FullName,
				AssignedByUserID: res.Admin.ID,
				AssignedByName:   res.Admin.FullName,
				CreatedAt:        now.Add(time.Duration(i) * time.Second),
			}
			if err := tx.Create(&task).Error; err != nil {
				return fmt.Errorf("creating task %s: %w", task.TaskID, err)
			}
			res.Tasks = append(res.Tasks, task)
		}

		counter := models.TaskCounter{Name: models.TaskCounterKey, LastTaskNumber: int64(len(sampleTasks))}
		if err := tx.Create(&counter).Error; err != nil {
			return fmt.Errorf("initialising task counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
