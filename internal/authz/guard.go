// Package authz decides whether an actor may perform an operation. Decisions
// are pure functions of their inputs and never touch the store.
package authz

import (
	"task-assignment-api/internal/apperrors"
	"task-assignment-api/internal/models"
)

// Operation names a guarded action.
type Operation string

const (
	OpCreateTask       Operation = "task.create"
	OpUpdateTask       Operation = "task.update"
	OpDeleteTask       Operation = "task.delete"
	OpListTasks        Operation = "task.list"
	OpViewTask         Operation = "task.view"
	OpUpdateTaskStatus Operation = "task.update_status"
	OpListMembers      Operation = "user.list_members"
	OpReadNotification Operation = "notification.read"
)

// Actor is the authenticated caller.
type Actor struct {
	ID    string
	Email string
	Role  models.Role
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// adminOnly operations are never granted to members.
var adminOnly = map[Operation]bool{
	OpCreateTask:  true,
	OpUpdateTask:  true,
	OpDeleteTask:  true,
	OpListMembers: true,
}

// ownerScoped operations are granted to members on their own resources.
var ownerScoped = map[Operation]bool{
	OpListTasks:        true,
	OpViewTask:         true,
	OpUpdateTaskStatus: true,
}

// recipientOnly operations are granted to the owner alone, whatever the role.
var recipientOnly = map[Operation]bool{
	OpReadNotification: true,
}

// Authorize returns nil when actor may perform op on a resource owned by
// resourceOwnerID, and an authorization error otherwise. For OpListTasks an
// empty owner means the actor's own scope.
func Authorize(actor Actor, op Operation, resourceOwnerID string) error {
	if actor.ID == "" {
		return apperrors.Forbidden("Access denied")
	}
	if recipientOnly[op] {
		if _, known := models.ParseRole(string(actor.Role)); known && resourceOwnerID == actor.ID {
			return nil
		}
		return apperrors.Forbidden("Forbidden: Not your " + resourceNoun(op))
	}

	switch actor.Role {
	case models.RoleAdmin:
		if adminOnly[op] || ownerScoped[op] {
			return nil
		}
	case models.RoleMember:
		if adminOnly[op] {
			return apperrors.Forbidden("Access denied: Admin only")
		}
		if ownerScoped[op] {
			if resourceOwnerID == actor.ID || (op == OpListTasks && resourceOwnerID == "") {
				return nil
			}
			return apperrors.Forbidden("Forbidden: Not your " + resourceNoun(op))
		}
	}
	return apperrors.Forbidden("Access denied")
}

// Scope returns the assignee id a list or stats query must be restricted to.
// Admins get an empty string, meaning no restriction.
func Scope(actor Actor) string {
	if actor.IsAdmin() {
		return ""
	}
	return actor.ID
}

func resourceNoun(op Operation) string {
	if op == OpReadNotification {
		return "notification"
	}
	return "task"
}
