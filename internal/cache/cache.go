// Package cache holds read-through caches in front of the credential store.
package cache

import (
	"context"

	"task-assignment-api/internal/models"
)

// MemberCache caches the member directory. A miss is reported as ok=false;
// implementations never fail the caller.
type MemberCache interface {
	// Members returns the cached directory and whether it was present.
	Members(ctx context.Context) ([]models.Member, bool)

	// StoreMembers replaces the cached directory.
	StoreMembers(ctx context.Context, members []models.Member)

	// Invalidate drops the cached directory.
	Invalidate(ctx context.Context)
}

// Noop never caches anything.
type Noop struct{}

func (Noop) Members(context.Context) ([]models.Member, bool) { return nil, false }
func (Noop) StoreMembers(context.Context, []models.Member) {}
func (Noop) Invalidate(context.Context) {}

// Ensure implementations satisfy MemberCache at compile time.
var (
	_ MemberCache = Noop{}
	_ MemberCache = (*RedisMemberCache)(nil)
)
