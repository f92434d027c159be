package cache

import (
	"context"
	"errors"
	"time"

	"task-assignment-api/internal/models"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
)

const membersKey = "members:list"

// RedisMemberCache stores the member directory as one JSON value with a TTL.
type RedisMemberCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisMemberCache returns a cache over client. A non-positive ttl
// disables storing.
func NewRedisMemberCache(client *redis.Client, ttl time.Duration) *RedisMemberCache {
	if ttl < 0 {
		ttl = 0
	}
	return &RedisMemberCache{redis: client, ttl: ttl}
}

func (c *RedisMemberCache) Members(ctx context.Context) ([]models.Member, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, membersKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// On redis errors fall back to the backing store without failing.
			_ = c.redis.Del(ctx, membersKey).Err()
		}
		return nil, false
	}
	var members []models.Member
	if err := sonic.Unmarshal(data, &members); err != nil {
		_ = c.redis.Del(ctx, membersKey).Err()
		return nil, false
	}
	return members, true
}

func (c *RedisMemberCache) StoreMembers(ctx context.Context, members []models.Member) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	if members == nil {
		members = []models.Member{}
	}
	data, err := sonic.Marshal(members)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, membersKey, data, c.ttl).Err()
}

func (c *RedisMemberCache) Invalidate(ctx context.Context) {
	if c.redis == nil {
		return
	}
	_ = c.redis.Del(ctx, membersKey).Err()
}
