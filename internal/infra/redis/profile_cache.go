package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clientcard-platform/internal/domain/model"
	"clientcard-platform/internal/infra/metrics"
)

// ProfileCache memoizes user profile/role lookups with a fixed TTL.
// User writes invalidate through the user repo decorator; entries only
// touched by the bulk tier repair age out at the configured TTL.
type ProfileCache struct {
	cli RedisClient
	ttl time.Duration
}

func NewProfileCache(cli RedisClient, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProfileCache{cli: cli, ttl: ttl}
}

func (c *ProfileCache) key(userID string) string { return fmt.Sprintf("profile:%s", userID) }

func (c *ProfileCache) Get(ctx context.Context, userID string) (*model.User, bool) {
	val, err := c.cli.Get(ctx, c.key(userID))
	if err != nil {
		metrics.IncCacheRequest("profile", "miss")
		return nil, false
	}
	var u model.User
	if json.Unmarshal([]byte(val), &u) != nil {
		return nil, false
	}
	metrics.IncCacheRequest("profile", "hit")
	return &u, true
}

func (c *ProfileCache) Put(ctx context.Context, u *model.User) {
	if u == nil {
		return
	}
	bytes, err := json.Marshal(u)
	if err != nil {
		return
	}
	_ = c.cli.Set(ctx, c.key(u.ID), bytes, c.ttl)
}

func (c *ProfileCache) Invalidate(ctx context.Context, userID string) {
	_ = c.cli.Del(ctx, c.key(userID))
}
