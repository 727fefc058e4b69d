package categories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	treeCacheKeyActive = "inkwell:categories:tree:active"
	treeCacheKeyAll    = "inkwell:categories:tree:all"
)

// TreeCache keeps the materialized forest snapshot in redis. Nil-safe: a
// nil cache or client degrades to recomputing on every call.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTreeCache constructs a TreeCache.
func NewTreeCache(client *redis.Client, ttl time.Duration) *TreeCache {
	return &TreeCache{client: client, ttl: ttl}
}

func treeCacheKey(activeOnly bool) string {
	if activeOnly {
		return treeCacheKeyActive
	}
	return treeCacheKeyAll
}

// Get returns the cached forest, if present.
func (c *TreeCache) Get(ctx context.Context, activeOnly bool) ([]*TreeNode, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, treeCacheKey(activeOnly)).Bytes()
	if err != nil {
		return nil, false
	}
	var tree []*TreeNode
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, false
	}
	return tree, true
}

// Set stores the forest snapshot. Failures are ignored; the cache is an
// optimization, not a source of truth.
func (c *TreeCache) Set(ctx context.Context, activeOnly bool, tree []*TreeNode) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(tree)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, treeCacheKey(activeOnly), raw, c.ttl).Err()
}

// Invalidate drops both snapshots after any category write.
func (c *TreeCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	_ = c.client.Del(ctx, treeCacheKeyActive, treeCacheKeyAll).Err()
}
