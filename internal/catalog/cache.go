package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/program-catalog/backend/internal/models"
)

const (
	cacheGenKey = "programs:listings:gen"
	cacheTTL    = time.Minute
)

// ListingCache caches program listings in Redis. Invalidation bumps a
// generation counter instead of deleting keys, so stale entries simply age
// out under their TTL.
type ListingCache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewListingCache creates a listing cache.
func NewListingCache(rdb *redis.Client, logger *zap.Logger) *ListingCache {
	return &ListingCache{rdb: rdb, logger: logger}
}

// Get returns the cached listing for the filter, if present.
func (c *ListingCache) Get(ctx context.Context, f ListFilter) ([]models.Program, bool) {
	key, err := c.key(ctx, f)
	if err != nil {
		return nil, false
	}
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var programs []models.Program
	if err := json.Unmarshal(data, &programs); err != nil {
		c.logger.Warn("corrupt listing cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return programs, true
}

// Set stores a listing for the filter. Failures are logged, not returned;
// the cache is best effort.
func (c *ListingCache) Set(ctx context.Context, f ListFilter, programs []models.Program) {
	key, err := c.key(ctx, f)
	if err != nil {
		return
	}
	data, err := json.Marshal(programs)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, cacheTTL).Err(); err != nil {
		c.logger.Warn("set listing cache entry", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops all cached listings by advancing the generation counter.
func (c *ListingCache) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, cacheGenKey).Err()
}

func (c *ListingCache) key(ctx context.Context, f ListFilter) (string, error) {
	gen, err := c.rdb.Get(ctx, cacheGenKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("programs:listings:%d:%s:%s", gen, f.Status, f.Category), nil
}
