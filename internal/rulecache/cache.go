// Package rulecache provides a tenant-scoped Redis cache for pricing rule
// lookups. All methods tolerate a nil cache or nil client so stores can run
// without Redis in tests and single-node deployments.
package rulecache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backend-niaga/internal/tenant"
)

const keyPrefix = "rules:"

// Cache wraps Redis JSON helpers with a fixed TTL.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New constructs a rule cache. A nil client yields a no-op cache.
func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(tenantID, key string) string {
	return tenant.PrefixKey(tenantID, keyPrefix+key)
}

// Get unmarshals the cached payload into dst. It reports whether the key
// existed; decode failures surface as a miss with the error.
func (c *Cache) Get(ctx context.Context, tenantID, key string, dst any) (bool, error) {
	if c == nil || c.client == nil || key == "" {
		return false, nil
	}
	data, err := c.client.Get(ctx, c.key(tenantID, key)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

// Set serialises v as JSON and stores it with the configured TTL.
func (c *Cache) Set(ctx context.Context, tenantID, key string, v any) error {
	if c == nil || c.client == nil || key == "" {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(tenantID, key), data, c.ttl).Err()
}

// Invalidate removes the key for the tenant.
func (c *Cache) Invalidate(ctx context.Context, tenantID, key string) error {
	if c == nil || c.client == nil || key == "" {
		return nil
	}
	return c.client.Del(ctx, c.key(tenantID, key)).Err()
}
