package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/slotwise/resource-service/pkg/logger"
)

// Slot is a contiguous bookable sub-interval, cached and returned as UTC
// instants.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// AvailabilityCache caches projected slots under
// availability:resource:<id>:<YYYY-MM-DD>. Degrades to a cache miss on
// any Redis error, same as SettingsCache.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewAvailabilityCache creates a new availability cache. client may be nil.
func NewAvailabilityCache(client *redis.Client, ttl time.Duration, logger logger.Logger) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl, logger: logger}
}

func availabilityCacheKey(resourceID, date string) string {
	return fmt.Sprintf("availability:resource:%s:%s", resourceID, date)
}

// Get returns the cached slots, or (nil, false) on a miss or degraded cache.
func (c *AvailabilityCache) Get(ctx context.Context, resourceID, date string) ([]Slot, bool) {
	if c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, availabilityCacheKey(resourceID, date)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("availability cache read failed, falling through", "resourceId", resourceID, "date", date, "error", err)
		}
		return nil, false
	}
	var slots []Slot
	if err := json.Unmarshal([]byte(data), &slots); err != nil {
		c.logger.Warn("availability cache payload corrupt, falling through", "resourceId", resourceID, "date", date, "error", err)
		return nil, false
	}
	return slots, true
}

// Set stores the projected slots with the configured TTL.
func (c *AvailabilityCache) Set(ctx context.Context, resourceID, date string, slots []Slot) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(slots)
	if err != nil {
		c.logger.Warn("failed to marshal slots for cache", "resourceId", resourceID, "date", date, "error", err)
		return
	}
	if err := c.client.Set(ctx, availabilityCacheKey(resourceID, date), data, c.ttl).Err(); err != nil {
		c.logger.Warn("availability cache write failed", "resourceId", resourceID, "date", date, "error", err)
	}
}

// InvalidateResource drops every cached date for resourceID. Used by the
// booking.* and resource.* cascade consumers, which know the affected
// resource but not necessarily a single date.
func (c *AvailabilityCache) InvalidateResource(ctx context.Context, resourceID string) {
	if c.client == nil {
		return
	}
	pattern := fmt.Sprintf("availability:resource:%s:*", resourceID)
	keys, err := c.client.Keys(ctx, pattern).Result()
	if err != nil {
		c.logger.Warn("availability cache scan failed", "resourceId", resourceID, "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("availability cache invalidation failed", "resourceId", resourceID, "error", err)
	}
}

// InvalidateDate drops a single resource/date cache entry.
func (c *AvailabilityCache) InvalidateDate(ctx context.Context, resourceID, date string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, availabilityCacheKey(resourceID, date)).Err(); err != nil {
		c.logger.Warn("availability cache invalidation failed", "resourceId", resourceID, "date", date, "error", err)
	}
}
