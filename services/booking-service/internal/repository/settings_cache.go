package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/slotwise/booking-service/internal/models"
	"github.com/slotwise/booking-service/pkg/logger"
)

// SettingsCache caches OrganizationSettings fetched from tenant-service
// under settings:tenant:<id>. A nil client or any Redis error degrades to
// a cache miss; callers always fall through to the tenant-service client.
type SettingsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewSettingsCache creates a new settings cache. client may be nil.
func NewSettingsCache(client *redis.Client, ttl time.Duration, logger logger.Logger) *SettingsCache {
	return &SettingsCache{client: client, ttl: ttl, logger: logger}
}

func settingsCacheKey(tenantID string) string {
	return fmt.Sprintf("settings:tenant:%s", tenantID)
}

// Get returns the cached settings, or (nil, nil) on a miss or degraded cache.
func (c *SettingsCache) Get(ctx context.Context, tenantID string) (*models.OrganizationSettings, error) {
	if c.client == nil {
		return nil, nil
	}
	data, err := c.client.Get(ctx, settingsCacheKey(tenantID)).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("settings cache read failed, falling through", "tenantId", tenantID, "error", err)
		}
		return nil, nil
	}
	var settings models.OrganizationSettings
	if err := json.Unmarshal([]byte(data), &settings); err != nil {
		c.logger.Warn("settings cache payload corrupt, falling through", "tenantId", tenantID, "error", err)
		return nil, nil
	}
	return &settings, nil
}

// Set stores settings with the configured TTL. Failures are logged, never returned.
func (c *SettingsCache) Set(ctx context.Context, tenantID string, settings models.OrganizationSettings) {
	if c.client == nil {
		return
	}
	data, err := json.Marshal(settings)
	if err != nil {
		c.logger.Warn("failed to marshal settings for cache", "tenantId", tenantID, "error", err)
		return
	}
	if err := c.client.Set(ctx, settingsCacheKey(tenantID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("settings cache write failed", "tenantId", tenantID, "error", err)
	}
}

// Invalidate removes the cached entry.
func (c *SettingsCache) Invalidate(ctx context.Context, tenantID string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, settingsCacheKey(tenantID)).Err(); err != nil {
		c.logger.Warn("settings cache invalidation failed", "tenantId", tenantID, "error", err)
	}
}
