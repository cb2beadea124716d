package service

import (
	"context"
	"fmt"

	"github.com/slotwise/resource-service/internal/client"
	"github.com/slotwise/resource-service/internal/models"
	"github.com/slotwise/resource-service/internal/repository"
	"github.com/slotwise/resource-service/pkg/logger"
)

// TenantSettingsClient fetches a tenant's OrganizationSettings.
// internal/client.TenantClient implements this over HTTP.
type TenantSettingsClient interface {
	GetSettings(ctx context.Context, tenantID string) (*models.OrganizationSettings, error)
}

// SettingsService resolves a tenant's OrganizationSettings through the
// cache-with-fallback chain of spec.md §9: local cache first, then
// tenant-service over HTTP, populating the cache on the way back.
type SettingsService struct {
	cache  *repository.SettingsCache
	tenant TenantSettingsClient
	logger logger.Logger
}

// NewSettingsService creates a new settings resolver.
func NewSettingsService(cache *repository.SettingsCache, tenant TenantSettingsClient, logger logger.Logger) *SettingsService {
	return &SettingsService{cache: cache, tenant: tenant, logger: logger}
}

// ErrSettingsUnavailable is returned when neither the cache nor
// tenant-service can supply the tenant's settings.
var ErrSettingsUnavailable = fmt.Errorf("tenant settings unavailable")

// Resolve returns the tenant's current OrganizationSettings.
func (s *SettingsService) Resolve(ctx context.Context, tenantID string) (*models.OrganizationSettings, error) {
	if cached, err := s.cache.Get(ctx, tenantID); err == nil && cached != nil {
		return cached, nil
	}

	settings, err := s.tenant.GetSettings(ctx, tenantID)
	if err != nil {
		if err == client.ErrTenantNotFound {
			return nil, client.ErrTenantNotFound
		}
		s.logger.Error("tenant-service unreachable and no cached settings", "tenantId", tenantID, "error", err)
		return nil, ErrSettingsUnavailable
	}

	s.cache.Set(ctx, tenantID, *settings)
	return settings, nil
}

// Invalidate drops the cached settings for tenantID, for use by the
// tenant.updated cascade consumer once one exists.
func (s *SettingsService) Invalidate(ctx context.Context, tenantID string) {
	s.cache.Invalidate(ctx, tenantID)
}
