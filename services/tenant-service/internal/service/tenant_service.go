package service

import (
	"context"
	"errors"
	"strings"

	"github.com/slotwise/tenant-service/internal/models"
	"github.com/slotwise/tenant-service/internal/repository"
	"github.com/slotwise/tenant-service/pkg/events"
	"github.com/slotwise/tenant-service/pkg/logger"
)

var (
	ErrDomainTaken    = errors.New("a tenant with this domain already exists")
	ErrInvalidDomain  = errors.New("domain is invalid")
	ErrTenantNotFound = repository.ErrTenantNotFound
)

// TenantService implements tenant CRUD and its embedded settings, per
// spec.md §4.1.
type TenantService struct {
	repo      repository.TenantRepository
	cache     *repository.SettingsCache
	publisher events.Publisher
	logger    logger.Logger
}

// NewTenantService creates a new tenant service.
func NewTenantService(repo repository.TenantRepository, cache *repository.SettingsCache, publisher events.Publisher, logger logger.Logger) *TenantService {
	return &TenantService{repo: repo, cache: cache, publisher: publisher, logger: logger}
}

// Create creates a new tenant with default settings.
func (s *TenantService) Create(tenant *models.Tenant) error {
	if strings.TrimSpace(tenant.Domain) == "" {
		return ErrInvalidDomain
	}
	if tenant.Plan == "" {
		tenant.Plan = "basico"
	}
	tenant.IsActive = true

	if err := s.repo.Create(tenant); err != nil {
		if isUniqueViolation(err) {
			return ErrDomainTaken
		}
		return err
	}
	return nil
}

// GetByID returns a tenant by id.
func (s *TenantService) GetByID(id string) (*models.Tenant, error) {
	return s.repo.GetByID(id)
}

// List returns a page of tenants.
func (s *TenantService) List(limit, offset int) ([]models.Tenant, int64, error) {
	return s.repo.List(limit, offset)
}

// Update persists changes to a tenant's top-level fields.
func (s *TenantService) Update(tenant *models.Tenant) error {
	return s.repo.Update(tenant)
}

// Delete soft-deletes a tenant and publishes tenant.deleted so every
// dependent service can cascade its owned entities.
func (s *TenantService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, id)

	if err := s.publisher.Publish(events.TenantDeleted, id, map[string]string{"tenant_id": id}); err != nil {
		s.logger.Error("failed to publish tenant.deleted", "tenant_id", id, "error", err)
	}
	return nil
}

// GetSettings returns a tenant's OrganizationSettings, cache-first.
func (s *TenantService) GetSettings(ctx context.Context, tenantID string) (*models.OrganizationSettings, error) {
	if cached, _ := s.cache.Get(ctx, tenantID); cached != nil {
		return cached, nil
	}

	tenant, err := s.repo.GetByID(tenantID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, tenantID, tenant.Settings)
	return &tenant.Settings, nil
}

// UpdateSettings replaces a tenant's OrganizationSettings and invalidates
// its cache entry, per spec.md §4.1.
func (s *TenantService) UpdateSettings(ctx context.Context, tenantID string, settings models.OrganizationSettings) (*models.OrganizationSettings, error) {
	tenant, err := s.repo.GetByID(tenantID)
	if err != nil {
		return nil, err
	}
	tenant.Settings = settings
	if err := s.repo.Update(tenant); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, tenantID)
	return &tenant.Settings, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "duplicate key")
}
