package repository

import (
	"errors"
	"fmt"

	"github.com/slotwise/resource-service/internal/models"
	"gorm.io/gorm"
)

// ResourceRepository defines data operations for resources. Every query
// except GetByID is scoped by tenant_id.
type ResourceRepository interface {
	Create(resource *models.Resource) error
	GetByTenantAndID(tenantID, id string) (*models.Resource, error)
	GetByID(id string) (*models.Resource, error)
	Update(resource *models.Resource) error
	Delete(tenantID, id string) error
	DeleteByTenant(tenantID string) (int64, error)
	List(tenantID string, categoryID string, limit, offset int) ([]*models.Resource, int64, error)
}

type resourceRepository struct {
	db *gorm.DB
}

// NewResourceRepository creates a new resource repository.
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) Create(resource *models.Resource) error {
	if err := r.db.Create(resource).Error; err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}
	return nil
}

func (r *resourceRepository) GetByTenantAndID(tenantID, id string) (*models.Resource, error) {
	var resource models.Resource
	if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&resource).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return &resource, nil
}

// GetByID returns a resource regardless of tenant, for internal
// service-to-service lookups (the /internal/resources/{id} view that
// booking-service's admission engine fetches).
func (r *resourceRepository) GetByID(id string) (*models.Resource, error) {
	var resource models.Resource
	if err := r.db.Where("id = ?", id).First(&resource).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}
	return &resource, nil
}

func (r *resourceRepository) Update(resource *models.Resource) error {
	if err := r.db.Save(resource).Error; err != nil {
		return fmt.Errorf("failed to update resource: %w", err)
	}
	return nil
}

func (r *resourceRepository) Delete(tenantID, id string) error {
	result := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.Resource{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete resource: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrResourceNotFound
	}
	return nil
}

// DeleteByTenant hard-deletes every resource owned by tenantID, for the
// tenant.deleted cascade.
func (r *resourceRepository) DeleteByTenant(tenantID string) (int64, error) {
	result := r.db.Unscoped().Where("tenant_id = ?", tenantID).Delete(&models.Resource{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete resources for tenant: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *resourceRepository) List(tenantID, categoryID string, limit, offset int) ([]*models.Resource, int64, error) {
	var resources []*models.Resource
	var total int64

	query := r.db.Model(&models.Resource{}).Where("tenant_id = ?", tenantID)
	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count resources: %w", err)
	}

	listQuery := r.db.Where("tenant_id = ?", tenantID)
	if categoryID != "" {
		listQuery = listQuery.Where("category_id = ?", categoryID)
	}
	if err := listQuery.Order("created_at desc").Limit(limit).Offset(offset).Find(&resources).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list resources: %w", err)
	}

	return resources, total, nil
}

var ErrResourceNotFound = errors.New("resource not found")
