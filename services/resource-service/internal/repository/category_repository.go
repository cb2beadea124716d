package repository

import (
	"errors"
	"fmt"

	"github.com/slotwise/resource-service/internal/models"
	"gorm.io/gorm"
)

// CategoryRepository defines data operations for categories. Every query
// is scoped by tenant_id.
type CategoryRepository interface {
	Create(category *models.Category) error
	GetByTenantAndID(tenantID, id string) (*models.Category, error)
	Update(category *models.Category) error
	Delete(tenantID, id string) error
	DeleteByTenant(tenantID string) (int64, error)
	List(tenantID string, limit, offset int) ([]*models.Category, int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(category *models.Category) error {
	if err := r.db.Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *categoryRepository) GetByTenantAndID(tenantID, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

func (r *categoryRepository) Update(category *models.Category) error {
	if err := r.db.Save(category).Error; err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

func (r *categoryRepository) Delete(tenantID, id string) error {
	result := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.Category{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// DeleteByTenant hard-deletes every category owned by tenantID, for the
// tenant.deleted cascade.
func (r *categoryRepository) DeleteByTenant(tenantID string) (int64, error) {
	result := r.db.Unscoped().Where("tenant_id = ?", tenantID).Delete(&models.Category{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete categories for tenant: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *categoryRepository) List(tenantID string, limit, offset int) ([]*models.Category, int64, error) {
	var categories []*models.Category
	var total int64

	query := r.db.Model(&models.Category{}).Where("tenant_id = ?", tenantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	if err := r.db.Where("tenant_id = ?", tenantID).
		Order("created_at desc").Limit(limit).Offset(offset).Find(&categories).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, total, nil
}

var ErrCategoryNotFound = errors.New("category not found")
