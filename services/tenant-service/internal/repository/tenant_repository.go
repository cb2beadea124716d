package repository

import (
	"errors"

	"github.com/slotwise/tenant-service/internal/models"
	"github.com/slotwise/tenant-service/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrTenantDomainExists  = errors.New("a tenant with this domain already exists")
)

// TenantRepository defines the interface for tenant data operations.
type TenantRepository interface {
	Create(tenant *models.Tenant) error
	GetByID(id string) (*models.Tenant, error)
	GetByDomain(domain string) (*models.Tenant, error)
	List(limit, offset int) ([]models.Tenant, int64, error)
	Update(tenant *models.Tenant) error
	Delete(id string) error
}

type tenantRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewTenantRepository creates a new tenant repository.
func NewTenantRepository(db *gorm.DB, logger logger.Logger) TenantRepository {
	return &tenantRepository{db: db, logger: logger}
}

// Create creates a new tenant record in the database.
func (r *tenantRepository) Create(tenant *models.Tenant) error {
	if err := r.db.Create(tenant).Error; err != nil {
		r.logger.Error("Error creating tenant", "error", err.Error(), "domain", tenant.Domain)
		return err
	}
	r.logger.Info("Tenant created successfully", "tenantId", tenant.ID, "domain", tenant.Domain)
	return nil
}

// GetByID retrieves a tenant by its ID.
func (r *tenantRepository) GetByID(id string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.First(&tenant, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		r.logger.Error("Error retrieving tenant by ID", "error", err.Error(), "tenantId", id)
		return nil, err
	}
	return &tenant, nil
}

// GetByDomain retrieves a tenant by its unique domain.
func (r *tenantRepository) GetByDomain(domain string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := r.db.First(&tenant, "domain = ?", domain).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		r.logger.Error("Error retrieving tenant by domain", "error", err.Error(), "domain", domain)
		return nil, err
	}
	return &tenant, nil
}

// List returns a page of tenants ordered by creation time.
func (r *tenantRepository) List(limit, offset int) ([]models.Tenant, int64, error) {
	var tenants []models.Tenant
	var total int64

	if err := r.db.Model(&models.Tenant{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := r.db.Order("created_at desc").Limit(limit).Offset(offset).Find(&tenants).Error; err != nil {
		r.logger.Error("Error listing tenants", "error", err.Error())
		return nil, 0, err
	}
	return tenants, total, nil
}

// Update updates an existing tenant record, including its embedded settings.
func (r *tenantRepository) Update(tenant *models.Tenant) error {
	if err := r.db.Save(tenant).Error; err != nil {
		r.logger.Error("Error updating tenant", "error", err.Error(), "tenantId", tenant.ID)
		return err
	}
	r.logger.Info("Tenant updated successfully", "tenantId", tenant.ID)
	return nil
}

// Delete soft-deletes a tenant. The owned-entity cascade is driven by the
// tenant.deleted event, not by this call.
func (r *tenantRepository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&models.Tenant{})
	if result.Error != nil {
		r.logger.Error("Error deleting tenant", "error", result.Error.Error(), "tenantId", id)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTenantNotFound
	}
	return nil
}
