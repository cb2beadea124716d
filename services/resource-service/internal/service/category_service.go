package service

import (
	"fmt"

	"github.com/slotwise/resource-service/internal/models"
	"github.com/slotwise/resource-service/internal/repository"
	"github.com/slotwise/resource-service/pkg/logger"
)

// CategoryService implements tenant-scoped CRUD on resource categories.
type CategoryService struct {
	repo   repository.CategoryRepository
	logger logger.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(repo repository.CategoryRepository, logger logger.Logger) *CategoryService {
	return &CategoryService{repo: repo, logger: logger}
}

// CreateCategoryRequest is the input for creating a category.
type CreateCategoryRequest struct {
	TenantID         string
	Name             string
	Description      *string
	Type             models.CategoryType
	Icon             *string
	Color            *string
	CategoryMetadata models.CategoryMetadata
}

// Create validates the category type and persists a new category.
func (s *CategoryService) Create(req CreateCategoryRequest) (*models.Category, error) {
	if !req.Type.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCategoryType, req.Type)
	}

	category := &models.Category{
		TenantID:         req.TenantID,
		Name:             req.Name,
		Description:      req.Description,
		Type:             req.Type,
		Icon:             req.Icon,
		Color:            req.Color,
		IsActive:         true,
		CategoryMetadata: req.CategoryMetadata,
	}
	if err := s.repo.Create(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Get returns a tenant's category by ID.
func (s *CategoryService) Get(tenantID, id string) (*models.Category, error) {
	return s.repo.GetByTenantAndID(tenantID, id)
}

// List returns a page of a tenant's categories.
func (s *CategoryService) List(tenantID string, limit, offset int) ([]*models.Category, int64, error) {
	return s.repo.List(tenantID, limit, offset)
}

// UpdateCategoryRequest is the input for updating a category. Nil fields
// are left unchanged.
type UpdateCategoryRequest struct {
	Name             *string
	Description      *string
	Icon             *string
	Color            *string
	IsActive         *bool
	CategoryMetadata models.CategoryMetadata
}

// Update applies a partial update to a tenant's category.
func (s *CategoryService) Update(tenantID, id string, req UpdateCategoryRequest) (*models.Category, error) {
	category, err := s.repo.GetByTenantAndID(tenantID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = req.Description
	}
	if req.Icon != nil {
		category.Icon = req.Icon
	}
	if req.Color != nil {
		category.Color = req.Color
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if req.CategoryMetadata != nil {
		category.CategoryMetadata = req.CategoryMetadata
	}

	if err := s.repo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a tenant's category.
func (s *CategoryService) Delete(tenantID, id string) error {
	return s.repo.Delete(tenantID, id)
}

// ErrInvalidCategoryType is returned when a category's type is not one of
// spec.md §3's enumerated values.
var ErrInvalidCategoryType = fmt.Errorf("invalid category type")
