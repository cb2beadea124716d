package service

import (
	"context"
	"fmt"

	"github.com/slotwise/resource-service/internal/models"
	"github.com/slotwise/resource-service/internal/repository"
	"github.com/slotwise/resource-service/pkg/events"
	"github.com/slotwise/resource-service/pkg/logger"
)

// ResourceService implements tenant-scoped CRUD on bookable resources.
type ResourceService struct {
	repo       repository.ResourceRepository
	categories repository.CategoryRepository
	availCache *repository.AvailabilityCache
	publisher  events.Publisher
	logger     logger.Logger
}

// NewResourceService creates a new resource service.
func NewResourceService(
	repo repository.ResourceRepository,
	categories repository.CategoryRepository,
	availCache *repository.AvailabilityCache,
	publisher events.Publisher,
	logger logger.Logger,
) *ResourceService {
	return &ResourceService{
		repo:       repo,
		categories: categories,
		availCache: availCache,
		publisher:  publisher,
		logger:     logger,
	}
}

// CreateResourceRequest is the input for creating a resource.
type CreateResourceRequest struct {
	TenantID             string
	CategoryID           string
	Name                 string
	Description          *string
	Capacity             *int
	Location             *string
	Attributes           models.Attributes
	AvailabilitySchedule models.AvailabilitySchedule
	ImageURL             *string
}

// Create validates the category belongs to the tenant, then persists a
// new resource in the "disponivel" status.
func (s *ResourceService) Create(req CreateResourceRequest) (*models.Resource, error) {
	if _, err := s.categories.GetByTenantAndID(req.TenantID, req.CategoryID); err != nil {
		return nil, fmt.Errorf("category %s does not belong to tenant: %w", req.CategoryID, err)
	}

	resource := &models.Resource{
		TenantID:             req.TenantID,
		CategoryID:           req.CategoryID,
		Name:                 req.Name,
		Description:          req.Description,
		Status:               models.ResourceStatusAvailable,
		Capacity:             req.Capacity,
		Location:             req.Location,
		Attributes:           req.Attributes,
		AvailabilitySchedule: req.AvailabilitySchedule,
		ImageURL:             req.ImageURL,
	}
	if err := s.repo.Create(resource); err != nil {
		return nil, err
	}
	return resource, nil
}

// Get returns a tenant's resource by ID.
func (s *ResourceService) Get(tenantID, id string) (*models.Resource, error) {
	return s.repo.GetByTenantAndID(tenantID, id)
}

// List returns a page of a tenant's resources, optionally filtered by category.
func (s *ResourceService) List(tenantID, categoryID string, limit, offset int) ([]*models.Resource, int64, error) {
	return s.repo.List(tenantID, categoryID, limit, offset)
}

// GetByID returns a resource regardless of tenant, for the internal
// cross-service lookup other services use to evaluate a booking request.
func (s *ResourceService) GetByID(id string) (*models.Resource, error) {
	return s.repo.GetByID(id)
}

// UpdateResourceRequest is the input for updating a resource. Nil fields
// are left unchanged.
type UpdateResourceRequest struct {
	Name                 *string
	Description          *string
	Status               *models.ResourceStatus
	Capacity             *int
	Location             *string
	Attributes           models.Attributes
	AvailabilitySchedule models.AvailabilitySchedule
	ImageURL             *string
}

// Update applies a partial update to a tenant's resource. A status or
// schedule change invalidates the resource's cached availability
// projections, since they were computed against the old state.
func (s *ResourceService) Update(tenantID, id string, req UpdateResourceRequest) (*models.Resource, error) {
	resource, err := s.repo.GetByTenantAndID(tenantID, id)
	if err != nil {
		return nil, err
	}

	invalidate := false

	if req.Name != nil {
		resource.Name = *req.Name
	}
	if req.Description != nil {
		resource.Description = req.Description
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidResourceStatus, *req.Status)
		}
		resource.Status = *req.Status
		invalidate = true
	}
	if req.Capacity != nil {
		resource.Capacity = req.Capacity
	}
	if req.Location != nil {
		resource.Location = req.Location
	}
	if req.Attributes != nil {
		resource.Attributes = req.Attributes
	}
	if req.AvailabilitySchedule != nil {
		resource.AvailabilitySchedule = req.AvailabilitySchedule
		invalidate = true
	}
	if req.ImageURL != nil {
		resource.ImageURL = req.ImageURL
	}

	if err := s.repo.Update(resource); err != nil {
		return nil, err
	}

	if invalidate {
		s.availCache.InvalidateResource(context.Background(), resource.ID)
	}
	return resource, nil
}

// Delete removes a tenant's resource and publishes resource.deleted so
// booking-service can cancel any bookings still pointing at it.
func (s *ResourceService) Delete(tenantID, id string) error {
	if err := s.repo.Delete(tenantID, id); err != nil {
		return err
	}
	if err := s.publisher.Publish(events.ResourceDeleted, tenantID, map[string]string{
		"resource_id": id,
		"tenant_id":   tenantID,
	}); err != nil {
		s.logger.Error("failed to publish resource.deleted", "resourceId", id, "error", err)
	}
	s.availCache.InvalidateResource(context.Background(), id)
	return nil
}

// ErrInvalidResourceStatus is returned when a resource's status is not
// one of spec.md §3's enumerated values.
var ErrInvalidResourceStatus = fmt.Errorf("invalid resource status")
