package service

import (
	"context"
	"encoding/json"

	"github.com/slotwise/resource-service/pkg/events"
	"github.com/slotwise/resource-service/pkg/logger"
)

// CascadeService consumes the domain events resource-service reacts to:
// tenant.deleted hard-deletes owned categories and resources;
// booking.* and resource.* invalidate affected availability projections.
// Handlers are idempotent on (event_type, resource_id|tenant_id) per
// spec.md §6, since delivery is at-least-once.
type CascadeService struct {
	categories *CategoryService
	resources  *ResourceService
	availCache interface {
		InvalidateResource(ctx context.Context, resourceID string)
	}
	logger logger.Logger
}

// NewCascadeService creates a new cascade consumer service.
func NewCascadeService(categories *CategoryService, resources *ResourceService, availCache interface {
	InvalidateResource(ctx context.Context, resourceID string)
}, logger logger.Logger) *CascadeService {
	return &CascadeService{categories: categories, resources: resources, availCache: availCache, logger: logger}
}

// HandleTenantDeleted hard-deletes every category and resource owned by
// tenantID, the resource-service side of the tenant.deleted cascade.
func (s *CascadeService) HandleTenantDeleted(ctx context.Context, tenantID string) error {
	resourceCount, err := s.resources.repo.DeleteByTenant(tenantID)
	if err != nil {
		return err
	}
	categoryCount, err := s.categories.repo.DeleteByTenant(tenantID)
	if err != nil {
		return err
	}
	s.logger.Info("deleted categories and resources for cascaded tenant",
		"tenant_id", tenantID, "resources", resourceCount, "categories", categoryCount)
	return nil
}

// resourceScopedPayload is the subset of fields every booking.* and
// resource.* event payload this consumer needs carries.
type resourceScopedPayload struct {
	ResourceID string `json:"resource_id"`
}

// HandleResourceScopedEvent invalidates every cached availability
// projection of the resource named in envelope's payload. Used for
// booking.created, booking.updated, booking.cancelled, and
// resource.deleted: invalidating the whole resource (rather than just the
// affected date) is a safe superset of spec.md §6's cache-invalidation
// requirement.
func (s *CascadeService) HandleResourceScopedEvent(ctx context.Context, envelope events.Envelope) error {
	var payload resourceScopedPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		s.logger.Error("failed to decode event payload, dropping", "event_type", envelope.EventType, "error", err)
		return nil
	}
	if payload.ResourceID == "" {
		return nil
	}
	s.availCache.InvalidateResource(ctx, payload.ResourceID)
	return nil
}
