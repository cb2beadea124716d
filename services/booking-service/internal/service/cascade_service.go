package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/slotwise/booking-service/internal/models"
	"github.com/slotwise/booking-service/internal/repository"
	"github.com/slotwise/booking-service/pkg/events"
	"github.com/slotwise/booking-service/pkg/logger"
)

// CascadeService consumes the deletion-events stream and keeps bookings
// consistent with resources, users, and tenants that no longer exist, per
// spec.md §4.4's "Consumed cascade events" section. Handlers are
// idempotent: re-running one against bookings already in their terminal
// state is a no-op.
type CascadeService struct {
	repo      repository.BookingRepository
	publisher events.Publisher
	logger    logger.Logger
}

// NewCascadeService creates a new cascade handler.
func NewCascadeService(repo repository.BookingRepository, publisher events.Publisher, logger logger.Logger) *CascadeService {
	return &CascadeService{repo: repo, publisher: publisher, logger: logger}
}

type resourceDeletedPayload struct {
	ResourceID string `json:"resource_id"`
	TenantID   string `json:"tenant_id"`
}

type userDeletedPayload struct {
	UserID   string `json:"user_id"`
	TenantID string `json:"tenant_id"`
}

type tenantDeletedPayload struct {
	TenantID string `json:"tenant_id"`
}

// HandleResourceDeleted cancels every active booking of a deleted resource,
// publishing one booking.cancelled per row.
func (s *CascadeService) HandleResourceDeleted(ctx context.Context, envelope events.Envelope) error {
	var payload resourceDeletedPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode resource.deleted payload: %w", err)
	}

	cancelled, err := s.repo.CancelByResource(payload.ResourceID)
	if err != nil {
		return fmt.Errorf("failed to cancel bookings for deleted resource: %w", err)
	}

	for _, b := range cancelled {
		s.publishCascadeCancellation(b, "resource_deleted")
	}
	s.logger.Info("cascaded resource.deleted", "resourceId", payload.ResourceID, "cancelled", len(cancelled))
	return nil
}

// HandleUserDeleted cancels every active booking of a deleted user.
func (s *CascadeService) HandleUserDeleted(ctx context.Context, envelope events.Envelope) error {
	var payload userDeletedPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode user.deleted payload: %w", err)
	}

	cancelled, err := s.repo.CancelByUser(payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to cancel bookings for deleted user: %w", err)
	}

	for _, b := range cancelled {
		s.publishCascadeCancellation(b, "user_deleted")
	}
	s.logger.Info("cascaded user.deleted", "userId", payload.UserID, "cancelled", len(cancelled))
	return nil
}

// HandleTenantDeleted hard-deletes every booking of a deleted tenant. No
// per-booking events are published for this cascade, per spec.md §4.4.
func (s *CascadeService) HandleTenantDeleted(ctx context.Context, envelope events.Envelope) error {
	var payload tenantDeletedPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		return fmt.Errorf("failed to decode tenant.deleted payload: %w", err)
	}

	deleted, err := s.repo.DeleteByTenant(payload.TenantID)
	if err != nil {
		return fmt.Errorf("failed to delete bookings for deleted tenant: %w", err)
	}
	s.logger.Info("cascaded tenant.deleted", "tenantId", payload.TenantID, "deleted", deleted)
	return nil
}

func (s *CascadeService) publishCascadeCancellation(b models.Booking, reason string) {
	err := s.publisher.Publish(events.BookingCancelled, b.TenantID, map[string]interface{}{
		"booking_id":   b.ID,
		"resource_id":  b.ResourceID,
		"reason":       reason,
		"cancelled_by": "system",
	})
	if err != nil {
		s.logger.Error("failed to publish cascade booking.cancelled", "bookingId", b.ID, "error", err)
	}
}
