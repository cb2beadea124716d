package service

import (
	"errors"
	"strings"

	"github.com/slotwise/tenant-service/internal/models"
	"github.com/slotwise/tenant-service/internal/repository"
	"github.com/slotwise/tenant-service/pkg/logger"
)

var ErrInvalidWebhookURL = errors.New("webhook url must be https:// or http://localhost")

// WebhookService implements CRUD for a tenant's webhook registry.
type WebhookService struct {
	repo   repository.WebhookRepository
	logger logger.Logger
}

// NewWebhookService creates a new webhook service.
func NewWebhookService(repo repository.WebhookRepository, logger logger.Logger) *WebhookService {
	return &WebhookService{repo: repo, logger: logger}
}

// Create registers a new webhook for a tenant, per spec.md §3's URL scheme rule.
func (s *WebhookService) Create(webhook *models.Webhook) error {
	if !isAllowedWebhookURL(webhook.URL) {
		return ErrInvalidWebhookURL
	}
	webhook.IsActive = true
	return s.repo.Create(webhook)
}

// GetByID returns a tenant-scoped webhook by id.
func (s *WebhookService) GetByID(tenantID, id string) (*models.Webhook, error) {
	return s.repo.GetByID(tenantID, id)
}

// ListByTenant returns every webhook registered for a tenant.
func (s *WebhookService) ListByTenant(tenantID string) ([]models.Webhook, error) {
	return s.repo.ListByTenant(tenantID)
}

// Update persists changes to an existing webhook.
func (s *WebhookService) Update(webhook *models.Webhook) error {
	if !isAllowedWebhookURL(webhook.URL) {
		return ErrInvalidWebhookURL
	}
	return s.repo.Update(webhook)
}

// Delete removes a tenant-scoped webhook.
func (s *WebhookService) Delete(tenantID, id string) error {
	return s.repo.Delete(tenantID, id)
}

func isAllowedWebhookURL(url string) bool {
	return strings.HasPrefix(url, "https://") || strings.HasPrefix(url, "http://localhost")
}
