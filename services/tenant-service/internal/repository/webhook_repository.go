package repository

import (
	"errors"

	"github.com/slotwise/tenant-service/internal/models"
	"github.com/slotwise/tenant-service/pkg/logger"
	"gorm.io/gorm"
)

var ErrWebhookNotFound = errors.New("webhook not found")

// WebhookRepository defines the interface for webhook data operations.
type WebhookRepository interface {
	Create(webhook *models.Webhook) error
	GetByID(tenantID, id string) (*models.Webhook, error)
	ListByTenant(tenantID string) ([]models.Webhook, error)
	ListActiveForEvent(eventType string) ([]models.Webhook, error)
	Update(webhook *models.Webhook) error
	Delete(tenantID, id string) error
}

type webhookRepository struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewWebhookRepository creates a new webhook repository.
func NewWebhookRepository(db *gorm.DB, logger logger.Logger) WebhookRepository {
	return &webhookRepository{db: db, logger: logger}
}

func (r *webhookRepository) Create(webhook *models.Webhook) error {
	if err := r.db.Create(webhook).Error; err != nil {
		r.logger.Error("Error creating webhook", "error", err.Error(), "tenantId", webhook.TenantID)
		return err
	}
	return nil
}

func (r *webhookRepository) GetByID(tenantID, id string) (*models.Webhook, error) {
	var webhook models.Webhook
	if err := r.db.First(&webhook, "id = ? AND tenant_id = ?", id, tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWebhookNotFound
		}
		return nil, err
	}
	return &webhook, nil
}

func (r *webhookRepository) ListByTenant(tenantID string) ([]models.Webhook, error) {
	var webhooks []models.Webhook
	if err := r.db.Where("tenant_id = ?", tenantID).Find(&webhooks).Error; err != nil {
		r.logger.Error("Error listing webhooks", "error", err.Error(), "tenantId", tenantID)
		return nil, err
	}
	return webhooks, nil
}

// ListActiveForEvent returns every active webhook across all tenants whose
// events set contains eventType. The caller filters by the event's own
// tenant_id; this keeps the dispatcher from issuing one query per tenant.
func (r *webhookRepository) ListActiveForEvent(eventType string) ([]models.Webhook, error) {
	var webhooks []models.Webhook
	if err := r.db.Where("is_active = ? AND ? = ANY(events)", true, eventType).Find(&webhooks).Error; err != nil {
		r.logger.Error("Error listing webhooks for event", "error", err.Error(), "eventType", eventType)
		return nil, err
	}
	return webhooks, nil
}

func (r *webhookRepository) Update(webhook *models.Webhook) error {
	if err := r.db.Save(webhook).Error; err != nil {
		r.logger.Error("Error updating webhook", "error", err.Error(), "webhookId", webhook.ID)
		return err
	}
	return nil
}

func (r *webhookRepository) Delete(tenantID, id string) error {
	result := r.db.Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&models.Webhook{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrWebhookNotFound
	}
	return nil
}
