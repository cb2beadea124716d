package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/slotwise/tenant-service/internal/models"
	"github.com/slotwise/tenant-service/internal/repository"
	"github.com/slotwise/tenant-service/internal/service"
	"github.com/slotwise/tenant-service/pkg/logger"
)

// WebhookHandler serves the /tenants/{id}/webhooks routes of spec.md §6.
type WebhookHandler struct {
	service *service.WebhookService
	logger  logger.Logger
}

// NewWebhookHandler creates a new webhook handler.
func NewWebhookHandler(service *service.WebhookService, logger logger.Logger) *WebhookHandler {
	return &WebhookHandler{service: service, logger: logger}
}

type createWebhookRequest struct {
	URL    string   `json:"url" binding:"required"`
	Events []string `json:"events" binding:"required"`
	Secret *string  `json:"secret"`
}

// Create handles POST /tenants/{id}/webhooks.
func (h *WebhookHandler) Create(c *gin.Context) {
	var req createWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
		return
	}

	webhook := &models.Webhook{
		TenantID: c.Param("id"),
		URL:      req.URL,
		Events:   req.Events,
		Secret:   req.Secret,
	}

	if err := h.service.Create(webhook); err != nil {
		if errors.Is(err, service.ErrInvalidWebhookURL) {
			respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
			return
		}
		h.logger.Error("failed to create webhook", "error", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to create webhook", nil)
		return
	}

	c.JSON(http.StatusCreated, webhook)
}

// List handles GET /tenants/{id}/webhooks.
func (h *WebhookHandler) List(c *gin.Context) {
	webhooks, err := h.service.ListByTenant(c.Param("id"))
	if err != nil {
		h.logger.Error("failed to list webhooks", "error", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to list webhooks", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": webhooks})
}

// Get handles GET /tenants/{id}/webhooks/{webhookId}.
func (h *WebhookHandler) Get(c *gin.Context) {
	webhook, err := h.service.GetByID(c.Param("id"), c.Param("webhookId"))
	if err != nil {
		h.handleNotFound(c, err)
		return
	}
	c.JSON(http.StatusOK, webhook)
}

type updateWebhookRequest struct {
	URL      *string  `json:"url"`
	Events   []string `json:"events"`
	Secret   *string  `json:"secret"`
	IsActive *bool    `json:"is_active"`
}

// Update handles PUT /tenants/{id}/webhooks/{webhookId}.
func (h *WebhookHandler) Update(c *gin.Context) {
	webhook, err := h.service.GetByID(c.Param("id"), c.Param("webhookId"))
	if err != nil {
		h.handleNotFound(c, err)
		return
	}

	var req updateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
		return
	}

	if req.URL != nil {
		webhook.URL = *req.URL
	}
	if req.Events != nil {
		webhook.Events = req.Events
	}
	if req.Secret != nil {
		webhook.Secret = req.Secret
	}
	if req.IsActive != nil {
		webhook.IsActive = *req.IsActive
	}

	if err := h.service.Update(webhook); err != nil {
		if errors.Is(err, service.ErrInvalidWebhookURL) {
			respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
			return
		}
		h.logger.Error("failed to update webhook", "error", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to update webhook", nil)
		return
	}

	c.JSON(http.StatusOK, webhook)
}

// Delete handles DELETE /tenants/{id}/webhooks/{webhookId}.
func (h *WebhookHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("id"), c.Param("webhookId")); err != nil {
		h.handleNotFound(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WebhookHandler) handleNotFound(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrWebhookNotFound) {
		respondError(c, http.StatusNotFound, "not_found", "Webhook not found", nil)
		return
	}
	h.logger.Error("webhook operation failed", "error", err)
	respondError(c, http.StatusInternalServerError, "internal_error", "Internal error", nil)
}
