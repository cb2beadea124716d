package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/slotwise/tenant-service/internal/service"
	"github.com/slotwise/tenant-service/pkg/logger"
)

// InternalHandler serves service-to-service routes that are not part of
// the public API surface, per SPEC_FULL.md §4A — resource-service and
// booking-service resolve OrganizationSettings through this endpoint on
// their own cache miss.
type InternalHandler struct {
	service *service.TenantService
	logger  logger.Logger
}

// NewInternalHandler creates a new internal handler.
func NewInternalHandler(service *service.TenantService, logger logger.Logger) *InternalHandler {
	return &InternalHandler{service: service, logger: logger}
}

// GetSettings handles GET /internal/tenants/{id}/settings.
func (h *InternalHandler) GetSettings(c *gin.Context) {
	settings, err := h.service.GetSettings(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Warn("internal settings lookup failed", "tenant_id", c.Param("id"), "error", err)
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "not_found",
			"message": "Tenant not found",
		})
		return
	}
	c.JSON(http.StatusOK, settings)
}
