package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/slotwise/resource-service/internal/client"
	"github.com/slotwise/resource-service/internal/models"
	"github.com/slotwise/resource-service/internal/repository"
	"github.com/slotwise/resource-service/internal/service"
	"github.com/slotwise/resource-service/pkg/logger"
)

// ResourceHandler serves the /resources routes of spec.md §6, including
// the availability projection endpoint.
type ResourceHandler struct {
	service      *service.ResourceService
	availability *service.AvailabilityService
	logger       logger.Logger
}

// NewResourceHandler creates a new resource handler.
func NewResourceHandler(service *service.ResourceService, availability *service.AvailabilityService, logger logger.Logger) *ResourceHandler {
	return &ResourceHandler{service: service, availability: availability, logger: logger}
}

type createResourceRequest struct {
	CategoryID           string                     `json:"category_id" binding:"required"`
	Name                 string                     `json:"name" binding:"required"`
	Description          *string                    `json:"description"`
	Capacity             *int                       `json:"capacity"`
	Location             *string                    `json:"location"`
	Attributes           models.Attributes          `json:"attributes"`
	AvailabilitySchedule models.AvailabilitySchedule `json:"availability_schedule"`
	ImageURL             *string                    `json:"image_url"`
}

// Create handles POST /resources/.
func (h *ResourceHandler) Create(c *gin.Context) {
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
		return
	}

	tenantID, _ := c.Get("tenant_id")
	resource, err := h.service.Create(service.CreateResourceRequest{
		TenantID:             tenantID.(string),
		CategoryID:           req.CategoryID,
		Name:                 req.Name,
		Description:          req.Description,
		Capacity:             req.Capacity,
		Location:             req.Location,
		Attributes:           req.Attributes,
		AvailabilitySchedule: req.AvailabilitySchedule,
		ImageURL:             req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
			return
		}
		h.logger.Error("failed to create resource", "error", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to create resource", nil)
		return
	}
	c.JSON(http.StatusCreated, resource)
}

// List handles GET /resources/?category_id=.
func (h *ResourceHandler) List(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	limit, offset := paginationParams(c)
	categoryID := c.Query("category_id")

	resources, total, err := h.service.List(tenantID.(string), categoryID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list resources", "error", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to list resources", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  resources,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// Get handles GET /resources/{id}.
func (h *ResourceHandler) Get(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	resource, err := h.service.Get(tenantID.(string), c.Param("id"))
	if err != nil {
		h.handleNotFound(c, err)
		return
	}
	c.JSON(http.StatusOK, resource)
}

type updateResourceRequest struct {
	Name                 *string                     `json:"name"`
	Description          *string                     `json:"description"`
	Status               *models.ResourceStatus      `json:"status"`
	Capacity             *int                        `json:"capacity"`
	Location             *string                     `json:"location"`
	Attributes           models.Attributes           `json:"attributes"`
	AvailabilitySchedule models.AvailabilitySchedule `json:"availability_schedule"`
	ImageURL             *string                     `json:"image_url"`
}

// Update handles PUT /resources/{id}.
func (h *ResourceHandler) Update(c *gin.Context) {
	var req updateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
		return
	}

	tenantID, _ := c.Get("tenant_id")
	resource, err := h.service.Update(tenantID.(string), c.Param("id"), service.UpdateResourceRequest{
		Name:                 req.Name,
		Description:          req.Description,
		Status:               req.Status,
		Capacity:             req.Capacity,
		Location:             req.Location,
		Attributes:           req.Attributes,
		AvailabilitySchedule: req.AvailabilitySchedule,
		ImageURL:             req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidResourceStatus) {
			respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
			return
		}
		h.handleNotFound(c, err)
		return
	}
	c.JSON(http.StatusOK, resource)
}

// Delete handles DELETE /resources/{id}.
func (h *ResourceHandler) Delete(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	if err := h.service.Delete(tenantID.(string), c.Param("id")); err != nil {
		h.handleNotFound(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetAvailability handles GET /resources/{id}/availability?data=YYYY-MM-DD.
func (h *ResourceHandler) GetAvailability(c *gin.Context) {
	date := c.Query("data")
	if date == "" {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", "data query parameter is required", nil)
		return
	}

	tenantID, _ := c.Get("tenant_id")
	availability, err := h.availability.GetAvailability(c.Request.Context(), tenantID.(string), c.Param("id"), date)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrResourceNotFound):
			respondError(c, http.StatusNotFound, "not_found", "Resource not found", nil)
		case errors.Is(err, client.ErrTenantNotFound):
			respondError(c, http.StatusNotFound, "not_found", "Tenant not found", nil)
		case errors.Is(err, service.ErrSettingsUnavailable):
			respondError(c, http.StatusServiceUnavailable, "dependency_unavailable", "Unable to resolve tenant settings", nil)
		default:
			h.logger.Error("failed to project availability", "error", err)
			respondError(c, http.StatusInternalServerError, "internal_error", "Failed to project availability", nil)
		}
		return
	}
	c.JSON(http.StatusOK, availability)
}

// GetInternal handles GET /internal/resources/{id}, an unauthenticated
// service-to-service lookup booking-service's admission engine uses to
// evaluate invariants I4a/I4b against the resource's availability schedule.
func (h *ResourceHandler) GetInternal(c *gin.Context) {
	resource, err := h.service.GetByID(c.Param("id"))
	if err != nil {
		h.handleNotFound(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":                    resource.ID,
		"tenant_id":             resource.TenantID,
		"status":                resource.Status,
		"availability_schedule": resource.AvailabilitySchedule,
	})
}

func (h *ResourceHandler) handleNotFound(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrResourceNotFound) {
		respondError(c, http.StatusNotFound, "not_found", "Resource not found", nil)
		return
	}
	h.logger.Error("resource operation failed", "error", err)
	respondError(c, http.StatusInternalServerError, "internal_error", "Internal error", nil)
}
