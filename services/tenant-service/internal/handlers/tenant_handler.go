package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/slotwise/tenant-service/internal/models"
	"github.com/slotwise/tenant-service/internal/repository"
	"github.com/slotwise/tenant-service/internal/service"
	"github.com/slotwise/tenant-service/pkg/logger"
)

// TenantHandler serves the /tenants routes of spec.md §6.
type TenantHandler struct {
	service *service.TenantService
	logger  logger.Logger
}

// NewTenantHandler creates a new tenant handler.
func NewTenantHandler(service *service.TenantService, logger logger.Logger) *TenantHandler {
	return &TenantHandler{service: service, logger: logger}
}

type createTenantRequest struct {
	Name              string  `json:"name" binding:"required"`
	Domain            string  `json:"domain" binding:"required"`
	LogoURL           *string `json:"logo_url"`
	ThemePrimaryColor *string `json:"theme_primary_color"`
	Plan              string  `json:"plan"`
}

// Create handles POST /tenants/.
func (h *TenantHandler) Create(c *gin.Context) {
	var req createTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
		return
	}

	tenant := &models.Tenant{
		Name:              req.Name,
		Domain:            req.Domain,
		LogoURL:           req.LogoURL,
		ThemePrimaryColor: req.ThemePrimaryColor,
		Plan:              req.Plan,
	}

	if err := h.service.Create(tenant); err != nil {
		if errors.Is(err, service.ErrDomainTaken) {
			respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
			return
		}
		if errors.Is(err, service.ErrInvalidDomain) {
			respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
			return
		}
		h.logger.Error("failed to create tenant", "error", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to create tenant", nil)
		return
	}

	c.JSON(http.StatusCreated, tenant)
}

// List handles GET /tenants/.
func (h *TenantHandler) List(c *gin.Context) {
	limit, offset := paginationParams(c)
	tenants, total, err := h.service.List(limit, offset)
	if err != nil {
		h.logger.Error("failed to list tenants", "error", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to list tenants", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": tenants,
		"total": total,
		"limit": limit,
		"offset": offset,
	})
}

// Get handles GET /tenants/{id}.
func (h *TenantHandler) Get(c *gin.Context) {
	tenant, err := h.service.GetByID(c.Param("id"))
	if err != nil {
		h.handleNotFound(c, err)
		return
	}
	c.JSON(http.StatusOK, tenant)
}

type updateTenantRequest struct {
	Name              *string `json:"name"`
	LogoURL           *string `json:"logo_url"`
	ThemePrimaryColor *string `json:"theme_primary_color"`
	Plan              *string `json:"plan"`
	IsActive          *bool   `json:"is_active"`
}

// Update handles PUT /tenants/{id}.
func (h *TenantHandler) Update(c *gin.Context) {
	tenant, err := h.service.GetByID(c.Param("id"))
	if err != nil {
		h.handleNotFound(c, err)
		return
	}

	var req updateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
		return
	}

	if req.Name != nil {
		tenant.Name = *req.Name
	}
	if req.LogoURL != nil {
		tenant.LogoURL = req.LogoURL
	}
	if req.ThemePrimaryColor != nil {
		tenant.ThemePrimaryColor = req.ThemePrimaryColor
	}
	if req.Plan != nil {
		tenant.Plan = *req.Plan
	}
	if req.IsActive != nil {
		tenant.IsActive = *req.IsActive
	}

	if err := h.service.Update(tenant); err != nil {
		h.logger.Error("failed to update tenant", "error", err, "tenant_id", tenant.ID)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to update tenant", nil)
		return
	}

	c.JSON(http.StatusOK, tenant)
}

// Delete handles DELETE /tenants/{id}. It triggers the tenant.deleted cascade.
func (h *TenantHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleNotFound(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetSettings handles GET /tenants/{id}/settings.
func (h *TenantHandler) GetSettings(c *gin.Context) {
	settings, err := h.service.GetSettings(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleNotFound(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /tenants/{id}/settings.
func (h *TenantHandler) UpdateSettings(c *gin.Context) {
	var settings models.OrganizationSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
		return
	}

	updated, err := h.service.UpdateSettings(c.Request.Context(), c.Param("id"), settings)
	if err != nil {
		h.handleNotFound(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *TenantHandler) handleNotFound(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrTenantNotFound) {
		respondError(c, http.StatusNotFound, "not_found", "Tenant not found", nil)
		return
	}
	h.logger.Error("tenant operation failed", "error", err)
	respondError(c, http.StatusInternalServerError, "internal_error", "Internal error", nil)
}

func paginationParams(c *gin.Context) (limit, offset int) {
	limit = 50
	offset = 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

// respondError writes spec.md §6/§7's exact response shape.
func respondError(c *gin.Context, status int, errTag, message string, conflicts []gin.H) {
	body := gin.H{
		"success": false,
		"error":   errTag,
		"message": message,
	}
	if conflicts != nil {
		body["conflicts"] = conflicts
	}
	c.JSON(status, body)
}
