package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/slotwise/resource-service/internal/models"
	"github.com/slotwise/resource-service/internal/repository"
	"github.com/slotwise/resource-service/internal/service"
	"github.com/slotwise/resource-service/pkg/logger"
)

// CategoryHandler serves the /categories routes of spec.md §6.
type CategoryHandler struct {
	service *service.CategoryService
	logger  logger.Logger
}

// NewCategoryHandler creates a new category handler.
func NewCategoryHandler(service *service.CategoryService, logger logger.Logger) *CategoryHandler {
	return &CategoryHandler{service: service, logger: logger}
}

type createCategoryRequest struct {
	Name             string                  `json:"name" binding:"required"`
	Description      *string                 `json:"description"`
	Type             models.CategoryType     `json:"type" binding:"required"`
	Icon             *string                 `json:"icon"`
	Color            *string                 `json:"color"`
	CategoryMetadata models.CategoryMetadata `json:"category_metadata"`
}

// Create handles POST /categories/.
func (h *CategoryHandler) Create(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
		return
	}

	tenantID, _ := c.Get("tenant_id")
	category, err := h.service.Create(service.CreateCategoryRequest{
		TenantID:         tenantID.(string),
		Name:             req.Name,
		Description:      req.Description,
		Type:             req.Type,
		Icon:             req.Icon,
		Color:            req.Color,
		CategoryMetadata: req.CategoryMetadata,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCategoryType) {
			respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
			return
		}
		h.logger.Error("failed to create category", "error", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to create category", nil)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// List handles GET /categories/.
func (h *CategoryHandler) List(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	limit, offset := paginationParams(c)

	categories, total, err := h.service.List(tenantID.(string), limit, offset)
	if err != nil {
		h.logger.Error("failed to list categories", "error", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to list categories", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  categories,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// Get handles GET /categories/{id}.
func (h *CategoryHandler) Get(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	category, err := h.service.Get(tenantID.(string), c.Param("id"))
	if err != nil {
		h.handleNotFound(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

type updateCategoryRequest struct {
	Name             *string                 `json:"name"`
	Description      *string                 `json:"description"`
	Icon             *string                 `json:"icon"`
	Color            *string                 `json:"color"`
	IsActive         *bool                   `json:"is_active"`
	CategoryMetadata models.CategoryMetadata `json:"category_metadata"`
}

// Update handles PUT /categories/{id}.
func (h *CategoryHandler) Update(c *gin.Context) {
	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
		return
	}

	tenantID, _ := c.Get("tenant_id")
	category, err := h.service.Update(tenantID.(string), c.Param("id"), service.UpdateCategoryRequest{
		Name:             req.Name,
		Description:      req.Description,
		Icon:             req.Icon,
		Color:            req.Color,
		IsActive:         req.IsActive,
		CategoryMetadata: req.CategoryMetadata,
	})
	if err != nil {
		h.handleNotFound(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

// Delete handles DELETE /categories/{id}.
func (h *CategoryHandler) Delete(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	if err := h.service.Delete(tenantID.(string), c.Param("id")); err != nil {
		h.handleNotFound(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CategoryHandler) handleNotFound(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrCategoryNotFound) {
		respondError(c, http.StatusNotFound, "not_found", "Category not found", nil)
		return
	}
	h.logger.Error("category operation failed", "error", err)
	respondError(c, http.StatusInternalServerError, "internal_error", "Internal error", nil)
}
