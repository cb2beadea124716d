package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/slotwise/user-service/internal/models"
	"github.com/slotwise/user-service/internal/repository"
	"github.com/slotwise/user-service/internal/service"
	"github.com/slotwise/user-service/pkg/logger"
)

// UserHandler serves the /users routes of spec.md §6.
type UserHandler struct {
	service *service.UserService
	logger  logger.Logger
}

// NewUserHandler creates a new user handler.
func NewUserHandler(service *service.UserService, logger logger.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

type registerRequest struct {
	TenantID   string  `json:"tenant_id" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	Email      string  `json:"email" binding:"required,email"`
	Password   string  `json:"password" binding:"required,min=8"`
	Phone      *string `json:"phone"`
	Department *string `json:"department"`
}

// Register handles POST /users/.
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
		return
	}

	user, err := h.service.Register(c.Request.Context(), service.RegisterRequest{
		TenantID:   req.TenantID,
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Phone:      req.Phone,
		Department: req.Department,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTenantNotFound):
			respondError(c, http.StatusUnprocessableEntity, "validation_error", "tenant_id does not refer to an existing tenant", nil)
		case errors.Is(err, service.ErrEmailTaken):
			respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
		default:
			h.logger.Error("failed to register user", "error", err)
			respondError(c, http.StatusInternalServerError, "internal_error", "Failed to register user", nil)
		}
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Login handles POST /users/login, a form-encoded email+password exchange.
func (h *UserHandler) Login(c *gin.Context) {
	tenantID := c.PostForm("tenant_id")
	email := c.PostForm("email")
	plainPassword := c.PostForm("password")

	if tenantID == "" || email == "" || plainPassword == "" {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", "tenant_id, email and password are required", nil)
		return
	}

	result, err := h.service.Login(tenantID, email, plainPassword)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
			return
		}
		if errors.Is(err, service.ErrAccountDisabled) {
			respondError(c, http.StatusForbidden, "account_disabled", "Account is disabled", nil)
			return
		}
		h.logger.Error("login failed", "error", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Login failed", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": result.AccessToken,
		"token_type":   result.TokenType,
	})
}

// Me handles GET /users/me.
func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := c.Get("user_id")
	user, err := h.service.Me(userID.(string))
	if err != nil {
		h.handleNotFound(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// List handles GET /users/?tenant_id=. Cross-tenant access is always deny
// regardless of role (spec.md §9), so the query param is only accepted
// when it matches the caller's own tenant_id claim.
func (h *UserHandler) List(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", "tenant_id is required", nil)
		return
	}

	claimTenantID, _ := c.Get("tenant_id")
	if tenantID != claimTenantID.(string) {
		respondError(c, http.StatusForbidden, "authorization_denied", "Not authorized for this tenant", nil)
		return
	}

	limit, offset := paginationParams(c)
	users, total, err := h.service.List(tenantID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "Failed to list users", nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":  users,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	user, err := h.service.GetByTenantAndID(tenantID.(string), c.Param("id"))
	if err != nil {
		h.handleNotFound(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateUserRequest struct {
	Name       *string            `json:"name"`
	Phone      *string            `json:"phone"`
	Department *string            `json:"department"`
	IsActive   *bool              `json:"is_active"`
	UserType   *models.UserType   `json:"user_type"`
	Permissions *models.Permissions `json:"permissions"`
}

// Update handles PUT /users/{id}.
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusUnprocessableEntity, "validation_error", err.Error(), nil)
		return
	}

	tenantID, _ := c.Get("tenant_id")
	user, err := h.service.Update(tenantID.(string), c.Param("id"), service.UpdateRequest{
		Name:        req.Name,
		Phone:       req.Phone,
		Department:  req.Department,
		IsActive:    req.IsActive,
		Permissions: req.Permissions,
		UserType:    req.UserType,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
			return
		}
		h.handleNotFound(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /users/{id}.
func (h *UserHandler) Delete(c *gin.Context) {
	tenantID, _ := c.Get("tenant_id")
	if err := h.service.Delete(tenantID.(string), c.Param("id")); err != nil {
		h.handleNotFound(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) handleNotFound(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrUserNotFound) {
		respondError(c, http.StatusNotFound, "not_found", "User not found", nil)
		return
	}
	h.logger.Error("user operation failed", "error", err)
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
