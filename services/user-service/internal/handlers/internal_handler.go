package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/slotwise/user-service/internal/service"
	"github.com/slotwise/user-service/pkg/logger"
)

// InternalHandler serves service-to-service routes that are not part of
// the public API surface. resource-service resolves a user's permissions
// through this endpoint rather than carrying the full permission set in
// the JWT.
type InternalHandler struct {
	service *service.UserService
	logger  logger.Logger
}

// NewInternalHandler creates a new internal handler.
func NewInternalHandler(service *service.UserService, logger logger.Logger) *InternalHandler {
	return &InternalHandler{service: service, logger: logger}
}

// GetUser handles GET /internal/users/{id}.
func (h *InternalHandler) GetUser(c *gin.Context) {
	user, err := h.service.Me(c.Param("id"))
	if err != nil {
		h.logger.Warn("internal user lookup failed", "user_id", c.Param("id"), "error", err)
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "not_found",
			"message": "User not found",
		})
		return
	}
	c.JSON(http.StatusOK, user)
}
