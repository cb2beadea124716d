package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/slotwise/resource-service/internal/database"
	"github.com/slotwise/resource-service/pkg/logger"
	"gorm.io/gorm"
)

// HealthHandler realizes spec.md §6's /health and /ready endpoints.
type HealthHandler struct {
	db     *gorm.DB
	redis  *redis.Client
	logger logger.Logger
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *gorm.DB, redis *redis.Client, logger logger.Logger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, logger: logger}
}

// Health always returns 200 — it reports the process is running, not that
// its dependencies are reachable.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"service":   "resource-service",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready returns 200 only when the database is reachable, 503 otherwise.
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := database.HealthCheck(h.db, nil); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"ready":     false,
			"error":     err.Error(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ready":     true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
