package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/slotwise/booking-service/pkg/jwt"
	"github.com/slotwise/booking-service/pkg/logger"
)

// AuthMiddleware verifies the shared-secret access token minted by
// user-service and authorizes tenant-scoped requests against its claims.
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	logger     logger.Logger
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(jwtManager *jwt.Manager, logger logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager, logger: logger}
}

// RequireAuth validates the bearer token and populates the request context
// with sub, tenant_id and user_type from its claims.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := jwt.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			m.respondUnauthorized(c, "missing_token", "Authorization token required")
			return
		}

		claims, err := m.jwtManager.ValidateToken(token)
		if err != nil {
			m.handleTokenError(c, err)
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("tenant_id", claims.TenantID)
		c.Set("user_type", claims.UserType)
		c.Next()
	}
}

// RequireAdmin enforces user_type == admin, for the admin-only booking
// delete route.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userType, exists := c.Get("user_type")
		if !exists || userType.(string) != "admin" {
			m.respondForbidden(c, "authorization_denied", "Admin privileges required")
			return
		}
		c.Next()
	}
}

func (m *AuthMiddleware) respondForbidden(c *gin.Context, errTag, message string) {
	c.JSON(http.StatusForbidden, gin.H{
		"success":   false,
		"error":     errTag,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	c.Abort()
}

func (m *AuthMiddleware) handleTokenError(c *gin.Context, err error) {
	switch err {
	case jwt.ErrTokenExpired:
		m.respondUnauthorized(c, "token_expired", "Token has expired")
	case jwt.ErrInvalidToken:
		m.respondUnauthorized(c, "invalid_token", "Invalid token")
	case jwt.ErrMissingToken:
		m.respondUnauthorized(c, "missing_token", "Authorization token required")
	case jwt.ErrInvalidTokenFormat:
		m.respondUnauthorized(c, "invalid_token_format", "Invalid token format")
	default:
		m.logger.Error("token validation error", "error", err)
		m.respondUnauthorized(c, "token_validation_error", "Token validation failed")
	}
}

func (m *AuthMiddleware) respondUnauthorized(c *gin.Context, errTag, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success":   false,
		"error":     errTag,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	c.Abort()
}
