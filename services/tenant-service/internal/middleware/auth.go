package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/slotwise/tenant-service/pkg/jwt"
	"github.com/slotwise/tenant-service/pkg/logger"
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
		token, err := m.extractToken(c)
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

		m.logger.Debug("request authenticated",
			"user_id", claims.Subject,
			"tenant_id", claims.TenantID,
			"user_type", claims.UserType,
			"path", c.Request.URL.Path,
		)

		c.Next()
	}
}

// RequireTenantMatch enforces that the authenticated caller's tenant_id
// claim matches the :tenantId path parameter, the authorization rule
// spec.md assigns every tenant-scoped mutation.
func (m *AuthMiddleware) RequireTenantMatch(paramName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimTenant, exists := c.Get("tenant_id")
		if !exists {
			m.respondForbidden(c, "missing_tenant_context", "Tenant context not found")
			return
		}

		pathTenant := c.Param(paramName)
		if pathTenant != "" && pathTenant != claimTenant.(string) {
			m.logger.Warn("cross-tenant access denied",
				"claim_tenant_id", claimTenant,
				"path_tenant_id", pathTenant,
				"path", c.Request.URL.Path,
			)
			m.respondForbidden(c, "tenant_mismatch", "Not authorized for this tenant")
			return
		}

		c.Next()
	}
}

// RequireAdmin enforces user_type == admin, the other half of spec.md
// §4.1's hard security contract for tenant admin operations: callers must
// have both tenant_id == X (RequireTenantMatch) and user_type == admin.
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

// extractToken extracts the JWT token from the Authorization header.
func (m *AuthMiddleware) extractToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	return jwt.ExtractTokenFromHeader(authHeader)
}

// handleTokenError handles JWT token validation errors.
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

// respondUnauthorized sends spec.md's error shape with a 401 status.
func (m *AuthMiddleware) respondUnauthorized(c *gin.Context, errTag, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success":   false,
		"error":     errTag,
		"message":   message,
		"timestamp": getCurrentTimestamp(),
	})
	c.Abort()
}

// respondForbidden sends spec.md's error shape with a 403 status.
func (m *AuthMiddleware) respondForbidden(c *gin.Context, errTag, message string) {
	c.JSON(http.StatusForbidden, gin.H{
		"success":   false,
		"error":     errTag,
		"message":   message,
		"timestamp": getCurrentTimestamp(),
	})
	c.Abort()
}

func getCurrentTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
