package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/slotwise/tenant-service/internal/config"
	"github.com/slotwise/tenant-service/internal/handlers"
	"github.com/slotwise/tenant-service/internal/middleware"
	"github.com/slotwise/tenant-service/internal/service"
	"github.com/slotwise/tenant-service/pkg/jwt"
	"github.com/slotwise/tenant-service/pkg/logger"
	"gorm.io/gorm"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	DB              *gorm.DB
	Redis           *redis.Client
	TenantService   *service.TenantService
	WebhookService  *service.WebhookService
	JWTManager      *jwt.Manager
	Config          *config.Config
	Logger          logger.Logger
}

// SetupRouter sets up the Gin router with all routes and middleware.
func SetupRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	if cfg.Config.Environment == "production" {
		router.Use(middleware.DefaultCORS())
	} else {
		router.Use(middleware.DevelopmentCORS())
	}

	router.Use(middleware.DefaultRequestLogging(cfg.Logger))
	router.Use(middleware.SecurityLogging(cfg.Logger))
	router.Use(middleware.ErrorLogging(cfg.Logger))

	generalRateLimit := cfg.Config.RateLimit.RequestsPerMinute
	if generalRateLimit == 0 {
		generalRateLimit = 100
	}
	router.Use(middleware.GeneralRateLimit(cfg.Redis, cfg.Logger, generalRateLimit))

	tenantHandler := handlers.NewTenantHandler(cfg.TenantService, cfg.Logger)
	webhookHandler := handlers.NewWebhookHandler(cfg.WebhookService, cfg.Logger)
	internalHandler := handlers.NewInternalHandler(cfg.TenantService, cfg.Logger)
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis, cfg.Logger)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTManager, cfg.Logger)

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Service-to-service settings lookup, not part of the public surface.
	internalGroup := router.Group("/internal")
	{
		internalGroup.GET("/tenants/:id/settings", internalHandler.GetSettings)
	}

	v1 := router.Group("/api/v1")
	{
		tenants := v1.Group("/tenants")
		{
			tenants.POST("", tenantHandler.Create)
			tenants.GET("", tenantHandler.List)
			tenants.GET("/:id", tenantHandler.Get)

			tenantAdmin := tenants.Group("/:id")
			tenantAdmin.Use(authMiddleware.RequireAuth())
			tenantAdmin.Use(authMiddleware.RequireTenantMatch("id"))
			tenantAdmin.Use(authMiddleware.RequireAdmin())
			{
				tenantAdmin.PUT("", tenantHandler.Update)
				tenantAdmin.DELETE("", tenantHandler.Delete)

				tenantAdmin.GET("/settings", tenantHandler.GetSettings)
				tenantAdmin.PUT("/settings", tenantHandler.UpdateSettings)

				tenantAdmin.POST("/webhooks", webhookHandler.Create)
				tenantAdmin.GET("/webhooks", webhookHandler.List)
				tenantAdmin.GET("/webhooks/:webhookId", webhookHandler.Get)
				tenantAdmin.PUT("/webhooks/:webhookId", webhookHandler.Update)
				tenantAdmin.DELETE("/webhooks/:webhookId", webhookHandler.Delete)
			}
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"success":   false,
			"error":     "not_found",
			"message":   "Endpoint not found",
			"timestamp": getCurrentTimestamp(),
		})
	})

	router.NoMethod(func(c *gin.Context) {
		c.JSON(405, gin.H{
			"success":   false,
			"error":     "method_not_allowed",
			"message":   "Method not allowed",
			"timestamp": getCurrentTimestamp(),
		})
	})

	return router
}

func getCurrentTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
