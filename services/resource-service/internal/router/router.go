package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/slotwise/resource-service/internal/config"
	"github.com/slotwise/resource-service/internal/handlers"
	"github.com/slotwise/resource-service/internal/middleware"
	"github.com/slotwise/resource-service/internal/service"
	"github.com/slotwise/resource-service/pkg/jwt"
	"github.com/slotwise/resource-service/pkg/logger"
	"gorm.io/gorm"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	DB                  *gorm.DB
	Redis               *redis.Client
	CategoryService     *service.CategoryService
	ResourceService     *service.ResourceService
	AvailabilityService *service.AvailabilityService
	PermissionChecker   middleware.PermissionChecker
	JWTManager          *jwt.Manager
	Config              *config.Config
	Logger              logger.Logger
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

	categoryHandler := handlers.NewCategoryHandler(cfg.CategoryService, cfg.Logger)
	resourceHandler := handlers.NewResourceHandler(cfg.ResourceService, cfg.AvailabilityService, cfg.Logger)
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis, cfg.Logger)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTManager, cfg.PermissionChecker, cfg.Logger)

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	internal := router.Group("/internal")
	{
		internal.GET("/resources/:id", resourceHandler.GetInternal)
	}

	v1 := router.Group("/api/v1")
	{
		categories := v1.Group("/categories")
		categories.Use(authMiddleware.RequireAuth())
		{
			categories.POST("", categoryHandler.Create)
			categories.GET("", categoryHandler.List)
			categories.GET("/:id", categoryHandler.Get)
			categories.PUT("/:id", categoryHandler.Update)
			categories.DELETE("/:id", categoryHandler.Delete)
		}

		resources := v1.Group("/resources")
		resources.Use(authMiddleware.RequireAuth())
		{
			resources.GET("", resourceHandler.List)
			resources.GET("/:id", resourceHandler.Get)
			resources.GET("/:id/availability", resourceHandler.GetAvailability)

			resources.POST("", authMiddleware.RequireCanManageResources(), resourceHandler.Create)
			resources.PUT("/:id", authMiddleware.RequireCanManageResources(), resourceHandler.Update)
			resources.DELETE("/:id", authMiddleware.RequireCanManageResources(), resourceHandler.Delete)
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
