package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/slotwise/user-service/internal/config"
	"github.com/slotwise/user-service/internal/handlers"
	"github.com/slotwise/user-service/internal/middleware"
	"github.com/slotwise/user-service/internal/service"
	"github.com/slotwise/user-service/pkg/jwt"
	"github.com/slotwise/user-service/pkg/logger"
	"gorm.io/gorm"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	DB          *gorm.DB
	Redis       *redis.Client
	UserService *service.UserService
	JWTManager  *jwt.Manager
	Config      *config.Config
	Logger      logger.Logger
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

	userHandler := handlers.NewUserHandler(cfg.UserService, cfg.Logger)
	internalHandler := handlers.NewInternalHandler(cfg.UserService, cfg.Logger)
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis, cfg.Logger)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTManager, cfg.Logger)

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	v1 := router.Group("/api/v1")
	{
		users := v1.Group("/users")
		{
			users.POST("", userHandler.Register)
			users.POST("/login", middleware.AuthEndpointRateLimit(cfg.Redis, cfg.Logger, 20), userHandler.Login)

			users.GET("/me", authMiddleware.RequireAuth(), userHandler.Me)
			users.GET("", authMiddleware.RequireAuth(), authMiddleware.RequireAdmin(), userHandler.List)

			userItem := users.Group("/:id")
			userItem.Use(authMiddleware.RequireAuth())
			userItem.Use(authMiddleware.RequireSelfOrAdmin("id"))
			{
				userItem.GET("", userHandler.Get)
				userItem.PUT("", userHandler.Update)
				userItem.DELETE("", userHandler.Delete)
			}
		}
	}

	internalGroup := router.Group("/internal")
	{
		internalGroup.GET("/users/:id", internalHandler.GetUser)
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
