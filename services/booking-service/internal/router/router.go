package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/slotwise/booking-service/internal/config"
	"github.com/slotwise/booking-service/internal/handlers"
	"github.com/slotwise/booking-service/internal/middleware"
	"github.com/slotwise/booking-service/internal/service"
	"github.com/slotwise/booking-service/pkg/jwt"
	"github.com/slotwise/booking-service/pkg/logger"
	"gorm.io/gorm"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	BookingService *service.BookingService
	JWTManager     *jwt.Manager
	Config         *config.Config
	Logger         logger.Logger
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

	bookingHandler := handlers.NewBookingHandler(cfg.BookingService, cfg.Logger)
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis, cfg.Logger)

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTManager, cfg.Logger)

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	internal := router.Group("/internal")
	{
		internal.GET("/bookings/active", bookingHandler.GetActive)
	}

	v1 := router.Group("/api/v1")
	{
		bookings := v1.Group("/bookings")
		bookings.Use(authMiddleware.RequireAuth())
		{
			bookings.POST("", bookingHandler.Create)
			bookings.GET("", bookingHandler.List)
			bookings.GET("/:id", bookingHandler.Get)
			bookings.PUT("/:id", bookingHandler.Update)
			bookings.PATCH("/:id/cancel", bookingHandler.Cancel)
			bookings.DELETE("/:id", authMiddleware.RequireAdmin(), bookingHandler.Delete)
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
