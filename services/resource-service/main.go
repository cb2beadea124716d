package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/slotwise/resource-service/internal/client"
	"github.com/slotwise/resource-service/internal/config"
	"github.com/slotwise/resource-service/internal/database"
	"github.com/slotwise/resource-service/internal/repository"
	"github.com/slotwise/resource-service/internal/router"
	"github.com/slotwise/resource-service/internal/service"
	"github.com/slotwise/resource-service/pkg/events"
	"github.com/slotwise/resource-service/pkg/jwt"
	"github.com/slotwise/resource-service/pkg/logger"
)

const (
	tenantCascadeGroup   = "resource-service-tenant-cascade"
	bookingCascadeGroup  = "resource-service-booking-cache"
	resourceCascadeGroup = "resource-service-resource-cache"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		appLogger.Fatal("Failed to run database migrations", "error", err)
	}

	redisClient, err := database.ConnectRedis(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", "error", err)
	}

	categoryRepo := repository.NewCategoryRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	settingsCache := repository.NewSettingsCache(redisClient, cfg.Cache.SettingsTTL, appLogger)
	availCache := repository.NewAvailabilityCache(redisClient, cfg.Cache.AvailabilityTTL, appLogger)

	tenantClient := client.NewTenantClient(cfg.Clients.TenantServiceURL, cfg.Clients.RequestTimeout)
	userClient := client.NewUserClient(cfg.Clients.UserServiceURL, cfg.Clients.RequestTimeout)
	bookingClient := client.NewBookingClient(cfg.Clients.BookingServiceURL, cfg.Clients.RequestTimeout)

	jwtManager := jwt.NewManager(cfg.JWT)

	var publisher events.Publisher
	var cascadeConsumers []*events.Consumer

	natsConn, err := events.Connect(cfg.NATS.URL)
	if err != nil {
		appLogger.Warn("NATS unavailable, running with a null event publisher", "error", err)
		publisher = &events.NullPublisher{Logger: appLogger}
	} else {
		defer natsConn.Close()

		js, err := natsConn.JetStream()
		if err != nil {
			appLogger.Fatal("Failed to acquire JetStream context", "error", err)
		}
		if err := events.EnsureStreams(js); err != nil {
			appLogger.Fatal("Failed to ensure event streams", "error", err)
		}

		publisher = events.NewPublisher(js, appLogger)
	}

	categoryService := service.NewCategoryService(categoryRepo, appLogger)
	resourceService := service.NewResourceService(resourceRepo, categoryRepo, availCache, publisher, appLogger)
	settingsService := service.NewSettingsService(settingsCache, tenantClient, appLogger)
	availabilityService := service.NewAvailabilityService(resourceService, settingsService, bookingClient, availCache, appLogger)
	cascadeService := service.NewCascadeService(categoryService, resourceService, availCache, appLogger)

	if natsConn != nil {
		js, err := natsConn.JetStream()
		if err == nil {
			consumer, err := events.Subscribe(js, events.DeletionEventsStream, tenantCascadeGroup, events.TenantDeleted, appLogger,
				func(ctx context.Context, envelope events.Envelope) error {
					return cascadeService.HandleTenantDeleted(ctx, envelope.Metadata.TenantID)
				})
			if err != nil {
				appLogger.Error("Failed to subscribe to tenant deleted events", "error", err)
			} else {
				cascadeConsumers = append(cascadeConsumers, consumer)
			}

			// One durable per subject: a JetStream durable carries a single filter subject.
			for i, subject := range []string{events.BookingCreated, events.BookingUpdated, events.BookingCancelled} {
				group := fmt.Sprintf("%s-%d", bookingCascadeGroup, i)
				consumer, err := events.Subscribe(js, events.BookingEventsStream, group, subject, appLogger,
					cascadeService.HandleResourceScopedEvent)
				if err != nil {
					appLogger.Error("Failed to subscribe to booking cache-invalidation events", "subject", subject, "error", err)
					continue
				}
				cascadeConsumers = append(cascadeConsumers, consumer)
			}

			resourceConsumer, err := events.Subscribe(js, events.DeletionEventsStream, resourceCascadeGroup, events.ResourceDeleted, appLogger,
				cascadeService.HandleResourceScopedEvent)
			if err != nil {
				appLogger.Error("Failed to subscribe to resource deleted events", "error", err)
			} else {
				cascadeConsumers = append(cascadeConsumers, resourceConsumer)
			}
		}
	}

	ginRouter := router.SetupRouter(router.RouterConfig{
		DB:                  db,
		Redis:               redisClient,
		CategoryService:     categoryService,
		ResourceService:     resourceService,
		AvailabilityService: availabilityService,
		PermissionChecker:   userClient,
		JWTManager:          jwtManager,
		Config:              cfg,
		Logger:              appLogger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      ginRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Starting resource-service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down resource-service...")

	for _, consumer := range cascadeConsumers {
		consumer.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", "error", err)
	}

	if err := database.Close(db, redisClient); err != nil {
		appLogger.Warn("Error while closing database connections", "error", err)
	}

	appLogger.Info("resource-service stopped")
}
