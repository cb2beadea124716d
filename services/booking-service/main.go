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

	"github.com/slotwise/booking-service/internal/client"
	"github.com/slotwise/booking-service/internal/config"
	"github.com/slotwise/booking-service/internal/database"
	"github.com/slotwise/booking-service/internal/repository"
	"github.com/slotwise/booking-service/internal/router"
	"github.com/slotwise/booking-service/internal/service"
	"github.com/slotwise/booking-service/pkg/events"
	"github.com/slotwise/booking-service/pkg/jwt"
	"github.com/slotwise/booking-service/pkg/logger"
	"github.com/slotwise/booking-service/pkg/scheduler"
)

const (
	resourceCascadeGroup = "booking-service-resource-cascade"
	userCascadeGroup     = "booking-service-user-cascade"
	tenantCascadeGroup   = "booking-service-tenant-cascade"
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

	bookingRepo := repository.NewBookingRepository(db)
	settingsCache := repository.NewSettingsCache(redisClient, cfg.Cache.SettingsTTL, appLogger)

	tenantClient := client.NewTenantClient(cfg.Clients.TenantServiceURL, cfg.Clients.RequestTimeout)
	resourceClient := client.NewResourceClient(cfg.Clients.ResourceServiceURL, cfg.Clients.RequestTimeout)

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

	settingsService := service.NewSettingsService(settingsCache, tenantClient, appLogger)
	bookingService := service.NewBookingService(bookingRepo, settingsService, resourceClient, publisher, appLogger)
	cascadeService := service.NewCascadeService(bookingRepo, publisher, appLogger)

	if natsConn != nil {
		js, err := natsConn.JetStream()
		if err == nil {
			if consumer, err := events.Subscribe(js, events.DeletionEventsStream, resourceCascadeGroup, events.ResourceDeleted, appLogger,
				cascadeService.HandleResourceDeleted); err != nil {
				appLogger.Error("Failed to subscribe to resource deleted events", "error", err)
			} else {
				cascadeConsumers = append(cascadeConsumers, consumer)
			}

			if consumer, err := events.Subscribe(js, events.DeletionEventsStream, userCascadeGroup, events.UserDeleted, appLogger,
				cascadeService.HandleUserDeleted); err != nil {
				appLogger.Error("Failed to subscribe to user deleted events", "error", err)
			} else {
				cascadeConsumers = append(cascadeConsumers, consumer)
			}

			if consumer, err := events.Subscribe(js, events.DeletionEventsStream, tenantCascadeGroup, events.TenantDeleted, appLogger,
				cascadeService.HandleTenantDeleted); err != nil {
				appLogger.Error("Failed to subscribe to tenant deleted events", "error", err)
			} else {
				cascadeConsumers = append(cascadeConsumers, consumer)
			}
		}
	}

	sweeper := scheduler.New(bookingService, appLogger)
	sweeper.Start()

	ginRouter := router.SetupRouter(router.RouterConfig{
		DB:             db,
		Redis:          redisClient,
		BookingService: bookingService,
		JWTManager:     jwtManager,
		Config:         cfg,
		Logger:         appLogger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      ginRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Starting booking-service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down booking-service...")

	sweeper.Stop()
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

	appLogger.Info("booking-service stopped")
}
