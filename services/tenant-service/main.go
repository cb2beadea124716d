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

	"github.com/slotwise/tenant-service/internal/config"
	"github.com/slotwise/tenant-service/internal/database"
	"github.com/slotwise/tenant-service/internal/repository"
	"github.com/slotwise/tenant-service/internal/router"
	"github.com/slotwise/tenant-service/internal/service"
	"github.com/slotwise/tenant-service/pkg/events"
	"github.com/slotwise/tenant-service/pkg/jwt"
	"github.com/slotwise/tenant-service/pkg/logger"
)

const webhookDispatcherGroup = "tenant-service-webhook-dispatcher"

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

	var publisher events.Publisher
	var dispatcherConsumers []*events.Consumer

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

		webhookRepo := repository.NewWebhookRepository(db, appLogger)
		dispatcher := service.NewWebhookDispatcher(webhookRepo, cfg.Webhook.RequestTimeout, appLogger)

		bookingConsumer, err := events.Subscribe(js, events.BookingEventsStream, webhookDispatcherGroup, "booking.>", appLogger, dispatcher.Handle)
		if err != nil {
			appLogger.Error("Failed to subscribe webhook dispatcher to booking events", "error", err)
		} else {
			dispatcherConsumers = append(dispatcherConsumers, bookingConsumer)
		}

		deletionConsumer, err := events.Subscribe(js, events.DeletionEventsStream, webhookDispatcherGroup, "*.deleted", appLogger, dispatcher.Handle)
		if err != nil {
			appLogger.Error("Failed to subscribe webhook dispatcher to deletion events", "error", err)
		} else {
			dispatcherConsumers = append(dispatcherConsumers, deletionConsumer)
		}
	}

	tenantRepo := repository.NewTenantRepository(db, appLogger)
	webhookRepo := repository.NewWebhookRepository(db, appLogger)
	settingsCache := repository.NewSettingsCache(redisClient, cfg.Cache.SettingsTTL, appLogger)

	tenantService := service.NewTenantService(tenantRepo, settingsCache, publisher, appLogger)
	webhookService := service.NewWebhookService(webhookRepo, appLogger)

	jwtManager := jwt.NewManager(cfg.JWT)

	ginRouter := router.SetupRouter(router.RouterConfig{
		DB:             db,
		Redis:          redisClient,
		TenantService:  tenantService,
		WebhookService: webhookService,
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
		appLogger.Info("Starting tenant-service", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down tenant-service...")

	for _, consumer := range dispatcherConsumers {
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

	appLogger.Info("tenant-service stopped")
}
