package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/streadway/amqp"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/server"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Database ---
	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	store := repositories.NewGORMStore(db)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	if cfg.SeedProducts {
		if err := database.SeedProducts(ctx, store.Products()); err != nil {
			log.Fatalf("Failed to seed products: %v", err)
		}
	}

	// --- RabbitMQ (optional) ---
	var publisher services.OrderEventPublisher
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		publisher = mqClient

		log.Println("Starting RabbitMQ consumer for order events...")
		if err := mqClient.ConsumeOrderEvents(ctx, logOrderEvent); err != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", err)
		}
	} else {
		log.Println("RABBITMQ_URL is not set; order events are disabled")
	}

	// --- Services ---
	authService := services.NewAuthService(store.Users(), cfg.JWTSecret, cfg.JWTExpiration)
	productService := services.NewProductService(store.Products())
	orderService := services.NewOrderService(store, publisher)
	userService := services.NewUserService(store.Users())

	if cfg.Admin.Email != "" {
		_, err := authService.EnsureAdmin(ctx, services.RegisterInput{
			Email:     cfg.Admin.Email,
			FirstName: cfg.Admin.FirstName,
			LastName:  cfg.Admin.LastName,
			Password:  cfg.Admin.Password,
		})
		if err != nil {
			log.Fatalf("Failed to bootstrap admin user: %v", err)
		}
	}

	// --- HTTP Server ---
	app := server.New(server.Services{
		Auth:     authService,
		Products: productService,
		Orders:   orderService,
		Users:    userService,
	})

	log.Printf("Starting server on port %s", cfg.AppPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")
	stop()

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	log.Println("Server gracefully stopped")
}

// logOrderEvent is the consumer for order events: it records every event it receives.
func logOrderEvent(msg amqp.Delivery) error {
	var event models.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return fmt.Errorf("invalid order event payload: %w", err)
	}
	log.Printf("Received %s event for order %s (user %s, status %s, total %s)",
		msg.RoutingKey, event.OrderID, event.UserID, event.Status, event.TotalAmount.StringFixed(2))
	return nil
}
