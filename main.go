package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"blog/internal/handlers"
	"blog/internal/middleware"
	"blog/internal/models"
	"blog/internal/repositories"
	"blog/internal/services"
	"blog/pkg/rabbitmq"
)

// NewApp builds the Fiber application from environment configuration: it
// opens the database, migrates both collections, and wires repositories,
// services, and handlers. mqClient may be nil, which disables post events.
func NewApp(mqClient *rabbitmq.Client) (*fiber.App, *services.AuthService, error) {
	viper.SetDefault("DATABASE_DSN", "file::memory:?cache=shared")
	viper.SetDefault("JWT_SECRET", "dev-secret-change-me")
	viper.AutomaticEnv()

	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "dev-secret-change-me" {
		log.Println("Warning: JWT_SECRET is not set; using the development default")
	}

	db, err := openDatabase(viper.GetString("DATABASE_DSN"))
	if err != nil {
		return nil, nil, err
	}
	if err := db.AutoMigrate(&models.User{}, &models.Post{}); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Repositories
	userRepo := repositories.NewGORMUserRepository(db)
	postRepo := repositories.NewGORMPostRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, jwtSecret)
	postService := services.NewPostService(postRepo, mqClient)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	postHandler := handlers.NewPostHandler(postService)

	app := fiber.New()

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New()) // the frontend is served separately

	api := app.Group("/api")
	authHandler.RegisterRoutes(api)
	postHandler.RegisterRoutes(api, middleware.AuthRequired(authService))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app, authService, nil
}

// openDatabase picks the GORM driver from the DSN shape: postgres for
// postgres-style DSNs, sqlite for everything else (including the in-memory
// default used in development and tests).
func openDatabase(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "host=") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func main() {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// Post events are optional; without a broker the service runs fine and
	// simply skips publication.
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		var err error
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, post events disabled: %v", err)
		} else {
			defer mqClient.Close()
		}
	}

	app, _, err := NewApp(mqClient)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for post events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received post event (tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumePostEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	log.Printf("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
