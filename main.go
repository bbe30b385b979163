package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/AlexPyslar03/product-selector-backend/internal/handlers"
	"github.com/AlexPyslar03/product-selector-backend/internal/middleware"
	"github.com/AlexPyslar03/product-selector-backend/internal/models"
	"github.com/AlexPyslar03/product-selector-backend/internal/repositories"
	"github.com/AlexPyslar03/product-selector-backend/internal/services"
	"github.com/AlexPyslar03/product-selector-backend/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=product_selector port=5432 sslmode=disable")
	viper.SetDefault("JWT_SECRET", "change-me")
	viper.SetDefault("RABBITMQ_URL", "") // empty disables event publishing
	viper.AutomaticEnv()

	appPort := viper.GetString("APP_PORT")
	databaseURL := viper.GetString("DATABASE_URL")
	jwtSecret := viper.GetString("JWT_SECRET")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Database ---
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Recipe{}); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
	} else {
		log.Println("RABBITMQ_URL not set, entity events disabled.")
	}

	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	recipeRepo := repositories.NewGORMRecipeRepository(db)

	// --- Services ---
	userService := services.NewUserService(userRepo, mqClient)
	productService := services.NewProductService(productRepo, recipeRepo, mqClient)
	recipeService := services.NewRecipeService(recipeRepo, productRepo, mqClient)
	authService := services.NewAuthService(userService, jwtSecret)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	recipeHandler := handlers.NewRecipeHandler(recipeService)
	userHandler := handlers.NewUserHandler(userService)

	// --- Fiber App ---
	app := fiber.New()
	app.Use(logger.New())

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")

	authGuard := middleware.AuthRequired(authService)
	editorGuard := middleware.RequireRoles(models.RoleModerator, models.RoleAdmin)
	adminGuard := middleware.RequireRoles(models.RoleAdmin)

	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1, authGuard, editorGuard)
	recipeHandler.RegisterRoutes(apiV1, authGuard, editorGuard)
	userHandler.RegisterRoutes(apiV1, authGuard, adminGuard)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Entity Event Consumer ---
	// Downstream processing of entity change events. For now it only logs;
	// consumers like cache invalidation hook in here.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for entity events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received entity event (tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				return nil
			}
			if consumerErr := mqClient.ConsumeEntityEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
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
