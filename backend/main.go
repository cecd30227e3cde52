package main

import (
	"log"

	"devprep/backend/app"
	"devprep/backend/config"
	"devprep/backend/middleware"
	"devprep/backend/routes"
	"devprep/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(utils.LoggerConfig{Mode: cfg.LogMode, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}

	// Database, cache and services
	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("Error initializing app", "error", err)
	}
	defer a.Close()

	// Create Fiber app
	server := fiber.New()

	// Middleware
	server.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	server.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(server, a)

	// Start server
	if err := server.Listen(":" + cfg.ServerPort); err != nil {
		logger.Error("server stopped", "error", err)
	}
}
