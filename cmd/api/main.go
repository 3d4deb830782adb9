package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"cv-intake/internal/config"
	"cv-intake/internal/handlers"
	"cv-intake/internal/repositories"
	"cv-intake/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repository
	candidateRepo := repositories.NewCandidateRepository(db)
	log.Println("✅ Repository initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	extractor := services.NewTextExtractor()
	scoringClient := services.NewScoringClient(cfg.MLService.BaseURL, cfg.MLService.Timeout)

	ingestionService := services.NewIngestionService(
		candidateRepo,
		storageService,
		extractor,
		scoringClient,
		cfg.Storage.MaxFileSize,
	)
	log.Println("✅ Services initialized successfully")

	// Initialize rescore worker
	var rescoreWorker services.RescoreWorker
	if cfg.Rescore.Enabled {
		rescoreWorker = services.NewRescoreWorker(
			candidateRepo,
			scoringClient,
			cfg.Rescore.Interval,
			cfg.Rescore.Concurrency,
			cfg.Rescore.BatchSize,
		)
		rescoreWorker.Start(context.Background())
		log.Println("✅ Rescore worker started successfully")
	}

	// Initialize handlers
	uploadHandler := handlers.NewUploadHandler(ingestionService)
	listHandler := handlers.NewListHandler(candidateRepo)
	detailHandler := handlers.NewDetailHandler(candidateRepo)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "CV Intake API",
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		// Leave headroom for multipart framing around a max-size file
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1024*1024,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// API endpoints
	api.Post("/candidates", uploadHandler.HandleUpload)
	api.Get("/candidates", listHandler.HandleList)
	api.Get("/candidates/:id", detailHandler.HandleGetCandidate)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "CV Intake API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/candidates",
				"GET /api/v1/candidates",
				"GET /api/v1/candidates/:id",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if rescoreWorker != nil {
			rescoreWorker.Stop()
		}
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
