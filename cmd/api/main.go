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

	"github.com/hareesh182003/Interview-Agent/internal/bootstrap"
	"github.com/hareesh182003/Interview-Agent/internal/config"
	"github.com/hareesh182003/Interview-Agent/internal/handlers"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize application: %v", err)
	}

	// Start the resume index worker when configured
	if container.Worker != nil {
		container.Worker.Start(ctx)
	} else {
		log.Println("⚠️  Resume index disabled (QDRANT_URL or GEMINI_API_KEY not set)")
	}

	// Initialize Handlers
	analyzeHandler := handlers.NewAnalyzeHandler(container.Analyzer)
	analysisHandler := handlers.NewAnalysisHandler(
		container.SessionRepo,
		container.Reports,
		container.Index,
	)
	candidateHandler := handlers.NewCandidateHandler(container.Candidates, container.Exports)
	log.Println("✅ Handlers initialized")

	// Create Fiber app. The write timeout has to outlast the model call.
	app := fiber.New(fiber.Config{
		AppName:      "ATS Resume Analyzer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Model.Timeout + 30*time.Second,
		BodyLimit:    int(2*cfg.Storage.MaxFileSize) + 64*1024,
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
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
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

	handlers.RegisterRoutes(api, analyzeHandler, analysisHandler, candidateHandler)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "ATS Resume Analyzer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/analyze",
				"GET /api/v1/analyses",
				"GET /api/v1/analyses/compare?ids=",
				"GET /api/v1/analysis/:id",
				"GET /api/v1/analysis/:id/report",
				"GET /api/v1/analysis/:id/similar",
				"GET /api/v1/qualified-candidates",
				"GET /api/v1/qualified-candidates/stats",
				"GET /api/v1/qualified-candidates/export",
				"POST /api/v1/qualified-candidates/bulk",
				"GET /api/v1/qualified-candidates/:id",
				"PATCH /api/v1/qualified-candidates/:id",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)
	log.Printf("📖 API Documentation: http://localhost%s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Printf("❌ Failed to start server: %v", err)
	}

	cancel()
	container.Close()
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
