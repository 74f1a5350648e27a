package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/turbonotes/backend/internal/config"
	"github.com/turbonotes/backend/internal/database"
	"github.com/turbonotes/backend/internal/handlers"
	"github.com/turbonotes/backend/internal/middleware"
	"github.com/turbonotes/backend/internal/utils"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: utils.GlobalErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("turbonotes")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	authHandler := &handlers.AuthHandler{DB: db, Cfg: cfg}
	notesHandler := &handlers.NotesHandler{DB: db}

	// Authentication routes (open to unauthenticated callers)
	auth := api.Group("/auth")
	auth.Post("/register/", authHandler.Register)
	auth.Post("/token/", authHandler.Login)
	auth.Post("/token/refresh/", authHandler.Refresh)
	auth.Get("/me/", middleware.RequireAuth(cfg), authHandler.Me)

	// Category routes (read-only, bearer token required)
	api.Get("/categories/", middleware.RequireAuth(cfg), notesHandler.ListCategories)
	api.Get("/categories/:id/", middleware.RequireAuth(cfg), notesHandler.GetCategory)

	// Note routes (bearer token required)
	api.Get("/notes/", middleware.RequireAuth(cfg), notesHandler.ListNotes)
	api.Post("/notes/", middleware.RequireAuth(cfg), notesHandler.CreateNote)
	api.Get("/notes/:id/", middleware.RequireAuth(cfg), notesHandler.GetNote)
	api.Patch("/notes/:id/", middleware.RequireAuth(cfg), notesHandler.UpdateNote)
	api.Delete("/notes/:id/", middleware.RequireAuth(cfg), notesHandler.DeleteNote)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info().Msg("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Info().Str("port", cfg.Port).Msg("Starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}

	log.Info().Msg("Server stopped")
}
