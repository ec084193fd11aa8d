// cmd/server/main.go
// This is the entry point for the Scorekeeper API server.
// The "cmd/server" directory follows a common Go convention: the cmd/ folder holds executable
// binaries, and internal/ holds packages that are not meant to be imported by other projects.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	// fiber is a fast HTTP web framework inspired by Express.js
	"github.com/gofiber/fiber/v2"
	// cors allows the mobile app to talk to the API from a different origin
	"github.com/gofiber/fiber/v2/middleware/cors"
	// logger prints request details (method, path, status, duration)
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/rs/zerolog"

	"github.com/trentd187/scorekeeper/internal/config"
	"github.com/trentd187/scorekeeper/internal/database"
	"github.com/trentd187/scorekeeper/internal/handlers"
	"github.com/trentd187/scorekeeper/internal/live"
	"github.com/trentd187/scorekeeper/internal/logging"
	"github.com/trentd187/scorekeeper/internal/middleware"
	"github.com/trentd187/scorekeeper/internal/session"
	"github.com/trentd187/scorekeeper/internal/store"
)

func main() {
	// Load configuration from environment variables (and optionally a .env file).
	cfg, err := config.Load()
	if err != nil {
		// No logger yet: the level and format come from the config we failed to read.
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logging.New(cfg.Env, cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Apply pending SQL migrations so the schema matches the code on every start.
	if err := database.RunMigrations(cfg.MigrationsURL, cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The Hub fans live match events out to stream watchers. It runs until ctx is cancelled.
	hub := live.NewHub()
	go hub.Run(ctx)

	st := store.New(db)
	sessions := session.NewManager(st, hub, log)

	app := fiber.New(fiber.Config{
		AppName:      "Scorekeeper API",
		ErrorHandler: errorHandler(log),
	})

	// --- Global middleware ---
	app.Use(logger.New())
	// Allows requests from any origin (needed for the mobile app in development).
	app.Use(cors.New())

	// --- Public routes (no auth required) ---
	app.Get("/health", handlers.HealthCheck)

	// --- Authenticated API routes ---
	// Every route under /api/v1 requires a valid bearer token; Auth also syncs the
	// caller into the users table.
	api := app.Group("/api/v1", middleware.Auth([]byte(cfg.JWTSecret), st))
	handlers.Register(api, handlers.Deps{
		Store:        st,
		Sessions:     sessions,
		Hub:          hub,
		StreamBuffer: cfg.StreamBuffer,
		Log:          log,
	})

	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}

	// Let results of matches that ended just before shutdown reach the database.
	sessions.Wait()
	if n := len(sessions.Active()); n > 0 {
		log.Warn().Int("matches", n).Msg("live matches discarded on shutdown")
	}
}

// errorHandler logs unexpected handler errors and answers in the API's {"error": ...}
// shape. Errors created with fiber.NewError keep their status code.
func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
			return c.Status(code).JSON(fiber.Map{"error": "internal server error"})
		}
		return c.Status(code).JSON(fiber.Map{"error": fe.Message})
	}
}
