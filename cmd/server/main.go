// Command main is the entry point for the CollabNexus backend server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"collabnexus/internal/config"
	"collabnexus/internal/middleware"
	"collabnexus/internal/observability"
	"collabnexus/internal/seed"
	"collabnexus/internal/server"

	"github.com/gofiber/fiber/v2"
)

// @title CollabNexus API
// @version 1.0
// @description Gamified team collaboration: projects, kanban tasks, XP levels, peer reviews and teammate matching

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8375
// @BasePath /api
// @schemes http https

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.ConfigureLogger(cfg.Env)

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "collabnexus-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := seedStore(cfg, srv); err != nil {
		log.Fatalf("Failed to seed data: %v", err)
	}

	app := fiber.New(fiber.Config{
		AppName:   "CollabNexus API",
		BodyLimit: 1 * 1024 * 1024,
	})

	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server resource shutdown error: %v", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("Tracer shutdown error: %v", err)
		}
	}()

	log.Printf("Server starting on port %s (store: %s)...", cfg.Port, cfg.StoreDriver)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

// seedStore loads SEED_FILE when set, otherwise generates demo data when
// SEED_DEMO_DATA is on.
func seedStore(cfg *config.Config, srv *server.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch {
	case cfg.SeedFile != "":
		sum, err := seed.LoadFile(ctx, srv.Store(), cfg.SeedFile)
		if err != nil {
			return err
		}
		log.Printf("Loaded fixture %s: %d users, %d projects, %d tasks", cfg.SeedFile, sum.Users, sum.Projects, sum.Tasks)
	case cfg.SeedDemoData:
		if _, err := seed.Demo(ctx, srv.Store(), seed.DefaultOptions); err != nil {
			return err
		}
	}
	return nil
}
