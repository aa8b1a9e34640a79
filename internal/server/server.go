// Package server contains the HTTP handlers for the CollabNexus API.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	_ "collabnexus/docs" // swagger docs
	"collabnexus/internal/cache"
	"collabnexus/internal/config"
	"collabnexus/internal/database"
	"collabnexus/internal/featureflags"
	"collabnexus/internal/middleware"
	"collabnexus/internal/repository"
	"collabnexus/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
)

const defaultOrigins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"

// Server holds all dependencies and provides handlers
type Server struct {
	config           *config.Config
	store            repository.Store
	cache            *cache.Cache
	promMiddleware   *fiberprometheus.FiberPrometheus
	featureFlags     *featureflags.Manager
	userService      *service.UserService
	projectService   *service.ProjectService
	taskService      *service.TaskService
	milestoneService *service.MilestoneService
	reviewService    *service.ReviewService
	matchService     *service.MatchService
}

// NewServer creates a new server instance, opening the entity store selected
// by cfg.StoreDriver and connecting to Redis when configured.
func NewServer(cfg *config.Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c := cache.Connect(ctx, cfg.RedisURL)

	store, err := openStore(cfg, c)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	return NewServerWithDeps(cfg, store, c), nil
}

func openStore(cfg *config.Config, c *cache.Cache) (repository.Store, error) {
	if cfg.StoreDriver == config.DriverMemory {
		middleware.Logger.Info("using in-memory entity store")
		return repository.NewMemoryStore(), nil
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return repository.NewGormStore(db, c), nil
}

// NewServerWithDeps creates a Server using an already-open store and cache.
// Use this in tests or when a bootstrap layer seeds the store first.
func NewServerWithDeps(cfg *config.Config, store repository.Store, c *cache.Cache) *Server {
	s := &Server{
		config:         cfg,
		store:          store,
		cache:          c,
		promMiddleware: middleware.InitMetrics("collabnexus-api"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}
	// Build services up front; handlers run concurrently.
	s.userSvc()
	s.projectSvc()
	s.taskSvc()
	s.milestoneSvc()
	s.reviewSvc()
	s.matchSvc()
	return s
}

// Store exposes the entity store, e.g. for seeding at startup.
func (s *Server) Store() repository.Store {
	return s.store
}

// Shutdown releases the store and the Redis connection.
func (s *Server) Shutdown(_ context.Context) error {
	var errs []error
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if err := s.cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis: %w", err))
	}
	return errors.Join(errs...)
}

func (s *Server) userSvc() *service.UserService {
	if s.userService == nil {
		s.userService = service.NewUserService(s.store)
	}
	return s.userService
}

func (s *Server) projectSvc() *service.ProjectService {
	if s.projectService == nil {
		s.projectService = service.NewProjectService(s.store)
	}
	return s.projectService
}

func (s *Server) taskSvc() *service.TaskService {
	if s.taskService == nil {
		s.taskService = service.NewTaskService(s.store)
	}
	return s.taskService
}

func (s *Server) milestoneSvc() *service.MilestoneService {
	if s.milestoneService == nil {
		s.milestoneService = service.NewMilestoneService(s.store)
	}
	return s.milestoneService
}

func (s *Server) reviewSvc() *service.ReviewService {
	if s.reviewService == nil {
		s.reviewService = service.NewReviewService(s.store)
	}
	return s.reviewService
}

func (s *Server) matchSvc() *service.MatchService {
	if s.matchService == nil {
		s.matchService = service.NewMatchService(s.store, s.featureFlags)
	}
	return s.matchService
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Propagates request and trace ids into the user context for logging.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := defaultOrigins
	if s.config != nil && s.config.AllowedOrigins != "" {
		origins = s.config.AllowedOrigins
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")
	rdb := s.cache.Client()

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	api.Get("/health", s.HealthCheck)
	api.Get("/", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "CollabNexus Backend Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/feature-flags", s.GetFeatureFlags)

	// Account routes. Authentication itself happens at the external provider.
	api.Post("/signup", middleware.RateLimit(rdb, 3, 10*time.Minute, "signup"), s.Signup)
	api.Post("/login", middleware.RateLimit(rdb, 10, 5*time.Minute, "login"), s.Login)

	users := api.Group("/users")
	users.Get("/", s.GetUsers)
	// Specific /:id/:resource routes before the generic /:id route
	users.Put("/:id/profile", s.UpdateUserProfile)
	users.Patch("/:id/xp", s.AwardXP)
	users.Get("/:id/progression", s.GetUserProgression)
	users.Get("/:id/projects", s.GetUserProjects)
	users.Get("/:id/tasks", s.GetUserTasks)
	users.Get("/:id/reviews", s.GetUserReviews)
	users.Get("/:id", s.GetUser)

	projects := api.Group("/projects")
	projects.Get("/", s.GetProjects)
	projects.Post("/", s.CreateProject)
	projects.Get("/:id/tasks", s.GetProjectTasks)
	projects.Post("/:id/tasks", s.CreateTask)
	projects.Patch("/:projectId/tasks/:taskId", s.UpdateTask)
	projects.Delete("/:projectId/tasks/:taskId", s.DeleteTask)
	projects.Get("/:id/progress", s.GetProjectProgress)
	projects.Get("/:id/reviews", s.GetProjectReviews)
	projects.Get("/:id/milestones", s.GetProjectMilestones)
	projects.Post("/:id/members", s.AddProjectMember)
	projects.Delete("/:id/members/:userId", s.RemoveProjectMember)
	projects.Get("/:id", s.GetProject)

	api.Post("/reviews", s.CreateReview)

	api.Post("/milestones", s.CreateMilestone)
	api.Patch("/milestones/:id", s.UpdateMilestone)

	api.Post("/match-teammates", middleware.RateLimit(rdb, 20, time.Minute, "match_teammates"), s.MatchTeammates)
}

// HealthCheck handles GET /api/health
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: a
// disabled cache is reported but does not fail readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if s.store == nil {
		storeStatus = "unavailable"
	} else if err := s.store.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.cache.Enabled() {
		redisStatus = "healthy"
		if err := s.cache.Ping(ctx); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if storeStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	driver := config.DriverMemory
	if s.config != nil {
		driver = s.config.StoreDriver
	}

	return c.Status(status).JSON(fiber.Map{
		"message": "CollabNexus",
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"store":  storeStatus,
			"driver": driver,
			"redis":  redisStatus,
		},
		"time": time.Now(),
	})
}
