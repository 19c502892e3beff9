// Package server contains the HTTP handlers for the relay's API endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"banrelay/internal/cache"
	"banrelay/internal/config"
	"banrelay/internal/database"
	"banrelay/internal/discord"
	"banrelay/internal/middleware"
	"banrelay/internal/models"
	"banrelay/internal/repository"
	"banrelay/internal/roblox"
	"banrelay/internal/service"
	"banrelay/internal/sheets"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	banRepo       repository.BanRepository
	discordClient *discord.Client
	robloxClient  *roblox.Client
	sheetClient   *sheets.Client // nil when no sheet webhook is configured
	appealService *service.AppealService

	// background tracks detached relay tasks spawned by interaction handling
	// so shutdown can wait for in-flight fan-outs to settle.
	background sync.WaitGroup
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Initialize Redis
	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	discordClient := discord.NewClient(cfg.DiscordBotToken)
	robloxClient := roblox.NewClient(cfg.RobloxAPIKey, cfg.RobloxUniverseID)
	var sheetClient *sheets.Client
	if cfg.SheetWebhookURL != "" {
		sheetClient = sheets.NewClient(cfg.SheetWebhookURL)
	}

	return NewServerWithDeps(cfg, db, redisClient, discordClient, robloxClient, sheetClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this to point the outbound clients at local doubles.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client,
	discordClient *discord.Client, robloxClient *roblox.Client, sheetClient *sheets.Client) (*Server, error) {

	banRepo := repository.NewBanRepository(db)

	// Initialize Prometheus metrics
	prom := middleware.InitMetrics("banrelay-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		banRepo:        banRepo,
		discordClient:  discordClient,
		robloxClient:   robloxClient,
		sheetClient:    sheetClient,
	}

	// A nil *sheets.Client must stay a nil interface inside the service,
	// otherwise the skipped-leg detection breaks.
	var sheetNotifier service.SheetNotifier
	if sheetClient != nil {
		sheetNotifier = sheetClient
	}
	server.appealService = service.NewAppealService(banRepo, robloxClient, sheetNotifier, discordClient)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// CORS middleware should run before middlewares that can short-circuit
	// (e.g. limiter) so browser clients still receive CORS headers on errors.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "*"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowHeaders: "Origin, Content-Type, Accept, X-Signature-Ed25519, X-Signature-Timestamp",
		MaxAge:       86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP). Discord's
	// interaction traffic comes from its own infrastructure and must never
	// bounce off the limiter, or the endpoint fails verification.
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || c.Path() == "/api/interactions"
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

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Ban Relay Metrics Dashboard",
	}))

	// Discord interactions endpoint (signature-verified, never rate limited)
	api.Post("/interactions", s.HandleInteraction)

	// Ban management
	api.Post("/ban", middleware.RateLimit(
		s.redis, 30, time.Minute, "create_ban"), s.CreateBan)
	api.Post("/unban", middleware.RateLimit(
		s.redis, 30, time.Minute, "unban"), s.Unban)
	api.Get("/bans", s.GetBans)
	api.Get("/check-ban", s.CheckBan)

	// Appeal submission
	api.Post("/appeal", middleware.RateLimit(
		s.redis, 10, time.Minute, "submit_appeal"), s.SubmitAppeal)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis only backs rate limiting, so a missing client degrades
		// rather than fails readiness.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName: "Ban Relay API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server, waiting for in-flight
// background relay tasks before closing connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	// Wait for detached fan-out tasks, bounded by the shutdown context.
	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Println("shutdown deadline reached with background relay tasks still running")
	}

	// Close database connection
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	// Close Redis connection
	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
