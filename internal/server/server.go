// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	_ "socialhub/docs" // swagger docs
	"socialhub/internal/auth"
	"socialhub/internal/cache"
	"socialhub/internal/config"
	"socialhub/internal/database"
	"socialhub/internal/mail"
	"socialhub/internal/middleware"
	"socialhub/internal/repository"
	"socialhub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	rateLimiter    *middleware.RateLimiter
	mailer         *mail.Dispatcher
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	authService    *service.AuthService
	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService
}

// NewServer connects to the database and Redis described by cfg and builds a Server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := cache.InitRedis(cfg.RedisURL)

	var sender mail.Sender = mail.LogSender{}
	if cfg.SMTPHost != "" {
		sender = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		})
	} else {
		middleware.Logger.Warn("SMTP_HOST not set, outgoing mail will only be logged")
	}

	return NewServerWithDeps(cfg, db, redisClient, sender)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil redisClient runs the server without cache, revocation list or rate limits.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, sender mail.Sender) (*Server, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	if redisClient != cache.GetClient() {
		cache.SetClient(redisClient)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)

	tokens := auth.NewTokenManager(auth.TokenConfig{
		SessionSecret:      cfg.JWTSecret,
		VerificationSecret: cfg.VerificationSecret,
		SessionTTL:         cfg.SessionTTL(),
		VerificationTTL:    cfg.VerificationTTL(),
	})
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	dispatcher := mail.NewDispatcher(sender)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("socialhub-api"),
		rateLimiter:    middleware.NewRateLimiter(redisClient, cfg.Env),
		mailer:         dispatcher,
		userRepo:       userRepo,
		postRepo:       postRepo,
	}
	s.authService = service.NewAuthService(userRepo, tokens, hasher, dispatcher)
	s.userService = service.NewUserService(userRepo, hasher, dispatcher, cfg.ResetTokenTTL())
	s.postService = service.NewPostService(postRepo, userRepo)
	s.commentService = service.NewCommentService(postRepo)

	return s, nil
}

// App builds the Fiber application once and returns it.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName:      "SocialHub API",
		ErrorHandler: s.ErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	app.Use(s.NotFound)

	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and Trace ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || s.config.Env == "test"
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
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
		Title: "SocialHub Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	authRequired := s.AuthRequired()

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.Post("/register", s.rateLimiter.Limit(5, 10*time.Minute, "register"), s.Register)
	authGroup.Post("/verify-email/:verification_token", s.VerifyEmail)
	authGroup.Get("/verify-email/:verification_token", s.VerifyEmail)
	authGroup.Post("/login", s.rateLimiter.Limit(10, 5*time.Minute, "login"), s.Login)
	authGroup.Post("/logout", s.Logout)

	// User routes; /me routes must precede /:id
	users := api.Group("/users")
	users.Get("/me", authRequired, s.GetMyProfile)
	users.Patch("/me", authRequired, s.UpdateMyProfile)
	users.Patch("/me/update-password", authRequired, s.UpdatePassword)
	users.Patch("/me/forgot-password", s.rateLimiter.Limit(3, 15*time.Minute, "forgot_password"), s.ForgotPassword)
	users.Patch("/me/reset-password/:resetToken", s.ResetPassword)
	users.Delete("/me/delete-profile", authRequired, s.DeleteProfile)
	users.Get("/:id", s.GetUserProfile)
	users.Patch("/:id", authRequired, s.FollowUnfollowUser)

	// Post routes, all protected
	posts := api.Group("/posts", authRequired)
	posts.Post("/create", s.CreatePost)
	posts.Patch("/update/:postId", s.UpdatePost)
	posts.Get("/my-posts", s.GetMyPosts)
	posts.Get("/get-posts", s.GetFollowingPosts)
	posts.Patch("/like-unlike/:postId", s.LikeUnlikePost)
	posts.Delete("/delete/:postId", s.DeletePost)
	posts.Patch("/comment/:postId", s.rateLimiter.Limit(30, time.Minute, "comment"), s.AddComment)
	posts.Patch("/comment/:postId/:commentId", s.UpdateComment)
	posts.Delete("/comment/:postId/:commentId", s.DeleteComment)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional, so
// only an unreachable database makes the service unready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
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

// Start listens on the configured port until the app is shut down.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", zap.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests, waits for queued mail and closes the
// database and Redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	log := middleware.Logger

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Error("error shutting down HTTP server", zap.Error(err))
		}
	}

	mailDone := make(chan struct{})
	go func() {
		s.mailer.Wait()
		close(mailDone)
	}()
	select {
	case <-mailDone:
	case <-ctx.Done():
		log.Warn("shutdown deadline reached with mail still in flight")
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Error("error closing sql DB", zap.Error(cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Error("error closing redis", zap.Error(rerr))
		}
	}

	log.Info("server shutdown complete")
	return nil
}
