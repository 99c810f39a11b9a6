// Package server contains the HTTP handlers and the per-route request
// pipeline for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"time"

	"glimpse/internal/cache"
	"glimpse/internal/config"
	"glimpse/internal/database"
	"glimpse/internal/middleware"
	"glimpse/internal/models"
	"glimpse/internal/observability"
	"glimpse/internal/repository"
	"glimpse/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	imageService   *service.ImageService
	postService    *service.PostService
	commentService *service.CommentService
	userService    *service.UserService
	tracerShutdown func(context.Context) error
}

// NewServer creates a new server instance with all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	tracerShutdown, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:  "glimpse-api",
		Environment:  cfg.Env,
		Enabled:      cfg.TracingEnabled,
		Exporter:     cfg.TracingExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplerRatio: cfg.TracingSampler,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}

	srv := NewServerWithDeps(cfg, db, cache.GetClient())
	srv.tracerShutdown = tracerShutdown
	return srv, nil
}

// NewServerWithDeps creates a Server from already-initialized
// dependencies. Used by tests and bootstrap layers that establish the
// DB and Redis connections themselves.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	images := service.NewImageService(cfg)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: observability.InitHTTPMetrics("glimpse-api"),
		userRepo:       userRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		imageService:   images,
		postService:    service.NewPostService(postRepo, images),
		commentService: service.NewCommentService(commentRepo),
		userService:    service.NewUserService(userRepo, images),
	}
}

// SetupMiddleware configures the app-wide middleware stack.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Coarse per-IP limit; the auth endpoints carry tighter Redis-backed
	// limits of their own.
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
			return c.Status(fiber.StatusTooManyRequests).JSON(models.Envelope{
				Status:  "fail",
				Message: "too many requests, please try again later",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Uploaded photos and avatars are served straight off disk.
	app.Static("/static", s.config.StaticRoot)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	posts := api.Group("/posts")
	posts.Post("/",
		middleware.AuthRequired, s.ValidateImageUploads, s.CreatePost)
	posts.Get("/:postId",
		middleware.Identify, s.FindPost, s.CheckPostExists, s.CheckPostStatus, s.GetPost)
	posts.Patch("/:postId",
		middleware.AuthRequired, s.FindPost, s.CheckPostExists, s.RequirePostOwner,
		s.ValidateImageUploads, s.UpdatePost)
	posts.Delete("/:postId",
		middleware.AuthRequired, s.FindPost, s.CheckPostExists, s.RequirePostOwner, s.DeletePost)
	posts.Post("/:postId/like",
		middleware.AuthRequired, s.FindPost, s.CheckPostExists, s.CheckPostStatus, s.LikePost)
	posts.Get("/:postId/likes",
		middleware.Identify, s.FindPost, s.CheckPostExists, s.CheckPostStatus, s.GetPostLikes)

	// Every comment route re-validates the parent post before touching
	// the comment itself.
	comments := posts.Group("/:postId/comments")
	comments.Post("/",
		middleware.AuthRequired, s.FindPost, s.CheckPostExists, s.CheckPostStatus, s.CreateComment)
	comments.Get("/",
		middleware.Identify, s.FindPost, s.CheckPostExists, s.CheckPostStatus, s.GetComments)
	comments.Patch("/:commentId",
		middleware.AuthRequired, s.FindPost, s.CheckPostExists, s.CheckPostStatus,
		s.FindComment, s.CheckCommentExists, s.RequireCommentOwner, s.UpdateComment)
	comments.Delete("/:commentId",
		middleware.AuthRequired, s.FindPost, s.CheckPostExists, s.CheckPostStatus,
		s.FindComment, s.CheckCommentExists, s.RequireCommentOwner, s.DeleteComment)
	comments.Post("/:commentId/reply",
		middleware.AuthRequired, s.FindPost, s.CheckPostExists, s.CheckPostStatus,
		s.FindComment, s.CheckCommentExists, s.ReplyComment)
	comments.Get("/:commentId/replies",
		middleware.Identify, s.FindPost, s.CheckPostExists, s.CheckPostStatus,
		s.FindComment, s.CheckCommentExists, s.GetReplies)
	comments.Post("/:commentId/like",
		middleware.AuthRequired, s.FindPost, s.CheckPostExists, s.CheckPostStatus,
		s.FindComment, s.CheckCommentExists, s.LikeComment)
	comments.Get("/:commentId/likes",
		middleware.Identify, s.FindPost, s.CheckPostExists, s.CheckPostStatus,
		s.FindComment, s.CheckCommentExists, s.GetCommentLikes)

	users := api.Group("/users")
	users.Patch("/info", middleware.AuthRequired, s.ValidateImageUploads, s.UpdateUser)
	users.Patch("/password", middleware.AuthRequired, s.UpdatePassword)
	users.Get("/:username", s.GetUser)
}

// Shutdown releases server-held resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.tracerShutdown != nil {
		if err := s.tracerShutdown(ctx); err != nil {
			return err
		}
	}
	if s.redis != nil {
		return s.redis.Close()
	}
	return nil
}

// LivenessCheck reports process liveness.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "success", "data": "alive"})
}

// ReadinessCheck reports whether the database is reachable.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	sqlDB, err := s.db.DB()
	if err != nil || sqlDB.PingContext(c.Context()) != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  "error",
			"message": "database unavailable",
		})
	}
	return c.JSON(fiber.Map{"status": "success", "data": "ready"})
}
