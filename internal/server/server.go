// Package server contains the HTTP and WebSocket handlers for the API.
package server

import (
	"context"
	"fmt"
	"os"
	"time"

	_ "vidtube/docs" // swagger docs
	"vidtube/internal/cache"
	"vidtube/internal/config"
	"vidtube/internal/database"
	"vidtube/internal/featureflags"
	"vidtube/internal/middleware"
	"vidtube/internal/models"
	"vidtube/internal/notifications"
	"vidtube/internal/repository"
	"vidtube/internal/service"
	"vidtube/internal/storage"

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

	videoRepo   repository.VideoRepository
	commentRepo repository.CommentRepository
	tweetRepo   repository.TweetRepository

	uploader     storage.Uploader
	tokens       *service.TokenService
	notifier     *notifications.Notifier
	hub          *notifications.Hub
	featureFlags *featureflags.Manager

	userService         *service.UserService
	videoService        *service.VideoService
	commentService      *service.CommentService
	likeService         *service.LikeService
	subscriptionService *service.SubscriptionService
	playlistService     *service.PlaylistService
	tweetService        *service.TweetService
}

// NewServer connects the database, Redis and object storage and builds a Server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	uploader, err := storage.New(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, cache.GetClient(), uploader)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// A nil Redis client disables caching, token revocation and cross-instance delivery.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, uploader storage.Uploader) (*Server, error) {
	if cfg.UploadTmpDir == "" {
		cfg.UploadTmpDir = os.TempDir()
	}
	if err := os.MkdirAll(cfg.UploadTmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	playlistRepo := repository.NewPlaylistRepository(db)
	tweetRepo := repository.NewTweetRepository(db)

	flags := featureflags.NewManager(cfg.FeatureFlags)
	media := service.NewMediaService(cfg.UploadTmpDir)
	tokens := service.NewTokenService(cfg, func() *redis.Client { return redisClient })

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("vidtube-api"),
		videoRepo:      videoRepo,
		commentRepo:    commentRepo,
		tweetRepo:      tweetRepo,
		uploader:       uploader,
		tokens:         tokens,
		featureFlags:   flags,
		hub:            notifications.NewHub(redisClient),

		userService:         service.NewUserService(userRepo, uploader, media, tokens),
		videoService:        service.NewVideoService(videoRepo, userRepo, likeRepo, uploader, media),
		commentService:      service.NewCommentService(commentRepo, videoRepo, likeRepo, flags),
		likeService:         service.NewLikeService(likeRepo),
		subscriptionService: service.NewSubscriptionService(subRepo),
		playlistService:     service.NewPlaylistService(playlistRepo, videoRepo),
		tweetService:        service.NewTweetService(tweetRepo, userRepo, likeRepo),
	}
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET,POST,PATCH,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        200,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, fiber.StatusTooManyRequests,
				&models.AppError{Code: "RATE_LIMITED", Message: "Too many requests, please try again later."})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	if s.config.StorageDriver == "" || s.config.StorageDriver == "local" {
		app.Static("/media", s.config.StorageLocalDir)
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "vidtube API Metrics",
	}))

	v1 := api.Group("/v1")
	auth := s.AuthRequired()
	optional := s.OptionalAuth()

	users := v1.Group("/users")
	users.Post("/register", middleware.RateLimit(s.redis, 5, 10*time.Minute, "register"), s.Register)
	users.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	users.Post("/refresh-token", s.RefreshToken)
	users.Post("/logout", auth, s.Logout)
	users.Get("/current-user", auth, s.GetCurrentUser)
	users.Patch("/update-account", auth, s.UpdateAccountDetails)
	users.Post("/change-password", auth, s.ChangePassword)
	users.Patch("/avatar", auth, s.UpdateAvatar)
	users.Patch("/cover-image", auth, s.UpdateCoverImage)
	users.Get("/c/:username", optional, s.GetChannelProfile)
	users.Get("/history", auth, s.GetWatchHistory)

	videos := v1.Group("/videos")
	videos.Get("/", optional, s.ListVideos)
	videos.Post("/", auth, middleware.RateLimit(s.redis, 10, time.Hour, "publish_video"), s.PublishVideo)
	// Specific /toggle route before generic /:videoId
	videos.Patch("/toggle/publish/:videoId", auth, s.TogglePublishStatus)
	videos.Get("/:videoId", optional, s.GetVideo)
	videos.Patch("/:videoId", auth, s.UpdateVideo)
	videos.Delete("/:videoId", auth, s.DeleteVideo)

	comments := v1.Group("/comments")
	comments.Patch("/c/:commentId", auth, s.UpdateComment)
	comments.Delete("/c/:commentId", auth, s.DeleteComment)
	comments.Get("/:videoId", optional, s.ListComments)
	comments.Post("/:videoId", auth, middleware.RateLimit(s.redis, 20, time.Minute, "create_comment"), s.AddComment)

	likes := v1.Group("/likes", auth)
	likes.Post("/toggle/v/:videoId", s.ToggleVideoLike)
	likes.Post("/toggle/c/:commentId", s.ToggleCommentLike)
	likes.Post("/toggle/t/:tweetId", s.ToggleTweetLike)
	likes.Get("/videos", s.GetLikedVideos)

	tweets := v1.Group("/tweets")
	tweets.Post("/", auth, middleware.RateLimit(s.redis, 30, time.Minute, "create_tweet"), s.CreateTweet)
	tweets.Get("/user/:userId", optional, s.GetUserTweets)
	tweets.Patch("/:tweetId", auth, s.UpdateTweet)
	tweets.Delete("/:tweetId", auth, s.DeleteTweet)

	subscriptions := v1.Group("/subscriptions", auth)
	subscriptions.Post("/c/:channelId", s.ToggleSubscription)
	subscriptions.Get("/c/:channelId", s.GetChannelSubscribers)
	subscriptions.Get("/u/:subscriberId", s.GetSubscribedChannels)

	playlists := v1.Group("/playlists", auth)
	playlists.Post("/", s.CreatePlaylist)
	playlists.Get("/user/:userId", s.GetUserPlaylists)
	playlists.Patch("/add/:videoId/:playlistId", s.AddVideoToPlaylist)
	playlists.Patch("/remove/:videoId/:playlistId", s.RemoveVideoFromPlaylist)
	playlists.Get("/:playlistId", s.GetPlaylist)
	playlists.Patch("/:playlistId", s.UpdatePlaylist)
	playlists.Delete("/:playlistId", s.DeletePlaylist)

	v1.Get("/ws", auth, s.WebsocketHandler())
}

// AuthRequired rejects requests without a valid access token.
func (s *Server) AuthRequired() fiber.Handler {
	return middleware.AuthRequired(s.tokens.VerifyAccess)
}

// OptionalAuth identifies the requester when a valid access token is present.
func (s *Server) OptionalAuth() fiber.Handler {
	return middleware.OptionalAuth(s.tokens.VerifyAccess)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings the database and Redis.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	// Redis is optional: without it the API runs uncached and single-instance.
	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
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

// App builds the fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "vidtube API",
		BodyLimit:    int(s.config.MaxUploadBytes()) + 1024*1024,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.App()

	if s.notifier != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start hub wiring", "hub", s.hub.Name(), "error", err)
			}
		}()
	}

	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down hub", "hub", s.hub.Name(), "error", err)
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
