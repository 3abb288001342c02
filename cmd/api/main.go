package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/inkwell-notes/inkwell-backend/internal/config"
	"github.com/inkwell-notes/inkwell-backend/internal/domain"
	"github.com/inkwell-notes/inkwell-backend/internal/handler"
	"github.com/inkwell-notes/inkwell-backend/internal/markdown"
	"github.com/inkwell-notes/inkwell-backend/internal/middleware"
	"github.com/inkwell-notes/inkwell-backend/internal/repository/postgres"
	"github.com/inkwell-notes/inkwell-backend/internal/repository/storage"
	"github.com/inkwell-notes/inkwell-backend/internal/search"
	"github.com/inkwell-notes/inkwell-backend/internal/service"
	"github.com/inkwell-notes/inkwell-backend/internal/websocket"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	workspaceRepo := postgres.NewWorkspaceRepository(pool)
	noteRepo := postgres.NewNoteRepository(pool)

	// Search index is optional; without it search falls back to SQL
	var searcher search.Searcher
	var indexer search.Indexer
	var meili *search.Meili
	if cfg.MeiliURL != "" {
		meili = search.NewMeili(cfg.MeiliURL, cfg.MeiliAPIKey, log.With().Str("component", "search").Logger())
		searcher = meili
		indexer = meili
		defer meili.Close()
	}

	// Attachment storage is optional; uploads return 503 without it
	var imageService *service.ImageService
	if cfg.S3.AccessKeyID != "" {
		attachmentRepo, err := storage.NewS3AttachmentRepository(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize attachment storage")
		}
		imageService = service.NewImageService(attachmentRepo)
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Attachment storage ready")
	} else {
		imageService = service.NewImageService(nil)
		log.Warn().Msg("Attachment storage not configured, image uploads disabled")
	}

	// Initialize services
	workspaceService := service.NewWorkspaceService(userRepo, workspaceRepo)
	noteService := service.NewNoteService(noteRepo, searcher, indexer)
	templateService := service.NewTemplateService(noteService, markdown.NewRenderer())

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, workspaceService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// WebSocket hub and editor session plumbing
	hub := websocket.NewHub()
	wsValidator, err := websocket.NewAuth0JWTValidator(cfg.Auth0Domain, cfg.Auth0Audience, &workspaceLookupAdapter{repo: workspaceRepo})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create WebSocket JWT validator")
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(workspaceService)
	noteHandler := handler.NewNoteHandler(noteService, hub)
	templateHandler := handler.NewTemplateHandler(templateService, hub)
	imageHandler := handler.NewImageHandler(imageService)
	wsHandler := handler.NewWebSocketHandler(hub, wsValidator, noteRepo, log.With().Str("component", "autosave").Logger(), cfg.AutosaveDebounce, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, authHandler, noteHandler, templateHandler, imageHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// workspaceLookupAdapter adapts WorkspaceRepository to websocket.WorkspaceLookup
type workspaceLookupAdapter struct {
	repo domain.WorkspaceRepository
}

// GetWorkspaceByAuth0ID implements websocket.WorkspaceLookup
func (a *workspaceLookupAdapter) GetWorkspaceByAuth0ID(ctx context.Context, auth0ID string) (int32, error) {
	workspace, err := a.repo.GetByUserAuth0ID(ctx, auth0ID)
	if err != nil {
		return 0, err
	}
	return workspace.ID, nil
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
