package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/foodgram/backend/internal/handlers"
	"github.com/anonto42/foodgram/backend/internal/logging"
	"github.com/anonto42/foodgram/backend/internal/render"
	"github.com/anonto42/foodgram/backend/internal/router"
	"github.com/anonto42/foodgram/backend/internal/storage"
	"github.com/anonto42/foodgram/backend/pkg/config"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if cfg.JWTSecret == "" {
		logging.Fatal().Msg("JWT_SECRET environment variable not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db, err := config.InitDB(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.CloseDB()

	images, err := newImageStore(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize image store")
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.HTTPErrorHandler

	// Setup global middleware
	config.SetupMiddleware(e)

	// Setup routes and dependencies
	deps := router.Deps{
		DB:          db.Gorm,
		Images:      images,
		Renderer:    newRenderer(cfg),
		JWTSecret:   cfg.JWTSecret,
		PageSize:    cfg.PageSize,
		MaxPageSize: cfg.MaxPageSize,
	}
	if cfg.ImageStore == "local" {
		deps.MediaRoot, deps.MediaURL = cfg.MediaRoot, cfg.MediaURL
	}
	if err := router.SetupRoutes(e, deps); err != nil {
		logging.Fatal().Err(err).Msg("failed to set up routes")
	}

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logging.Info().Str("port", cfg.MetricsPort).Msg("metrics server listening")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("metrics server failed")
		}
	}()

	// Start server
	go func() {
		logging.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("api server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("api server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logging.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("api server shutdown")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("metrics server shutdown")
	}
}

func newImageStore(ctx context.Context, cfg *config.Config) (storage.ImageStore, error) {
	if cfg.ImageStore == "s3" {
		return storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
	}
	return storage.NewLocalStore(cfg.MediaRoot, cfg.MediaURL)
}

func newRenderer(cfg *config.Config) render.Renderer {
	if cfg.ShoppingListFormat == "pdf" {
		return render.NewPDFRenderer(cfg.PDFRenderTimeout, cfg.ChromePath)
	}
	return render.NewTextRenderer()
}
