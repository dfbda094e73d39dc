package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/kanade/shortform/internal/client/processor"
	"github.com/kanade/shortform/internal/client/tiktok"
	"github.com/kanade/shortform/internal/client/tmdb"
	"github.com/kanade/shortform/internal/client/youtube"
	"github.com/kanade/shortform/internal/config"
	"github.com/kanade/shortform/internal/handler"
	"github.com/kanade/shortform/internal/repository"
	"github.com/kanade/shortform/internal/service"
	"github.com/kanade/shortform/internal/storage"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	artifacts, err := newArtifactStore(cfg)
	if err != nil {
		return fmt.Errorf("init artifact store: %w", err)
	}

	jobs := repository.NewMemoryJobStore()
	runner := service.NewRunner(cfg.WorkerCount)

	processorClient := processor.New(cfg.ProcessorURL, cfg.ProcessorTimeout)
	tmdbClient := tmdb.New(cfg.TMDbAPIKey, cfg.TMDbReadAccessToken)
	youtubeClient := youtube.New(cfg.YouTubeAPIKey)
	tiktokClient := tiktok.New(cfg.TikTokClientKey, cfg.TikTokClientSecret,
		cfg.BackendURL+"/api/upload/tiktok/callback")

	clipSvc := service.NewClipService(jobs, processorClient, artifacts, runner, service.ClipConfig{
		MaxClipLength: cfg.MaxClipLength,
		UploadDir:     cfg.UploadDir,
	})
	librarySvc := service.NewLibraryService(tmdbClient, service.LibraryConfig{
		PageDelay: 100 * time.Millisecond,
	})
	publishSvc := service.NewPublishService(artifacts, youtubeClient, tiktokClient, service.PublishConfig{
		YouTubeClientID:     cfg.YouTubeClientID,
		YouTubeClientSecret: cfg.YouTubeClientSecret,
		BackendURL:          cfg.BackendURL,
	})

	clipHandler := handler.NewClipHandler(clipSvc, cfg.MaxUploadSize)
	contentHandler := handler.NewContentHandler(tmdbClient)
	libraryHandler := handler.NewLibraryHandler(librarySvc)
	ytClipsHandler := handler.NewYouTubeClipsHandler(youtubeClient)
	publishHandler := handler.NewPublishHandler(publishSvc)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewAppValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(handler.RequestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	e.GET("/health", func(c echo.Context) error {
		return handler.JSON(c, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Processed clips are served as static files when stored locally.
	e.Static("/videos", cfg.OutputDir)

	api := e.Group("/api")

	clips := api.Group("/clips")
	clips.POST("/create", clipHandler.Create)
	clips.POST("/upload", clipHandler.Upload)
	clips.GET("/:clipId/status", clipHandler.Status)
	clips.GET("/:clipId/download", clipHandler.Download)
	clips.GET("/user/:userId", clipHandler.UserClips)

	content := api.Group("/content")
	content.GET("/autocomplete", contentHandler.Autocomplete)
	content.GET("/search", contentHandler.Search)
	content.GET("/:id", contentHandler.Details)
	content.GET("/:id/season/:seasonNumber", contentHandler.SeasonEpisodes)

	library := api.Group("/library")
	library.GET("", libraryHandler.Overview)
	library.GET("/tv-shows", libraryHandler.TopTVShows)
	library.GET("/movies", libraryHandler.TopMovies)
	library.GET("/streamers", libraryHandler.TopStreamers)

	ytClips := api.Group("/youtube-clips")
	ytClips.GET("/search", ytClipsHandler.Search)
	ytClips.GET("/:videoId", ytClipsHandler.Details)

	upload := api.Group("/upload")
	upload.POST("/youtube", publishHandler.PublishYouTube)
	upload.GET("/youtube/auth-url", publishHandler.YouTubeAuthURL)
	upload.GET("/youtube/callback", publishHandler.YouTubeCallback)
	upload.POST("/tiktok", publishHandler.PublishTikTok)
	upload.GET("/tiktok/auth-url", publishHandler.TikTokAuthURL)
	upload.GET("/tiktok/callback", publishHandler.TikTokCallback)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     e,
		ReadTimeout: 5 * time.Minute,
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "processor_url", cfg.ProcessorURL, "s3", cfg.UseS3())
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := runner.Shutdown(ctx); err != nil {
		slog.Warn("background runner shutdown timed out", "error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

func newArtifactStore(cfg config.Config) (storage.Store, error) {
	if cfg.UseS3() {
		return storage.NewS3Store(context.Background(),
			cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, cfg.AWSRegion, cfg.S3Bucket)
	}
	return storage.NewLocalStore(cfg.OutputDir, cfg.BackendURL)
}
