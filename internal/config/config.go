package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Port        int
	BackendURL  string
	FrontendURL string

	MaxClipLength int
	MaxUploadSize int64
	UploadDir     string
	OutputDir     string
	WorkerCount   int

	ProcessorURL     string
	ProcessorTimeout time.Duration

	TMDbAPIKey          string
	TMDbReadAccessToken string

	YouTubeAPIKey       string
	YouTubeClientID     string
	YouTubeClientSecret string

	TikTokClientKey    string
	TikTokClientSecret string

	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSRegion          string
	S3Bucket           string
}

// Load reads configuration from environment variables and validates required fields.
func Load() (Config, error) {
	port, err := getEnvInt("PORT", 5000)
	if err != nil {
		return Config{}, fmt.Errorf("parse PORT: %w", err)
	}

	maxClipLength, err := getEnvInt("MAX_CLIP_LENGTH", 180)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_CLIP_LENGTH: %w", err)
	}

	maxUploadSize, err := getEnvInt64("MAX_UPLOAD_SIZE", 500*1024*1024)
	if err != nil {
		return Config{}, fmt.Errorf("parse MAX_UPLOAD_SIZE: %w", err)
	}

	workerCount, err := getEnvInt("WORKER_COUNT", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse WORKER_COUNT: %w", err)
	}

	processorTimeout, err := getEnvDuration("VIDEO_PROCESSOR_TIMEOUT", 10*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("parse VIDEO_PROCESSOR_TIMEOUT: %w", err)
	}

	cfg := Config{
		Port:        port,
		BackendURL:  getEnv("BACKEND_URL", "http://localhost:5000"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		MaxClipLength: maxClipLength,
		MaxUploadSize: maxUploadSize,
		UploadDir:     getEnv("VIDEO_UPLOAD_DIR", "./uploads"),
		OutputDir:     getEnv("VIDEO_OUTPUT_DIR", "./processed"),
		WorkerCount:   workerCount,

		ProcessorURL:     getEnv("VIDEO_PROCESSOR_URL", "http://localhost:8000"),
		ProcessorTimeout: processorTimeout,

		TMDbAPIKey:          getEnv("TMDB_API_KEY", ""),
		TMDbReadAccessToken: getEnv("TMDB_READ_ACCESS_TOKEN", ""),

		YouTubeAPIKey:       getEnv("YOUTUBE_API_KEY", ""),
		YouTubeClientID:     getEnv("YOUTUBE_CLIENT_ID", ""),
		YouTubeClientSecret: getEnv("YOUTUBE_CLIENT_SECRET", ""),

		TikTokClientKey:    getEnv("TIKTOK_CLIENT_KEY", ""),
		TikTokClientSecret: getEnv("TIKTOK_CLIENT_SECRET", ""),

		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		S3Bucket:           getEnv("AWS_S3_BUCKET", ""),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	if c.MaxClipLength <= 0 {
		return fmt.Errorf("MAX_CLIP_LENGTH must be positive")
	}
	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	if c.ProcessorURL == "" {
		return fmt.Errorf("VIDEO_PROCESSOR_URL is required")
	}
	return nil
}

// UseS3 reports whether artifacts should be stored in S3 instead of the
// local filesystem.
func (c Config) UseS3() bool {
	return c.AWSAccessKeyID != "" && c.S3Bucket != ""
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(v)
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	return time.ParseDuration(v)
}
