package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "http://localhost:5000", cfg.BackendURL)
	assert.Equal(t, 180, cfg.MaxClipLength)
	assert.Equal(t, int64(500*1024*1024), cfg.MaxUploadSize)
	assert.Equal(t, "./uploads", cfg.UploadDir)
	assert.Equal(t, "./processed", cfg.OutputDir)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, "http://localhost:8000", cfg.ProcessorURL)
	assert.Equal(t, 10*time.Minute, cfg.ProcessorTimeout)
	assert.Equal(t, "us-east-1", cfg.AWSRegion)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_CLIP_LENGTH", "60")
	t.Setenv("VIDEO_PROCESSOR_URL", "http://processor:8000")
	t.Setenv("VIDEO_PROCESSOR_TIMEOUT", "5m")
	t.Setenv("TMDB_API_KEY", "tmdb-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 60, cfg.MaxClipLength)
	assert.Equal(t, "http://processor:8000", cfg.ProcessorURL)
	assert.Equal(t, 5*time.Minute, cfg.ProcessorTimeout)
	assert.Equal(t, "tmdb-key", cfg.TMDbAPIKey)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Run("non-numeric port", func(t *testing.T) {
		t.Setenv("PORT", "not-a-number")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PORT")
	})

	t.Run("bad timeout", func(t *testing.T) {
		t.Setenv("VIDEO_PROCESSOR_TIMEOUT", "ten minutes")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("negative clip length", func(t *testing.T) {
		t.Setenv("MAX_CLIP_LENGTH", "-5")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MAX_CLIP_LENGTH")
	})
}

func TestConfig_UseS3(t *testing.T) {
	cfg := Config{}
	assert.False(t, cfg.UseS3())

	cfg.AWSAccessKeyID = "AKIA..."
	assert.False(t, cfg.UseS3(), "bucket is also required")

	cfg.S3Bucket = "clips-bucket"
	assert.True(t, cfg.UseS3())
}
