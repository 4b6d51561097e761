package config

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("SAGE_API_URL", "http://sage.local")
	t.Setenv("VIDEO_S3_BUCKET", "videos-bucket")
	t.Setenv("VIDEO_S3_REGION", "us-east-1")
}

func TestLoad(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "8080")
	t.Setenv("PUBLIC_URL", "https://api.example.com")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://sage.local", cfg.SageAPIURL)
	assert.Equal(t, "videos-bucket", cfg.VideoBucket)
	assert.Equal(t, "us-east-1", cfg.VideoRegion)
	assert.Equal(t, "https://api.example.com", cfg.PublicURL)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_MissingRequired(t *testing.T) {
	// t.Setenv registers the restore; unset so the variable is truly absent.
	t.Setenv("SAGE_API_URL", "")
	require.NoError(t, os.Unsetenv("SAGE_API_URL"))
	t.Setenv("VIDEO_S3_BUCKET", "videos-bucket")
	t.Setenv("VIDEO_S3_REGION", "us-east-1")

	_, err := Load()
	assert.ErrorIs(t, err, ErrSageURLRequired)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		SageAPIURL:  "http://sage.local",
		VideoBucket: "videos-bucket",
		VideoRegion: "us-east-1",
	}
	assert.NoError(t, cfg.Validate())

	assert.ErrorIs(t, (&Config{VideoBucket: "b", VideoRegion: "r"}).Validate(), ErrSageURLRequired)
	assert.ErrorIs(t, (&Config{SageAPIURL: "u", VideoRegion: "r"}).Validate(), ErrVideoBucketRequired)
	assert.ErrorIs(t, (&Config{SageAPIURL: "u", VideoBucket: "b"}).Validate(), ErrVideoRegionRequired)
}

func TestWebhookURL(t *testing.T) {
	assert.Empty(t, (&Config{}).WebhookURL())
	assert.Equal(t, "https://api.example.com/webhook",
		(&Config{PublicURL: "https://api.example.com"}).WebhookURL())
	assert.Equal(t, "https://api.example.com/webhook",
		(&Config{PublicURL: "https://api.example.com/"}).WebhookURL())
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), "level %q", tt.in)
	}
}
