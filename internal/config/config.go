// Package config provides configuration loading from environment variables.
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

// Static errors for configuration validation.
var (
	// ErrSageURLRequired is returned when SAGE_API_URL is not set.
	ErrSageURLRequired = errors.New("config: SAGE_API_URL is required")
	// ErrVideoBucketRequired is returned when VIDEO_S3_BUCKET is not set.
	ErrVideoBucketRequired = errors.New("config: VIDEO_S3_BUCKET is required")
	// ErrVideoRegionRequired is returned when VIDEO_S3_REGION is not set.
	ErrVideoRegionRequired = errors.New("config: VIDEO_S3_REGION is required")
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	Port int `env:"PORT, default=5000" json:"port"`
	// PublicURL is the externally reachable base URL, used to build the
	// webhook callback passed to Sage.
	PublicURL string `env:"PUBLIC_URL" json:"public_url,omitempty"`

	// Sage settings
	SageAPIURL string `env:"SAGE_API_URL, required" json:"sage_api_url"`

	// Storage settings
	VideoBucket        string `env:"VIDEO_S3_BUCKET, required" json:"video_s3_bucket"`
	VideoRegion        string `env:"VIDEO_S3_REGION, required" json:"video_s3_region"`
	S3Endpoint         string `env:"S3_ENDPOINT" json:"s3_endpoint,omitempty"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID" json:"-"`     // Masked in JSON
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" json:"-"` // Masked in JSON

	// Persistence settings. When DatabaseURL is empty the service runs on
	// in-memory repositories; when RedisURL is empty sessions are in-memory.
	DatabaseURL string `env:"DATABASE_URL" json:"-"` // Masked in JSON
	RedisURL    string `env:"REDIS_URL" json:"-"`    // Masked in JSON

	// Logging settings
	LogFormat string `env:"LOG_FORMAT, default=text" json:"log_format"` // "json" or "text"
	LogLevel  string `env:"LOG_LEVEL, default=info" json:"log_level"`   // "debug", "info", "warn", "error"
}

// WebhookURL returns the callback URL pushed to Sage on submissions, or
// empty when no public URL is configured.
func (c *Config) WebhookURL() string {
	if c.PublicURL == "" {
		return ""
	}
	return strings.TrimSuffix(c.PublicURL, "/") + "/webhook"
}

// Load reads configuration from environment variables using go-envconfig.
// It returns an error if required variables are not set.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := envconfig.Process(context.Background(), cfg); err != nil {
		// Map envconfig errors to our domain errors for required fields
		if strings.Contains(err.Error(), "SAGE_API_URL") {
			return nil, ErrSageURLRequired
		}
		if strings.Contains(err.Error(), "VIDEO_S3_BUCKET") {
			return nil, ErrVideoBucketRequired
		}
		if strings.Contains(err.Error(), "VIDEO_S3_REGION") {
			return nil, ErrVideoRegionRequired
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() error {
	if c.SageAPIURL == "" {
		return ErrSageURLRequired
	}
	if c.VideoBucket == "" {
		return ErrVideoBucketRequired
	}
	if c.VideoRegion == "" {
		return ErrVideoRegionRequired
	}
	return nil
}

// NewLogger creates a structured logger based on the configuration.
// When LogFormat is "json", it outputs JSON logs suitable for production.
// Otherwise, it outputs human-readable text logs.
func (c *Config) NewLogger() *slog.Logger {
	level := parseLogLevel(c.LogLevel)

	var handler slog.Handler
	if strings.ToLower(c.LogFormat) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	return slog.New(handler)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
