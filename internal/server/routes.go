package server

import (
	"log/slog"
	"net/http"

	"github.com/retakehq/retake/internal/auth"
	"github.com/retakehq/retake/internal/metrics"
)

// Config contains server configuration options.
type Config struct {
	// AllowedOrigins is the list of allowed CORS origins.
	AllowedOrigins []string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		AllowedOrigins: []string{"*"},
	}
}

// NewRouter creates a new HTTP router with all routes configured.
// It uses Go 1.22+ ServeMux with method-based routing.
func NewRouter(h *Handlers, sessions auth.SessionStore, m *metrics.Metrics, logger *slog.Logger, cfg Config) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	authed := AuthMiddleware(sessions)

	// Public routes
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("POST /signup", h.Signup)
	mux.HandleFunc("POST /login", h.Login)
	mux.HandleFunc("POST /webhook", h.Webhook)
	mux.Handle("GET /metrics", m.Handler())

	// Authenticated routes
	mux.Handle("PUT /videos", authed(http.HandlerFunc(h.CreateVideo)))
	mux.Handle("POST /videos/{id}/process", authed(http.HandlerFunc(h.ProcessVideo)))
	mux.Handle("GET /videos/jobs/{id}", authed(http.HandlerFunc(h.GetJobStatus)))
	mux.Handle("POST /billing/deposits", authed(http.HandlerFunc(h.Deposit)))

	// Apply middleware chain
	chain := ChainMiddleware(
		RecoveryMiddleware(logger),
		LoggingMiddleware(logger),
		MetricsMiddleware(m),
		CORSMiddleware(cfg.AllowedOrigins),
	)

	return chain(mux)
}
