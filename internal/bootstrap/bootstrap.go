// Package bootstrap provides dependency initialization for the Retake API.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/retakehq/retake/internal/auth"
	"github.com/retakehq/retake/internal/billing"
	"github.com/retakehq/retake/internal/config"
	"github.com/retakehq/retake/internal/job"
	"github.com/retakehq/retake/internal/metrics"
	"github.com/retakehq/retake/internal/payment"
	"github.com/retakehq/retake/internal/postgres"
	"github.com/retakehq/retake/internal/sage"
	"github.com/retakehq/retake/internal/storage"
	"github.com/retakehq/retake/internal/user"
	"github.com/retakehq/retake/internal/video"
)

// Dependencies holds all initialized dependencies for the HTTP server.
type Dependencies struct {
	VideoService   *video.Service
	AuthService    *auth.Service
	PaymentService *payment.Service
	Sessions       auth.SessionStore
	Metrics        *metrics.Metrics
}

// repositories bundles the persistence implementations behind the services.
type repositories struct {
	videos   video.Repository
	files    video.FileRepository
	jobs     job.Repository
	balances billing.Repository
	users    user.Repository
	payments payment.Repository
}

// NewDependencies creates and initializes all dependencies for the application.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	repos, err := initRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewS3Storage(ctx, storage.S3Config{
		Bucket:          cfg.VideoBucket,
		Region:          cfg.VideoRegion,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 storage: %w", err)
	}

	var sageOpts []sage.ClientOption
	if cfg.WebhookURL() != "" {
		sageOpts = append(sageOpts, sage.WithWebhookURL(cfg.WebhookURL()))
	}
	sageClient, err := sage.NewClient(cfg.SageAPIURL, sageOpts...)
	if err != nil {
		return nil, fmt.Errorf("create Sage client: %w", err)
	}

	sessions, err := initSessions(cfg, logger)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	billingSvc := billing.NewService(repos.balances, logger, billing.WithMetrics(m))
	videoSvc := video.NewService(
		repos.videos,
		repos.files,
		repos.jobs,
		billingSvc,
		sageClient,
		store,
		logger,
		video.WithMetrics(m),
	)
	authSvc := auth.NewService(repos.users, sessions, logger)
	paymentSvc := payment.NewService(repos.payments, billingSvc, logger)

	return &Dependencies{
		VideoService:   videoSvc,
		AuthService:    authSvc,
		PaymentService: paymentSvc,
		Sessions:       sessions,
		Metrics:        m,
	}, nil
}

// initRepositories opens Postgres when a DSN is configured and falls back
// to in-memory repositories otherwise.
func initRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("in-memory repositories configured")
		return &repositories{
			videos:   video.NewMemoryRepository(),
			files:    video.NewMemoryFileRepository(),
			jobs:     job.NewMemoryRepository(),
			balances: billing.NewMemoryRepository(),
			users:    user.NewMemoryRepository(),
			payments: payment.NewMemoryRepository(),
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("migrate postgres: %w", err)
	}
	logger.Info("postgres repositories configured")

	return &repositories{
		videos:   postgres.NewVideoRepository(db),
		files:    postgres.NewFileRepository(db),
		jobs:     postgres.NewJobRepository(db),
		balances: postgres.NewBalanceRepository(db),
		users:    postgres.NewUserRepository(db),
		payments: postgres.NewPaymentRepository(db),
	}, nil
}

// initSessions creates the session store: Redis-backed when configured,
// in-memory otherwise.
func initSessions(cfg *config.Config, logger *slog.Logger) (auth.SessionStore, error) {
	if cfg.RedisURL == "" {
		logger.Info("in-memory sessions configured")
		return auth.NewMemorySessions(), nil
	}

	sessions, err := auth.NewRedisSessionsFromURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("create redis sessions: %w", err)
	}
	logger.Info("redis sessions configured")
	return sessions, nil
}
