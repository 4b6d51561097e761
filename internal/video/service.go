package video

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path"

	"github.com/retakehq/retake/internal/billing"
	"github.com/retakehq/retake/internal/job"
	"github.com/retakehq/retake/internal/metrics"
	"github.com/retakehq/retake/internal/sage"
	"github.com/retakehq/retake/internal/storage"
)

// maxFileSize is the upload size limit (5 GiB).
const maxFileSize = 5 << 30

// Service orchestrates the video lifecycle: creation with a presigned
// upload, remote processing submission with a credit hold, and
// webhook-driven settlement.
type Service struct {
	videos  Repository
	files   FileRepository
	jobs    job.Repository
	billing *billing.Service
	sage    sage.Client
	store   storage.Storage
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// ServiceOption is a function that configures a Service.
type ServiceOption func(*Service)

// WithMetrics attaches Prometheus collectors to the service.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService creates a new video Service.
func NewService(
	videos Repository,
	files FileRepository,
	jobs job.Repository,
	billingSvc *billing.Service,
	sageClient sage.Client,
	store storage.Storage,
	logger *slog.Logger,
	opts ...ServiceOption,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		videos:  videos,
		files:   files,
		jobs:    jobs,
		billing: billingSvc,
		sage:    sageClient,
		store:   store,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOutput is the result of creating a video.
type CreateOutput struct {
	// VideoID is the new video's identifier.
	VideoID string
	// UploadURL is the presigned PUT URL the client uploads the bytes to.
	UploadURL string
	// FileURL is the public URL the object will have once uploaded.
	FileURL string
}

// UploadKey returns the deterministic storage key for a video's source file.
func UploadKey(videoID, ext string) string {
	return "videos/" + videoID + "/video" + ext
}

// Create inserts a video row and issues a presigned upload URL for its
// source file. The caller uploads the raw bytes directly to storage; the
// service never sees file contents.
func (s *Service) Create(ctx context.Context, userID, title, fileName, fileType string, fileSize int64) (CreateOutput, error) {
	ext := path.Ext(fileName)
	if ext == "" {
		return CreateOutput{}, ErrInvalidFileExtension
	}
	if fileSize > maxFileSize {
		return CreateOutput{}, ErrFileTooLarge
	}

	v := New(userID, title)
	if err := s.videos.Create(ctx, v); err != nil {
		return CreateOutput{}, fmt.Errorf("create video: %w", err)
	}

	key := UploadKey(v.ID, ext)

	signed, err := s.store.SignedUploadURL(ctx, key, fileType, fileSize)
	if err != nil {
		return CreateOutput{}, fmt.Errorf("sign upload url: %w", err)
	}

	// Create and assign the file to the video.
	f := NewFile(s.store.URI(key), fileSize)
	if err := s.files.Create(ctx, f); err != nil {
		return CreateOutput{}, fmt.Errorf("create file: %w", err)
	}

	v.FileID = f.ID
	if err := s.videos.Update(ctx, v); err != nil {
		return CreateOutput{}, fmt.Errorf("attach file: %w", err)
	}

	s.logger.Info("video created",
		slog.String("video_id", v.ID),
		slog.String("user_id", userID),
		slog.String("key", key),
		slog.Int64("file_size", fileSize),
	)

	return CreateOutput{
		VideoID:   v.ID,
		UploadURL: signed,
		FileURL:   s.store.URL(key),
	}, nil
}

// Process submits the video to the remote analysis API and reserves the
// credit cost against the resulting job. The video moves to processing
// immediately; a failure in any later step leaves it there with no
// compensating rollback, and calling Process again re-runs the submission.
func (s *Service) Process(ctx context.Context, userID, videoID string) error {
	v, err := s.videos.FindByID(ctx, videoID)
	if err != nil {
		return err
	}
	if v.UserID != userID {
		return ErrUnauthorized
	}

	v.Status = StatusProcessing
	if err := s.videos.Update(ctx, v); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	if v.FileID == "" {
		return ErrMissingFile
	}
	f, err := s.files.FindByID(ctx, v.FileID)
	if err != nil {
		return fmt.Errorf("load video file: %w", err)
	}
	key := s.store.ExtractKey(f.URI)

	info, err := s.sage.VideoInfo(ctx, v.ID, key)
	if err != nil {
		return fmt.Errorf("could not get video info: %w", err)
	}
	cost := costMinutes(info.DurationMS)

	// Advisory check before submitting; the reservation below re-checks
	// under the per-user lock and is authoritative.
	available, err := s.billing.AvailableCredits(ctx, v.UserID)
	if err != nil {
		return fmt.Errorf("could not get available credit balance: %w", err)
	}
	if cost > available {
		return billing.ErrInsufficientCredits
	}

	ref, err := s.sage.ProcessVideo(ctx, v.ID, key, v.Title)
	if err != nil {
		return fmt.Errorf("error processing video: %w", err)
	}

	j := job.New(v.ID, ref.ID, cost)
	if err := s.jobs.Create(ctx, j); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	if s.metrics != nil {
		s.metrics.JobsSubmitted.Inc()
	}

	if _, err := s.billing.ReserveIfAvailable(ctx, v.UserID, cost, billing.ReasonVideoProcessingJob, j.ID); err != nil {
		if errors.Is(err, billing.ErrInsufficientCredits) {
			return err
		}
		return fmt.Errorf("could not reserve balance required: %w", err)
	}
	if err := s.jobs.TransitionSettlement(ctx, j.ID, job.SettlementPending, job.SettlementReserved); err != nil {
		return fmt.Errorf("mark reserved: %w", err)
	}

	s.logger.Info("processing job submitted",
		slog.String("video_id", v.ID),
		slog.String("job_id", j.ID),
		slog.String("external_id", ref.ID),
		slog.Int64("cost_minutes", cost),
	)

	return nil
}

// OnJobCompleted settles a processing job reported finished by the inbound
// webhook. The reserved credits are released exactly once; on success the
// cost is then debited and the video marked done, on failure the video is
// terminated and the user keeps all credits.
//
// The remote status is fetched before the settlement transition so that a
// fetch failure mutates nothing and a redelivered webhook can retry. The
// reserved-to-settled transition is a compare-and-swap, so a duplicate or
// concurrent delivery becomes a no-op instead of a double release.
func (s *Service) OnJobCompleted(ctx context.Context, externalID string, success bool) error {
	j, err := s.jobs.FindByExternalID(ctx, externalID)
	if err != nil {
		return err
	}
	if j.Completed || j.Settlement == job.SettlementSettled {
		// Already finalised.
		s.logger.Info("duplicate completion ignored",
			slog.String("job_id", j.ID),
			slog.String("external_id", externalID),
		)
		return nil
	}

	v, err := s.videos.FindByID(ctx, j.ResourceID)
	if err != nil {
		return err
	}

	status, err := s.sage.JobStatus(ctx, j.ExternalID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrJobStatus, err)
	}

	if err := s.jobs.TransitionSettlement(ctx, j.ID, job.SettlementReserved, job.SettlementSettled); err != nil {
		if errors.Is(err, job.ErrSettlementConflict) {
			// Lost the race against another delivery.
			return nil
		}
		return fmt.Errorf("settle job: %w", err)
	}

	if _, err := s.billing.Release(ctx, v.UserID, j.Cost, billing.ReasonVideoProcessingJob, j.ID); err != nil {
		return fmt.Errorf("error releasing funds for video processing: %w", err)
	}

	if success {
		if err := s.onVideoProcessed(ctx, j, v); err != nil {
			return err
		}
	} else {
		v.Status = StatusTerminated
		if err := s.videos.Update(ctx, v); err != nil {
			return fmt.Errorf("mark terminated: %w", err)
		}
	}

	j.Settlement = job.SettlementSettled
	j.Completed = true
	j.Successful = success
	j.Result = status.Result
	if err := s.jobs.Update(ctx, j); err != nil {
		return fmt.Errorf("finalise job: %w", err)
	}

	if s.metrics != nil {
		outcome := "failure"
		if success {
			outcome = "success"
		}
		s.metrics.JobsSettled.WithLabelValues(outcome).Inc()
	}

	s.logger.Info("job settled",
		slog.String("job_id", j.ID),
		slog.String("video_id", v.ID),
		slog.Bool("successful", success),
		slog.Int64("cost_minutes", j.Cost),
	)

	return nil
}

// onVideoProcessed applies the success path: debit the reserved cost and
// mark the video done.
func (s *Service) onVideoProcessed(ctx context.Context, j *job.Job, v *Video) error {
	if _, err := s.billing.Debit(ctx, v.UserID, j.Cost, billing.ReasonVideoProcessingJob, j.ID, ""); err != nil {
		return fmt.Errorf("error debiting funds for video processing: %w", err)
	}

	// TODO: create clip records from the analysis result once the clip
	// pipeline lands.

	v.Status = StatusDone
	if err := s.videos.Update(ctx, v); err != nil {
		return fmt.Errorf("mark done: %w", err)
	}
	return nil
}

// JobStatus returns the remote state of a local job.
func (s *Service) JobStatus(ctx context.Context, jobID string) (sage.JobStatus, error) {
	j, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		return sage.JobStatus{}, err
	}
	return s.sage.JobStatus(ctx, j.ExternalID)
}

// costMinutes converts a duration to the credit charge: whole minutes,
// rounded. Durations under 30 seconds round to zero and process free.
func costMinutes(durationMS int64) int64 {
	return int64(math.Round(float64(durationMS) / 1000 / 60))
}
