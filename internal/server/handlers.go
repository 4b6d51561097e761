package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/retakehq/retake/internal/auth"
	"github.com/retakehq/retake/internal/billing"
	"github.com/retakehq/retake/internal/job"
	"github.com/retakehq/retake/internal/payment"
	"github.com/retakehq/retake/internal/user"
	"github.com/retakehq/retake/internal/video"
)

// Handlers contains the HTTP handlers for the API.
type Handlers struct {
	videos    *video.Service
	auth      *auth.Service
	payments  *payment.Service
	validator *validator.Validate
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(videos *video.Service, authSvc *auth.Service, payments *payment.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		videos:    videos,
		auth:      authSvc,
		payments:  payments,
		validator: validator.New(),
		logger:    logger,
	}
}

// Health handles GET /health requests.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// CreateVideo handles PUT /videos requests: it inserts the video row and
// returns the presigned URL the client uploads the bytes to.
func (h *Handlers) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var req CreateVideoRequest
	if !h.decode(w, r, &req) {
		return
	}

	out, err := h.videos.Create(r.Context(), UserID(r.Context()), req.Title, req.FileName, req.FileType, req.FileSize)
	if err != nil {
		switch {
		case errors.Is(err, video.ErrInvalidFileExtension):
			writeError(w, http.StatusBadRequest, "file name has no extension", "INVALID_FILE_EXTENSION")
		case errors.Is(err, video.ErrFileTooLarge):
			writeError(w, http.StatusBadRequest, "file exceeds the upload size limit", "FILE_TOO_LARGE")
		default:
			h.logger.Error("failed to create video",
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to create video", "VIDEO_CREATION_FAILED")
		}
		return
	}

	writeJSON(w, http.StatusOK, CreateVideoResponse{
		ID:        out.VideoID,
		UploadURL: out.UploadURL,
		URL:       out.FileURL,
	})
}

// ProcessVideo handles POST /videos/{id}/process requests.
func (h *Handlers) ProcessVideo(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("id")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "video ID is required", "MISSING_VIDEO_ID")
		return
	}

	err := h.videos.Process(r.Context(), UserID(r.Context()), videoID)
	if err != nil {
		switch {
		case errors.Is(err, video.ErrVideoNotFound):
			writeError(w, http.StatusNotFound, "video not found", "VIDEO_NOT_FOUND")
		case errors.Is(err, video.ErrUnauthorized):
			writeError(w, http.StatusForbidden, "video belongs to another user", "FORBIDDEN")
		case errors.Is(err, video.ErrMissingFile):
			writeError(w, http.StatusBadRequest, "video has no uploaded file", "MISSING_FILE")
		case errors.Is(err, billing.ErrInsufficientCredits):
			writeError(w, http.StatusPaymentRequired, "insufficient credits", "INSUFFICIENT_CREDITS")
		default:
			h.logger.Error("failed to process video",
				slog.String("video_id", videoID),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusBadGateway, "error processing video", "PROCESSING_FAILED")
		}
		return
	}

	w.WriteHeader(http.StatusOK)
}

// GetJobStatus handles GET /videos/jobs/{id} requests.
func (h *Handlers) GetJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		writeError(w, http.StatusBadRequest, "job ID is required", "MISSING_JOB_ID")
		return
	}

	status, err := h.videos.JobStatus(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "job not found", "JOB_NOT_FOUND")
			return
		}
		h.logger.Error("failed to get job status",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "error getting job status", "JOB_STATUS_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, JobStatusResponse{
		ID:        status.ID,
		Completed: status.Completed,
		Result:    status.Result,
	})
}

// Webhook handles POST /webhook push notifications from Sage.
func (h *Handlers) Webhook(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.logger.Info("webhook received",
		slog.String("operation", req.Operation),
		slog.String("job_id", req.JobID),
		slog.Bool("success", req.Success),
	)

	switch req.Operation {
	case OperationProcessVideo:
		if err := h.videos.OnJobCompleted(r.Context(), req.JobID, req.Success); err != nil {
			h.logger.Error("failed to settle job",
				slog.String("job_id", req.JobID),
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusInternalServerError, "failed to settle job", "SETTLEMENT_FAILED")
			return
		}
	default:
		// Unknown operations are acknowledged so the sender stops retrying.
		h.logger.Warn("unknown webhook operation",
			slog.String("operation", req.Operation),
		)
	}

	w.WriteHeader(http.StatusOK)
}

// Deposit handles POST /billing/deposits requests. The payment provider
// integration is stubbed; the handler records the charge reference it is
// given and credits the purchased minutes.
func (h *Handlers) Deposit(w http.ResponseWriter, r *http.Request) {
	var req DepositRequest
	if !h.decode(w, r, &req) {
		return
	}

	p, err := h.payments.RecordDeposit(r.Context(), UserID(r.Context()), req.ExternalID, req.Currency, req.Amount, req.Credits)
	if err != nil {
		h.logger.Error("failed to record deposit",
			slog.String("external_id", req.ExternalID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to record deposit", "DEPOSIT_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, DepositResponse{
		PaymentID: p.ID,
		Credits:   req.Credits,
	})
}

// Signup handles POST /signup requests.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, token, err := h.auth.Signup(r.Context(), req.Email, req.Password, r.RemoteAddr)
	if err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			writeError(w, http.StatusConflict, "email already registered", "EMAIL_EXISTS")
			return
		}
		h.logger.Error("failed to sign up",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to sign up", "SIGNUP_FAILED")
		return
	}

	writeJSON(w, http.StatusCreated, SessionResponse{
		Token:  token,
		UserID: u.ID,
		Email:  u.Email,
	})
}

// Login handles POST /login requests.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	u, token, err := h.auth.Login(r.Context(), req.Email, req.Password, r.RemoteAddr)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) || errors.Is(err, auth.ErrIncorrectPassword) {
			writeError(w, http.StatusUnauthorized, "invalid credentials", "INVALID_CREDENTIALS")
			return
		}
		h.logger.Error("failed to log in",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to log in", "LOGIN_FAILED")
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		Token:  token,
		UserID: u.ID,
		Email:  u.Email,
	})
}

// decode parses and validates a JSON request body, writing the error
// response itself when the body is unusable.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.Warn("failed to decode request body",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, "invalid JSON body", "INVALID_JSON")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		h.logger.Warn("request validation failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return false
	}

	return true
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
	}
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
