// Package server provides the HTTP server for the Retake API.
// It includes handlers, middleware, routes, and DTOs separated from domain types.
package server

import "encoding/json"

// CreateVideoRequest is the HTTP request body for creating a video.
type CreateVideoRequest struct {
	// Title is the display title for the video.
	Title string `json:"title" validate:"required"`
	// FileName is the original file name; its extension is preserved.
	FileName string `json:"fileName" validate:"required"`
	// FileType is the MIME type the upload will carry.
	FileType string `json:"fileType" validate:"required"`
	// FileSize is the upload size in bytes.
	FileSize int64 `json:"fileSize" validate:"required,min=1"`
}

// CreateVideoResponse is the HTTP response after creating a video.
type CreateVideoResponse struct {
	// ID is the new video's identifier.
	ID string `json:"id"`
	// UploadURL is the presigned PUT URL to upload the bytes to.
	UploadURL string `json:"uploadUrl"`
	// URL is the public URL the object will have once uploaded.
	URL string `json:"url,omitempty"`
}

// JobStatusResponse is the HTTP response for job status lookups.
type JobStatusResponse struct {
	// ID is the remote job identifier.
	ID string `json:"id"`
	// Completed reports whether the remote job has finished.
	Completed bool `json:"completed"`
	// Result is the raw remote result payload, if any.
	Result json.RawMessage `json:"result,omitempty"`
}

// WebhookRequest is the push notification body sent by Sage.
type WebhookRequest struct {
	// Operation names the remote operation that finished.
	Operation string `json:"operation" validate:"required"`
	// Success reports the remote outcome.
	Success bool `json:"success"`
	// JobID is the remote job identifier.
	JobID string `json:"jobId" validate:"required"`
}

// OperationProcessVideo is the webhook operation for finished processing jobs.
const OperationProcessVideo = "process_video"

// DepositRequest is the HTTP request body for recording a credit purchase.
type DepositRequest struct {
	// ExternalID is the payment provider's charge identifier.
	ExternalID string `json:"externalId" validate:"required"`
	// Currency is the ISO currency code of the charge.
	Currency string `json:"currency" validate:"required,len=3"`
	// Amount is the charge amount in the currency's minor unit.
	Amount int64 `json:"amount" validate:"required,min=1"`
	// Credits is the number of credit minutes purchased.
	Credits int64 `json:"credits" validate:"required,min=1"`
}

// DepositResponse is the HTTP response after recording a deposit.
type DepositResponse struct {
	// PaymentID is the recorded payment's identifier.
	PaymentID string `json:"paymentId"`
	// Credits is the number of credit minutes granted.
	Credits int64 `json:"credits"`
}

// SignupRequest is the HTTP request body for creating an account.
type SignupRequest struct {
	// Email is the login identifier.
	Email string `json:"email" validate:"required,email"`
	// Password is the plaintext password; only its hash is stored.
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest is the HTTP request body for authenticating.
type LoginRequest struct {
	// Email is the login identifier.
	Email string `json:"email" validate:"required,email"`
	// Password is the plaintext password to verify.
	Password string `json:"password" validate:"required"`
}

// SessionResponse is the HTTP response after signup or login.
type SessionResponse struct {
	// Token is the opaque session token for the Authorization header.
	Token string `json:"token"`
	// UserID is the authenticated account's identifier.
	UserID string `json:"userId"`
	// Email is the authenticated account's email.
	Email string `json:"email"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	// Error is the human-readable error message.
	Error string `json:"error"`
	// Code is the error code for programmatic handling.
	Code string `json:"code"`
}

// HealthResponse is the HTTP response for the health check endpoint.
type HealthResponse struct {
	// Status is the health status of the service.
	Status string `json:"status"`
}
