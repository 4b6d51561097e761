package video

import (
	"context"
	"errors"
)

// Static errors for video operations.
var (
	// ErrVideoNotFound is returned when a video cannot be found by ID.
	ErrVideoNotFound = errors.New("video not found")
	// ErrFileNotFound is returned when a file cannot be found by ID.
	ErrFileNotFound = errors.New("file not found")
	// ErrUnauthorized is returned when a user acts on a video they do not own.
	ErrUnauthorized = errors.New("video: unauthorized")
	// ErrMissingFile is returned when processing a video with no uploaded file.
	ErrMissingFile = errors.New("video: missing video file")
	// ErrInvalidFileExtension is returned when the upload file name has no extension.
	ErrInvalidFileExtension = errors.New("video: invalid file extension")
	// ErrFileTooLarge is returned when the upload exceeds the size limit.
	ErrFileTooLarge = errors.New("video: file too large")
	// ErrJobStatus is returned when the remote job status cannot be fetched
	// during settlement. Nothing has been mutated; a redelivered webhook
	// can retry.
	ErrJobStatus = errors.New("video: could not get remote job status")
)

// Repository defines the interface for video persistence.
type Repository interface {
	// Create persists a new video.
	Create(ctx context.Context, video *Video) error

	// Update persists changes to an existing video.
	// Returns ErrVideoNotFound if the video does not exist.
	Update(ctx context.Context, video *Video) error

	// FindByID retrieves a video by its unique identifier.
	// Returns ErrVideoNotFound if the video does not exist.
	FindByID(ctx context.Context, id string) (*Video, error)
}

// FileRepository defines the interface for file persistence.
type FileRepository interface {
	// Create persists a new file.
	Create(ctx context.Context, file *File) error

	// FindByID retrieves a file by its unique identifier.
	// Returns ErrFileNotFound if the file does not exist.
	FindByID(ctx context.Context, id string) (*File, error)
}
