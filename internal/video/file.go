package video

import (
	"time"

	"github.com/google/uuid"
)

// FileProvider identifies where a file's bytes live.
type FileProvider string

const (
	// FileProviderS3 marks files stored in S3.
	FileProviderS3 FileProvider = "s3"
)

// File points at an object-storage object referenced by a Video.
type File struct {
	// ID is the unique identifier for this file.
	ID string
	// DateCreated is when the file row was created.
	DateCreated time.Time
	// Provider identifies the storage backend.
	Provider FileProvider
	// URI is the canonical storage location (s3://bucket/key).
	URI string
	// ByteSize is the declared size of the object in bytes.
	ByteSize int64
}

// NewFile creates a File pointing at an S3 URI with a generated ID.
func NewFile(uri string, byteSize int64) *File {
	return &File{
		ID:          uuid.NewString(),
		DateCreated: time.Now().UTC(),
		Provider:    FileProviderS3,
		URI:         uri,
		ByteSize:    byteSize,
	}
}
