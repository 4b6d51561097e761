// Package storage provides the object-storage capability used for video
// uploads. The service never sees file contents; clients upload directly
// against short-lived presigned URLs.
package storage

import (
	"context"
	"strings"
)

// Storage defines the object-storage operations the video service depends on.
type Storage interface {
	// SignedUploadURL returns a presigned PUT URL for the key. The URL is
	// bound to the given content type and length and expires quickly.
	SignedUploadURL(ctx context.Context, key, contentType string, contentLength int64) (string, error)

	// FileSize returns the stored object's size in bytes, or zero when the
	// object does not exist.
	FileSize(ctx context.Context, key string) (int64, error)

	// URI returns the canonical s3://bucket/key form for a key.
	URI(key string) string

	// URL returns the public https form for a key.
	URL(key string) string

	// ExtractKey recovers the object key from a stored URI.
	ExtractKey(uri string) string
}

// buildURI renders the s3://bucket/key form.
func buildURI(bucket, key string) string {
	return "s3://" + bucket + "/" + strings.TrimPrefix(key, "/")
}

// buildURL renders the regional https form.
func buildURL(bucket, region, key string) string {
	return "https://" + bucket + ".s3." + region + ".amazonaws.com/" + strings.TrimPrefix(key, "/")
}

// extractKey recovers the object key from either URI form. Unknown
// schemes are returned unchanged.
func extractKey(bucket, region, uri string) string {
	if rest, ok := strings.CutPrefix(uri, "s3://"+bucket+"/"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(uri, "https://"+bucket+".s3."+region+".amazonaws.com/"); ok {
		return rest
	}
	return uri
}
