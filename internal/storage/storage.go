package storage

import (
	"context"
	"time"
)

// DefaultPresignedURLExpiry applies when callers pass a zero expiry.
const DefaultPresignedURLExpiry = 15 * time.Minute

// FileStorage covers the object storage the gym uses: coach avatars are
// uploaded by browsers through presigned URLs, weekly reports are written
// by the server itself.
type FileStorage interface {
	// GeneratePresignedUploadURL returns a temporary PUT URL. The uploader
	// must send the same Content-Type.
	GeneratePresignedUploadURL(ctx context.Context, objectKey string, contentType string, expires time.Duration) (string, error)
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
	PutObject(ctx context.Context, objectKey string, contentType string, body []byte) error
	DeleteObject(ctx context.Context, objectKey string) error
}
