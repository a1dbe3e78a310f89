package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"alcyxob/gym-platform/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) FileStorage {
	t.Helper()
	fs, err := NewS3Storage(context.Background(), config.S3Config{
		Endpoint:        "http://localhost:9000",
		Region:          "us-east-1",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio123",
		BucketName:      "gym",
	})
	require.NoError(t, err)
	return fs
}

func TestPresignedUploadURL(t *testing.T) {
	fs := newTestStorage(t)

	raw, err := fs.GeneratePresignedUploadURL(context.Background(), "avatars/abc/1.png", "image/png", 0)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/gym/avatars/abc/1.png", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.Contains(t, u.Query().Get("X-Amz-SignedHeaders"), "content-type")
}

func TestPresignedDownloadURL(t *testing.T) {
	fs := newTestStorage(t)

	raw, err := fs.GeneratePresignedDownloadURL(context.Background(), "reports/weekly.json", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/gym/reports/weekly.json", u.Path)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
}
