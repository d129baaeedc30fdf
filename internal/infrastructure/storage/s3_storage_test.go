package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/procurement/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStorageConfig() config.StorageConfig {
	return config.StorageConfig{
		Endpoint:        "minio.local:9000",
		Region:          "ap-southeast-1",
		Bucket:          "procurement-files",
		AccessKeyID:     "minio",
		SecretAccessKey: "minio-secret",
		UsePathStyle:    true,
	}
}

func TestNewS3ObjectStorage_Validation(t *testing.T) {
	ctx := context.Background()

	cfg := testStorageConfig()
	cfg.Bucket = ""
	_, err := NewS3ObjectStorage(ctx, cfg)
	assert.ErrorContains(t, err, "bucket is required")

	cfg = testStorageConfig()
	cfg.SecretAccessKey = ""
	_, err = NewS3ObjectStorage(ctx, cfg)
	assert.ErrorContains(t, err, "access key and secret")

	s, err := NewS3ObjectStorage(ctx, testStorageConfig())
	require.NoError(t, err)
	assert.Equal(t, "procurement-files", s.Bucket())
	assert.Equal(t, 15*time.Minute, s.presignExpiration)
}

func TestS3ObjectStorage_GenerateDownloadURL(t *testing.T) {
	ctx := context.Background()
	s, err := NewS3ObjectStorage(ctx, testStorageConfig())
	require.NoError(t, err)

	key := "deliveries/1b9d6bcd/photo.jpg"
	raw, expiresAt, err := s.GenerateDownloadURL(ctx, key, 10*time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "minio.local:9000", u.Host)
	assert.Equal(t, "/procurement-files/"+key, u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))

	_, _, err = s.GenerateDownloadURL(ctx, "", time.Minute)
	assert.Error(t, err)
}

func TestS3ObjectStorage_UploadNeedsKey(t *testing.T) {
	s, err := NewS3ObjectStorage(context.Background(), testStorageConfig())
	require.NoError(t, err)

	err = s.Upload(context.Background(), "", []byte{1}, "image/jpeg")
	assert.ErrorContains(t, err, "storage key is required")
}

func TestMemoryObjectStorage(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryObjectStorage("https://files.local")

	_, _, err := s.GenerateDownloadURL(ctx, "missing.jpg", time.Minute)
	assert.Error(t, err)

	require.NoError(t, s.Upload(ctx, "deliveries/po 1/a.jpg", []byte{0xFF, 0xD8}, "image/jpeg"))
	data, contentType, ok := s.Get("deliveries/po 1/a.jpg")
	require.True(t, ok)
	assert.Equal(t, []byte{0xFF, 0xD8}, data)
	assert.Equal(t, "image/jpeg", contentType)

	link, _, err := s.GenerateDownloadURL(ctx, "deliveries/po 1/a.jpg", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, link, "https://files.local/deliveries/po%201/a.jpg?expires=")
}
