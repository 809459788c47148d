package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOHost implements FileHost on an S3-compatible bucket.
type MinIOHost struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinIOHost creates a MinIO-backed file host for the item photo bucket.
func NewMinIOHost(cfg Config) (*MinIOHost, error) {
	if !cfg.IsMinIOEnabled() {
		return nil, fmt.Errorf("MinIO is not configured")
	}

	client, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	publicURL := strings.TrimRight(cfg.GetMinIOPublicURL(), "/")
	if publicURL == "" {
		scheme := "http"
		if cfg.GetMinIOUseSSL() {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, cfg.GetMinIOEndpoint())
	}

	return &MinIOHost{
		client:    client,
		bucket:    cfg.GetMinioBucketItemPhotos(),
		publicURL: publicURL,
	}, nil
}

// EnsureBucketExists creates the bucket if it doesn't exist.
func (h *MinIOHost) EnsureBucketExists(ctx context.Context) error {
	exists, err := h.client.BucketExists(ctx, h.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		err = h.client.MakeBucket(ctx, h.bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", h.bucket, err)
		}
	}

	return nil
}

// Store uploads data and returns its public URL.
func (h *MinIOHost) Store(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := h.client.PutObject(ctx, h.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file %s: %w", key, err)
	}
	return h.urlFor(key), nil
}

// Delete removes an object from the bucket.
func (h *MinIOHost) Delete(ctx context.Context, key string) error {
	err := h.client.RemoveObject(ctx, h.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// KeyFromURL strips the public bucket prefix from url.
func (h *MinIOHost) KeyFromURL(url string) (string, bool) {
	return strings.CutPrefix(url, h.urlFor(""))
}

func (h *MinIOHost) urlFor(key string) string {
	return h.publicURL + "/" + h.bucket + "/" + key
}
