package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/scholarfolio/backend/internal/config"
)

// MinIOStorage is a thin wrapper around the minio client used by the upload service.
type MinIOStorage struct {
	client    *minio.Client
	publicURL string

	mu      sync.Mutex
	ensured map[string]bool
}

// NewMinIOStorage creates a MinIO client. Buckets are created lazily on first Put.
func NewMinIOStorage(cfg config.StorageConfig) (*MinIOStorage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	return &MinIOStorage{
		client:    mc,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		ensured:   map[string]bool{},
	}, nil
}

// ensureBucket creates the bucket when missing (idempotent).
func (s *MinIOStorage) ensureBucket(ctx context.Context, bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured[bucket] {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	s.ensured[bucket] = true
	return nil
}

func (s *MinIOStorage) Put(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error {
	if err := s.ensureBucket(ctx, bucket); err != nil {
		return err
	}
	if _, err := s.client.PutObject(ctx, bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return fmt.Errorf("minio put %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *MinIOStorage) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	// perform a stat to ensure object exists
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return obj, nil
}

func (s *MinIOStorage) Remove(ctx context.Context, bucket, key string) error {
	return s.client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{})
}

func (s *MinIOStorage) URL(bucket, key string) string {
	return s.publicURL + "/" + url.PathEscape(bucket) + "/" + escapeKey(key)
}

// Ping checks that the endpoint answers.
func (s *MinIOStorage) Ping(ctx context.Context) error {
	_, err := s.client.ListBuckets(ctx)
	return err
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
