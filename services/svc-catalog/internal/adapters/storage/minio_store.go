package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/config"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

// MinioStore keeps product images in a single bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
	region string
	logger logger.Logger
}

func NewMinioStore(cfg config.ObjectStorage, log logger.Logger) (*MinioStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	return &MinioStore{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		logger: log,
	}, nil
}

// EnsureBucket creates the bucket when it is missing.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("%w: checking bucket %s: %v", model.ErrObjectStorage, s.bucket, err)
	}

	if exists {
		return nil
	}

	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return fmt.Errorf("%w: creating bucket %s: %v", model.ErrObjectStorage, s.bucket, err)
	}

	s.logger.Info().Str("bucket", s.bucket).Msg("created object storage bucket")

	return nil
}

func (s *MinioStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	info, err := s.client.PutObject(ctx, s.bucket, key, body, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("%w: uploading %s: %v", model.ErrObjectStorage, key, err)
	}

	s.logger.Debug().
		Str("key", key).
		Int64("size", info.Size).
		Str("etag", info.ETag).
		Msg("stored object")

	return nil
}

func (s *MinioStore) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%w: removing %s: %v", model.ErrObjectStorage, key, err)
	}

	return nil
}

func (s *MinioStore) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("%w: presigning %s: %v", model.ErrObjectStorage, key, err)
	}

	return u.String(), nil
}

func (s *MinioStore) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)

	return err
}
