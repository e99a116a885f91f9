package ports

import (
	"context"
	"io"
	"time"
)

// ObjectStore holds image bytes; metadata lives in the ImagesRepository.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Ping(ctx context.Context) error
}
