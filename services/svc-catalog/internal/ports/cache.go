package ports

import (
	"context"
	"time"

	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

type (
	// CacheResult distinguishes a miss from a cached value.
	CacheResult[T any] struct {
		Value T
		Hit   bool
	}

	ProductsCache interface {
		GetProduct(ctx context.Context, id model.ProductID) (CacheResult[*model.Product], error)
		SetProduct(ctx context.Context, product *model.Product, ttl time.Duration) error
		GetSearch(ctx context.Context, key string) (CacheResult[*model.ProductList], error)
		SetSearch(ctx context.Context, key string, list *model.ProductList, ttl time.Duration) error
		// Invalidate drops the product and every cached search page.
		Invalidate(ctx context.Context, id model.ProductID) error
	}

	CachedResponse struct {
		StatusCode  int               `json:"status_code"`
		Headers     map[string]string `json:"headers"`
		Body        []byte            `json:"body"`
		Fingerprint string            `json:"fingerprint"`
		CreatedAt   time.Time         `json:"created_at"`
	}

	IdempotencyRepository interface {
		Get(ctx context.Context, key string) (*CachedResponse, error)
		Set(ctx context.Context, key string, response *CachedResponse, ttl time.Duration) error
		Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
		Unlock(ctx context.Context, key string) error
	}

	// TokenRevocationStore remembers revoked token ids until they expire.
	TokenRevocationStore interface {
		Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
		IsRevoked(ctx context.Context, tokenID string) (bool, error)
	}
)
