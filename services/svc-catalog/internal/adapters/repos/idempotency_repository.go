package repos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/architeacher/storefront/pkg/idempotency"
	"github.com/architeacher/storefront/services/svc-catalog/internal/infrastructure"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

const lockValue = "processing"

type IdempotencyRepository struct {
	client *infrastructure.KeydbClient
}

var _ ports.IdempotencyRepository = (*IdempotencyRepository)(nil)

func NewIdempotencyRepository(client *infrastructure.KeydbClient) *IdempotencyRepository {
	return &IdempotencyRepository{client: client}
}

// Get returns nil without error when nothing is stored under key.
func (r *IdempotencyRepository) Get(ctx context.Context, key string) (*ports.CachedResponse, error) {
	data, err := r.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, infrastructure.ErrCacheMiss) {
			return nil, nil
		}

		return nil, fmt.Errorf("getting cached response: %w", err)
	}

	var response ports.CachedResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("unmarshalling cached response: %w", err)
	}

	return &response, nil
}

func (r *IdempotencyRepository) Set(ctx context.Context, key string, response *ports.CachedResponse, ttl time.Duration) error {
	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("marshalling response: %w", err)
	}

	if err := r.client.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("setting cached response: %w", err)
	}

	return nil
}

// Lock reports false when another request already holds key.
func (r *IdempotencyRepository) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := r.client.SetNX(ctx, idempotency.LockKey(key), lockValue, ttl)
	if err != nil {
		return false, fmt.Errorf("acquiring lock: %w", err)
	}

	return acquired, nil
}

func (r *IdempotencyRepository) Unlock(ctx context.Context, key string) error {
	if err := r.client.Delete(ctx, idempotency.LockKey(key)); err != nil {
		return fmt.Errorf("releasing lock: %w", err)
	}

	return nil
}
