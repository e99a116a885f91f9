package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/architeacher/storefront/services/svc-catalog/internal/infrastructure"
)

const revokedTokenPrefix = "auth:revoked:"

// RevocationRepository records logged-out token ids in KeyDB. Entries
// expire together with the token, so the set never grows unbounded.
type RevocationRepository struct {
	client *infrastructure.KeydbClient
}

func NewRevocationRepository(client *infrastructure.KeydbClient) *RevocationRepository {
	return &RevocationRepository{client: client}
}

func (r *RevocationRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := r.client.Set(ctx, revokedTokenPrefix+tokenID, []byte("1"), ttl); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}

	return nil
}

func (r *RevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	revoked, err := r.client.Exists(ctx, revokedTokenPrefix+tokenID)
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}

	return revoked, nil
}
