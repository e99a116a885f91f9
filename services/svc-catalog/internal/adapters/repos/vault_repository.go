package repos

import (
	"context"
	"fmt"

	"github.com/hashicorp/vault/api"

	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

type VaultRepository struct {
	client *api.Client
}

var _ ports.SecretsRepository = (*VaultRepository)(nil)

func NewVaultRepository(client *api.Client) *VaultRepository {
	return &VaultRepository{client: client}
}

func (r *VaultRepository) SetToken(v string) {
	r.client.SetToken(v)
}

func (r *VaultRepository) GetSecrets(ctx context.Context, path string) (*api.Secret, error) {
	secret, err := r.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("reading secret %s: %w", path, err)
	}

	if secret == nil {
		return nil, fmt.Errorf("secret %s not found", path)
	}

	return secret, nil
}

func (r *VaultRepository) WriteWithContext(ctx context.Context, path string, data map[string]any) (*api.Secret, error) {
	return r.client.Logical().WriteWithContext(ctx, path, data)
}
