package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/vault/api"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

// Init reads the optional env files, then the environment. Variables
// already set in the environment win over the files.
func Init(envFiles ...string) (*ServiceConfig, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("unable to load env file %s: %w", file, err)
		}
	}

	cfg := &ServiceConfig{}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("unable to parse service configuration: %w", err)
	}

	if len(ServiceVersion) != 0 {
		cfg.App.ServiceVersion = ServiceVersion
	}

	if len(CommitSHA) != 0 {
		cfg.App.CommitSHA = CommitSHA
	}

	return cfg, nil
}

// SecretsLoader overlays credentials stored in Vault KV v2 onto the config.
type SecretsLoader struct {
	repo ports.SecretsRepository
	cfg  SecretsStorage
}

func NewSecretsLoader(repo ports.SecretsRepository, cfg SecretsStorage) *SecretsLoader {
	return &SecretsLoader{repo: repo, cfg: cfg}
}

// Load applies the secrets to cfg and returns the secret version.
func (l *SecretsLoader) Load(ctx context.Context, cfg *ServiceConfig) (uint, error) {
	if err := l.authenticate(ctx); err != nil {
		return 0, fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	path := fmt.Sprintf("apps/data/%s", l.cfg.MountPath)

	ctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	secret, err := backoff.Retry(ctx, func() (*api.Secret, error) {
		return l.repo.GetSecrets(ctx, path)
	}, backoff.WithMaxTries(l.cfg.MaxRetries+1), backoff.WithBackOff(backoff.NewExponentialBackOff()))
	if err != nil {
		return 0, fmt.Errorf("failed to read secrets from %s: %w", path, err)
	}

	if secret == nil || secret.Data == nil {
		return 0, nil
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return 0, fmt.Errorf("invalid secret format at %s, missing 'data' key", path)
	}

	for key, value := range data {
		if s, ok := value.(string); ok && s != "" {
			applySecret(cfg, key, s)
		}
	}

	metadata, _ := secret.Data["metadata"].(map[string]any)

	return secretVersion(metadata)
}

func (l *SecretsLoader) authenticate(ctx context.Context) error {
	switch strings.ToLower(l.cfg.AuthMethod) {
	case "token":
		if l.cfg.Token == "" {
			return errors.New("token is required for token auth method")
		}

		l.repo.SetToken(l.cfg.Token)

		return nil
	case "approle":
		if l.cfg.RoleID == "" || l.cfg.SecretID == "" {
			return errors.New("role_id and secret_id are required for approle auth method")
		}

		resp, err := l.repo.WriteWithContext(ctx, "auth/approle/login", map[string]any{
			"role_id":   l.cfg.RoleID,
			"secret_id": l.cfg.SecretID,
		})
		if err != nil {
			return fmt.Errorf("failed to authenticate via approle: %w", err)
		}

		if resp == nil || resp.Auth == nil {
			return errors.New("no auth info returned from Vault")
		}

		l.repo.SetToken(resp.Auth.ClientToken)

		return nil
	default:
		return fmt.Errorf("unsupported auth method: %s", l.cfg.AuthMethod)
	}
}

func applySecret(cfg *ServiceConfig, key, value string) {
	switch key {
	case "POSTGRES_PASSWORD":
		cfg.Database.Password = value
	case "CACHE_PASSWORD":
		cfg.Cache.Password = value
	case "AUTH_SECRET_KEY":
		cfg.Auth.SecretKey = value
	case "AUTH_ADMIN_PASSWORD":
		cfg.Auth.AdminPassword = value
	case "OBJECT_STORAGE_ACCESS_KEY":
		cfg.ObjectStorage.AccessKey = value
	case "OBJECT_STORAGE_SECRET_KEY":
		cfg.ObjectStorage.SecretKey = value
	}
}

func secretVersion(metadata map[string]any) (uint, error) {
	raw, ok := metadata["version"]
	if !ok {
		return 0, nil
	}

	switch v := raw.(type) {
	case float64:
		return uint(v), nil
	case json.Number:
		version, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("failed to parse version: %w", err)
		}

		return uint(version), nil
	default:
		return 0, fmt.Errorf("unexpected version type: %T", raw)
	}
}
