package runtime

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/throttled/throttled/v2"
	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/pkg/metrics"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/repos"
	"github.com/architeacher/storefront/services/svc-catalog/internal/authz"
	"github.com/architeacher/storefront/services/svc-catalog/internal/config"
	"github.com/architeacher/storefront/services/svc-catalog/internal/infrastructure"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
	"github.com/architeacher/storefront/services/svc-catalog/internal/services"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases"
)

type (
	infrastructureDep struct {
		httpServer     *http.Server
		dbPool         *pgxpool.Pool
		keydbClient    *infrastructure.KeydbClient
		objectStore    ports.ObjectStore
		logger         logger.Logger
		metricsClient  metrics.Client
		tracerProvider otelTrace.TracerProvider
	}

	repositories struct {
		secretsRepo     ports.SecretsRepository
		productsRepo    *repos.ProductsRepository
		categoriesRepo  ports.CategoriesRepository
		reviewsRepo     ports.ReviewsRepository
		imagesRepo      ports.ImagesRepository
		usersRepo       ports.UsersRepository
		productsCache   ports.ProductsCache
		revocations     ports.TokenRevocationStore
		idempotencyRepo ports.IdempotencyRepository
		rateLimitStore  throttled.GCRAStoreCtx
	}

	servicesDep struct {
		products   *services.ProductsService
		categories *services.CategoriesService
		reviews    *services.ReviewsService
		images     *services.ImagesService
		auth       *services.AuthService
		authorizer *authz.Enforcer
	}

	dependencies struct {
		config   *config.ServiceConfig
		envFiles []string

		// secretsVersion is the Vault KV version the config was overlaid from.
		secretsVersion uint

		infra infrastructureDep

		repos repositories

		services servicesDep

		app *usecases.Application

		cleanupFuncs map[string]func(ctx context.Context) error
	}

	DependencyOption func(*dependencies) error
)

func initializeDependencies(ctx context.Context, envFiles []string, opts ...DependencyOption) (*dependencies, error) {
	deps := &dependencies{
		envFiles:     envFiles,
		cleanupFuncs: make(map[string]func(ctx context.Context) error),
	}

	allOpts := append(defaultOptions(ctx), opts...)

	for _, opt := range allOpts {
		if err := opt(deps); err != nil {
			deps.releaseAll(ctx)

			return nil, fmt.Errorf("failed to apply dependency option: %w", err)
		}
	}

	return deps, nil
}

// needsKeyDB reports whether any enabled component is backed by KeyDB.
func (d *dependencies) needsKeyDB() bool {
	cfg := d.config

	return cfg.ProductsCache.Enabled ||
		cfg.Idempotency.Enabled ||
		(cfg.RateLimiting.Enabled && cfg.RateLimiting.Store == config.RateLimitStoreRedis) ||
		cfg.Auth.RevocationStore == config.RevocationStoreRedis
}

// releaseAll runs the registered cleanups when startup fails half way.
func (d *dependencies) releaseAll(ctx context.Context) {
	for resource, cleanupFn := range d.cleanupFuncs {
		if err := cleanupFn(ctx); err != nil {
			d.infra.logger.Warn().Err(err).Str("resource", resource).Msg("releasing resource after failed startup")
		}
	}
}
