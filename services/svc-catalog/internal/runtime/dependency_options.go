package runtime

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/cenkalti/backoff/v5"
	"github.com/hashicorp/vault/api"
	"github.com/throttled/throttled/v2/store/memstore"
	"go.opentelemetry.io/otel/attribute"

	"github.com/architeacher/storefront/pkg/circuitbreaker"
	"github.com/architeacher/storefront/pkg/decorator"
	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/pkg/metrics"
	"github.com/architeacher/storefront/pkg/metrics/noop"
	"github.com/architeacher/storefront/pkg/metrics/prometheus"
	inboundhttp "github.com/architeacher/storefront/services/svc-catalog/internal/adapters/inbound/http"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/memory"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/repos"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/storage"
	"github.com/architeacher/storefront/services/svc-catalog/internal/authz"
	"github.com/architeacher/storefront/services/svc-catalog/internal/config"
	"github.com/architeacher/storefront/services/svc-catalog/internal/infrastructure"
	infraPostgres "github.com/architeacher/storefront/services/svc-catalog/internal/infrastructure/postgres"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
	"github.com/architeacher/storefront/services/svc-catalog/internal/services"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases/queries"
)

const productsCacheBreaker = "products-cache"

var metricDescriptors = map[string]metrics.Descriptor{
	"http_requests_total":               {Description: "HTTP requests served, by route, method and status."},
	"http_request_duration_seconds":     {Description: "HTTP request latency.", Unit: "s"},
	"http_response_size_bytes":          {Description: "HTTP response body size.", Unit: "By"},
	"http_compression_total":            {Description: "Compressed responses, by encoding."},
	"http_compression_original_bytes":   {Description: "Response bytes before compression.", Unit: "By"},
	"http_compression_compressed_bytes": {Description: "Response bytes after compression.", Unit: "By"},
	"circuit_breaker_transitions_total": {Description: "Circuit breaker state transitions."},
}

func defaultOptions(ctx context.Context) []DependencyOption {
	return []DependencyOption{
		WithConfig(),
		WithLogger(),
		WithSecretsRepository(),
		WithSecretsLoader(ctx),
		WithConfigValidation(),
		WithTracing(ctx),
		WithMetrics(),
		WithDatabase(ctx),
		WithKeyDB(ctx),
		WithRepositories(),
		WithProductsCache(),
		WithObjectStore(ctx),
		WithRevocationStore(),
		WithServices(ctx),
		WithApplication(),
		WithRateLimitStore(),
		WithIdempotencyRepository(),
		WithHTTPServer(),
	}
}

func WithConfig() DependencyOption {
	return func(d *dependencies) error {
		cfg, err := config.Init(d.envFiles...)
		if err != nil {
			return fmt.Errorf("initializing configuration: %w", err)
		}

		d.config = cfg

		return nil
	}
}

func WithLogger() DependencyOption {
	return func(d *dependencies) error {
		d.infra.logger = logger.New(d.config.Logging.Level, d.config.Logging.Format)

		return nil
	}
}

func WithSecretsRepository() DependencyOption {
	return func(d *dependencies) error {
		cfg := d.config.SecretsStorage
		if !cfg.Enabled {
			return nil
		}

		vaultConfig := api.DefaultConfig()
		vaultConfig.Address = cfg.Address
		vaultConfig.Timeout = cfg.Timeout
		vaultConfig.MaxRetries = int(cfg.MaxRetries)

		client, err := api.NewClient(vaultConfig)
		if err != nil {
			return fmt.Errorf("creating Vault client: %w", err)
		}

		if cfg.Namespace != "" {
			client.SetNamespace(cfg.Namespace)
		}

		d.repos.secretsRepo = repos.NewVaultRepository(client)

		return nil
	}
}

// WithSecretsLoader overlays Vault secrets onto the env config before
// anything consumes credentials.
func WithSecretsLoader(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if d.repos.secretsRepo == nil {
			return nil
		}

		version, err := config.NewSecretsLoader(d.repos.secretsRepo, d.config.SecretsStorage).Load(ctx, d.config)
		if err != nil {
			return fmt.Errorf("loading secrets from Vault: %w", err)
		}

		d.secretsVersion = version

		d.infra.logger.Info().
			Uint("version", version).
			Str("mount_path", d.config.SecretsStorage.MountPath).
			Msg("secrets loaded from Vault")

		return nil
	}
}

func WithConfigValidation() DependencyOption {
	return func(d *dependencies) error {
		if err := d.config.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		return nil
	}
}

func WithTracing(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		tp, shutdown, err := infrastructure.NewTracerProvider(ctx, d.config.App, d.config.Telemetry)
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}

		d.infra.tracerProvider = tp
		d.cleanupFuncs["tracer"] = shutdown

		return nil
	}
}

func WithMetrics() DependencyOption {
	return func(d *dependencies) error {
		cfg := d.config.Telemetry.Metrics
		if !cfg.Enabled {
			d.infra.metricsClient = noop.NewMetricsClient()

			return nil
		}

		client := prometheus.NewMetricsClient(cfg.Namespace, metricDescriptors)

		d.infra.metricsClient = client
		d.cleanupFuncs["metrics"] = client.Shutdown

		return nil
	}
}

func WithDatabase(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if d.config.Database.MigrateOnStart {
			if err := infraPostgres.Migrate(d.config.Database, infraPostgres.MigrateUp, d.infra.logger); err != nil {
				return err
			}
		}

		pool, err := infraPostgres.NewPool(ctx, d.config.Database, d.config.Backoff, d.infra.logger)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}

		d.infra.dbPool = pool
		d.cleanupFuncs["postgres"] = func(context.Context) error {
			pool.Close()

			return nil
		}

		return nil
	}
}

// WithKeyDB connects only when a component needs it. An unreachable KeyDB
// does not stop startup; the cache degrades and health reports it.
func WithKeyDB(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if !d.needsKeyDB() {
			return nil
		}

		client := infrastructure.NewKeyDBClient(d.config.Cache, d.infra.logger.Named("keydb"))

		ping := func() (struct{}, error) {
			return struct{}{}, client.Ping(ctx)
		}

		_, err := backoff.Retry(ctx, ping,
			backoff.WithBackOff(infraPostgres.NewExponentialBackOff(d.config.Backoff)),
			backoff.WithMaxTries(d.config.Backoff.MaxTries),
		)
		if err != nil {
			d.infra.logger.Warn().
				Err(err).
				Str("address", d.config.Cache.Address).
				Msg("keydb not reachable, continuing degraded")
		}

		d.infra.keydbClient = client
		d.cleanupFuncs["keydb"] = func(context.Context) error {
			return client.Close()
		}

		return nil
	}
}

func WithRepositories() DependencyOption {
	return func(d *dependencies) error {
		pool := d.infra.dbPool
		scanner := repos.NewPgxScanner()
		log := d.infra.logger.Named("repository")

		d.repos.productsRepo = repos.NewProductsRepository(pool, scanner, repos.NewProductsCriteriaTranslator(log), log)
		d.repos.categoriesRepo = repos.NewCategoriesRepository(pool, scanner, log)
		d.repos.reviewsRepo = repos.NewReviewsRepository(pool, scanner, log)
		d.repos.imagesRepo = repos.NewImagesRepository(pool, scanner, log)
		d.repos.usersRepo = repos.NewUsersRepository(pool, scanner, log)

		return nil
	}
}

// WithProductsCache leaves the cache nil when disabled, which makes every
// product read go to the database.
func WithProductsCache() DependencyOption {
	return func(d *dependencies) error {
		cfg := d.config.ProductsCache
		if !cfg.Enabled || d.infra.keydbClient == nil {
			return nil
		}

		log := d.infra.logger.Named("products_cache")
		metricsClient := d.infra.metricsClient

		breaker := circuitbreaker.New[[]byte](
			circuitbreaker.Config{
				Name:             productsCacheBreaker,
				Enabled:          cfg.CircuitBreaker.Enabled,
				MaxRequests:      cfg.CircuitBreaker.MaxRequests,
				Interval:         cfg.CircuitBreaker.Interval,
				Timeout:          cfg.CircuitBreaker.Timeout,
				FailureThreshold: cfg.CircuitBreaker.FailureThreshold,
			},
			circuitbreaker.WithIgnoredErrors(infrastructure.ErrCacheMiss),
			circuitbreaker.WithStateChange(func(name, from, to string) {
				log.Warn().Str("breaker", name).Str("from", from).Str("to", to).Msg("circuit breaker state changed")
				metricsClient.Inc(context.Background(), "circuit_breaker_transitions_total", int64(1),
					attribute.String("breaker", name), attribute.String("to", to))
			}),
		)

		d.repos.productsCache = repos.NewProductsCacheRepository(d.infra.keydbClient, breaker, log)

		return nil
	}
}

func WithObjectStore(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		if !d.config.ObjectStorage.Enabled {
			d.infra.objectStore = storage.DisabledStore{}

			return nil
		}

		store, err := storage.NewMinioStore(d.config.ObjectStorage, d.infra.logger.Named("object_storage"))
		if err != nil {
			return fmt.Errorf("creating object store: %w", err)
		}

		if err := store.EnsureBucket(ctx); err != nil {
			d.infra.logger.Warn().
				Err(err).
				Str("bucket", d.config.ObjectStorage.Bucket).
				Msg("object storage bucket not ready, image uploads will fail until it is")
		}

		d.infra.objectStore = store

		return nil
	}
}

func WithRevocationStore() DependencyOption {
	return func(d *dependencies) error {
		switch d.config.Auth.RevocationStore {
		case config.RevocationStoreRedis:
			d.repos.revocations = repos.NewRevocationRepository(d.infra.keydbClient)
		default:
			d.repos.revocations = memory.NewRevocationStore()
		}

		return nil
	}
}

func WithServices(ctx context.Context) DependencyOption {
	return func(d *dependencies) error {
		cfg := d.config
		log := d.infra.logger

		d.services.products = services.NewProductsService(
			d.repos.productsRepo, d.repos.imagesRepo, d.infra.objectStore, d.repos.productsCache, log.Named("products"),
		)
		d.services.categories = services.NewCategoriesService(d.repos.categoriesRepo)
		d.services.reviews = services.NewReviewsService(
			d.repos.reviewsRepo, d.repos.productsRepo, d.repos.productsCache, log.Named("reviews"),
		)
		d.services.images = services.NewImagesService(
			d.repos.imagesRepo, d.repos.productsRepo, d.infra.objectStore, cfg.ObjectStorage.PresignTTL, log.Named("images"),
		)

		tokens := services.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.Issuer, cfg.Auth.TokenExpiry)
		d.services.auth = services.NewAuthService(
			d.repos.usersRepo, d.repos.revocations, tokens, cfg.Auth.BcryptCost, log.Named("auth"),
		)

		if cfg.Auth.AdminEmail != "" {
			if err := d.services.auth.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
				return fmt.Errorf("bootstrapping admin account: %w", err)
			}
		}

		enforcer, err := authz.NewEnforcer()
		if err != nil {
			return fmt.Errorf("creating authorization enforcer: %w", err)
		}

		d.services.authorizer = enforcer

		return nil
	}
}

func WithApplication() DependencyOption {
	return func(d *dependencies) error {
		cfg := d.config

		var caches usecases.QueryCaches
		if d.repos.productsCache != nil {
			caches = usecases.QueryCaches{
				Product:       repos.NewGetProductCacheAdapter(d.repos.productsCache),
				ProductConfig: decorator.CacheConfig{Enabled: true, TTL: cfg.ProductsCache.ProductTTL},
				Search:        repos.NewSearchProductsCacheAdapter(d.repos.productsCache),
				SearchConfig:  decorator.CacheConfig{Enabled: true, TTL: cfg.ProductsCache.SearchTTL},
			}
		}

		pingers := map[string]ports.Pinger{
			queries.DependencyPostgres: d.repos.productsRepo,
		}

		if d.infra.keydbClient != nil {
			pingers[queries.DependencyKeyDB] = d.infra.keydbClient
		}

		if cfg.ObjectStorage.Enabled {
			pingers[queries.DependencyObjectStorage] = d.infra.objectStore
		}

		d.app = usecases.NewApplication(
			usecases.Services{
				Products:   d.services.products,
				Categories: d.services.categories,
				Reviews:    d.services.reviews,
				Images:     d.services.images,
				Auth:       d.services.auth,
			},
			caches,
			usecases.Health{
				Database:     d.repos.productsRepo,
				Dependencies: pingers,
				Version:      cfg.App.ServiceVersion,
			},
			d.infra.logger,
			d.infra.metricsClient,
			d.infra.tracerProvider,
		)

		return nil
	}
}

func WithRateLimitStore() DependencyOption {
	return func(d *dependencies) error {
		cfg := d.config.RateLimiting
		if cfg.Store == config.RateLimitStoreRedis && d.infra.keydbClient != nil {
			d.repos.rateLimitStore = repos.NewRateLimitStore(d.infra.keydbClient)

			return nil
		}

		store, err := memstore.NewCtx(cfg.MaxMemoryKeys)
		if err != nil {
			return fmt.Errorf("creating in-memory rate limit store: %w", err)
		}

		d.repos.rateLimitStore = store

		return nil
	}
}

func WithIdempotencyRepository() DependencyOption {
	return func(d *dependencies) error {
		if !d.config.Idempotency.Enabled || d.infra.keydbClient == nil {
			return nil
		}

		d.repos.idempotencyRepo = repos.NewIdempotencyRepository(d.infra.keydbClient)

		return nil
	}
}

func WithHTTPServer() DependencyOption {
	return func(d *dependencies) error {
		cfg := d.config.HTTPServer

		router, err := inboundhttp.NewRouter(inboundhttp.RouterConfig{
			App:            d.app,
			Config:         d.config,
			Logger:         d.infra.logger,
			MetricsClient:  d.infra.metricsClient,
			TracerProvider: d.infra.tracerProvider,
			Auth:           d.services.auth,
			Authorizer:     d.services.authorizer,
			RateLimitStore: d.repos.rateLimitStore,
			Idempotency:    d.repos.idempotencyRepo,
		})
		if err != nil {
			return fmt.Errorf("building http router: %w", err)
		}

		d.infra.httpServer = &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.FormatUint(uint64(cfg.Port), 10)),
			Handler:           router,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		}

		return nil
	}
}
