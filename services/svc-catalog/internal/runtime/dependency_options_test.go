package runtime

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/pkg/metrics/noop"
	"github.com/architeacher/storefront/pkg/metrics/prometheus"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/memory"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/repos"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/storage"
	"github.com/architeacher/storefront/services/svc-catalog/internal/config"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

func newTestDependencies(t *testing.T) *dependencies {
	t.Helper()

	cfg, err := config.Init(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	return &dependencies{
		config:       cfg,
		infra:        infrastructureDep{logger: logger.NewTestLogger(), metricsClient: noop.NewMetricsClient()},
		cleanupFuncs: make(map[string]func(ctx context.Context) error),
	}
}

func withKeyDB(t *testing.T, d *dependencies) {
	t.Helper()

	server := miniredis.RunT(t)
	d.config.Cache.Address = server.Addr()

	require.NoError(t, WithKeyDB(context.Background())(d))
	require.NotNil(t, d.infra.keydbClient)
}

func TestNeedsKeyDB(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		mutate   func(*config.ServiceConfig)
		expected bool
	}{
		{name: "everything in memory", mutate: func(*config.ServiceConfig) {}, expected: false},
		{name: "products cache", mutate: func(c *config.ServiceConfig) { c.ProductsCache.Enabled = true }, expected: true},
		{name: "idempotency", mutate: func(c *config.ServiceConfig) { c.Idempotency.Enabled = true }, expected: true},
		{
			name: "redis rate limiting",
			mutate: func(c *config.ServiceConfig) {
				c.RateLimiting.Enabled = true
				c.RateLimiting.Store = config.RateLimitStoreRedis
			},
			expected: true,
		},
		{
			name: "disabled redis rate limiting",
			mutate: func(c *config.ServiceConfig) {
				c.RateLimiting.Enabled = false
				c.RateLimiting.Store = config.RateLimitStoreRedis
			},
			expected: false,
		},
		{
			name:     "redis revocation",
			mutate:   func(c *config.ServiceConfig) { c.Auth.RevocationStore = config.RevocationStoreRedis },
			expected: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			d := newTestDependencies(t)
			d.config.ProductsCache.Enabled = false
			d.config.Idempotency.Enabled = false
			d.config.RateLimiting.Store = config.RateLimitStoreMemory
			d.config.Auth.RevocationStore = config.RevocationStoreMemory
			tc.mutate(d.config)

			assert.Equal(t, tc.expected, d.needsKeyDB())
		})
	}
}

func TestWithKeyDB(t *testing.T) {
	t.Parallel()

	d := newTestDependencies(t)
	withKeyDB(t, d)

	require.NoError(t, d.infra.keydbClient.Ping(context.Background()))
	require.Contains(t, d.cleanupFuncs, "keydb")
	require.NoError(t, d.cleanupFuncs["keydb"](context.Background()))
}

func TestWithKeyDB_SkippedWhenUnused(t *testing.T) {
	t.Parallel()

	d := newTestDependencies(t)
	d.config.ProductsCache.Enabled = false
	d.config.Idempotency.Enabled = false
	d.config.RateLimiting.Store = config.RateLimitStoreMemory
	d.config.Auth.RevocationStore = config.RevocationStoreMemory

	require.NoError(t, WithKeyDB(context.Background())(d))
	require.Nil(t, d.infra.keydbClient)
	require.NotContains(t, d.cleanupFuncs, "keydb")
}

func TestWithConfigValidation(t *testing.T) {
	t.Parallel()

	d := newTestDependencies(t)
	d.config.Auth.SecretKey = ""
	require.Error(t, WithConfigValidation()(d))

	d.config.Auth.SecretKey = "0123456789abcdef0123456789abcdef"
	require.NoError(t, WithConfigValidation()(d))
}

func TestWithMetrics(t *testing.T) {
	t.Parallel()

	t.Run("prometheus when enabled", func(t *testing.T) {
		t.Parallel()

		d := newTestDependencies(t)
		d.config.Telemetry.Metrics.Enabled = true

		require.NoError(t, WithMetrics()(d))
		require.IsType(t, &prometheus.MetricsClient{}, d.infra.metricsClient)
		require.Contains(t, d.cleanupFuncs, "metrics")
	})

	t.Run("noop when disabled", func(t *testing.T) {
		t.Parallel()

		d := newTestDependencies(t)
		d.config.Telemetry.Metrics.Enabled = false

		require.NoError(t, WithMetrics()(d))
		require.IsType(t, noop.MetricsClient{}, d.infra.metricsClient)
		require.NotContains(t, d.cleanupFuncs, "metrics")
	})
}

func TestWithTracing_DisabledRegistersNoopShutdown(t *testing.T) {
	t.Parallel()

	d := newTestDependencies(t)
	d.config.Telemetry.Traces.Enabled = false

	require.NoError(t, WithTracing(context.Background())(d))
	require.NotNil(t, d.infra.tracerProvider)
	require.NoError(t, d.cleanupFuncs["tracer"](context.Background()))
}

func TestWithRevocationStore(t *testing.T) {
	t.Parallel()

	t.Run("memory", func(t *testing.T) {
		t.Parallel()

		d := newTestDependencies(t)
		d.config.Auth.RevocationStore = config.RevocationStoreMemory

		require.NoError(t, WithRevocationStore()(d))
		require.IsType(t, &memory.RevocationStore{}, d.repos.revocations)
	})

	t.Run("redis", func(t *testing.T) {
		t.Parallel()

		d := newTestDependencies(t)
		withKeyDB(t, d)
		d.config.Auth.RevocationStore = config.RevocationStoreRedis

		require.NoError(t, WithRevocationStore()(d))
		require.IsType(t, &repos.RevocationRepository{}, d.repos.revocations)
	})
}

func TestWithObjectStore_Disabled(t *testing.T) {
	t.Parallel()

	d := newTestDependencies(t)
	d.config.ObjectStorage.Enabled = false

	require.NoError(t, WithObjectStore(context.Background())(d))
	require.Equal(t, storage.DisabledStore{}, d.infra.objectStore)
}

func TestWithProductsCache(t *testing.T) {
	t.Parallel()

	t.Run("nil when disabled", func(t *testing.T) {
		t.Parallel()

		d := newTestDependencies(t)
		withKeyDB(t, d)
		d.config.ProductsCache.Enabled = false

		require.NoError(t, WithProductsCache()(d))
		require.Nil(t, d.repos.productsCache)
	})

	t.Run("nil without keydb", func(t *testing.T) {
		t.Parallel()

		d := newTestDependencies(t)
		d.config.ProductsCache.Enabled = true

		require.NoError(t, WithProductsCache()(d))
		require.Nil(t, d.repos.productsCache)
	})

	t.Run("keydb backed when enabled", func(t *testing.T) {
		t.Parallel()

		d := newTestDependencies(t)
		withKeyDB(t, d)
		d.config.ProductsCache.Enabled = true

		require.NoError(t, WithProductsCache()(d))
		require.IsType(t, &repos.ProductsCacheRepository{}, d.repos.productsCache)
		require.NoError(t, d.repos.productsCache.Invalidate(context.Background(), model.NewProductID()))
	})
}

func TestWithRateLimitStore(t *testing.T) {
	t.Parallel()

	t.Run("memory store", func(t *testing.T) {
		t.Parallel()

		d := newTestDependencies(t)
		d.config.RateLimiting.Store = config.RateLimitStoreMemory

		require.NoError(t, WithRateLimitStore()(d))
		require.NotNil(t, d.repos.rateLimitStore)

		_, isKeyDB := d.repos.rateLimitStore.(*repos.RateLimitStore)
		require.False(t, isKeyDB)
	})

	t.Run("redis store", func(t *testing.T) {
		t.Parallel()

		d := newTestDependencies(t)
		withKeyDB(t, d)
		d.config.RateLimiting.Store = config.RateLimitStoreRedis

		require.NoError(t, WithRateLimitStore()(d))
		require.IsType(t, &repos.RateLimitStore{}, d.repos.rateLimitStore)
	})
}

func TestWithIdempotencyRepository(t *testing.T) {
	t.Parallel()

	d := newTestDependencies(t)
	d.config.Idempotency.Enabled = true

	require.NoError(t, WithIdempotencyRepository()(d))
	require.Nil(t, d.repos.idempotencyRepo)

	withKeyDB(t, d)

	require.NoError(t, WithIdempotencyRepository()(d))
	require.IsType(t, &repos.IdempotencyRepository{}, d.repos.idempotencyRepo)
}
