// Package testserver runs the catalog HTTP API against a disposable
// PostgreSQL container for integration testing.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/throttled/throttled/v2/store/memstore"
	otelNoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/pkg/metrics/noop"
	inboundhttp "github.com/architeacher/storefront/services/svc-catalog/internal/adapters/inbound/http"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/memory"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/repos"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/storage"
	"github.com/architeacher/storefront/services/svc-catalog/internal/authz"
	"github.com/architeacher/storefront/services/svc-catalog/internal/config"
	infraPostgres "github.com/architeacher/storefront/services/svc-catalog/internal/infrastructure/postgres"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
	"github.com/architeacher/storefront/services/svc-catalog/internal/services"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases/queries"
)

const (
	postgresImage    = "postgres:18-alpine"
	postgresDatabase = "catalog_test"
	postgresUsername = "test"
	postgresPassword = "test"

	AdminEmail    = "admin@storefront.test"
	AdminPassword = "admin-password-1"
)

// TestServer serves the catalog API from an httptest server backed by a
// PostgreSQL container. Caching, idempotency and object storage are off.
type TestServer struct {
	HTTPServer    *httptest.Server
	DBPool        *pgxpool.Pool
	Container     *postgres.PostgresContainer
	Config        *config.ServiceConfig
	containerCtx  context.Context
	containerStop context.CancelFunc
}

// New starts the container, applies the migrations and wires the service.
func New(ctx context.Context) (*TestServer, error) {
	containerCtx, containerStop := context.WithTimeout(ctx, 5*time.Minute)

	s := &TestServer{containerCtx: containerCtx, containerStop: containerStop}

	container, err := postgres.Run(containerCtx,
		postgresImage,
		postgres.WithDatabase(postgresDatabase),
		postgres.WithUsername(postgresUsername),
		postgres.WithPassword(postgresPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		containerStop()

		return nil, fmt.Errorf("starting postgres container: %w", err)
	}

	s.Container = container

	cfg, err := s.config(containerCtx)
	if err != nil {
		s.Close()

		return nil, err
	}

	s.Config = cfg

	log := logger.NewTestLogger()

	if err := infraPostgres.Migrate(cfg.Database, infraPostgres.MigrateUp, log); err != nil {
		s.Close()

		return nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := infraPostgres.NewPool(containerCtx, cfg.Database, cfg.Backoff, log)
	if err != nil {
		s.Close()

		return nil, fmt.Errorf("creating database pool: %w", err)
	}

	s.DBPool = pool

	handler, err := s.wire(containerCtx, log)
	if err != nil {
		s.Close()

		return nil, err
	}

	s.HTTPServer = httptest.NewServer(handler)

	return s, nil
}

// URL returns the base URL of the API, e.g. http://127.0.0.1:34567.
func (s *TestServer) URL() string {
	return s.HTTPServer.URL
}

// Truncate empties every catalog table except the bootstrap admin.
func (s *TestServer) Truncate(ctx context.Context) error {
	_, err := s.DBPool.Exec(ctx, "TRUNCATE TABLE product_images, reviews, products, categories CASCADE")
	if err != nil {
		return err
	}

	_, err = s.DBPool.Exec(ctx, "DELETE FROM users WHERE email <> $1", AdminEmail)

	return err
}

// Close shuts down the server and cleans up resources.
func (s *TestServer) Close() {
	if s.HTTPServer != nil {
		s.HTTPServer.Close()
	}

	if s.DBPool != nil {
		s.DBPool.Close()
	}

	if s.Container != nil {
		_ = s.Container.Terminate(s.containerCtx)
	}

	if s.containerStop != nil {
		s.containerStop()
	}
}

func (s *TestServer) config(ctx context.Context) (*config.ServiceConfig, error) {
	cfg, err := config.Init(filepath.Join("testdata", "does-not-exist.env"))
	if err != nil {
		return nil, fmt.Errorf("initializing configuration: %w", err)
	}

	host, err := s.Container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting container host: %w", err)
	}

	port, err := s.Container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		return nil, fmt.Errorf("getting container port: %w", err)
	}

	portNumber, err := strconv.ParseUint(port.Port(), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("parsing container port: %w", err)
	}

	cfg.Database.Host = host
	cfg.Database.Port = uint(portNumber)
	cfg.Database.Database = postgresDatabase
	cfg.Database.Username = postgresUsername
	cfg.Database.Password = postgresPassword
	cfg.Database.MinConnections = 1

	cfg.Auth.SecretKey = "integration-secret-key-0123456789abcdef"
	cfg.Auth.RevocationStore = config.RevocationStoreMemory
	cfg.Auth.BcryptCost = 4
	cfg.Auth.AdminEmail = AdminEmail
	cfg.Auth.AdminPassword = AdminPassword

	cfg.RateLimiting.Enabled = false
	cfg.Idempotency.Enabled = false
	cfg.ProductsCache.Enabled = false
	cfg.ObjectStorage.Enabled = false
	cfg.Telemetry.Traces.Enabled = false
	cfg.Telemetry.Metrics.Enabled = false
	cfg.Logging.AccessLog.Enabled = false

	return cfg, nil
}

func (s *TestServer) wire(ctx context.Context, log logger.Logger) (http.Handler, error) {
	cfg := s.Config
	scanner := repos.NewPgxScanner()
	metricsClient := noop.NewMetricsClient()
	tracerProvider := otelNoop.NewTracerProvider()
	objects := storage.DisabledStore{}

	productsRepo := repos.NewProductsRepository(s.DBPool, scanner, repos.NewProductsCriteriaTranslator(log), log)
	categoriesRepo := repos.NewCategoriesRepository(s.DBPool, scanner, log)
	reviewsRepo := repos.NewReviewsRepository(s.DBPool, scanner, log)
	imagesRepo := repos.NewImagesRepository(s.DBPool, scanner, log)
	usersRepo := repos.NewUsersRepository(s.DBPool, scanner, log)

	auth := services.NewAuthService(
		usersRepo,
		memory.NewRevocationStore(),
		services.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.Issuer, cfg.Auth.TokenExpiry),
		cfg.Auth.BcryptCost,
		log,
	)

	if err := auth.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		return nil, fmt.Errorf("bootstrapping admin: %w", err)
	}

	app := usecases.NewApplication(
		usecases.Services{
			Products:   services.NewProductsService(productsRepo, imagesRepo, objects, nil, log),
			Categories: services.NewCategoriesService(categoriesRepo),
			Reviews:    services.NewReviewsService(reviewsRepo, productsRepo, nil, log),
			Images:     services.NewImagesService(imagesRepo, productsRepo, objects, cfg.ObjectStorage.PresignTTL, log),
			Auth:       auth,
		},
		usecases.QueryCaches{},
		usecases.Health{
			Database:     productsRepo,
			Dependencies: map[string]ports.Pinger{queries.DependencyPostgres: productsRepo},
			Version:      "itest",
		},
		log,
		metricsClient,
		tracerProvider,
	)

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return nil, fmt.Errorf("creating enforcer: %w", err)
	}

	store, err := memstore.NewCtx(cfg.RateLimiting.MaxMemoryKeys)
	if err != nil {
		return nil, fmt.Errorf("creating rate limit store: %w", err)
	}

	return inboundhttp.NewRouter(inboundhttp.RouterConfig{
		App:            app,
		Config:         cfg,
		Logger:         log,
		MetricsClient:  metricsClient,
		TracerProvider: tracerProvider,
		Auth:           auth,
		Authorizer:     enforcer,
		RateLimitStore: store,
	})
}
