package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

// Compile time variables are set by -ldflags.
var (
	ServiceVersion string
	CommitSHA      string
)

const (
	Development = 1 << iota
	Sandbox
	Staging
	Production
)

const (
	RevocationStoreMemory = "memory"
	RevocationStoreRedis  = "redis"

	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

type (
	ServiceConfig struct {
		App            App            `json:"app"`
		SecretsStorage SecretsStorage `json:"secrets_storage"`
		HTTPServer     HTTPServer     `json:"http_server"`
		Database       Database       `json:"database"`
		Cache          Cache          `json:"cache"`
		ProductsCache  ProductsCache  `json:"products_cache"`
		ObjectStorage  ObjectStorage  `json:"object_storage"`
		Auth           Auth           `json:"auth"`
		Search         Search         `json:"search"`
		Backoff        Backoff        `json:"backoff"`
		RateLimiting   RateLimiting   `json:"rate_limiting"`
		Idempotency    Idempotency    `json:"idempotency"`
		Compression    Compression    `json:"compression"`
		Logging        Logging        `json:"logging"`
		Telemetry      Telemetry      `json:"telemetry"`
	}

	App struct {
		ServiceName    string      `envconfig:"APP_SERVICE_NAME" default:"svc-catalog" json:"service_name"`
		ServiceVersion string      `envconfig:"APP_SERVICE_VERSION" default:"dev" json:"service_version"`
		CommitSHA      string      `envconfig:"APP_COMMIT_SHA" default:"" json:"commit_sha"`
		APIVersion     string      `envconfig:"APP_API_VERSION" default:"v1" json:"api_version"`
		Env            Environment `json:"environment"`
	}

	Environment struct {
		Name string `envconfig:"APP_ENVIRONMENT" default:"development" json:"env"`
	}

	SecretsStorage struct {
		Enabled    bool          `envconfig:"VAULT_ENABLED" default:"false" json:"enabled"`
		Address    string        `envconfig:"VAULT_ADDRESS" default:"http://vault:8200" json:"address"`
		Token      string        `envconfig:"VAULT_TOKEN" default:"" json:"-"`
		RoleID     string        `envconfig:"VAULT_ROLE_ID" default:"" json:"-"`
		SecretID   string        `envconfig:"VAULT_SECRET_ID" default:"" json:"-"`
		AuthMethod string        `envconfig:"VAULT_AUTH_METHOD" default:"token" json:"auth_method"`
		MountPath  string        `envconfig:"VAULT_MOUNT_PATH" default:"svc-catalog" json:"mount_path"`
		Namespace  string        `envconfig:"VAULT_NAMESPACE" default:"" json:"namespace,omitempty"`
		Timeout    time.Duration `envconfig:"VAULT_TIMEOUT" default:"30s" json:"timeout"`
		MaxRetries uint          `envconfig:"VAULT_MAX_RETRIES" default:"3" json:"max_retries"`
	}

	HTTPServer struct {
		Host            string        `envconfig:"HTTP_SERVER_HOST" default:"0.0.0.0" json:"host"`
		Port            uint          `envconfig:"HTTP_SERVER_PORT" default:"8080" json:"port"`
		ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s" json:"read_timeout"`
		WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s" json:"write_timeout"`
		IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s" json:"idle_timeout"`
		RequestTimeout  time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"10s" json:"request_timeout"`
		ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"30s" json:"shutdown_timeout"`
		AllowedOrigins  []string      `envconfig:"HTTP_ALLOWED_ORIGINS" default:"*" json:"allowed_origins"`
		ValidateRequest bool          `envconfig:"HTTP_VALIDATE_REQUESTS" default:"true" json:"validate_requests"`
	}

	Database struct {
		Host            string        `envconfig:"POSTGRES_HOST" default:"postgres" json:"host"`
		Port            uint          `envconfig:"POSTGRES_PORT" default:"5432" json:"port"`
		Database        string        `envconfig:"POSTGRES_DATABASE" default:"storefront" json:"database"`
		Username        string        `envconfig:"POSTGRES_USERNAME" default:"postgres" json:"username"`
		Password        string        `envconfig:"POSTGRES_PASSWORD" default:"" json:"-"`
		SSLMode         string        `envconfig:"POSTGRES_SSL_MODE" default:"disable" json:"ssl_mode"`
		MaxConnections  int           `envconfig:"POSTGRES_MAX_CONNECTIONS" default:"25" json:"max_connections"`
		MinConnections  int           `envconfig:"POSTGRES_MIN_CONNECTIONS" default:"5" json:"min_connections"`
		ConnectTimeout  time.Duration `envconfig:"POSTGRES_CONNECT_TIMEOUT" default:"10s" json:"connect_timeout"`
		MaxConnLifetime time.Duration `envconfig:"POSTGRES_MAX_CONN_LIFETIME" default:"1h" json:"max_conn_lifetime"`
		MaxConnIdleTime time.Duration `envconfig:"POSTGRES_MAX_CONN_IDLE_TIME" default:"30m" json:"max_conn_idle_time"`
		MigrateOnStart  bool          `envconfig:"POSTGRES_MIGRATE_ON_START" default:"true" json:"migrate_on_start"`
	}

	Cache struct {
		Address      string        `envconfig:"CACHE_ADDRESS" default:"keydb:6379" json:"address"`
		Password     string        `envconfig:"CACHE_PASSWORD" default:"" json:"-"`
		DB           uint          `envconfig:"CACHE_DB" default:"0" json:"db"`
		PoolSize     uint          `envconfig:"CACHE_POOL_SIZE" default:"10" json:"pool_size"`
		MinIdleConns uint          `envconfig:"CACHE_MIN_IDLE_CONNS" default:"3" json:"min_idle_conns"`
		DialTimeout  time.Duration `envconfig:"CACHE_DIAL_TIMEOUT" default:"5s" json:"dial_timeout"`
		ReadTimeout  time.Duration `envconfig:"CACHE_READ_TIMEOUT" default:"3s" json:"read_timeout"`
		WriteTimeout time.Duration `envconfig:"CACHE_WRITE_TIMEOUT" default:"3s" json:"write_timeout"`
		MaxRetries   uint          `envconfig:"CACHE_MAX_RETRIES" default:"3" json:"max_retries"`
	}

	ProductsCache struct {
		Enabled        bool                 `envconfig:"PRODUCTS_CACHE_ENABLED" default:"true" json:"enabled"`
		ProductTTL     time.Duration        `envconfig:"PRODUCTS_CACHE_PRODUCT_TTL" default:"5m" json:"product_ttl"`
		SearchTTL      time.Duration        `envconfig:"PRODUCTS_CACHE_SEARCH_TTL" default:"30s" json:"search_ttl"`
		MaxAge         uint                 `envconfig:"PRODUCTS_CACHE_MAX_AGE" default:"60" json:"max_age"`
		CircuitBreaker CircuitBreakerConfig `json:"circuit_breaker"`
	}

	CircuitBreakerConfig struct {
		Enabled          bool          `envconfig:"PRODUCTS_CACHE_CB_ENABLED" default:"true" json:"enabled"`
		MaxRequests      uint          `envconfig:"PRODUCTS_CACHE_CB_MAX_REQUESTS" default:"3" json:"max_requests"`
		Interval         time.Duration `envconfig:"PRODUCTS_CACHE_CB_INTERVAL" default:"60s" json:"interval"`
		Timeout          time.Duration `envconfig:"PRODUCTS_CACHE_CB_TIMEOUT" default:"15s" json:"timeout"`
		FailureThreshold uint          `envconfig:"PRODUCTS_CACHE_CB_FAILURE_THRESHOLD" default:"5" json:"failure_threshold"`
	}

	ObjectStorage struct {
		Enabled    bool          `envconfig:"OBJECT_STORAGE_ENABLED" default:"true" json:"enabled"`
		Endpoint   string        `envconfig:"OBJECT_STORAGE_ENDPOINT" default:"minio:9000" json:"endpoint"`
		AccessKey  string        `envconfig:"OBJECT_STORAGE_ACCESS_KEY" default:"minioadmin" json:"-"`
		SecretKey  string        `envconfig:"OBJECT_STORAGE_SECRET_KEY" default:"minioadmin" json:"-"`
		Bucket     string        `envconfig:"OBJECT_STORAGE_BUCKET" default:"product-images" json:"bucket"`
		Region     string        `envconfig:"OBJECT_STORAGE_REGION" default:"us-east-1" json:"region"`
		UseSSL     bool          `envconfig:"OBJECT_STORAGE_USE_SSL" default:"false" json:"use_ssl"`
		PresignTTL time.Duration `envconfig:"OBJECT_STORAGE_PRESIGN_TTL" default:"15m" json:"presign_ttl"`
	}

	Auth struct {
		SecretKey       string        `envconfig:"AUTH_SECRET_KEY" default:"" json:"-"`
		Issuer          string        `envconfig:"AUTH_ISSUER" default:"svc-catalog" json:"issuer"`
		TokenExpiry     time.Duration `envconfig:"AUTH_TOKEN_EXPIRY" default:"1h" json:"token_expiry"`
		RevocationStore string        `envconfig:"AUTH_REVOCATION_STORE" default:"redis" json:"revocation_store"`
		BcryptCost      int           `envconfig:"AUTH_BCRYPT_COST" default:"12" json:"bcrypt_cost"`
		AdminEmail      string        `envconfig:"AUTH_ADMIN_EMAIL" default:"" json:"admin_email,omitempty"`
		AdminPassword   string        `envconfig:"AUTH_ADMIN_PASSWORD" default:"" json:"-"`
	}

	Search struct {
		OrMode model.OrMode `envconfig:"SEARCH_OR_MODE" default:"compat" json:"or_mode"`
	}

	Backoff struct {
		InitialInterval time.Duration `envconfig:"BACKOFF_INITIAL_INTERVAL" default:"500ms" json:"initial_interval"`
		Multiplier      float64       `envconfig:"BACKOFF_MULTIPLIER" default:"1.5" json:"multiplier"`
		MaxInterval     time.Duration `envconfig:"BACKOFF_MAX_INTERVAL" default:"10s" json:"max_interval"`
		MaxTries        uint          `envconfig:"BACKOFF_MAX_TRIES" default:"10" json:"max_tries"`
	}

	RateLimiting struct {
		Enabled           bool     `envconfig:"RATE_LIMITING_ENABLED" default:"true" json:"enabled"`
		RequestsPerSecond uint     `envconfig:"RATE_LIMITING_REQUESTS_PER_SECOND" default:"10" json:"requests_per_second"`
		BurstSize         uint     `envconfig:"RATE_LIMITING_BURST_SIZE" default:"20" json:"burst_size"`
		SkipPaths         []string `envconfig:"RATE_LIMITING_SKIP_PATHS" default:"/v1/health,/v1/liveness,/v1/readiness,/metrics" json:"skip_paths"`
		KeyByIP           bool     `envconfig:"RATE_LIMITING_KEY_BY_IP" default:"true" json:"key_by_ip"`
		KeyByUser         bool     `envconfig:"RATE_LIMITING_KEY_BY_USER" default:"true" json:"key_by_user"`
		Store             string   `envconfig:"RATE_LIMITING_STORE" default:"redis" json:"store"`
		MaxMemoryKeys     int      `envconfig:"RATE_LIMITING_MAX_MEMORY_KEYS" default:"65536" json:"max_memory_keys"`
		GracefulDegraded  bool     `envconfig:"RATE_LIMITING_GRACEFUL_DEGRADED" default:"true" json:"graceful_degraded"`
	}

	Idempotency struct {
		Enabled          bool          `envconfig:"IDEMPOTENCY_ENABLED" default:"true" json:"enabled"`
		CacheTTL         time.Duration `envconfig:"IDEMPOTENCY_CACHE_TTL" default:"24h" json:"cache_ttl"`
		LockTTL          time.Duration `envconfig:"IDEMPOTENCY_LOCK_TTL" default:"30s" json:"lock_ttl"`
		ReplayedHeader   string        `envconfig:"IDEMPOTENCY_REPLAYED_HEADER" default:"Idempotent-Replayed" json:"replayed_header"`
		GracefulDegraded bool          `envconfig:"IDEMPOTENCY_GRACEFUL_DEGRADED" default:"true" json:"graceful_degraded"`
	}

	Compression struct {
		Enabled   bool     `envconfig:"COMPRESSION_ENABLED" default:"true" json:"enabled"`
		Level     int      `envconfig:"COMPRESSION_LEVEL" default:"5" json:"level"`
		MinSize   int      `envconfig:"COMPRESSION_MIN_SIZE" default:"1024" json:"min_size"`
		SkipPaths []string `envconfig:"COMPRESSION_SKIP_PATHS" default:"/v1/health,/v1/liveness,/v1/readiness,/metrics" json:"skip_paths"`
	}

	Logging struct {
		Level     string    `envconfig:"LOG_LEVEL" default:"info" json:"level"`
		Format    string    `envconfig:"LOG_FORMAT" default:"json" json:"format"`
		AccessLog AccessLog `json:"access_log"`
	}

	AccessLog struct {
		Enabled            bool `envconfig:"ACCESS_LOG_ENABLED" default:"true" json:"enabled"`
		LogHealthChecks    bool `envconfig:"ACCESS_LOG_HEALTH_CHECKS" default:"false" json:"log_health_checks"`
		IncludeQueryParams bool `envconfig:"ACCESS_LOG_INCLUDE_QUERY_PARAMS" default:"true" json:"include_query_params"`
	}

	Telemetry struct {
		ExporterType string  `envconfig:"OTEL_EXPORTER" default:"grpc" json:"exporter_type"`
		OTLPEndpoint string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"otel-collector:4317" json:"otlp_endpoint"`
		Metrics      Metrics `json:"metrics"`
		Traces       Traces  `json:"traces"`
	}

	Metrics struct {
		Enabled   bool   `envconfig:"METRICS_ENABLED" default:"true" json:"enabled"`
		Namespace string `envconfig:"METRICS_NAMESPACE" default:"storefront" json:"namespace"`
	}

	Traces struct {
		Enabled      bool    `envconfig:"TRACES_ENABLED" default:"false" json:"enabled"`
		SamplerRatio float64 `envconfig:"TRACES_SAMPLER_RATIO" default:"1.0" json:"sampler_ratio"`
	}
)

func (c *ServiceConfig) GetEnvironment() int {
	switch c.App.Env.Name {
	case "production", "prod":
		return Production
	case "staging", "stg":
		return Staging
	case "sandbox", "sbx":
		return Sandbox
	default:
		return Development
	}
}

func (c *ServiceConfig) IsProduction() bool {
	return c.GetEnvironment() == Production
}

// Validate rejects settings the service cannot start with.
func (c *ServiceConfig) Validate() error {
	if len(c.Auth.SecretKey) < 32 {
		return fmt.Errorf("auth secret key must be at least 32 bytes, got %d", len(c.Auth.SecretKey))
	}

	switch c.Auth.RevocationStore {
	case RevocationStoreMemory, RevocationStoreRedis:
	default:
		return fmt.Errorf("unknown revocation store %q", c.Auth.RevocationStore)
	}

	switch c.RateLimiting.Store {
	case RateLimitStoreMemory, RateLimitStoreRedis:
	default:
		return fmt.Errorf("unknown rate limit store %q", c.RateLimiting.Store)
	}

	if (c.Auth.AdminEmail == "") != (c.Auth.AdminPassword == "") {
		return fmt.Errorf("admin email and password must be set together")
	}

	return c.Compression.Validate()
}

func (c *Compression) Validate() error {
	if c.Level < 1 || c.Level > 9 {
		return fmt.Errorf("compression level must be between 1 and 9, got %d", c.Level)
	}

	if c.MinSize < 0 {
		return fmt.Errorf("compression min_size must be non-negative, got %d", c.MinSize)
	}

	return nil
}

func (d Database) DSN() string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.Username, d.Password),
		Host:     net.JoinHostPort(d.Host, strconv.FormatUint(uint64(d.Port), 10)),
		Path:     "/" + d.Database,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}

	return dsn.String()
}
