package http

import (
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/throttled/throttled/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/pkg/metrics"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/inbound/http/handlers"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/inbound/http/openapi"
	"github.com/architeacher/storefront/services/svc-catalog/internal/authz"
	"github.com/architeacher/storefront/services/svc-catalog/internal/config"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
	"github.com/architeacher/storefront/services/svc-catalog/internal/usecases"
)

const baseURL = "/v1"

type RouterConfig struct {
	App            *usecases.Application
	Config         *config.ServiceConfig
	Logger         logger.Logger
	MetricsClient  metrics.Client
	TracerProvider trace.TracerProvider
	Auth           ports.AuthService
	Authorizer     ports.Authorizer
	RateLimitStore throttled.GCRAStoreCtx
	// Idempotency is optional; without it Idempotency-Key is ignored.
	Idempotency ports.IdempotencyRepository
}

func NewRouter(cfg RouterConfig) (http.Handler, error) {
	svcCfg := cfg.Config
	log := cfg.Logger

	router := chi.NewRouter()

	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestTracking())
	router.Use(middleware.Recovery(log))

	if svcCfg.Telemetry.Traces.Enabled {
		router.Use(middleware.Tracing(svcCfg.App.ServiceName, cfg.TracerProvider))
	}

	if svcCfg.Telemetry.Metrics.Enabled {
		router.Use(middleware.Metrics(cfg.MetricsClient))
	}

	if svcCfg.Logging.AccessLog.Enabled {
		router.Use(middleware.HealthCheckFilter(svcCfg.Logging.AccessLog.LogHealthChecks))
		router.Use(middleware.AccessLogger(log, svcCfg.Logging.AccessLog.IncludeQueryParams))
	}

	router.Use(middleware.SecurityHeaders(svcCfg.App.APIVersion))
	router.Use(middleware.CORS(svcCfg.HTTPServer.AllowedOrigins))
	router.Use(chimiddleware.Timeout(svcCfg.HTTPServer.RequestTimeout))
	router.Use(middleware.Compression(svcCfg.Compression, cfg.MetricsClient))
	router.Use(middleware.Authentication(cfg.Auth, log))

	rateLimiting, err := middleware.RateLimiting(svcCfg.RateLimiting, cfg.RateLimitStore, log)
	if err != nil {
		return nil, err
	}

	router.Use(rateLimiting)

	if svcCfg.HTTPServer.ValidateRequest {
		validator, err := newRequestValidator(log)
		if err != nil {
			return nil, err
		}

		router.Use(validator)
	}

	if cfg.Idempotency != nil {
		router.Use(middleware.Idempotency(cfg.Idempotency, svcCfg.Idempotency, log))
	}

	if svcCfg.Telemetry.Metrics.Enabled {
		router.Method(http.MethodGet, "/metrics", cfg.MetricsClient.Handler())
	}

	h := handlers.NewHandler(cfg.App, handlers.Options{
		APIVersion:  svcCfg.App.APIVersion,
		OrMode:      svcCfg.Search.OrMode,
		CacheMaxAge: svcCfg.ProductsCache.MaxAge,
	}, log)

	allow := func(resource, action string) func(http.Handler) http.Handler {
		return middleware.Authorize(cfg.Authorizer, log, resource, action)
	}

	router.Route(baseURL, func(r chi.Router) {
		r.Get("/liveness", h.Liveness)
		r.Get("/readiness", h.Readiness)
		r.Get("/health", h.Health)
		r.Get("/openapi.yaml", serveDocument)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.With(allow(authz.ResourceSession, authz.ActionWrite)).Post("/logout", h.Logout)
		})

		r.Route("/products", func(r chi.Router) {
			r.With(allow(authz.ResourceProducts, authz.ActionRead)).Get("/", h.ListProducts)
			r.With(allow(authz.ResourceProducts, authz.ActionRead)).Post("/search", h.SearchProducts)
			r.With(allow(authz.ResourceProducts, authz.ActionWrite)).Post("/", h.CreateProduct)

			r.Route("/{productID}", func(r chi.Router) {
				r.With(
					allow(authz.ResourceProducts, authz.ActionRead),
					middleware.ConditionalGET(middleware.NewETagGenerator()),
				).Get("/", h.GetProduct)
				r.With(allow(authz.ResourceProducts, authz.ActionWrite)).Put("/", h.UpdateProduct)
				r.With(allow(authz.ResourceProducts, authz.ActionWrite)).Delete("/", h.DeleteProduct)

				r.With(allow(authz.ResourceReviews, authz.ActionRead)).Get("/reviews", h.ListReviews)
				r.With(allow(authz.ResourceReviews, authz.ActionWrite)).Post("/reviews", h.CreateReview)

				r.With(allow(authz.ResourceImages, authz.ActionRead)).Get("/images", h.ListImages)
				r.With(allow(authz.ResourceImages, authz.ActionWrite)).Post("/images", h.UploadImage)
				r.With(allow(authz.ResourceImages, authz.ActionWrite)).Delete("/images/{imageID}", h.DeleteImage)
			})
		})

		r.With(allow(authz.ResourceReviews, authz.ActionWrite)).Delete("/reviews/{reviewID}", h.DeleteReview)

		r.Route("/categories", func(r chi.Router) {
			r.With(allow(authz.ResourceCategories, authz.ActionRead)).Get("/", h.ListCategories)
			r.With(allow(authz.ResourceCategories, authz.ActionWrite)).Post("/", h.CreateCategory)
			r.With(allow(authz.ResourceCategories, authz.ActionRead)).Get("/{categoryID}", h.GetCategory)
			r.With(allow(authz.ResourceCategories, authz.ActionWrite)).Put("/{categoryID}", h.UpdateCategory)
			r.With(allow(authz.ResourceCategories, authz.ActionWrite)).Delete("/{categoryID}", h.DeleteCategory)
		})
	})

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
	})

	return router, nil
}

func newRequestValidator(log logger.Logger) (func(http.Handler) http.Handler, error) {
	doc, err := openapi.Load()
	if err != nil {
		return nil, err
	}

	doc.Servers = openapi3.Servers{&openapi3.Server{URL: baseURL}}

	validator, err := middleware.RequestValidator(doc, log)
	if err != nil {
		return nil, fmt.Errorf("creating request validator: %w", err)
	}

	return validator, nil
}

func serveDocument(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openapi.Raw())
}
