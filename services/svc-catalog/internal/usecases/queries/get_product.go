package queries

import (
	"context"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/storefront/pkg/decorator"
	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/pkg/metrics"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

type (
	GetProductQuery struct {
		ID model.ProductID
	}

	GetProductQueryHandler = decorator.QueryHandler[GetProductQuery, *model.Product]

	getProductQueryHandler struct {
		productsService ports.ProductsService
	}
)

// NewGetProductQueryHandler serves reads through cache when cacheConfig
// enables it; a nil cache always goes to the service.
func NewGetProductQueryHandler(
	svc ports.ProductsService,
	cache decorator.Cache[GetProductQuery, *model.Product],
	cacheConfig decorator.CacheConfig,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) GetProductQueryHandler {
	return decorator.ApplyCachedQueryDecorators[GetProductQuery, *model.Product](
		getProductQueryHandler{productsService: svc},
		cache,
		cacheConfig,
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h getProductQueryHandler) Execute(ctx context.Context, query GetProductQuery) (*model.Product, error) {
	return h.productsService.GetProduct(ctx, query.ID)
}
