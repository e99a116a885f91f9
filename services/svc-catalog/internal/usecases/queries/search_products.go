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
	SearchProductsQuery struct {
		Criteria model.Criteria
	}

	SearchProductsQueryHandler = decorator.QueryHandler[SearchProductsQuery, *model.ProductList]

	searchProductsQueryHandler struct {
		productsService ports.ProductsService
	}
)

func NewSearchProductsQueryHandler(
	svc ports.ProductsService,
	cache decorator.Cache[SearchProductsQuery, *model.ProductList],
	cacheConfig decorator.CacheConfig,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) SearchProductsQueryHandler {
	return decorator.ApplyCachedQueryDecorators[SearchProductsQuery, *model.ProductList](
		searchProductsQueryHandler{productsService: svc},
		cache,
		cacheConfig,
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h searchProductsQueryHandler) Execute(ctx context.Context, query SearchProductsQuery) (*model.ProductList, error) {
	return h.productsService.SearchProducts(ctx, query.Criteria)
}
