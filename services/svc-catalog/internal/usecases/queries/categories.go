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
	GetCategoryQuery struct {
		ID model.CategoryID
	}

	ListCategoriesQuery struct{}

	GetCategoryQueryHandler    = decorator.QueryHandler[GetCategoryQuery, *model.Category]
	ListCategoriesQueryHandler = decorator.QueryHandler[ListCategoriesQuery, []*model.Category]

	getCategoryQueryHandler struct {
		categoriesService ports.CategoriesService
	}

	listCategoriesQueryHandler struct {
		categoriesService ports.CategoriesService
	}
)

func NewGetCategoryQueryHandler(
	svc ports.CategoriesService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) GetCategoryQueryHandler {
	return decorator.ApplyQueryDecorators[GetCategoryQuery, *model.Category](
		getCategoryQueryHandler{categoriesService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h getCategoryQueryHandler) Execute(ctx context.Context, query GetCategoryQuery) (*model.Category, error) {
	return h.categoriesService.GetCategory(ctx, query.ID)
}

func NewListCategoriesQueryHandler(
	svc ports.CategoriesService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) ListCategoriesQueryHandler {
	return decorator.ApplyQueryDecorators[ListCategoriesQuery, []*model.Category](
		listCategoriesQueryHandler{categoriesService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h listCategoriesQueryHandler) Execute(ctx context.Context, _ ListCategoriesQuery) ([]*model.Category, error) {
	return h.categoriesService.ListCategories(ctx)
}
