package commands

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
	CreateCategoryCommand struct {
		Name        string
		Description string
	}

	UpdateCategoryCommand struct {
		ID          model.CategoryID
		Name        string
		Description string
	}

	DeleteCategoryCommand struct {
		ID model.CategoryID
	}

	CreateCategoryCommandHandler = decorator.CommandHandler[CreateCategoryCommand, *model.Category]
	UpdateCategoryCommandHandler = decorator.CommandHandler[UpdateCategoryCommand, *model.Category]
	DeleteCategoryCommandHandler = decorator.CommandHandler[DeleteCategoryCommand, struct{}]

	createCategoryCommandHandler struct {
		categoriesService ports.CategoriesService
	}

	updateCategoryCommandHandler struct {
		categoriesService ports.CategoriesService
	}

	deleteCategoryCommandHandler struct {
		categoriesService ports.CategoriesService
	}
)

func NewCreateCategoryCommandHandler(
	svc ports.CategoriesService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) CreateCategoryCommandHandler {
	return decorator.ApplyCommandDecorators[CreateCategoryCommand, *model.Category](
		createCategoryCommandHandler{categoriesService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h createCategoryCommandHandler) Handle(ctx context.Context, cmd CreateCategoryCommand) (*model.Category, error) {
	return h.categoriesService.CreateCategory(ctx, cmd.Name, cmd.Description)
}

func NewUpdateCategoryCommandHandler(
	svc ports.CategoriesService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) UpdateCategoryCommandHandler {
	return decorator.ApplyCommandDecorators[UpdateCategoryCommand, *model.Category](
		updateCategoryCommandHandler{categoriesService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h updateCategoryCommandHandler) Handle(ctx context.Context, cmd UpdateCategoryCommand) (*model.Category, error) {
	return h.categoriesService.UpdateCategory(ctx, cmd.ID, cmd.Name, cmd.Description)
}

func NewDeleteCategoryCommandHandler(
	svc ports.CategoriesService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) DeleteCategoryCommandHandler {
	return decorator.ApplyCommandDecorators[DeleteCategoryCommand, struct{}](
		deleteCategoryCommandHandler{categoriesService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h deleteCategoryCommandHandler) Handle(ctx context.Context, cmd DeleteCategoryCommand) (struct{}, error) {
	return struct{}{}, h.categoriesService.DeleteCategory(ctx, cmd.ID)
}
