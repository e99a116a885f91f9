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
	CreateProductCommand struct {
		Attributes model.ProductAttributes
	}

	CreateProductCommandHandler = decorator.CommandHandler[CreateProductCommand, *model.Product]

	createProductCommandHandler struct {
		productsService ports.ProductsService
	}
)

func NewCreateProductCommandHandler(
	svc ports.ProductsService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) CreateProductCommandHandler {
	return decorator.ApplyCommandDecorators[CreateProductCommand, *model.Product](
		createProductCommandHandler{productsService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h createProductCommandHandler) Handle(ctx context.Context, cmd CreateProductCommand) (*model.Product, error) {
	return h.productsService.CreateProduct(ctx, cmd.Attributes)
}
