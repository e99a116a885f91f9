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
	// UpdateProductCommand replaces every writable field of a product.
	UpdateProductCommand struct {
		ID         model.ProductID
		Attributes model.ProductAttributes
	}

	UpdateProductCommandHandler = decorator.CommandHandler[UpdateProductCommand, *model.Product]

	updateProductCommandHandler struct {
		productsService ports.ProductsService
	}
)

func NewUpdateProductCommandHandler(
	svc ports.ProductsService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) UpdateProductCommandHandler {
	return decorator.ApplyCommandDecorators[UpdateProductCommand, *model.Product](
		updateProductCommandHandler{productsService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h updateProductCommandHandler) Handle(ctx context.Context, cmd UpdateProductCommand) (*model.Product, error) {
	return h.productsService.UpdateProduct(ctx, cmd.ID, cmd.Attributes)
}
