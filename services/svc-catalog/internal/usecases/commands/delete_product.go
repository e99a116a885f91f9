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
	DeleteProductCommand struct {
		ID model.ProductID
	}

	DeleteProductCommandHandler = decorator.CommandHandler[DeleteProductCommand, struct{}]

	deleteProductCommandHandler struct {
		productsService ports.ProductsService
	}
)

func NewDeleteProductCommandHandler(
	svc ports.ProductsService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) DeleteProductCommandHandler {
	return decorator.ApplyCommandDecorators[DeleteProductCommand, struct{}](
		deleteProductCommandHandler{productsService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h deleteProductCommandHandler) Handle(ctx context.Context, cmd DeleteProductCommand) (struct{}, error) {
	return struct{}{}, h.productsService.DeleteProduct(ctx, cmd.ID)
}
