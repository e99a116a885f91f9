package commands

import (
	"context"
	"io"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/storefront/pkg/decorator"
	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/pkg/metrics"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

type (
	UploadImageCommand struct {
		ProductID   model.ProductID
		ContentType string
		Size        int64
		Body        io.Reader
	}

	DeleteImageCommand struct {
		ProductID model.ProductID
		ID        model.ImageID
	}

	UploadImageCommandHandler = decorator.CommandHandler[UploadImageCommand, *model.Image]
	DeleteImageCommandHandler = decorator.CommandHandler[DeleteImageCommand, struct{}]

	uploadImageCommandHandler struct {
		imagesService ports.ImagesService
	}

	deleteImageCommandHandler struct {
		imagesService ports.ImagesService
	}
)

func NewUploadImageCommandHandler(
	svc ports.ImagesService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) UploadImageCommandHandler {
	return decorator.ApplyCommandDecorators[UploadImageCommand, *model.Image](
		uploadImageCommandHandler{imagesService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h uploadImageCommandHandler) Handle(ctx context.Context, cmd UploadImageCommand) (*model.Image, error) {
	return h.imagesService.UploadImage(ctx, cmd.ProductID, cmd.ContentType, cmd.Size, cmd.Body)
}

func NewDeleteImageCommandHandler(
	svc ports.ImagesService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) DeleteImageCommandHandler {
	return decorator.ApplyCommandDecorators[DeleteImageCommand, struct{}](
		deleteImageCommandHandler{imagesService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h deleteImageCommandHandler) Handle(ctx context.Context, cmd DeleteImageCommand) (struct{}, error) {
	return struct{}{}, h.imagesService.DeleteImage(ctx, cmd.ProductID, cmd.ID)
}
