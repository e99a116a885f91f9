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
	ListReviewsQuery struct {
		ProductID model.ProductID
	}

	// ListImagesQuery returns image metadata with freshly presigned URLs.
	ListImagesQuery struct {
		ProductID model.ProductID
	}

	ListReviewsQueryHandler = decorator.QueryHandler[ListReviewsQuery, []*model.Review]
	ListImagesQueryHandler  = decorator.QueryHandler[ListImagesQuery, []*model.Image]

	listReviewsQueryHandler struct {
		reviewsService ports.ReviewsService
	}

	listImagesQueryHandler struct {
		imagesService ports.ImagesService
	}
)

func NewListReviewsQueryHandler(
	svc ports.ReviewsService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) ListReviewsQueryHandler {
	return decorator.ApplyQueryDecorators[ListReviewsQuery, []*model.Review](
		listReviewsQueryHandler{reviewsService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h listReviewsQueryHandler) Execute(ctx context.Context, query ListReviewsQuery) ([]*model.Review, error) {
	return h.reviewsService.ListReviews(ctx, query.ProductID)
}

func NewListImagesQueryHandler(
	svc ports.ImagesService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) ListImagesQueryHandler {
	return decorator.ApplyQueryDecorators[ListImagesQuery, []*model.Image](
		listImagesQueryHandler{imagesService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h listImagesQueryHandler) Execute(ctx context.Context, query ListImagesQuery) ([]*model.Image, error) {
	return h.imagesService.ListImages(ctx, query.ProductID)
}
