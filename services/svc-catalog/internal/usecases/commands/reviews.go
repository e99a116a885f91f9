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
	CreateReviewCommand struct {
		Author    model.Principal
		ProductID model.ProductID
		Rating    int
		Comment   string
	}

	// DeleteReviewCommand is issued by Actor, who must be the author or an admin.
	DeleteReviewCommand struct {
		Actor model.Principal
		ID    model.ReviewID
	}

	CreateReviewCommandHandler = decorator.CommandHandler[CreateReviewCommand, *model.Review]
	DeleteReviewCommandHandler = decorator.CommandHandler[DeleteReviewCommand, struct{}]

	createReviewCommandHandler struct {
		reviewsService ports.ReviewsService
	}

	deleteReviewCommandHandler struct {
		reviewsService ports.ReviewsService
	}
)

func NewCreateReviewCommandHandler(
	svc ports.ReviewsService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) CreateReviewCommandHandler {
	return decorator.ApplyCommandDecorators[CreateReviewCommand, *model.Review](
		createReviewCommandHandler{reviewsService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h createReviewCommandHandler) Handle(ctx context.Context, cmd CreateReviewCommand) (*model.Review, error) {
	return h.reviewsService.CreateReview(ctx, cmd.Author, cmd.ProductID, cmd.Rating, cmd.Comment)
}

func NewDeleteReviewCommandHandler(
	svc ports.ReviewsService,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) DeleteReviewCommandHandler {
	return decorator.ApplyCommandDecorators[DeleteReviewCommand, struct{}](
		deleteReviewCommandHandler{reviewsService: svc},
		log,
		metricsClient,
		tracerProvider,
	)
}

func (h deleteReviewCommandHandler) Handle(ctx context.Context, cmd DeleteReviewCommand) (struct{}, error) {
	return struct{}{}, h.reviewsService.DeleteReview(ctx, cmd.Actor, cmd.ID)
}
