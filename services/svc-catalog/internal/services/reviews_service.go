package services

import (
	"context"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

type ReviewsService struct {
	reviews  ports.ReviewsRepository
	products ports.ProductsRepository
	cache    ports.ProductsCache
	logger   logger.Logger
}

var _ ports.ReviewsService = (*ReviewsService)(nil)

func NewReviewsService(
	reviews ports.ReviewsRepository,
	products ports.ProductsRepository,
	cache ports.ProductsCache,
	log logger.Logger,
) *ReviewsService {
	return &ReviewsService{
		reviews:  reviews,
		products: products,
		cache:    cache,
		logger:   log,
	}
}

func (s *ReviewsService) CreateReview(
	ctx context.Context,
	author model.Principal,
	productID model.ProductID,
	rating int,
	comment string,
) (*model.Review, error) {
	review, err := model.NewReview(productID, author.UserID, rating, comment)
	if err != nil {
		return nil, err
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	if err := s.refreshRating(ctx, productID); err != nil {
		return nil, err
	}

	return review, nil
}

func (s *ReviewsService) ListReviews(ctx context.Context, productID model.ProductID) ([]*model.Review, error) {
	if _, err := s.products.FetchByID(ctx, productID); err != nil {
		return nil, err
	}

	return s.reviews.ListByProduct(ctx, productID)
}

// DeleteReview lets authors remove their own reviews and admins remove any.
func (s *ReviewsService) DeleteReview(ctx context.Context, actor model.Principal, id model.ReviewID) error {
	review, err := s.reviews.FetchByID(ctx, id)
	if err != nil {
		return err
	}

	if !review.CanBeDeletedBy(actor) {
		return model.ErrForbidden
	}

	if err := s.reviews.Delete(ctx, id); err != nil {
		return err
	}

	return s.refreshRating(ctx, review.ProductID)
}

func (s *ReviewsService) refreshRating(ctx context.Context, productID model.ProductID) error {
	if err := s.products.RefreshRating(ctx, productID); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(context.WithoutCancel(ctx), productID); err != nil {
			s.logger.Warn().Err(err).Str("product_id", productID.String()).Msg("failed to invalidate product cache")
		}
	}

	return nil
}
