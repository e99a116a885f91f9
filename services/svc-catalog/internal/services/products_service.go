package services

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

type ProductsService struct {
	repo    ports.ProductsRepository
	images  ports.ImagesRepository
	objects ports.ObjectStore
	cache   ports.ProductsCache
	loads   singleflight.Group
	logger  logger.Logger
}

var _ ports.ProductsService = (*ProductsService)(nil)

// NewProductsService takes an optional cache; writes invalidate it when set.
func NewProductsService(
	repo ports.ProductsRepository,
	images ports.ImagesRepository,
	objects ports.ObjectStore,
	cache ports.ProductsCache,
	log logger.Logger,
) *ProductsService {
	return &ProductsService{
		repo:    repo,
		images:  images,
		objects: objects,
		cache:   cache,
		logger:  log,
	}
}

func (s *ProductsService) CreateProduct(ctx context.Context, attrs model.ProductAttributes) (*model.Product, error) {
	product, err := model.NewProduct(attrs)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate(ctx, product.ID)

	return product, nil
}

// GetProduct collapses concurrent loads of the same product into one query.
func (s *ProductsService) GetProduct(ctx context.Context, id model.ProductID) (*model.Product, error) {
	v, err, shared := s.loads.Do(id.String(), func() (any, error) {
		return s.repo.FetchByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	product := v.(*model.Product)
	if shared {
		clone := *product

		return &clone, nil
	}

	return product, nil
}

func (s *ProductsService) SearchProducts(ctx context.Context, criteria model.Criteria) (*model.ProductList, error) {
	return s.repo.Search(ctx, criteria)
}

func (s *ProductsService) UpdateProduct(ctx context.Context, id model.ProductID, attrs model.ProductAttributes) (*model.Product, error) {
	product, err := s.repo.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := product.Update(attrs); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)

	return product, nil
}

// DeleteProduct removes the product; image rows cascade and their objects
// are removed afterwards on a best-effort basis.
func (s *ProductsService) DeleteProduct(ctx context.Context, id model.ProductID) error {
	images, err := s.images.ListByProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	for _, image := range images {
		if err := s.objects.Remove(ctx, image.ObjectKey); err != nil {
			s.logger.Warn().
				Err(err).
				Str("product_id", id.String()).
				Str("object_key", image.ObjectKey).
				Msg("failed to remove image object of deleted product")
		}
	}

	s.invalidate(ctx, id)

	return nil
}

func (s *ProductsService) invalidate(ctx context.Context, id model.ProductID) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Invalidate(context.WithoutCancel(ctx), id); err != nil {
		s.logger.Warn().Err(err).Str("product_id", id.String()).Msg("failed to invalidate product cache")
	}
}
