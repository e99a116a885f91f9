package services

import (
	"context"
	"io"
	"time"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

type ImagesService struct {
	images     ports.ImagesRepository
	products   ports.ProductsRepository
	objects    ports.ObjectStore
	presignTTL time.Duration
	logger     logger.Logger
}

var _ ports.ImagesService = (*ImagesService)(nil)

func NewImagesService(
	images ports.ImagesRepository,
	products ports.ProductsRepository,
	objects ports.ObjectStore,
	presignTTL time.Duration,
	log logger.Logger,
) *ImagesService {
	return &ImagesService{
		images:     images,
		products:   products,
		objects:    objects,
		presignTTL: presignTTL,
		logger:     log,
	}
}

// UploadImage stores the bytes first and the metadata second; a failed
// metadata write removes the orphaned object again.
func (s *ImagesService) UploadImage(
	ctx context.Context,
	productID model.ProductID,
	contentType string,
	size int64,
	body io.Reader,
) (*model.Image, error) {
	image, err := model.NewImage(productID, contentType, size)
	if err != nil {
		return nil, err
	}

	if _, err := s.products.FetchByID(ctx, productID); err != nil {
		return nil, err
	}

	if err := s.objects.Put(ctx, image.ObjectKey, body, size, image.ContentType); err != nil {
		return nil, err
	}

	if err := s.images.Create(ctx, image); err != nil {
		if removeErr := s.objects.Remove(context.WithoutCancel(ctx), image.ObjectKey); removeErr != nil {
			s.logger.Warn().Err(removeErr).Str("object_key", image.ObjectKey).Msg("failed to remove orphaned image object")
		}

		return nil, err
	}

	s.presign(ctx, image)

	return image, nil
}

func (s *ImagesService) ListImages(ctx context.Context, productID model.ProductID) ([]*model.Image, error) {
	if _, err := s.products.FetchByID(ctx, productID); err != nil {
		return nil, err
	}

	images, err := s.images.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	for _, image := range images {
		s.presign(ctx, image)
	}

	return images, nil
}

func (s *ImagesService) DeleteImage(ctx context.Context, productID model.ProductID, id model.ImageID) error {
	image, err := s.images.FetchByID(ctx, id)
	if err != nil {
		return err
	}

	if image.ProductID != productID {
		return model.ErrImageNotFound
	}

	if err := s.images.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.objects.Remove(ctx, image.ObjectKey); err != nil {
		s.logger.Warn().Err(err).Str("object_key", image.ObjectKey).Msg("failed to remove image object")
	}

	return nil
}

func (s *ImagesService) presign(ctx context.Context, image *model.Image) {
	url, err := s.objects.PresignedURL(ctx, image.ObjectKey, s.presignTTL)
	if err != nil {
		s.logger.Warn().Err(err).Str("object_key", image.ObjectKey).Msg("failed to presign image url")

		return
	}

	image.URL = url
}
