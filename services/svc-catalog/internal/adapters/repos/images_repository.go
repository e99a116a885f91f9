package repos

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

const imagesTable = "product_images"

var imageColumns = []string{"id", "product_id", "object_key", "content_type", "size_bytes", "created_at"}

type (
	ImagesRepository struct {
		pool    PoolOps
		scanner Scanner
		logger  logger.Logger
	}

	imageRow struct {
		ID          string    `db:"id"`
		ProductID   string    `db:"product_id"`
		ObjectKey   string    `db:"object_key"`
		ContentType string    `db:"content_type"`
		Size        int64     `db:"size_bytes"`
		CreatedAt   time.Time `db:"created_at"`
	}
)

func NewImagesRepository(pool PoolOps, scanner Scanner, log logger.Logger) *ImagesRepository {
	return &ImagesRepository{
		pool:    pool,
		scanner: scanner,
		logger:  log,
	}
}

func (r *ImagesRepository) Create(ctx context.Context, image *model.Image) error {
	err := exec(ctx, r.pool, psql.Insert(imagesTable).
		Columns(imageColumns...).
		Values(
			image.ID.String(),
			image.ProductID.String(),
			image.ObjectKey,
			image.ContentType,
			image.Size,
			image.CreatedAt,
		),
	)

	if pgErrorCode(err) == pgForeignKeyViolation {
		return model.ErrProductNotFound
	}

	return passError(err)
}

func (r *ImagesRepository) FetchByID(ctx context.Context, id model.ImageID) (*model.Image, error) {
	row, err := selectOne[imageRow](
		ctx, r.pool, r.scanner,
		psql.Select(imageColumns...).From(imagesTable).Where(sq.Eq{"id": id.String()}),
		model.ErrImageNotFound,
	)
	if err != nil {
		return nil, err
	}

	return row.toImage()
}

func (r *ImagesRepository) ListByProduct(ctx context.Context, productID model.ProductID) ([]*model.Image, error) {
	rows, err := selectAll[imageRow](
		ctx, r.pool, r.scanner,
		psql.Select(imageColumns...).
			From(imagesTable).
			Where(sq.Eq{"product_id": productID.String()}).
			OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}

	images := make([]*model.Image, 0, len(rows))
	for index := range rows {
		image, err := rows[index].toImage()
		if err != nil {
			return nil, queryError(err)
		}

		images = append(images, image)
	}

	return images, nil
}

func (r *ImagesRepository) Delete(ctx context.Context, id model.ImageID) error {
	return passError(execOne(ctx, r.pool,
		psql.Delete(imagesTable).Where(sq.Eq{"id": id.String()}),
		model.ErrImageNotFound,
	))
}

func (row imageRow) toImage() (*model.Image, error) {
	id, err := model.ParseImageID(row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse image ID: %w", err)
	}

	productID, err := model.ParseProductID(row.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product ID: %w", err)
	}

	return &model.Image{
		ID:          id,
		ProductID:   productID,
		ObjectKey:   row.ObjectKey,
		ContentType: row.ContentType,
		Size:        row.Size,
		CreatedAt:   row.CreatedAt,
	}, nil
}
