package repos

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

const reviewsTable = "reviews"

var reviewColumns = []string{"id", "product_id", "user_id", "rating", "comment", "created_at"}

type (
	ReviewsRepository struct {
		pool    PoolOps
		scanner Scanner
		logger  logger.Logger
	}

	reviewRow struct {
		ID        string    `db:"id"`
		ProductID string    `db:"product_id"`
		UserID    string    `db:"user_id"`
		Rating    int       `db:"rating"`
		Comment   string    `db:"comment"`
		CreatedAt time.Time `db:"created_at"`
	}
)

func NewReviewsRepository(pool PoolOps, scanner Scanner, log logger.Logger) *ReviewsRepository {
	return &ReviewsRepository{
		pool:    pool,
		scanner: scanner,
		logger:  log,
	}
}

// Create stores a review; one review per user and product.
func (r *ReviewsRepository) Create(ctx context.Context, review *model.Review) error {
	err := exec(ctx, r.pool, psql.Insert(reviewsTable).
		Columns(reviewColumns...).
		Values(
			review.ID.String(),
			review.ProductID.String(),
			review.UserID.String(),
			review.Rating,
			review.Comment,
			review.CreatedAt,
		),
	)

	switch pgErrorCode(err) {
	case pgUniqueViolation:
		return model.ErrDuplicateReview
	case pgForeignKeyViolation:
		return model.ErrProductNotFound
	}

	return passError(err)
}

func (r *ReviewsRepository) FetchByID(ctx context.Context, id model.ReviewID) (*model.Review, error) {
	row, err := selectOne[reviewRow](
		ctx, r.pool, r.scanner,
		psql.Select(reviewColumns...).From(reviewsTable).Where(sq.Eq{"id": id.String()}),
		model.ErrReviewNotFound,
	)
	if err != nil {
		return nil, err
	}

	return row.toReview()
}

func (r *ReviewsRepository) ListByProduct(ctx context.Context, productID model.ProductID) ([]*model.Review, error) {
	rows, err := selectAll[reviewRow](
		ctx, r.pool, r.scanner,
		psql.Select(reviewColumns...).
			From(reviewsTable).
			Where(sq.Eq{"product_id": productID.String()}).
			OrderBy("created_at DESC"),
	)
	if err != nil {
		return nil, err
	}

	reviews := make([]*model.Review, 0, len(rows))
	for index := range rows {
		review, err := rows[index].toReview()
		if err != nil {
			return nil, queryError(err)
		}

		reviews = append(reviews, review)
	}

	return reviews, nil
}

func (r *ReviewsRepository) Delete(ctx context.Context, id model.ReviewID) error {
	return passError(execOne(ctx, r.pool,
		psql.Delete(reviewsTable).Where(sq.Eq{"id": id.String()}),
		model.ErrReviewNotFound,
	))
}

func (row reviewRow) toReview() (*model.Review, error) {
	id, err := model.ParseReviewID(row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse review ID: %w", err)
	}

	productID, err := model.ParseProductID(row.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product ID: %w", err)
	}

	userID, err := model.ParseUserID(row.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse user ID: %w", err)
	}

	return &model.Review{
		ID:        id,
		ProductID: productID,
		UserID:    userID,
		Rating:    row.Rating,
		Comment:   row.Comment,
		CreatedAt: row.CreatedAt,
	}, nil
}
