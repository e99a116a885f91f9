package repos

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

const categoriesTable = "categories"

var categoryColumns = []string{"id", "name", "description", "created_at", "updated_at"}

type (
	CategoriesRepository struct {
		pool    PoolOps
		scanner Scanner
		logger  logger.Logger
	}

	categoryRow struct {
		ID          string    `db:"id"`
		Name        string    `db:"name"`
		Description string    `db:"description"`
		CreatedAt   time.Time `db:"created_at"`
		UpdatedAt   time.Time `db:"updated_at"`
	}
)

func NewCategoriesRepository(pool PoolOps, scanner Scanner, log logger.Logger) *CategoriesRepository {
	return &CategoriesRepository{
		pool:    pool,
		scanner: scanner,
		logger:  log,
	}
}

func (r *CategoriesRepository) Create(ctx context.Context, category *model.Category) error {
	err := exec(ctx, r.pool, psql.Insert(categoriesTable).
		Columns(categoryColumns...).
		Values(category.ID.String(), category.Name, category.Description, category.CreatedAt, category.UpdatedAt),
	)

	return r.writeError(err)
}

func (r *CategoriesRepository) FetchByID(ctx context.Context, id model.CategoryID) (*model.Category, error) {
	row, err := selectOne[categoryRow](
		ctx, r.pool, r.scanner,
		psql.Select(categoryColumns...).From(categoriesTable).Where(sq.Eq{"id": id.String()}),
		model.ErrCategoryNotFound,
	)
	if err != nil {
		return nil, err
	}

	return row.toCategory()
}

func (r *CategoriesRepository) List(ctx context.Context) ([]*model.Category, error) {
	rows, err := selectAll[categoryRow](
		ctx, r.pool, r.scanner,
		psql.Select(categoryColumns...).From(categoriesTable).OrderBy("name ASC"),
	)
	if err != nil {
		return nil, err
	}

	categories := make([]*model.Category, 0, len(rows))
	for index := range rows {
		category, err := rows[index].toCategory()
		if err != nil {
			return nil, queryError(err)
		}

		categories = append(categories, category)
	}

	return categories, nil
}

func (r *CategoriesRepository) Update(ctx context.Context, category *model.Category) error {
	err := execOne(ctx, r.pool, psql.Update(categoriesTable).
		Set("name", category.Name).
		Set("description", category.Description).
		Set("updated_at", category.UpdatedAt).
		Where(sq.Eq{"id": category.ID.String()}),
		model.ErrCategoryNotFound,
	)

	return r.writeError(err)
}

// Delete detaches the category's products through ON DELETE SET NULL.
func (r *CategoriesRepository) Delete(ctx context.Context, id model.CategoryID) error {
	return passError(execOne(ctx, r.pool,
		psql.Delete(categoriesTable).Where(sq.Eq{"id": id.String()}),
		model.ErrCategoryNotFound,
	))
}

func (r *CategoriesRepository) writeError(err error) error {
	if pgErrorCode(err) == pgUniqueViolation {
		return model.ErrDuplicateCategory
	}

	return passError(err)
}

func (row categoryRow) toCategory() (*model.Category, error) {
	id, err := model.ParseCategoryID(row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse category ID: %w", err)
	}

	return &model.Category{
		ID:          id,
		Name:        row.Name,
		Description: row.Description,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}
