package repos

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

const productsTable = "products"

var productSelectColumns = []string{
	"id", "name", "description", "brand", "price", "stock",
	"category_id", "rating", "review_count", "created_at", "updated_at",
}

type (
	ProductsRepository struct {
		pool       PoolOps
		scanner    Scanner
		translator *CriteriaTranslator
		logger     logger.Logger
	}

	productRow struct {
		ID          string    `db:"id"`
		Name        string    `db:"name"`
		Description string    `db:"description"`
		Brand       string    `db:"brand"`
		Price       float64   `db:"price"`
		Stock       int64     `db:"stock"`
		CategoryID  *string   `db:"category_id"`
		Rating      float64   `db:"rating"`
		ReviewCount int64     `db:"review_count"`
		CreatedAt   time.Time `db:"created_at"`
		UpdatedAt   time.Time `db:"updated_at"`
	}

	productRowWithCount struct {
		productRow
		TotalCount int64 `db:"total_count"`
	}
)

func NewProductsRepository(
	pool PoolOps,
	scanner Scanner,
	translator *CriteriaTranslator,
	log logger.Logger,
) *ProductsRepository {
	return &ProductsRepository{
		pool:       pool,
		scanner:    scanner,
		translator: translator,
		logger:     log,
	}
}

func (r *ProductsRepository) Create(ctx context.Context, product *model.Product) error {
	query, args, err := psql.Insert(productsTable).
		Columns(productSelectColumns...).
		Values(
			product.ID.String(),
			product.Name,
			product.Description,
			product.Brand,
			product.Price,
			product.Stock,
			categoryArg(product.CategoryID),
			product.Rating,
			product.ReviewCount,
			product.CreatedAt,
			product.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return buildError(err)
	}

	_, err = r.pool.Exec(ctx, query, args...)

	return r.writeError(err)
}

func (r *ProductsRepository) FetchByID(ctx context.Context, id model.ProductID) (*model.Product, error) {
	row, err := selectOne[productRow](
		ctx, r.pool, r.scanner,
		psql.Select(productSelectColumns...).From(productsTable).Where(sq.Eq{"id": id.String()}),
		model.ErrProductNotFound,
	)
	if err != nil {
		return nil, err
	}

	return row.toProduct()
}

func (r *ProductsRepository) Search(ctx context.Context, criteria model.Criteria) (*model.ProductList, error) {
	columns := append(append([]string{}, productSelectColumns...), "COUNT(*) OVER() AS total_count")

	builder, err := r.translator.ApplyToSelect(psql.Select(columns...).From(productsTable), criteria)
	if err != nil {
		return nil, err
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, buildError(err)
	}

	r.logger.Debug().
		Str("query", query).
		Str("spec", criteria.Spec().String()).
		Msg("searching products")

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, queryError(err)
	}
	defer rows.Close()

	var productRows []productRowWithCount
	if err := r.scanner.ScanAll(&productRows, rows); err != nil {
		return nil, queryError(err)
	}

	products := make([]*model.Product, 0, len(productRows))

	var total int64
	for index := range productRows {
		product, err := productRows[index].toProduct()
		if err != nil {
			return nil, queryError(err)
		}

		products = append(products, product)
		total = productRows[index].TotalCount
	}

	// A page past the end carries no window count.
	if len(productRows) == 0 && criteria.Page() > 1 {
		if total, err = r.count(ctx, criteria); err != nil {
			return nil, err
		}
	}

	return &model.ProductList{
		Products:   products,
		Pagination: model.NewPagination(criteria.Page(), criteria.Size(), uint(total)),
	}, nil
}

func (r *ProductsRepository) count(ctx context.Context, criteria model.Criteria) (int64, error) {
	builder, err := r.translator.ApplyConditionsOnly(psql.Select("COUNT(*)").From(productsTable), criteria)
	if err != nil {
		return 0, err
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, buildError(err)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, queryError(err)
	}

	return total, nil
}

func (r *ProductsRepository) Update(ctx context.Context, product *model.Product) error {
	err := execOne(ctx, r.pool, psql.Update(productsTable).
		Set("name", product.Name).
		Set("description", product.Description).
		Set("brand", product.Brand).
		Set("price", product.Price).
		Set("stock", product.Stock).
		Set("category_id", categoryArg(product.CategoryID)).
		Set("updated_at", product.UpdatedAt).
		Where(sq.Eq{"id": product.ID.String()}),
		model.ErrProductNotFound,
	)

	return r.writeError(err)
}

func (r *ProductsRepository) Delete(ctx context.Context, id model.ProductID) error {
	err := execOne(ctx, r.pool,
		psql.Delete(productsTable).Where(sq.Eq{"id": id.String()}),
		model.ErrProductNotFound,
	)

	return passError(err)
}

func (r *ProductsRepository) RefreshRating(ctx context.Context, id model.ProductID) error {
	err := execOne(ctx, r.pool, psql.Update(productsTable).
		Set("rating", sq.Expr("COALESCE((SELECT AVG(rating) FROM reviews WHERE product_id = ?), 0)", id.String())).
		Set("review_count", sq.Expr("(SELECT COUNT(*) FROM reviews WHERE product_id = ?)", id.String())).
		Where(sq.Eq{"id": id.String()}),
		model.ErrProductNotFound,
	)

	return passError(err)
}

func (r *ProductsRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *ProductsRepository) writeError(err error) error {
	if pgErrorCode(err) == pgForeignKeyViolation {
		return model.ErrCategoryNotFound
	}

	return passError(err)
}

func (row productRow) toProduct() (*model.Product, error) {
	id, err := model.ParseProductID(row.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse product ID: %w", err)
	}

	product := &model.Product{
		ID:          id,
		Name:        row.Name,
		Description: row.Description,
		Brand:       row.Brand,
		Price:       row.Price,
		Stock:       row.Stock,
		Rating:      row.Rating,
		ReviewCount: row.ReviewCount,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}

	if row.CategoryID != nil {
		categoryID, err := model.ParseCategoryID(*row.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse category ID: %w", err)
		}

		product.CategoryID = &categoryID
	}

	return product, nil
}

func categoryArg(id *model.CategoryID) any {
	if id == nil {
		return nil
	}

	return id.String()
}
