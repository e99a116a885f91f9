package repos_test

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/repos"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

const productColumnList = "id, name, description, brand, price, stock, category_id, rating, review_count, created_at, updated_at"

var productColumnNames = []string{
	"id", "name", "description", "brand", "price", "stock",
	"category_id", "rating", "review_count", "created_at", "updated_at",
}

func runProductsRepoTest(
	t *testing.T,
	setupMock func(pgxmock.PgxPoolIface),
	testFn func(*testing.T, *repos.ProductsRepository),
) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	setupMock(mock)

	log := logger.NewBufferedTestLogger(&bytes.Buffer{})
	repo := repos.NewProductsRepository(mock, repos.NewPgxScanner(), repos.NewProductsCriteriaTranslator(log), log)
	testFn(t, repo)

	require.NoError(t, mock.ExpectationsWereMet())
}

func newTestProduct(t *testing.T, categoryID *model.CategoryID) *model.Product {
	t.Helper()

	product, err := model.NewProduct(model.ProductAttributes{
		Name:       "Widget",
		Brand:      "acme",
		Price:      9.99,
		Stock:      5,
		CategoryID: categoryID,
	})
	require.NoError(t, err)

	return product
}

func productRows(products ...*model.Product) *pgxmock.Rows {
	rows := pgxmock.NewRows(productColumnNames)

	for _, p := range products {
		var categoryID *string
		if p.CategoryID != nil {
			s := p.CategoryID.String()
			categoryID = &s
		}

		rows.AddRow(
			p.ID.String(), p.Name, p.Description, p.Brand, p.Price, p.Stock,
			categoryID, p.Rating, p.ReviewCount, p.CreatedAt, p.UpdatedAt,
		)
	}

	return rows
}

func TestProductsRepository_Create(t *testing.T) {
	t.Parallel()

	categoryID := model.NewCategoryID()

	cases := []struct {
		name        string
		categoryID  *model.CategoryID
		execErr     error
		expectedErr error
	}{
		{
			name: "without category",
		},
		{
			name:       "with category",
			categoryID: &categoryID,
		},
		{
			name:        "missing category is reported",
			categoryID:  &categoryID,
			execErr:     &pgconn.PgError{Code: "23503"},
			expectedErr: model.ErrCategoryNotFound,
		},
		{
			name:        "driver failure is wrapped",
			execErr:     errors.New("connection reset"),
			expectedErr: model.ErrDatabaseQuery,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			product := newTestProduct(t, tc.categoryID)

			var categoryArg any
			if tc.categoryID != nil {
				categoryArg = tc.categoryID.String()
			}

			runProductsRepoTest(t, func(mock pgxmock.PgxPoolIface) {
				exp := mock.ExpectExec(regexp.QuoteMeta(
					`INSERT INTO products (id,name,description,brand,price,stock,category_id,rating,review_count,created_at,updated_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
				)).WithArgs(
					product.ID.String(), product.Name, product.Description, product.Brand,
					product.Price, product.Stock, categoryArg, product.Rating, product.ReviewCount,
					product.CreatedAt, product.UpdatedAt,
				)

				if tc.execErr != nil {
					exp.WillReturnError(tc.execErr)

					return
				}

				exp.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}, func(t *testing.T, repo *repos.ProductsRepository) {
				err := repo.Create(context.Background(), product)
				if tc.expectedErr != nil {
					require.ErrorIs(t, err, tc.expectedErr)

					return
				}

				require.NoError(t, err)
			})
		})
	}
}

func TestProductsRepository_FetchByID(t *testing.T) {
	t.Parallel()

	categoryID := model.NewCategoryID()
	product := newTestProduct(t, &categoryID)

	query := regexp.QuoteMeta(`SELECT ` + productColumnList + ` FROM products WHERE id = $1 LIMIT 1`)

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		runProductsRepoTest(t, func(mock pgxmock.PgxPoolIface) {
			mock.ExpectQuery(query).
				WithArgs(product.ID.String()).
				WillReturnRows(productRows(product))
		}, func(t *testing.T, repo *repos.ProductsRepository) {
			got, err := repo.FetchByID(context.Background(), product.ID)
			require.NoError(t, err)
			require.Equal(t, product.ID, got.ID)
			require.Equal(t, "Widget", got.Name)
			require.NotNil(t, got.CategoryID)
			require.Equal(t, categoryID, *got.CategoryID)
		})
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		runProductsRepoTest(t, func(mock pgxmock.PgxPoolIface) {
			mock.ExpectQuery(query).
				WithArgs(product.ID.String()).
				WillReturnRows(pgxmock.NewRows(productColumnNames))
		}, func(t *testing.T, repo *repos.ProductsRepository) {
			_, err := repo.FetchByID(context.Background(), product.ID)
			require.ErrorIs(t, err, model.ErrProductNotFound)
		})
	})
}

func TestProductsRepository_Search(t *testing.T) {
	t.Parallel()

	first := newTestProduct(t, nil)
	second := newTestProduct(t, nil)

	withCount := func(total int64, products ...*model.Product) *pgxmock.Rows {
		rows := pgxmock.NewRows(append(append([]string{}, productColumnNames...), "total_count"))

		for _, p := range products {
			rows.AddRow(
				p.ID.String(), p.Name, p.Description, p.Brand, p.Price, p.Stock,
				(*string)(nil), p.Rating, p.ReviewCount, p.CreatedAt, p.UpdatedAt, total,
			)
		}

		return rows
	}

	t.Run("returns a page with totals", func(t *testing.T) {
		t.Parallel()

		criteria, err := model.NewCriteria().
			Where("brand", model.OpEqual, "acme").
			Paginate(1, 2).
			Build()
		require.NoError(t, err)

		runProductsRepoTest(t, func(mock pgxmock.PgxPoolIface) {
			mock.ExpectQuery(regexp.QuoteMeta(
				`SELECT ` + productColumnList + `, COUNT(*) OVER() AS total_count FROM products WHERE brand = $1 ORDER BY created_at DESC LIMIT 2 OFFSET 0`,
			)).
				WithArgs("acme").
				WillReturnRows(withCount(3, first, second))
		}, func(t *testing.T, repo *repos.ProductsRepository) {
			list, err := repo.Search(context.Background(), criteria)
			require.NoError(t, err)
			require.Len(t, list.Products, 2)
			require.Equal(t, model.Pagination{
				Page:        1,
				Size:        2,
				TotalItems:  3,
				TotalPages:  2,
				HasNext:     true,
				HasPrevious: false,
			}, list.Pagination)
		})
	})

	t.Run("page past the end counts separately", func(t *testing.T) {
		t.Parallel()

		criteria, err := model.NewCriteria().
			Where("brand", model.OpEqual, "acme").
			Paginate(5, 2).
			Build()
		require.NoError(t, err)

		runProductsRepoTest(t, func(mock pgxmock.PgxPoolIface) {
			mock.ExpectQuery(regexp.QuoteMeta(
				`SELECT ` + productColumnList + `, COUNT(*) OVER() AS total_count FROM products WHERE brand = $1 ORDER BY created_at DESC LIMIT 2 OFFSET 8`,
			)).
				WithArgs("acme").
				WillReturnRows(withCount(0))
			mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products WHERE brand = $1`)).
				WithArgs("acme").
				WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))
		}, func(t *testing.T, repo *repos.ProductsRepository) {
			list, err := repo.Search(context.Background(), criteria)
			require.NoError(t, err)
			require.Empty(t, list.Products)
			require.Equal(t, uint(3), list.Pagination.TotalItems)
			require.False(t, list.Pagination.HasNext)
			require.True(t, list.Pagination.HasPrevious)
		})
	})

	t.Run("unknown field never reaches the database", func(t *testing.T) {
		t.Parallel()

		criteria, err := model.NewCriteria().Where("secret", model.OpEqual, "x").Build()
		require.NoError(t, err)

		runProductsRepoTest(t, func(pgxmock.PgxPoolIface) {}, func(t *testing.T, repo *repos.ProductsRepository) {
			_, err := repo.Search(context.Background(), criteria)
			require.ErrorIs(t, err, model.ErrUnknownSearchField)
		})
	})
}

func TestProductsRepository_Update(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		affected    int64
		expectedErr error
	}{
		{name: "updated", affected: 1},
		{name: "missing product", affected: 0, expectedErr: model.ErrProductNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			product := newTestProduct(t, nil)

			runProductsRepoTest(t, func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta(
					`UPDATE products SET name = $1, description = $2, brand = $3, price = $4, stock = $5, category_id = $6, updated_at = $7 WHERE id = $8`,
				)).
					WithArgs(
						product.Name, product.Description, product.Brand, product.Price, product.Stock,
						nil, product.UpdatedAt, product.ID.String(),
					).
					WillReturnResult(pgxmock.NewResult("UPDATE", tc.affected))
			}, func(t *testing.T, repo *repos.ProductsRepository) {
				err := repo.Update(context.Background(), product)
				if tc.expectedErr != nil {
					require.ErrorIs(t, err, tc.expectedErr)

					return
				}

				require.NoError(t, err)
			})
		})
	}
}

func TestProductsRepository_Delete(t *testing.T) {
	t.Parallel()

	id := model.NewProductID()

	cases := []struct {
		name        string
		setup       func(*pgxmock.ExpectedExec)
		expectedErr error
	}{
		{
			name:  "deleted",
			setup: func(e *pgxmock.ExpectedExec) { e.WillReturnResult(pgxmock.NewResult("DELETE", 1)) },
		},
		{
			name:        "missing product",
			setup:       func(e *pgxmock.ExpectedExec) { e.WillReturnResult(pgxmock.NewResult("DELETE", 0)) },
			expectedErr: model.ErrProductNotFound,
		},
		{
			name:        "driver failure",
			setup:       func(e *pgxmock.ExpectedExec) { e.WillReturnError(errors.New("boom")) },
			expectedErr: model.ErrDatabaseQuery,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			runProductsRepoTest(t, func(mock pgxmock.PgxPoolIface) {
				tc.setup(mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM products WHERE id = $1`)).WithArgs(id.String()))
			}, func(t *testing.T, repo *repos.ProductsRepository) {
				err := repo.Delete(context.Background(), id)
				if tc.expectedErr != nil {
					require.ErrorIs(t, err, tc.expectedErr)

					return
				}

				require.NoError(t, err)
			})
		})
	}
}

func TestProductsRepository_RefreshRating(t *testing.T) {
	t.Parallel()

	id := model.NewProductID()

	runProductsRepoTest(t, func(mock pgxmock.PgxPoolIface) {
		mock.ExpectExec(regexp.QuoteMeta(
			`UPDATE products SET rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE product_id = $1), 0), review_count = (SELECT COUNT(*) FROM reviews WHERE product_id = $2) WHERE id = $3`,
		)).
			WithArgs(id.String(), id.String(), id.String()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	}, func(t *testing.T, repo *repos.ProductsRepository) {
		require.NoError(t, repo.RefreshRating(context.Background(), id))
	})
}

