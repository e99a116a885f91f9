package repos

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}

func queryError(err error) error {
	return fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
}

func buildError(err error) error {
	return fmt.Errorf("%w: failed to build query: %v", model.ErrDatabaseQuery, err)
}

func selectOne[R any](ctx context.Context, pool PoolOps, scanner Scanner, builder sq.SelectBuilder, notFound error) (R, error) {
	var row R

	query, args, err := builder.Limit(1).ToSql()
	if err != nil {
		return row, buildError(err)
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return row, queryError(err)
	}
	defer rows.Close()

	if err := scanner.ScanOne(&row, rows); err != nil {
		if scanner.IsNotFound(err) {
			return row, notFound
		}

		return row, queryError(err)
	}

	return row, nil
}

func selectAll[R any](ctx context.Context, pool PoolOps, scanner Scanner, builder sq.SelectBuilder) ([]R, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, buildError(err)
	}

	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, queryError(err)
	}
	defer rows.Close()

	var out []R
	if err := scanner.ScanAll(&out, rows); err != nil {
		return nil, queryError(err)
	}

	return out, nil
}

// execOne runs a write that must touch a row, reporting notFound otherwise.
func execOne(ctx context.Context, pool PoolOps, builder sq.Sqlizer, notFound error) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return buildError(err)
	}

	result, err := pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return notFound
	}

	return nil
}

func exec(ctx context.Context, pool PoolOps, builder sq.Sqlizer) error {
	query, args, err := builder.ToSql()
	if err != nil {
		return buildError(err)
	}

	_, err = pool.Exec(ctx, query, args...)

	return err
}

// passError keeps domain and build errors intact and wraps driver failures.
func passError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrDatabaseQuery), isDomainError(err):
		return err
	default:
		return queryError(err)
	}
}

func isDomainError(err error) bool {
	for _, target := range []error{
		model.ErrProductNotFound,
		model.ErrCategoryNotFound,
		model.ErrReviewNotFound,
		model.ErrImageNotFound,
		model.ErrUserNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
