package repos

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

const usersTable = "users"

var userColumns = []string{"id", "email", "password_hash", "role", "created_at"}

type (
	UsersRepository struct {
		pool    PoolOps
		scanner Scanner
		logger  logger.Logger
	}

	userRow struct {
		ID           string    `db:"id"`
		Email        string    `db:"email"`
		PasswordHash string    `db:"password_hash"`
		Role         string    `db:"role"`
		CreatedAt    time.Time `db:"created_at"`
	}
)

func NewUsersRepository(pool PoolOps, scanner Scanner, log logger.Logger) *UsersRepository {
	return &UsersRepository{
		pool:    pool,
		scanner: scanner,
		logger:  log,
	}
}

func (r *UsersRepository) Create(ctx context.Context, user *model.User) error {
	err := exec(ctx, r.pool, psql.Insert(usersTable).
		Columns(userColumns...).
		Values(user.ID.String(), user.Email, user.PasswordHash, user.Role.String(), user.CreatedAt),
	)

	if pgErrorCode(err) == pgUniqueViolation {
		return model.ErrDuplicateEmail
	}

	return passError(err)
}

func (r *UsersRepository) FetchByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.fetch(ctx, sq.Eq{"email": model.NormalizeEmail(email)})
}

func (r *UsersRepository) FetchByID(ctx context.Context, id model.UserID) (*model.User, error) {
	return r.fetch(ctx, sq.Eq{"id": id.String()})
}

func (r *UsersRepository) fetch(ctx context.Context, where sq.Sqlizer) (*model.User, error) {
	row, err := selectOne[userRow](
		ctx, r.pool, r.scanner,
		psql.Select(userColumns...).From(usersTable).Where(where),
		model.ErrUserNotFound,
	)
	if err != nil {
		return nil, err
	}

	id, err := model.ParseUserID(row.ID)
	if err != nil {
		return nil, queryError(fmt.Errorf("failed to parse user ID: %w", err))
	}

	role, err := model.ParseRole(row.Role)
	if err != nil {
		return nil, queryError(err)
	}

	return &model.User{
		ID:           id,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         role,
		CreatedAt:    row.CreatedAt,
	}, nil
}
