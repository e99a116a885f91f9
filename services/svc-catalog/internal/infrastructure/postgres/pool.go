package postgres

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/config"
)

// NewPool connects and pings, retrying with exponential backoff while the
// database is still starting.
func NewPool(ctx context.Context, cfg config.Database, retry config.Backoff, log logger.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	connect := func() (*pgxpool.Pool, error) {
		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("creating connection pool: %w", err))
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()

			log.Warn().Err(err).Str("host", cfg.Host).Msg("database not reachable yet")

			return nil, fmt.Errorf("pinging database: %w", err)
		}

		return pool, nil
	}

	return backoff.Retry(ctx, connect,
		backoff.WithBackOff(NewExponentialBackOff(retry)),
		backoff.WithMaxTries(retry.MaxTries),
	)
}

func NewExponentialBackOff(cfg config.Backoff) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialInterval
	b.Multiplier = cfg.Multiplier
	b.MaxInterval = cfg.MaxInterval

	return b
}
