package decorator

import (
	"context"
	"time"
)

type (
	// CacheStatus reports how a cached query was served.
	CacheStatus string

	cacheStatusKey struct{}

	CacheConfig struct {
		Enabled bool
		TTL     time.Duration
	}

	CacheGetter[Q Query, R Result] interface {
		Get(ctx context.Context, query Q) (R, bool, error)
	}

	CacheSetter[Q Query, R Result] interface {
		Set(ctx context.Context, query Q, result R, ttl time.Duration) error
	}

	Cache[Q Query, R Result] interface {
		CacheGetter[Q, R]
		CacheSetter[Q, R]
	}

	queryCachingDecorator[Q Query, R Result] struct {
		base   QueryHandler[Q, R]
		cache  Cache[Q, R]
		config CacheConfig
	}
)

const (
	CacheStatusHit    CacheStatus = "HIT"
	CacheStatusMiss   CacheStatus = "MISS"
	CacheStatusBypass CacheStatus = "BYPASS"
	CacheStatusError  CacheStatus = "ERROR"

	cacheWriteTimeout = 2 * time.Second
)

// WithCacheStatusRecorder returns a context in which a caching decorator
// records how it served the query; read it back with GetCacheStatus.
func WithCacheStatusRecorder(ctx context.Context) context.Context {
	status := CacheStatusBypass

	return context.WithValue(ctx, cacheStatusKey{}, &status)
}

func GetCacheStatus(ctx context.Context) CacheStatus {
	if status, ok := ctx.Value(cacheStatusKey{}).(*CacheStatus); ok && status != nil {
		return *status
	}

	return CacheStatusBypass
}

func setCacheStatus(ctx context.Context, status CacheStatus) {
	if recorded, ok := ctx.Value(cacheStatusKey{}).(*CacheStatus); ok && recorded != nil {
		*recorded = status
	}
}

func NewQueryCachingDecorator[Q Query, R Result](
	base QueryHandler[Q, R],
	cache Cache[Q, R],
	config CacheConfig,
) QueryHandler[Q, R] {
	return queryCachingDecorator[Q, R]{
		base:   base,
		cache:  cache,
		config: config,
	}
}

func (d queryCachingDecorator[Q, R]) Execute(ctx context.Context, query Q) (R, error) {
	if !d.config.Enabled || d.cache == nil {
		setCacheStatus(ctx, CacheStatusBypass)

		return d.base.Execute(ctx, query)
	}

	cached, hit, err := d.cache.Get(ctx, query)
	if err == nil && hit {
		setCacheStatus(ctx, CacheStatusHit)

		return cached, nil
	}

	status := CacheStatusMiss
	if err != nil {
		status = CacheStatusError
	}

	result, err := d.base.Execute(ctx, query)
	if err != nil {
		setCacheStatus(ctx, status)

		var zero R

		return zero, err
	}

	// A failed write only costs the next caller a miss.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cacheWriteTimeout)
	defer cancel()

	if setErr := d.cache.Set(writeCtx, query, result, d.config.TTL); setErr != nil {
		status = CacheStatusError
	}

	setCacheStatus(ctx, status)

	return result, nil
}
