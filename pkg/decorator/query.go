package decorator

import (
	"context"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/pkg/metrics"
)

type (
	Query  any
	Result any

	QueryHandler[Q Query, R Result] interface {
		Execute(ctx context.Context, query Q) (R, error)
	}

	// QueryHandlerFunc lets a plain function serve as a QueryHandler.
	QueryHandlerFunc[Q Query, R Result] func(ctx context.Context, query Q) (R, error)
)

func (f QueryHandlerFunc[Q, R]) Execute(ctx context.Context, query Q) (R, error) {
	return f(ctx, query)
}

// ApplyQueryDecorators wraps handler as logging(metrics(tracing(handler))).
func ApplyQueryDecorators[Q Query, R Result](
	handler QueryHandler[Q, R],
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) QueryHandler[Q, R] {
	traced := queryTracingDecorator[Q, R]{base: handler, tracerProvider: tracerProvider}
	measured := queryMetricsDecorator[Q, R]{base: traced, client: metricsClient}

	return queryLoggingDecorator[Q, R]{base: measured, logger: log}
}

// ApplyCachedQueryDecorators puts the cache lookup inside the tracing span,
// so hits are logged and measured like any other execution.
func ApplyCachedQueryDecorators[Q Query, R Result](
	handler QueryHandler[Q, R],
	cache Cache[Q, R],
	cacheConfig CacheConfig,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) QueryHandler[Q, R] {
	return ApplyQueryDecorators(
		NewQueryCachingDecorator(handler, cache, cacheConfig),
		log,
		metricsClient,
		tracerProvider,
	)
}
