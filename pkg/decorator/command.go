package decorator

import (
	"context"
	"fmt"
	"strings"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/pkg/metrics"
	otelTrace "go.opentelemetry.io/otel/trace"
)

type (
	Command any

	CommandHandler[C Command, R any] interface {
		Handle(context.Context, C) (R, error)
	}
)

// ApplyCommandDecorators wraps handler so that every call is logged, measured and traced.
func ApplyCommandDecorators[C Command, R any](
	handler CommandHandler[C, R],
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) CommandHandler[C, R] {
	return commandLoggingDecorator[C, R]{
		base: commandMetricsDecorator[C, R]{
			base: commandTracingDecorator[C, R]{
				base:           handler,
				tracerProvider: tracerProvider,
			},
			client: metricsClient,
		},
		logger: log,
	}
}

// generateActionName turns "usecases.CreateProductCommand" into "CreateProductCommand".
func generateActionName(handler any) string {
	name := fmt.Sprintf("%T", handler)
	name = strings.TrimLeft(name, "*")

	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx+1:]
	}

	return name
}
