// Package metrics defines the metrics client the service records through.
package metrics

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
)

type (
	// Client records a sample for key. Durations become histogram
	// observations, everything else increments a counter.
	Client interface {
		Inc(ctx context.Context, key string, value any, attributes ...attribute.KeyValue)
		Handler() http.Handler
		Shutdown(ctx context.Context) error
	}

	// Descriptor carries help text for a metric key.
	Descriptor struct {
		Description string
		Unit        string
	}
)
