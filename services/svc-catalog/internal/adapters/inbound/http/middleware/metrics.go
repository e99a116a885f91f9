package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/architeacher/storefront/pkg/metrics"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
)

const (
	httpMethodKey     = "http.method"
	httpRouteKey      = "http.route"
	httpStatusCodeKey = "http.status_code"

	httpRequestsTotal   = "http_requests_total"
	httpRequestDuration = "http_request_duration_seconds"
	httpResponseSize    = "http_response_size_bytes"
)

// Metrics records request count, latency and response size labelled by
// the matched chi route pattern so ids do not explode cardinality.
func Metrics(metricsClient metrics.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := NewStatusRecorder(w)

			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			attrs := []attribute.KeyValue{
				attribute.String(httpMethodKey, r.Method),
				attribute.String(httpRouteKey, route),
				attribute.String(httpStatusCodeKey, strconv.Itoa(rec.Status())),
			}

			ctx := r.Context()
			metricsClient.Inc(ctx, httpRequestsTotal, int64(1), attrs...)
			metricsClient.Inc(ctx, httpRequestDuration, time.Since(start), attrs...)
			metricsClient.Inc(ctx, httpResponseSize, rec.Size(), attrs...)
		})
	}
}
