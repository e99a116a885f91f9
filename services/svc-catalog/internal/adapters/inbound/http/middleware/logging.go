package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/architeacher/storefront/pkg/logger"
)

const skipAccessLogKey contextKey = "skip_access_log"

var healthEndpoints = map[string]struct{}{
	"/v1/health":    {},
	"/v1/liveness":  {},
	"/v1/readiness": {},
	"/metrics":      {},
}

// HealthCheckFilter keeps probe traffic out of the access log unless
// logHealthChecks is set.
func HealthCheckFilter(logHealthChecks bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !logHealthChecks && IsHealthEndpoint(r.URL.Path) {
				r = r.WithContext(context.WithValue(r.Context(), skipAccessLogKey, true))
			}

			next.ServeHTTP(w, r)
		})
	}
}

func IsHealthEndpoint(path string) bool {
	_, ok := healthEndpoints[strings.TrimSuffix(path, "/")]

	return ok
}

func shouldSkipAccessLog(ctx context.Context) bool {
	skip, ok := ctx.Value(skipAccessLogKey).(bool)

	return ok && skip
}

func AccessLogger(log logger.Logger, includeQueryParams bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldSkipAccessLog(r.Context()) {
				next.ServeHTTP(w, r)

				return
			}

			start := time.Now()
			rec := NewStatusRecorder(w)

			next.ServeHTTP(rec, r)

			reqLogger := log.WithContext(r.Context()).With().Str("component", "http").Logger()

			event := reqLogger.Info()
			switch status := rec.Status(); {
			case status >= http.StatusInternalServerError:
				event = reqLogger.Error()
			case status >= http.StatusBadRequest:
				event = reqLogger.Warn()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Int("status", rec.Status()).
				Int64("bytes", rec.Size()).
				Int64("duration_ms", time.Since(start).Milliseconds())

			if includeQueryParams && r.URL.RawQuery != "" {
				event.Str("query", r.URL.RawQuery)
			}

			if principal, ok := PrincipalFromContext(r.Context()); ok {
				event.Str("user_id", principal.UserID.String())
			}

			event.Msg("request handled")
		})
	}
}
