package middleware

import (
	"net/http"
	"slices"
	"strings"
)

func SecurityHeaders(apiVersion string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("API-Version", apiVersion)

			next.ServeHTTP(w, r)
		})
	}
}

var (
	corsAllowedHeaders = strings.Join([]string{
		"Authorization", "Content-Type", RequestIDHeader, CorrelationIDHeader,
		"If-None-Match", "Idempotency-Key", "traceparent", "tracestate",
	}, ", ")
	corsExposedHeaders = strings.Join([]string{
		RequestIDHeader, CorrelationIDHeader, "ETag", "Location",
		RateLimitLimitHeader, RateLimitRemainingHeader, RateLimitResetHeader,
	}, ", ")
)

// CORS answers preflights for allowed origins; "*" allows any origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAny := slices.Contains(allowedOrigins, "*")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || (!allowAny && !slices.Contains(allowedOrigins, origin)) {
				next.ServeHTTP(w, r)

				return
			}

			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
			h.Set("Access-Control-Expose-Headers", corsExposedHeaders)
			h.Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
