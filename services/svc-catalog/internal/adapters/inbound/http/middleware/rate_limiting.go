package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/config"
	"github.com/throttled/throttled/v2"
)

const (
	RateLimitLimitHeader     = "RateLimit-Limit"
	RateLimitRemainingHeader = "RateLimit-Remaining"
	RateLimitResetHeader     = "RateLimit-Reset"
	RetryAfterHeader         = "Retry-After"

	globalRateLimitKey = "global"
)

// RateLimiting applies a GCRA quota per client. The store is Redis in
// production and memstore in tests and single-node setups.
func RateLimiting(
	cfg config.RateLimiting,
	store throttled.GCRAStoreCtx,
	log logger.Logger,
) (func(http.Handler) http.Handler, error) {
	quota := throttled.RateQuota{
		MaxRate:  throttled.PerSec(int(cfg.RequestsPerSecond)),
		MaxBurst: int(cfg.BurstSize),
	}

	limiter, err := throttled.NewGCRARateLimiterCtx(store, quota)
	if err != nil {
		return nil, fmt.Errorf("creating rate limiter: %w", err)
	}

	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipsPath(r.URL.Path, cfg.SkipPaths) {
				next.ServeHTTP(w, r)

				return
			}

			limited, result, err := limiter.RateLimitCtx(r.Context(), rateLimitKey(r, cfg), 1)
			if err != nil {
				reqLog := log.WithContext(r.Context())
				reqLog.Warn().Err(err).Msg("rate limiter store error")

				if cfg.GracefulDegraded {
					next.ServeHTTP(w, r)

					return
				}

				WriteError(w, http.StatusServiceUnavailable, "RATE_LIMITER_UNAVAILABLE",
					"rate limiting service temporarily unavailable")

				return
			}

			h := w.Header()
			h.Set(RateLimitLimitHeader, strconv.Itoa(result.Limit))
			h.Set(RateLimitRemainingHeader, strconv.Itoa(result.Remaining))
			h.Set(RateLimitResetHeader, strconv.Itoa(int(result.ResetAfter.Round(time.Second).Seconds())))

			if limited {
				h.Set(RetryAfterHeader, strconv.Itoa(max(1, int(result.RetryAfter.Round(time.Second).Seconds()))))
				WriteError(w, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED",
					"too many requests, please try again later")

				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

// rateLimitKey prefers the authenticated user so clients behind one NAT
// do not share a bucket.
func rateLimitKey(r *http.Request, cfg config.RateLimiting) string {
	if cfg.KeyByUser {
		if principal, ok := PrincipalFromContext(r.Context()); ok {
			return "user:" + principal.UserID.String()
		}
	}

	if cfg.KeyByIP {
		return "ip:" + clientIP(r.RemoteAddr)
	}

	return globalRateLimitKey
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return strings.Trim(remoteAddr, "[]")
	}

	return host
}
