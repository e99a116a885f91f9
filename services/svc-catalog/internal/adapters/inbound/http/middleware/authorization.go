package middleware

import (
	"net/http"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

// Authorize guards a route with the role policy for resource and action.
// Anonymous callers carry the empty role and get 401 when denied.
func Authorize(authorizer ports.Authorizer, log logger.Logger, resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var role model.Role

			principal, authenticated := PrincipalFromContext(r.Context())
			if authenticated {
				role = principal.Role
			}

			allowed, err := authorizer.Authorize(role, resource, action)
			if err != nil {
				reqLog := log.WithContext(r.Context())
				reqLog.Error().Err(err).
					Str("resource", resource).
					Str("action", action).
					Msg("evaluating policy")
				WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")

				return
			}

			switch {
			case allowed:
				next.ServeHTTP(w, r)
			case !authenticated:
				w.Header().Set("WWW-Authenticate", `Bearer realm="storefront"`)
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			default:
				WriteError(w, http.StatusForbidden, "FORBIDDEN", "operation not permitted")
			}
		})
	}
}
