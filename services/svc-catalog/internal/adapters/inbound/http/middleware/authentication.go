package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

const (
	principalKey contextKey = "principal"

	bearerPrefix = "Bearer "
)

func WithPrincipal(ctx context.Context, principal model.Principal) context.Context {
	ctx = logger.ContextWithUserID(ctx, principal.UserID.String())

	return context.WithValue(ctx, principalKey, principal)
}

func PrincipalFromContext(ctx context.Context) (model.Principal, bool) {
	principal, ok := ctx.Value(principalKey).(model.Principal)

	return principal, ok
}

// Authentication resolves a bearer token into a principal. Requests
// without an Authorization header continue anonymously; a header that
// does not carry a valid, unrevoked token is rejected.
func Authentication(auth ports.AuthService, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)

				return
			}

			if !strings.HasPrefix(header, bearerPrefix) {
				w.Header().Set("WWW-Authenticate", `Bearer realm="storefront"`)
				WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authorization header must use the Bearer scheme")

				return
			}

			principal, err := auth.Authenticate(r.Context(), strings.TrimSpace(header[len(bearerPrefix):]))
			if err != nil {
				code, message := "INVALID_TOKEN", "token is invalid or expired"
				switch {
				case errors.Is(err, model.ErrTokenRevoked):
					code, message = "TOKEN_REVOKED", "token has been revoked"
				case !errors.Is(err, model.ErrInvalidToken):
					reqLog := log.WithContext(r.Context())
					reqLog.Error().Err(err).Msg("authenticating request")
					WriteError(w, http.StatusServiceUnavailable, "AUTH_UNAVAILABLE", "authentication temporarily unavailable")

					return
				}

				w.Header().Set("WWW-Authenticate", `Bearer realm="storefront", error="invalid_token"`)
				WriteError(w, http.StatusUnauthorized, code, message)

				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}
