package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/architeacher/storefront/pkg/idempotency"
	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/config"
	"github.com/architeacher/storefront/services/svc-catalog/internal/ports"
)

const maxIdempotentBody = 1 << 20

// Idempotency replays the stored response of a POST carrying an
// Idempotency-Key that already succeeded. Keys are scoped to the caller
// and bound to the request body: the same key with a different body is
// rejected with 422.
func Idempotency(
	repo ports.IdempotencyRepository,
	cfg config.Idempotency,
	log logger.Logger,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.Enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(idempotency.HeaderName)
			if r.Method != http.MethodPost || key == "" {
				next.ServeHTTP(w, r)

				return
			}

			if err := idempotency.Validate(key); err != nil {
				WriteError(w, http.StatusBadRequest, "INVALID_IDEMPOTENCY_KEY", err.Error())

				return
			}

			fingerprint, err := fingerprintBody(r)
			if err != nil {
				WriteError(w, http.StatusBadRequest, "INVALID_BODY", "request body could not be read")

				return
			}

			scope := idempotency.Scope{Method: r.Method, Path: r.URL.Path, Key: key}
			if principal, ok := PrincipalFromContext(r.Context()); ok {
				scope.Subject = principal.UserID.String()
			}

			ctx := r.Context()
			reqLog := log.WithContext(ctx)
			cacheKey := idempotency.BuildCacheKey(scope)

			cached, err := repo.Get(ctx, cacheKey)
			if err != nil {
				reqLog.Warn().Err(err).Msg("reading idempotency record")
				degrade(w, r, next, cfg.GracefulDegraded)

				return
			}

			if cached != nil {
				if cached.Fingerprint != "" && cached.Fingerprint != fingerprint {
					WriteError(w, http.StatusUnprocessableEntity, "IDEMPOTENCY_KEY_REUSED",
						"idempotency key was already used with a different request body")

					return
				}

				replay(w, cfg.ReplayedHeader, cached)

				return
			}

			acquired, err := repo.Lock(ctx, cacheKey, cfg.LockTTL)
			if err != nil {
				reqLog.Warn().Err(err).Msg("locking idempotency key")
				degrade(w, r, next, cfg.GracefulDegraded)

				return
			}

			if !acquired {
				WriteError(w, http.StatusConflict, "REQUEST_IN_PROGRESS",
					"a request with this idempotency key is already being processed")

				return
			}

			defer func() {
				if err := repo.Unlock(ctx, cacheKey); err != nil {
					reqLog.Warn().Err(err).Msg("unlocking idempotency key")
				}
			}()

			rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(idempotency.WithKey(ctx, key)))

			if rec.status < http.StatusOK || rec.status >= http.StatusMultipleChoices {
				return
			}

			response := &ports.CachedResponse{
				StatusCode:  rec.status,
				Headers:     replayableHeaders(w.Header()),
				Body:        rec.body.Bytes(),
				Fingerprint: fingerprint,
				CreatedAt:   time.Now().UTC(),
			}

			if err := repo.Set(ctx, cacheKey, response, cfg.CacheTTL); err != nil {
				reqLog.Warn().Err(err).Msg("storing idempotency record")
			}
		})
	}
}

func fingerprintBody(r *http.Request) (string, error) {
	if r.Body == nil {
		return idempotency.Fingerprint(nil), nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxIdempotentBody+1))
	if err != nil {
		return "", err
	}

	// Bodies over the limit are fingerprinted by their prefix; the
	// handler still receives the whole stream.
	original := r.Body
	r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(body), original), Closer: original}

	if len(body) > maxIdempotentBody {
		body = body[:maxIdempotentBody]
	}

	return idempotency.Fingerprint(body), nil
}

func degrade(w http.ResponseWriter, r *http.Request, next http.Handler, graceful bool) {
	if graceful {
		next.ServeHTTP(w, r)

		return
	}

	WriteError(w, http.StatusServiceUnavailable, "IDEMPOTENCY_UNAVAILABLE",
		"idempotency service temporarily unavailable")
}

func replay(w http.ResponseWriter, replayedHeader string, cached *ports.CachedResponse) {
	for name, value := range cached.Headers {
		w.Header().Set(name, value)
	}

	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}

var replayedHeaderNames = []string{"Content-Type", "Location", "ETag"}

func replayableHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(replayedHeaderNames))

	for _, name := range replayedHeaderNames {
		if value := h.Get(name); value != "" {
			headers[name] = value
		}
	}

	return headers
}

type readCloser struct {
	io.Reader
	io.Closer
}

type recordingWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (w *recordingWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}

	w.wroteHeader = true
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}

	w.body.Write(b)

	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
