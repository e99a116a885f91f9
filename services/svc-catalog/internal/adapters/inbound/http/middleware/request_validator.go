package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// RequestValidator checks parameters and JSON bodies against the OpenAPI
// document. Paths the document does not know fall through to the router,
// which owns 404 and 405. Security is enforced by Authorize, not here.
func RequestValidator(doc *openapi3.T, log logger.Logger) (func(http.Handler) http.Handler, error) {
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("building openapi router: %w", err)
	}

	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		MultiError:         true,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)

				return
			}

			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)

				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}

			// Multipart bodies are streamed to object storage; only the
			// parameters are validated.
			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
				opts := *options
				opts.ExcludeRequestBody = true
				input.Options = &opts
			}

			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				writeValidationError(w, r, log, err)

				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

func writeValidationError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	var (
		multi    openapi3.MultiError
		reqErr   *openapi3filter.RequestError
		problems []string
	)

	switch {
	case errors.As(err, &multi):
		for _, e := range multi {
			problems = append(problems, describeRequestError(e))
		}
	case errors.As(err, &reqErr):
		problems = append(problems, describeRequestError(reqErr))
	default:
		reqLog := log.WithContext(r.Context())
		reqLog.Error().Err(err).Msg("validating request")
		WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")

		return
	}

	WriteErrorWithDetails(w, http.StatusBadRequest, "VALIDATION_ERROR", "request validation failed",
		map[string]any{"errors": problems})
}

func describeRequestError(err error) string {
	var reqErr *openapi3filter.RequestError
	if !errors.As(err, &reqErr) {
		return err.Error()
	}

	reason := reqErr.Reason
	if reason == "" && reqErr.Err != nil {
		reason = reqErr.Err.Error()
		if idx := strings.Index(reason, "\n"); idx != -1 {
			reason = reason[:idx]
		}
	}

	switch {
	case reqErr.Parameter != nil:
		return fmt.Sprintf("parameter %q in %s: %s", reqErr.Parameter.Name, reqErr.Parameter.In, reason)
	case reqErr.RequestBody != nil:
		return "request body: " + reason
	default:
		return reason
	}
}
