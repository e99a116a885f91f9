package handlers

import (
	"errors"
	"net/http"

	"github.com/architeacher/storefront/services/svc-catalog/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

const (
	codeValidation       = "VALIDATION_ERROR"
	codeInvalidFilter    = "INVALID_FILTER"
	codeNotInvertible    = "FILTER_NOT_INVERTIBLE"
	codeInvalidID        = "INVALID_ID"
	codeInvalidJSON      = "INVALID_JSON"
	codeNotFound         = "NOT_FOUND"
	codeConflict         = "CONFLICT"
	codeInvalidCreds     = "INVALID_CREDENTIALS"
	codeUnauthorized     = "UNAUTHORIZED"
	codeForbidden        = "FORBIDDEN"
	codeUnavailable      = "SERVICE_UNAVAILABLE"
	codeInternal         = "INTERNAL_ERROR"
	codePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	codeMissingFilePart  = "MISSING_FILE"
	msgInternal          = "internal server error"
	msgInvalidJSON       = "request body is not valid JSON"
	msgMissingFilePart   = "multipart form must contain a file part"
	msgPayloadTooLarge   = "image exceeds the maximum upload size"
	msgUnavailable       = "a backing service is temporarily unavailable"
	msgCredentialsDenied = "email or password is incorrect"
)

var (
	notFoundErrors = []error{
		model.ErrProductNotFound,
		model.ErrCategoryNotFound,
		model.ErrReviewNotFound,
		model.ErrImageNotFound,
		model.ErrUserNotFound,
	}

	conflictErrors = []error{
		model.ErrDuplicateCategory,
		model.ErrDuplicateReview,
		model.ErrDuplicateEmail,
	}

	filterErrors = []error{
		model.ErrUnknownSearchField,
		model.ErrInvalidSearchValue,
		model.ErrUnsupportedSearchOp,
		model.ErrUndefinedSearchOperation,
		model.ErrUnknownSortField,
		model.ErrMalformedFilter,
	}
)

// writeError maps a domain error onto a status and error code. Anything
// unrecognised is logged and reported as a 500 without internals.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *model.ValidationErrors

	switch {
	case errors.As(err, &validation):
		problems := make([]map[string]string, 0, len(validation.Errors))
		for _, v := range validation.Errors {
			problems = append(problems, map[string]string{"field": v.Field, "message": v.Message, "code": v.Code})
		}

		middleware.WriteErrorWithDetails(w, http.StatusBadRequest, codeValidation, "request validation failed",
			map[string]any{"errors": problems})

	case errors.Is(err, model.ErrUnsupportedNegation):
		details := map[string]any{}
		if negation, ok := model.IsUnsupportedNegation(err); ok {
			details["field"] = negation.Field
			details["operation"] = negation.Operation.String()
		}

		middleware.WriteErrorWithDetails(w, http.StatusBadRequest, codeNotInvertible, err.Error(), details)

	case isAny(err, filterErrors):
		middleware.WriteError(w, http.StatusBadRequest, codeInvalidFilter, err.Error())

	case errors.Is(err, model.ErrInvalidID):
		middleware.WriteError(w, http.StatusBadRequest, codeInvalidID, err.Error())

	case isAny(err, notFoundErrors):
		middleware.WriteError(w, http.StatusNotFound, codeNotFound, err.Error())

	case isAny(err, conflictErrors):
		middleware.WriteError(w, http.StatusConflict, codeConflict, err.Error())

	case errors.Is(err, model.ErrInvalidCredentials):
		middleware.WriteError(w, http.StatusUnauthorized, codeInvalidCreds, msgCredentialsDenied)

	case errors.Is(err, model.ErrInvalidToken), errors.Is(err, model.ErrTokenRevoked):
		middleware.WriteError(w, http.StatusUnauthorized, codeUnauthorized, err.Error())

	case errors.Is(err, model.ErrForbidden):
		middleware.WriteError(w, http.StatusForbidden, codeForbidden, err.Error())

	case errors.Is(err, model.ErrDatabaseConnection), errors.Is(err, model.ErrObjectStorage):
		reqLog := h.log.WithContext(r.Context())
		reqLog.Error().Err(err).Msg("backing service unavailable")
		middleware.WriteError(w, http.StatusServiceUnavailable, codeUnavailable, msgUnavailable)

	default:
		reqLog := h.log.WithContext(r.Context())
		reqLog.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		middleware.WriteError(w, http.StatusInternalServerError, codeInternal, msgInternal)
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
