package model

import "errors"

var (
	ErrUnsupportedNegation      = errors.New("search criterion cannot be negated")
	ErrUndefinedSearchOperation = errors.New("undefined search operation")
	ErrUnknownSearchField       = errors.New("unknown search field")
	ErrInvalidSearchValue       = errors.New("invalid search value")
	ErrUnsupportedSearchOp      = errors.New("operation not supported for field")
	ErrUnknownSortField         = errors.New("unknown sort field")
	ErrMalformedFilter          = errors.New("malformed filter expression")

	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrImageNotFound    = errors.New("image not found")
	ErrUserNotFound     = errors.New("user not found")

	ErrInvalidID          = errors.New("invalid identifier")
	ErrDuplicateCategory  = errors.New("category already exists")
	ErrDuplicateReview    = errors.New("product already reviewed by user")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenRevoked       = errors.New("token has been revoked")
	ErrForbidden          = errors.New("operation not permitted")

	ErrDatabaseConnection = errors.New("database connection error")
	ErrDatabaseQuery      = errors.New("database query error")
	ErrObjectStorage      = errors.New("object storage error")
)

type ValidationError struct {
	Field   string
	Message string
	Code    string
}

type ValidationErrors struct {
	Errors []ValidationError
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		Errors: make([]ValidationError, 0),
	}
}

func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return "validation failed"
	}

	return v.Errors[0].Field + ": " + v.Errors[0].Message
}

func (v *ValidationErrors) Add(field, message, code string) {
	v.Errors = append(v.Errors, ValidationError{
		Field:   field,
		Message: message,
		Code:    code,
	})
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// OrNil returns v as an error only when something was recorded.
func (v *ValidationErrors) OrNil() error {
	if v.HasErrors() {
		return v
	}

	return nil
}
