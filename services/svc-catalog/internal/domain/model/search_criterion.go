package model

import (
	"errors"
	"fmt"
)

// SearchCriterion is one immutable field/operation/value condition.
// Field names and value types are checked by whoever executes the search.
type SearchCriterion struct {
	field     string
	operation SearchOperation
	value     any
}

// UnsupportedNegationError is returned when a criterion's operation has no complement.
type UnsupportedNegationError struct {
	Field     string
	Operation SearchOperation
}

func (e *UnsupportedNegationError) Error() string {
	return fmt.Sprintf("cannot negate %s on field %q", e.Operation, e.Field)
}

func (e *UnsupportedNegationError) Is(target error) bool {
	return target == ErrUnsupportedNegation
}

func NewSearchCriterion(field string, op SearchOperation, value any) (SearchCriterion, error) {
	if !op.IsValid() {
		return SearchCriterion{}, fmt.Errorf("%w: %s", ErrUndefinedSearchOperation, op)
	}

	return SearchCriterion{field: field, operation: op, value: value}, nil
}

// MustSearchCriterion is NewSearchCriterion for operations known at compile time.
func MustSearchCriterion(field string, op SearchOperation, value any) SearchCriterion {
	c, err := NewSearchCriterion(field, op, value)
	if err != nil {
		panic(err)
	}

	return c
}

func (c SearchCriterion) Field() string              { return c.field }
func (c SearchCriterion) Operation() SearchOperation { return c.operation }
func (c SearchCriterion) Value() any                 { return c.value }

func (c SearchCriterion) Negate() (SearchCriterion, error) {
	negated, ok := c.operation.Negation()
	if !ok {
		return SearchCriterion{}, &UnsupportedNegationError{Field: c.field, Operation: c.operation}
	}

	return SearchCriterion{field: c.field, operation: negated, value: c.value}, nil
}

func (c SearchCriterion) String() string {
	return fmt.Sprintf("%s %s %v", c.field, c.operation, c.value)
}

// IsUnsupportedNegation unwraps err into the offending field and operation.
func IsUnsupportedNegation(err error) (*UnsupportedNegationError, bool) {
	var target *UnsupportedNegationError
	if errors.As(err, &target) {
		return target, true
	}

	return nil, false
}
