package model

import (
	"fmt"
	"strings"
)

// SearchOperation is the comparison a SearchCriterion applies to a field.
// The zero value is undefined and has no negation.
type SearchOperation uint8

const (
	opUndefined SearchOperation = iota
	OpEqual
	OpNotEqual
	OpGreaterThan
	OpLessThan
	OpGreaterThanEqual
	OpLessThanEqual
	OpContains
	OpNotContains
	OpStartsWith
	OpNotStartsWith
	OpEndsWith
	OpNotEndsWith
	OpIn
	OpNotIn
)

var (
	operationNames = [...]string{
		opUndefined:        "UNDEFINED",
		OpEqual:            "EQUAL",
		OpNotEqual:         "NOT_EQUAL",
		OpGreaterThan:      "GREATER_THAN",
		OpLessThan:         "LESS_THAN",
		OpGreaterThanEqual: "GREATER_THAN_EQUAL",
		OpLessThanEqual:    "LESS_THAN_EQUAL",
		OpContains:         "CONTAINS",
		OpNotContains:      "NOT_CONTAINS",
		OpStartsWith:       "STARTS_WITH",
		OpNotStartsWith:    "NOT_STARTS_WITH",
		OpEndsWith:         "ENDS_WITH",
		OpNotEndsWith:      "NOT_ENDS_WITH",
		OpIn:               "IN",
		OpNotIn:            "NOT_IN",
	}

	operationAliases = map[string]SearchOperation{
		"eq":        OpEqual,
		"neq":       OpNotEqual,
		"gt":        OpGreaterThan,
		"lt":        OpLessThan,
		"gte":       OpGreaterThanEqual,
		"lte":       OpLessThanEqual,
		"contains":  OpContains,
		"ncontains": OpNotContains,
		"sw":        OpStartsWith,
		"nsw":       OpNotStartsWith,
		"ew":        OpEndsWith,
		"new":       OpNotEndsWith,
		"in":        OpIn,
		"nin":       OpNotIn,
	}
)

// SearchOperations lists every defined operation in declaration order.
func SearchOperations() []SearchOperation {
	ops := make([]SearchOperation, 0, len(operationNames)-1)
	for op := OpEqual; op <= OpNotIn; op++ {
		ops = append(ops, op)
	}

	return ops
}

// ParseSearchOperation accepts canonical names (GREATER_THAN) and short
// aliases (gt), case-insensitively.
func ParseSearchOperation(s string) (SearchOperation, error) {
	normalized := strings.TrimSpace(s)

	if op, ok := operationAliases[strings.ToLower(normalized)]; ok {
		return op, nil
	}

	for op := OpEqual; op <= OpNotIn; op++ {
		if strings.EqualFold(operationNames[op], normalized) {
			return op, nil
		}
	}

	return opUndefined, fmt.Errorf("%w: %q", ErrUndefinedSearchOperation, s)
}

func (op SearchOperation) IsValid() bool {
	return op >= OpEqual && op <= OpNotIn
}

func (op SearchOperation) String() string {
	if int(op) < len(operationNames) {
		return operationNames[op]
	}

	return fmt.Sprintf("SearchOperation(%d)", uint8(op))
}

// Negation returns the logical complement of op. The pairing is involutive.
func (op SearchOperation) Negation() (SearchOperation, bool) {
	switch op {
	case OpEqual:
		return OpNotEqual, true
	case OpNotEqual:
		return OpEqual, true
	case OpGreaterThan:
		return OpLessThanEqual, true
	case OpLessThanEqual:
		return OpGreaterThan, true
	case OpLessThan:
		return OpGreaterThanEqual, true
	case OpGreaterThanEqual:
		return OpLessThan, true
	case OpContains:
		return OpNotContains, true
	case OpNotContains:
		return OpContains, true
	case OpStartsWith:
		return OpNotStartsWith, true
	case OpNotStartsWith:
		return OpStartsWith, true
	case OpEndsWith:
		return OpNotEndsWith, true
	case OpNotEndsWith:
		return OpEndsWith, true
	case OpIn:
		return OpNotIn, true
	case OpNotIn:
		return OpIn, true
	default:
		return opUndefined, false
	}
}

// IsTextMatch reports whether op is a pattern match on strings.
func (op SearchOperation) IsTextMatch() bool {
	switch op {
	case OpContains, OpNotContains, OpStartsWith, OpNotStartsWith, OpEndsWith, OpNotEndsWith:
		return true
	default:
		return false
	}
}

func (op SearchOperation) IsSetMembership() bool {
	return op == OpIn || op == OpNotIn
}

func (op SearchOperation) IsOrdering() bool {
	switch op {
	case OpGreaterThan, OpLessThan, OpGreaterThanEqual, OpLessThanEqual:
		return true
	default:
		return false
	}
}

func (op SearchOperation) MarshalText() ([]byte, error) {
	if !op.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrUndefinedSearchOperation, uint8(op))
	}

	return []byte(op.String()), nil
}

func (op *SearchOperation) UnmarshalText(text []byte) error {
	parsed, err := ParseSearchOperation(string(text))
	if err != nil {
		return err
	}

	*op = parsed

	return nil
}
