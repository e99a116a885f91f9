package model

import (
	"fmt"
	"strings"
)

// OrMode selects how "any of" filters combine with the rest of a search.
type OrMode string

const (
	// OrModeCompat concatenates like And, matching the historical behavior.
	OrModeCompat OrMode = "compat"
	// OrModeDisjunctive builds a real OR group.
	OrModeDisjunctive OrMode = "disjunctive"
)

func ParseOrMode(s string) (OrMode, error) {
	switch mode := OrMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return OrModeCompat, nil
	case OrModeCompat, OrModeDisjunctive:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown or mode %q", s)
	}
}

// Decode lets envconfig parse SEARCH_OR_MODE directly.
func (m *OrMode) Decode(value string) error {
	mode, err := ParseOrMode(value)
	if err != nil {
		return err
	}

	*m = mode

	return nil
}

func (m OrMode) Combine(a, b Specification) Specification {
	if m == OrModeDisjunctive {
		return a.Either(b)
	}

	return a.Or(b)
}
