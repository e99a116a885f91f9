package model

import (
	"slices"
	"strings"
)

type (
	// Specification is AND(criteria) AND, for every group, OR(members).
	// The zero value is the empty specification and matches everything.
	Specification struct {
		criteria []SearchCriterion
		groups   []Disjunction
	}

	// Disjunction holds the alternatives of one OR group.
	Disjunction []Specification
)

func NewSpecification(criteria ...SearchCriterion) Specification {
	return Specification{criteria: slices.Clone(criteria)}
}

// AddCriteria appends c in place. Duplicates are kept.
func (s *Specification) AddCriteria(c SearchCriterion) {
	s.criteria = append(s.criteria, c)
}

func (s Specification) HasCriteria() bool {
	return len(s.criteria) > 0 || len(s.groups) > 0
}

// Criteria returns a copy of the top-level criteria; never nil.
func (s Specification) Criteria() []SearchCriterion {
	return append([]SearchCriterion{}, s.criteria...)
}

func (s Specification) Groups() []Disjunction {
	groups := make([]Disjunction, 0, len(s.groups))
	for _, g := range s.groups {
		groups = append(groups, slices.Clone(g))
	}

	return groups
}

// And concatenates both operands into a new specification, receiver first.
func (s Specification) And(other Specification) Specification {
	return Specification{
		criteria: concat(s.criteria, other.criteria),
		groups:   concat(s.groups, other.groups),
	}
}

// Or concatenates exactly like And. It is kept for callers that depend on
// the historical behavior; use Either or OrMode for a real disjunction.
func (s Specification) Or(other Specification) Specification {
	return s.And(other)
}

// Either matches rows satisfying s or other. An empty operand matches
// everything, and so does the result.
func (s Specification) Either(other Specification) Specification {
	if !s.HasCriteria() || !other.HasCriteria() {
		return Specification{}
	}

	members := make(Disjunction, 0, 2)
	members = append(members, s.alternatives()...)
	members = append(members, other.alternatives()...)

	return Specification{groups: []Disjunction{members}}
}

// Not negates every atom, keeping order and structure. Either every atom
// is negated or an error and an empty specification are returned.
func (s Specification) Not() (Specification, error) {
	var negated Specification

	if len(s.criteria) > 0 {
		negated.criteria = make([]SearchCriterion, 0, len(s.criteria))
	}

	for _, c := range s.criteria {
		n, err := c.Negate()
		if err != nil {
			return Specification{}, err
		}

		negated.criteria = append(negated.criteria, n)
	}

	for _, group := range s.groups {
		members := make(Disjunction, 0, len(group))

		for _, member := range group {
			m, err := member.Not()
			if err != nil {
				return Specification{}, err
			}

			members = append(members, m)
		}

		negated.groups = append(negated.groups, members)
	}

	return negated, nil
}

// Walk visits every atom, group members included, in order.
func (s Specification) Walk(fn func(SearchCriterion) error) error {
	for _, c := range s.criteria {
		if err := fn(c); err != nil {
			return err
		}
	}

	for _, group := range s.groups {
		for _, member := range group {
			if err := member.Walk(fn); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s Specification) String() string {
	parts := make([]string, 0, len(s.criteria)+len(s.groups))

	for _, c := range s.criteria {
		parts = append(parts, c.String())
	}

	for _, group := range s.groups {
		members := make([]string, 0, len(group))
		for _, member := range group {
			members = append(members, "("+member.String()+")")
		}

		parts = append(parts, "("+strings.Join(members, " OR ")+")")
	}

	return strings.Join(parts, " AND ")
}

// alternatives flattens a specification that is a single OR group into its
// members so that chained Either calls produce one group.
func (s Specification) alternatives() []Specification {
	if len(s.criteria) == 0 && len(s.groups) == 1 {
		return slices.Clone(s.groups[0])
	}

	return []Specification{s}
}

func concat[T any](a, b []T) []T {
	if len(a)+len(b) == 0 {
		return nil
	}

	out := make([]T, 0, len(a)+len(b))
	out = append(out, a...)

	return append(out, b...)
}
