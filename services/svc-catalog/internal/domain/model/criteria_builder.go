package model

import "errors"

// CriteriaBuilder assembles Criteria from the pieces of a search request.
// Errors accumulate and are reported together by Build.
type CriteriaBuilder struct {
	spec    Specification
	sorting []SortField
	page    uint
	size    uint
	err     error
}

func NewCriteria() *CriteriaBuilder {
	return &CriteriaBuilder{
		page: DefaultPage,
		size: DefaultSize,
	}
}

func (b *CriteriaBuilder) Where(field string, op SearchOperation, value any) *CriteriaBuilder {
	c, err := NewSearchCriterion(field, op, value)
	if err != nil {
		return b.fail(err)
	}

	b.spec.AddCriteria(c)

	return b
}

// Matching ANDs spec into the criteria.
func (b *CriteriaBuilder) Matching(spec Specification) *CriteriaBuilder {
	b.spec = b.spec.And(spec)

	return b
}

// Excluding ANDs the atom-wise negation of spec.
func (b *CriteriaBuilder) Excluding(spec Specification) *CriteriaBuilder {
	negated, err := spec.Not()
	if err != nil {
		return b.fail(err)
	}

	b.spec = b.spec.And(negated)

	return b
}

// MatchingAny folds alternatives with mode and ANDs the result.
func (b *CriteriaBuilder) MatchingAny(mode OrMode, alternatives ...Specification) *CriteriaBuilder {
	if len(alternatives) == 0 {
		return b
	}

	combined := alternatives[0]
	for _, alt := range alternatives[1:] {
		combined = mode.Combine(combined, alt)
	}

	b.spec = b.spec.And(combined)

	return b
}

// OrderBy takes "field" for ascending or "-field" for descending order.
func (b *CriteriaBuilder) OrderBy(field string) *CriteriaBuilder {
	direction := SortAsc
	actualField := field

	if len(field) > 0 && field[0] == '-' {
		direction = SortDesc
		actualField = field[1:]
	}

	if actualField == "" {
		return b.fail(ErrUnknownSortField)
	}

	b.sorting = append(b.sorting, SortField{Field: actualField, Direction: direction})

	return b
}

func (b *CriteriaBuilder) Paginate(page, size uint) *CriteriaBuilder {
	if page > 0 {
		b.page = page
	}

	if size > 0 {
		b.size = min(size, MaxPageSize)
	}

	return b
}

func (b *CriteriaBuilder) Build() (Criteria, error) {
	if b.err != nil {
		return Criteria{}, b.err
	}

	return Criteria{
		spec:    b.spec,
		sorting: b.sorting,
		page:    b.page,
		size:    b.size,
	}, nil
}

func (b *CriteriaBuilder) fail(err error) *CriteriaBuilder {
	b.err = errors.Join(b.err, err)

	return b
}
