package model

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"

	DefaultPage uint = 1
	DefaultSize uint = 20
	MaxPageSize uint = 100
)

type (
	SortField struct {
		Field     string
		Direction SortDirection
	}

	// Criteria is a complete search request: what to match, in which
	// order, and which page to return.
	Criteria struct {
		spec    Specification
		sorting []SortField
		page    uint
		size    uint
	}
)

func (c Criteria) Spec() Specification  { return c.spec }
func (c Criteria) Sorting() []SortField { return c.sorting }
func (c Criteria) Page() uint           { return c.page }
func (c Criteria) Size() uint           { return c.size }
func (c Criteria) Offset() uint         { return (c.page - 1) * c.size }
func (c Criteria) HasSpec() bool        { return c.spec.HasCriteria() }
func (c Criteria) HasSorting() bool     { return len(c.sorting) > 0 }
func (c Criteria) HasPagination() bool  { return c.page > 0 && c.size > 0 }

type Pagination struct {
	Page        uint
	Size        uint
	TotalItems  uint
	TotalPages  uint
	HasNext     bool
	HasPrevious bool
}

func NewPagination(page, size, total uint) Pagination {
	var totalPages uint
	if size > 0 {
		totalPages = (total + size - 1) / size
	}

	return Pagination{
		Page:        page,
		Size:        size,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}
