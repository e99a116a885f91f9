package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type FieldKind uint8

const (
	FieldString FieldKind = iota + 1
	FieldNumber
	FieldInteger
	FieldUUID
	FieldTime
)

// SearchField describes one attribute clients may filter or sort on.
type SearchField struct {
	Name     string
	Kind     FieldKind
	Sortable bool
}

// SearchFields is the set of filterable attributes of one entity.
type SearchFields map[string]SearchField

// ProductSearchFields are the product attributes exposed to search.
var ProductSearchFields = SearchFields{
	"name":        {Name: "name", Kind: FieldString, Sortable: true},
	"description": {Name: "description", Kind: FieldString},
	"brand":       {Name: "brand", Kind: FieldString, Sortable: true},
	"price":       {Name: "price", Kind: FieldNumber, Sortable: true},
	"stock":       {Name: "stock", Kind: FieldInteger, Sortable: true},
	"rating":      {Name: "rating", Kind: FieldNumber, Sortable: true},
	"categoryId":  {Name: "categoryId", Kind: FieldUUID},
	"createdAt":   {Name: "createdAt", Kind: FieldTime, Sortable: true},
	"updatedAt":   {Name: "updatedAt", Kind: FieldTime, Sortable: true},
}

func (f SearchFields) Lookup(name string) (SearchField, error) {
	field, ok := f[name]
	if !ok {
		return SearchField{}, fmt.Errorf("%w: %q", ErrUnknownSearchField, name)
	}

	return field, nil
}

// Criterion builds a typed criterion from raw request text. Set
// operations take a comma separated list.
func (f SearchFields) Criterion(name string, op SearchOperation, raw string) (SearchCriterion, error) {
	field, err := f.Lookup(name)
	if err != nil {
		return SearchCriterion{}, err
	}

	if !field.Supports(op) {
		return SearchCriterion{}, fmt.Errorf("%w: %s on %q", ErrUnsupportedSearchOp, op, name)
	}

	if !op.IsSetMembership() {
		value, err := field.Coerce(raw)
		if err != nil {
			return SearchCriterion{}, err
		}

		return NewSearchCriterion(name, op, value)
	}

	parts := strings.Split(raw, ",")
	values := make([]any, 0, len(parts))

	for _, part := range parts {
		value, err := field.Coerce(part)
		if err != nil {
			return SearchCriterion{}, err
		}

		values = append(values, value)
	}

	return NewSearchCriterion(name, op, values)
}

func (f SearchFields) CheckSortable(name string) error {
	field, err := f.Lookup(name)
	if err != nil {
		return err
	}

	if !field.Sortable {
		return fmt.Errorf("%w: %q", ErrUnknownSortField, name)
	}

	return nil
}

// Supports reports whether op makes sense for the field's kind.
func (f SearchField) Supports(op SearchOperation) bool {
	if !op.IsValid() {
		return false
	}

	switch f.Kind {
	case FieldString:
		return true
	case FieldUUID:
		return !op.IsTextMatch() && !op.IsOrdering()
	default:
		return !op.IsTextMatch()
	}
}

func (f SearchField) Coerce(raw string) (any, error) {
	raw = strings.TrimSpace(raw)

	switch f.Kind {
	case FieldNumber:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, f.invalid(raw)
		}

		return v, nil
	case FieldInteger:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, f.invalid(raw)
		}

		return v, nil
	case FieldUUID:
		v, err := uuid.Parse(raw)
		if err != nil {
			return nil, f.invalid(raw)
		}

		return v, nil
	case FieldTime:
		v, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, f.invalid(raw)
		}

		return v.UTC(), nil
	default:
		return raw, nil
	}
}

func (f SearchField) invalid(raw string) error {
	return fmt.Errorf("%w: %q for field %q", ErrInvalidSearchValue, raw, f.Name)
}
