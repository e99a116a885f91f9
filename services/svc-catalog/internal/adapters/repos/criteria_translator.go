package repos

import (
	"fmt"
	"reflect"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

var (
	productColumns = map[string]string{
		"id":          "id",
		"name":        "name",
		"description": "description",
		"brand":       "brand",
		"price":       "price",
		"stock":       "stock",
		"rating":      "rating",
		"categoryId":  "category_id",
		"createdAt":   "created_at",
		"updatedAt":   "updated_at",
	}

	// category_id is set to NULL when its category is deleted.
	productNullableColumns = []string{"category_id"}

	likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
)

// CriteriaTranslator turns a Criteria into squirrel clauses for one table.
type CriteriaTranslator struct {
	columns     map[string]string
	nullable    map[string]struct{}
	defaultSort string
	logger      logger.Logger
}

type TranslatorOption func(*CriteriaTranslator)

// WithNullableColumns makes the exclusion operators (NOT_EQUAL, NOT_IN and
// the NOT_* text matches) also match rows where the column is NULL.
func WithNullableColumns(columns ...string) TranslatorOption {
	return func(t *CriteriaTranslator) {
		for _, col := range columns {
			t.nullable[col] = struct{}{}
		}
	}
}

func NewCriteriaTranslator(
	columns map[string]string,
	defaultSort string,
	log logger.Logger,
	opts ...TranslatorOption,
) *CriteriaTranslator {
	t := &CriteriaTranslator{
		columns:     columns,
		nullable:    make(map[string]struct{}),
		defaultSort: defaultSort,
		logger:      log,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

func NewProductsCriteriaTranslator(log logger.Logger) *CriteriaTranslator {
	return NewCriteriaTranslator(productColumns, "created_at DESC", log, WithNullableColumns(productNullableColumns...))
}

func (t *CriteriaTranslator) ApplyToSelect(builder sq.SelectBuilder, criteria model.Criteria) (sq.SelectBuilder, error) {
	builder, err := t.ApplyConditionsOnly(builder, criteria)
	if err != nil {
		return builder, err
	}

	builder, err = t.applySorting(builder, criteria)
	if err != nil {
		return builder, err
	}

	return t.applyPagination(builder, criteria), nil
}

func (t *CriteriaTranslator) ApplyConditionsOnly(builder sq.SelectBuilder, criteria model.Criteria) (sq.SelectBuilder, error) {
	if !criteria.HasSpec() {
		return builder, nil
	}

	where, err := t.Translate(criteria.Spec())
	if err != nil {
		return builder, err
	}

	return builder.Where(where), nil
}

// Translate renders spec as AND(criteria) AND OR(group members) for each group.
func (t *CriteriaTranslator) Translate(spec model.Specification) (sq.Sqlizer, error) {
	parts := make([]sq.Sqlizer, 0, len(spec.Criteria())+len(spec.Groups()))

	for _, c := range spec.Criteria() {
		part, err := t.translateCriterion(c)
		if err != nil {
			return nil, err
		}

		parts = append(parts, part)
	}

	for _, group := range spec.Groups() {
		alternatives := make(sq.Or, 0, len(group))

		for _, member := range group {
			part, err := t.Translate(member)
			if err != nil {
				return nil, err
			}

			alternatives = append(alternatives, part)
		}

		parts = append(parts, alternatives)
	}

	if len(parts) == 1 {
		return parts[0], nil
	}

	return sq.And(parts), nil
}

func (t *CriteriaTranslator) translateCriterion(c model.SearchCriterion) (sq.Sqlizer, error) {
	col, err := t.col(c.Field())
	if err != nil {
		return nil, err
	}

	condition, err := translateOperation(col, c.Operation(), c.Value())
	if err != nil {
		return nil, err
	}

	if _, ok := t.nullable[col]; ok && isExclusion(c.Operation()) {
		// NULL <> x is unknown in SQL, so NULL rows need their own branch.
		return sq.Or{condition, sq.Eq{col: nil}}, nil
	}

	return condition, nil
}

func isExclusion(op model.SearchOperation) bool {
	switch op {
	case model.OpNotEqual, model.OpNotIn, model.OpNotContains, model.OpNotStartsWith, model.OpNotEndsWith:
		return true
	default:
		return false
	}
}

func translateOperation(col string, op model.SearchOperation, value any) (sq.Sqlizer, error) {
	switch op {
	case model.OpEqual:
		return sq.Eq{col: value}, nil
	case model.OpNotEqual:
		return sq.NotEq{col: value}, nil
	case model.OpGreaterThan:
		return sq.Gt{col: value}, nil
	case model.OpLessThan:
		return sq.Lt{col: value}, nil
	case model.OpGreaterThanEqual:
		return sq.GtOrEq{col: value}, nil
	case model.OpLessThanEqual:
		return sq.LtOrEq{col: value}, nil
	case model.OpContains:
		return sq.ILike{col: "%" + escapeLike(value) + "%"}, nil
	case model.OpNotContains:
		return sq.NotILike{col: "%" + escapeLike(value) + "%"}, nil
	case model.OpStartsWith:
		return sq.ILike{col: escapeLike(value) + "%"}, nil
	case model.OpNotStartsWith:
		return sq.NotILike{col: escapeLike(value) + "%"}, nil
	case model.OpEndsWith:
		return sq.ILike{col: "%" + escapeLike(value)}, nil
	case model.OpNotEndsWith:
		return sq.NotILike{col: "%" + escapeLike(value)}, nil
	case model.OpIn:
		return sq.Eq{col: asList(value)}, nil
	case model.OpNotIn:
		return sq.NotEq{col: asList(value)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", model.ErrUndefinedSearchOperation, op)
	}
}

func (t *CriteriaTranslator) col(field string) (string, error) {
	if col, ok := t.columns[field]; ok {
		return col, nil
	}

	t.logger.Debug().Str("field", field).Msg("rejecting unknown search field")

	return "", fmt.Errorf("%w: %q", model.ErrUnknownSearchField, field)
}

func (t *CriteriaTranslator) applySorting(builder sq.SelectBuilder, c model.Criteria) (sq.SelectBuilder, error) {
	if !c.HasSorting() {
		return builder.OrderBy(t.defaultSort), nil
	}

	for _, s := range c.Sorting() {
		col, ok := t.columns[s.Field]
		if !ok {
			return builder, fmt.Errorf("%w: %q", model.ErrUnknownSortField, s.Field)
		}

		direction := model.SortAsc
		if s.Direction == model.SortDesc {
			direction = model.SortDesc
		}

		builder = builder.OrderBy(fmt.Sprintf("%s %s", col, direction))
	}

	// id breaks ties so that pages never overlap.
	return builder.OrderBy("id ASC"), nil
}

func (t *CriteriaTranslator) applyPagination(builder sq.SelectBuilder, c model.Criteria) sq.SelectBuilder {
	if !c.HasPagination() {
		return builder
	}

	return builder.Limit(uint64(c.Size())).Offset(uint64(c.Offset()))
}

func escapeLike(value any) string {
	s, ok := value.(string)
	if !ok {
		s = fmt.Sprint(value)
	}

	return likeEscaper.Replace(s)
}

func asList(value any) any {
	if value == nil {
		return []any{}
	}

	switch reflect.TypeOf(value).Kind() {
	case reflect.Slice, reflect.Array:
		return value
	default:
		return []any{value}
	}
}
