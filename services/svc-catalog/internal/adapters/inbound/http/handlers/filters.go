package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

const filterSeparator = ":"

type (
	// searchRequest is the body of POST /products/search. Terms in All
	// must hold, terms in None must not, and at least one of Any must.
	searchRequest struct {
		All  []filterTerm `json:"all"`
		None []filterTerm `json:"none"`
		Any  []filterTerm `json:"any"`
		Sort []string     `json:"sort"`
		Page uint         `json:"page"`
		Size uint         `json:"size"`
	}

	filterTerm struct {
		Field string `json:"field"`
		Op    string `json:"op"`
		Value any    `json:"value"`
	}
)

// criteriaFromQuery reads q, exclude, any, sort, page and size. Filters
// have the form field:op:value; only the first two colons separate, so
// timestamps survive intact.
func criteriaFromQuery(values url.Values, mode model.OrMode) (model.Criteria, error) {
	all, err := parseExpressions(values["q"])
	if err != nil {
		return model.Criteria{}, err
	}

	none, err := parseExpressions(values["exclude"])
	if err != nil {
		return model.Criteria{}, err
	}

	anyOf, err := parseExpressions(values["any"])
	if err != nil {
		return model.Criteria{}, err
	}

	var sorting []string
	for _, value := range values["sort"] {
		sorting = append(sorting, strings.Split(value, ",")...)
	}

	page, err := parseUintParam(values.Get("page"), "page")
	if err != nil {
		return model.Criteria{}, err
	}

	size, err := parseUintParam(values.Get("size"), "size")
	if err != nil {
		return model.Criteria{}, err
	}

	return buildCriteria(all, none, anyOf, sorting, page, size, mode)
}

func (s searchRequest) criteria(mode model.OrMode) (model.Criteria, error) {
	all, err := termsToCriteria(s.All)
	if err != nil {
		return model.Criteria{}, err
	}

	none, err := termsToCriteria(s.None)
	if err != nil {
		return model.Criteria{}, err
	}

	anyOf, err := termsToCriteria(s.Any)
	if err != nil {
		return model.Criteria{}, err
	}

	return buildCriteria(all, none, anyOf, s.Sort, s.Page, s.Size, mode)
}

func buildCriteria(
	all, none, anyOf []model.SearchCriterion,
	sorting []string,
	page, size uint,
	mode model.OrMode,
) (model.Criteria, error) {
	builder := model.NewCriteria().
		Matching(model.NewSpecification(all...)).
		Paginate(page, size)

	if len(none) > 0 {
		builder = builder.Excluding(model.NewSpecification(none...))
	}

	if len(anyOf) > 0 {
		alternatives := make([]model.Specification, 0, len(anyOf))
		for _, c := range anyOf {
			alternatives = append(alternatives, model.NewSpecification(c))
		}

		builder = builder.MatchingAny(mode, alternatives...)
	}

	for _, field := range sorting {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		if err := model.ProductSearchFields.CheckSortable(strings.TrimPrefix(field, "-")); err != nil {
			return model.Criteria{}, err
		}

		builder = builder.OrderBy(field)
	}

	return builder.Build()
}

func parseExpressions(expressions []string) ([]model.SearchCriterion, error) {
	criteria := make([]model.SearchCriterion, 0, len(expressions))

	for _, expr := range expressions {
		parts := strings.SplitN(expr, filterSeparator, 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("%w: %q, expected field:op:value", model.ErrMalformedFilter, expr)
		}

		c, err := newCriterion(parts[0], parts[1], parts[2])
		if err != nil {
			return nil, err
		}

		criteria = append(criteria, c)
	}

	return criteria, nil
}

func termsToCriteria(terms []filterTerm) ([]model.SearchCriterion, error) {
	criteria := make([]model.SearchCriterion, 0, len(terms))

	for _, term := range terms {
		if term.Field == "" || term.Op == "" {
			return nil, fmt.Errorf("%w: field and op are required", model.ErrMalformedFilter)
		}

		raw, err := rawValue(term.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, term.Field)
		}

		c, err := newCriterion(term.Field, term.Op, raw)
		if err != nil {
			return nil, err
		}

		criteria = append(criteria, c)
	}

	return criteria, nil
}

func newCriterion(field, op, raw string) (model.SearchCriterion, error) {
	operation, err := model.ParseSearchOperation(op)
	if err != nil {
		return model.SearchCriterion{}, err
	}

	return model.ProductSearchFields.Criterion(field, operation, raw)
}

// rawValue flattens a decoded JSON value into the text form the field
// registry coerces, so both search inputs share one parser.
func rawValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			part, err := rawValue(item)
			if err != nil {
				return "", err
			}

			parts = append(parts, part)
		}

		return strings.Join(parts, ","), nil
	default:
		return "", model.ErrInvalidSearchValue
	}
}

func parseUintParam(raw, name string) (uint, error) {
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		errs := model.NewValidationErrors()
		errs.Add(name, name+" must be a positive integer", "INVALID_FORMAT")

		return 0, errs
	}

	return uint(value), nil
}
