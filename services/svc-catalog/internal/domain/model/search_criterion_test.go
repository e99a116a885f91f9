package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/architeacher/storefront/services/svc-catalog/internal/domain/model"
)

func TestNewSearchCriterion(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		field   string
		op      model.SearchOperation
		value   any
		wantErr bool
	}{
		{name: "scalar value", field: "price", op: model.OpGreaterThan, value: 10},
		{name: "collection value", field: "brand", op: model.OpIn, value: []any{"acme", "globex"}},
		{name: "field names are not checked", field: "no_such_field", op: model.OpEqual, value: nil},
		{name: "undefined operation", field: "price", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			c, err := model.NewSearchCriterion(tc.field, tc.op, tc.value)
			if tc.wantErr {
				require.ErrorIs(t, err, model.ErrUndefinedSearchOperation)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.field, c.Field())
			require.Equal(t, tc.op, c.Operation())
			require.Equal(t, tc.value, c.Value())
		})
	}
}

func TestSearchCriterionNegate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		input    model.SearchCriterion
		expected model.SearchCriterion
	}{
		{
			name:     "equal becomes not equal",
			input:    model.MustSearchCriterion("brand", model.OpEqual, "acme"),
			expected: model.MustSearchCriterion("brand", model.OpNotEqual, "acme"),
		},
		{
			name:     "not equal becomes equal",
			input:    model.MustSearchCriterion("brand", model.OpNotEqual, "acme"),
			expected: model.MustSearchCriterion("brand", model.OpEqual, "acme"),
		},
		{
			name:     "greater than becomes less than or equal",
			input:    model.MustSearchCriterion("price", model.OpGreaterThan, 10),
			expected: model.MustSearchCriterion("price", model.OpLessThanEqual, 10),
		},
		{
			name:     "in becomes not in and keeps the collection",
			input:    model.MustSearchCriterion("brand", model.OpIn, []any{"a", "b"}),
			expected: model.MustSearchCriterion("brand", model.OpNotIn, []any{"a", "b"}),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			negated, err := tc.input.Negate()
			require.NoError(t, err)
			require.Equal(t, tc.expected, negated)

			again, err := negated.Negate()
			require.NoError(t, err)
			require.Equal(t, tc.input, again)
		})
	}
}

func TestSearchCriterionNegateUnsupported(t *testing.T) {
	t.Parallel()

	var zero model.SearchCriterion

	negated, err := zero.Negate()
	require.Error(t, err)
	require.True(t, errors.Is(err, model.ErrUnsupportedNegation))
	require.Equal(t, model.SearchCriterion{}, negated)

	unsupported, ok := model.IsUnsupportedNegation(err)
	require.True(t, ok)
	require.Equal(t, "", unsupported.Field)
	require.Contains(t, err.Error(), "cannot negate UNDEFINED")
}

func TestMustSearchCriterionPanicsOnUndefinedOperation(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		model.MustSearchCriterion("price", model.SearchOperation(0), 1)
	})
}
