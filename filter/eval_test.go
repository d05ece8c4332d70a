package filter_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fy0/searchclause/filter"
)

var evalFields = filter.FieldMapping{
	{Key: "name", Column: "u.name"},
	{Key: "age", Column: "u.age"},
	{Key: "city", Column: "u.city"},
	{Key: "active", Column: "u.active"},
	{Key: "deleted", Column: "u.deleted_at"},
	{Key: "born", Column: "u.born"},
}

func match(t *testing.T, search filter.Search, record map[string]any) bool {
	t.Helper()
	ok, err := compile(t, evalFields, search).Match(record)
	require.NoError(t, err)
	return ok
}

func TestMatch_Comparisons(t *testing.T) {
	row := map[string]any{
		"u.name":       "Ann_Lee",
		"u.age":        int64(42),
		"u.city":       "Paris",
		"u.active":     true,
		"u.deleted_at": nil,
		"u.born":       time.Date(1982, 5, 1, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name   string
		search filter.Search
		want   bool
	}{
		{"empty", nil, true},
		{"eq", filter.Search{filter.Equal("city", "Paris")}, true},
		{"eq number", filter.Search{filter.Equal("age", 42)}, true},
		{"eq numeric string", filter.Search{filter.Equal("age", "42")}, true},
		{"neq", filter.Search{filter.NotEqual("city", "Paris")}, false},
		{"in", filter.Search{filter.Equal("age", []int{1, 42})}, true},
		{"not in", filter.Search{filter.NotEqual("city", []string{"Rome"})}, true},
		{"range", filter.Search{filter.Greater("age", 40), filter.LowerOrEqual("age", 42)}, true},
		{"range miss", filter.Search{filter.Lower("age", 42)}, false},
		{"bool", filter.Search{filter.Equal("active", true)}, true},
		{"like", filter.Search{filter.Like("name", "ann")}, true},
		{"like escaped underscore", filter.Search{filter.Like("name", "n_l")}, true},
		{"like escaped miss", filter.Search{filter.Like("name", "nxl")}, false},
		{"like strict", filter.Search{filter.LikeStrict("name", "Ann%")}, true},
		{"not like", filter.Search{filter.NotLike("name", "bob")}, true},
		{"not like miss", filter.Search{filter.NotLike("name", "ann")}, false},
		{"not in miss", filter.Search{filter.NotEqual("city", []string{"Rome", "Paris"})}, false},
		{"like list", filter.Search{filter.Like("city", []string{"rome", "par"})}, true},
		{"is null", filter.Search{filter.Null("deleted")}, true},
		{"is not null", filter.Search{filter.NotNull("deleted")}, false},
		{"null compares false", filter.Search{filter.NotEqual("deleted", "x")}, false},
		{"time", filter.Search{filter.Greater("born", "1980-01-01")}, true},
		{"or group", filter.Search{filter.Equal("city", "Rome"), filter.Or(filter.Equal("age", 42))}, true},
		{"and-or group", filter.Search{filter.AndOr(filter.Equal("city", "Rome"), filter.Equal("age", 1))}, false},
		{"unmapped ignored", filter.Search{filter.Equal("ghost", 1)}, true},
		{"empty in", filter.Search{filter.Equal("age", []int{})}, false},
		{"empty not in", filter.Search{filter.NotEqual("age", []int{})}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, match(t, tc.search, row))
		})
	}
}

func TestExprFn_Negated(t *testing.T) {
	for _, fn := range []filter.ExprFn{filter.ExprNeq, filter.ExprNotIn, filter.ExprNotLike, filter.ExprIsNotNull} {
		assert.True(t, fn.Negated(), string(fn))
	}
	for _, fn := range []filter.ExprFn{filter.ExprEq, filter.ExprIn, filter.ExprLike, filter.ExprIsNull, filter.ExprLt} {
		assert.False(t, fn.Negated(), string(fn))
	}
}

func TestMatch_MissingColumn(t *testing.T) {
	_, err := compile(t, evalFields, filter.Search{filter.Equal("city", "Paris")}).Match(map[string]any{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"u.city"`)
}

func TestMatch_FoldsLeftToRight(t *testing.T) {
	// (city = Rome AND age = 42) OR (name = Ann_Lee)
	search := filter.Search{
		filter.Equal("city", "Rome"),
		filter.Equal("age", 42),
		filter.Or(filter.Equal("name", "Ann_Lee")),
	}
	assert.True(t, match(t, search, map[string]any{"u.city": "Paris", "u.age": 42, "u.name": "Ann_Lee"}))
	assert.False(t, match(t, search, map[string]any{"u.city": "Paris", "u.age": 42, "u.name": "Bob"}))
}
