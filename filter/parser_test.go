package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fy0/searchclause/filter"
	"github.com/fy0/searchclause/searchkey"
)

func TestParse_EmptySuppression(t *testing.T) {
	for _, v := range []any{nil, "", false, []int{}, []string(nil)} {
		tree := filter.Parse(filter.Search{filter.Filter("x", v)})
		assert.True(t, tree.Empty(), "value %#v should be suppressed", v)
	}

	tree := filter.Parse(filter.Search{filter.Filter("x", 0)})
	require.Len(t, tree.Fields["x"], 1)
	assert.Equal(t, filter.Clause{ExprFn: filter.ExprEq, Value: 0}, tree.Fields["x"][0])

	tree = filter.Parse(filter.Search{filter.Equal("x", "")})
	assert.Equal(t, []filter.Clause{{ExprFn: filter.ExprEq, Value: ""}}, tree.Fields["x"])

	tree = filter.Parse(filter.Search{filter.Equal("x", false)})
	assert.Equal(t, []filter.Clause{{ExprFn: filter.ExprEq, Value: 0}}, tree.Fields["x"])
}

func TestParse_OperatorTable(t *testing.T) {
	tests := []struct {
		name string
		in   filter.Criterion
		want filter.Clause
	}{
		{"equal", filter.Equal("k", "a"), filter.Clause{ExprFn: filter.ExprEq, Value: "a"}},
		{"equal list", filter.Equal("k", []int{1, 2, 3}), filter.Clause{ExprFn: filter.ExprIn, Value: []any{1, 2, 3}}},
		{"not equal", filter.NotEqual("k", "a"), filter.Clause{ExprFn: filter.ExprNeq, Value: "a"}},
		{"not equal list", filter.NotEqual("k", []string{"a"}), filter.Clause{ExprFn: filter.ExprNotIn, Value: []any{"a"}}},
		{"null", filter.Null("k"), filter.Clause{ExprFn: filter.ExprIsNull, Value: filter.NullSentinel}},
		{"not null", filter.NotNull("k"), filter.Clause{ExprFn: filter.ExprIsNotNull, Value: filter.NullSentinel}},
		{"lower", filter.Lower("k", 3), filter.Clause{ExprFn: filter.ExprLt, Value: 3}},
		{"lower or equal", filter.LowerOrEqual("k", 3), filter.Clause{ExprFn: filter.ExprLte, Value: 3}},
		{"greater", filter.Greater("k", 3), filter.Clause{ExprFn: filter.ExprGt, Value: 3}},
		{"greater or equal", filter.GreaterOrEqual("k", 3), filter.Clause{ExprFn: filter.ExprGte, Value: 3}},
		{"like", filter.Like("k", " Foo "), filter.Clause{ExprFn: filter.ExprLike, Value: "%foo%"}},
		{"like list", filter.Like("k", []string{"a", "B"}), filter.Clause{ExprFn: filter.ExprLike, Value: []any{"%a%", "%b%"}}},
		{"not like", filter.NotLike("k", "x_y"), filter.Clause{ExprFn: filter.ExprNotLike, Value: `%x\_y%`}},
		{"like strict", filter.LikeStrict("k", " Fo% "), filter.Clause{ExprFn: filter.ExprLike, Value: "Fo%"}},
		{"not like strict", filter.NotLikeStrict("k", "_b"), filter.Clause{ExprFn: filter.ExprNotLike, Value: "_b"}},
		{"filter", filter.Filter("k", "a"), filter.Clause{ExprFn: filter.ExprEq, Value: "a"}},
		{"filter list", filter.Filter("k", []bool{true, false}), filter.Clause{ExprFn: filter.ExprIn, Value: []any{1, 0}}},
		{"unknown sigil", &filter.Leaf{Operator: "?", Key: "k", Value: "a"}, filter.Clause{ExprFn: filter.ExprEq, Value: "a"}},
		{"alias", &filter.Leaf{Operator: "!=", Key: "k", Value: "a"}, filter.Clause{ExprFn: filter.ExprNeq, Value: "a"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tree := filter.Parse(filter.Search{tc.in})
			require.Len(t, tree.Fields["k"], 1)
			assert.Equal(t, tc.want, tree.Fields["k"][0])
		})
	}
}

func TestSQLSearchString(t *testing.T) {
	assert.Equal(t, `%50\%\_off%`, filter.SQLSearchString("50%_off", false))
	assert.Equal(t, "50%_off", filter.SQLSearchString("50%_off", true))
	assert.Equal(t, []string{"%a%", `%b\%%`}, filter.SQLSearchString([]string{" A", "b%"}, false))
	assert.Equal(t, "%1%", filter.SQLSearchString(true, false))
	assert.Equal(t, "%42%", filter.SQLSearchString(42, false))
}

func TestParse_AccumulatesInSubmissionOrder(t *testing.T) {
	tree := filter.Parse(filter.Search{
		filter.GreaterOrEqual("date", "2024-01-01"),
		filter.Equal("status", 1),
		filter.Lower("date", "2024-02-01"),
		filter.Equal("", 5),
	})

	assert.Equal(t, []string{"date", "status"}, tree.Keys())
	assert.Equal(t, []filter.Clause{
		{ExprFn: filter.ExprGte, Value: "2024-01-01"},
		{ExprFn: filter.ExprLt, Value: "2024-02-01"},
	}, tree.Fields["date"])
}

func TestParse_DefaultLike(t *testing.T) {
	search := filter.Search{
		filter.Filter("name", "Bob"),
		filter.Equal("name", "Alice"),
		filter.Filter("city", "Paris"),
		filter.AndOr(filter.Filter("name", "nested")),
	}

	tree := filter.Parse(search, filter.WithDefaultLike("name"))

	assert.Equal(t, []filter.Clause{
		{ExprFn: filter.ExprLike, Value: "%bob%"},
		{ExprFn: filter.ExprEq, Value: "Alice"},
	}, tree.Fields["name"])
	assert.Equal(t, []filter.Clause{{ExprFn: filter.ExprEq, Value: "Paris"}}, tree.Fields["city"])

	require.Len(t, tree.Branches, 1)
	assert.Equal(t, []filter.Clause{{ExprFn: filter.ExprEq, Value: "nested"}}, tree.Branches[0].Tree.Fields["name"])

	// The input is left untouched.
	assert.Equal(t, searchkey.OpFilter, search[0].(*filter.Leaf).Operator)
}

func TestParse_DefaultLikeKeepsEmptySuppression(t *testing.T) {
	for _, value := range []any{"", nil, []string{}, false} {
		tree := filter.Parse(filter.Search{filter.Filter("name", value)}, filter.WithDefaultLike("name"))
		assert.True(t, tree.Empty(), "value %#v", value)
	}
}

func TestParse_UnknownSigilFallsBackToPlainFilter(t *testing.T) {
	tree := filter.Parse(filter.FromEntries(filter.Entries{{Key: "?x", Value: ""}}))
	assert.True(t, tree.Empty())

	tree = filter.Parse(filter.FromEntries(filter.Entries{
		{Key: "?x", Value: "a"},
		{Key: "?y", Value: []int{}},
		{Key: "?z", Value: []int{1, 2}},
	}))
	assert.Equal(t, []string{"x", "z"}, tree.Keys())
	assert.Equal(t, []filter.Clause{{ExprFn: filter.ExprEq, Value: "a"}}, tree.Fields["x"])
	assert.Equal(t, []filter.Clause{{ExprFn: filter.ExprIn, Value: []any{1, 2}}}, tree.Fields["z"])
}

func TestParse_CompositeNesting(t *testing.T) {
	tree := filter.Parse(filter.Search{
		filter.AndOr(
			filter.Equal("a", 1),
			filter.Or(filter.Equal("b", 2), filter.Equal("c", 3)),
		),
	})

	assert.Empty(t, tree.Fields)
	require.Len(t, tree.Branches, 1)

	andOr := tree.Branches[0]
	assert.Equal(t, searchkey.OpAndOr, andOr.Operator)
	assert.Equal(t, []string{"a"}, andOr.Tree.Keys())
	require.Len(t, andOr.Tree.Branches, 1)

	or := andOr.Tree.Branches[0]
	assert.Equal(t, searchkey.OpOr, or.Operator)
	assert.Equal(t, []string{"b", "c"}, or.Tree.Keys())
	assert.Equal(t, []filter.Clause{{ExprFn: filter.ExprEq, Value: 3}}, or.Tree.Fields["c"])
}

func TestParse_SiblingGroupsStayApart(t *testing.T) {
	tree := filter.Parse(filter.Search{
		filter.AndOr(filter.Equal("a", 1)),
		filter.AndOr(filter.Equal("a", 2)),
	})

	require.Len(t, tree.Branches, 2)
	assert.Equal(t, 1, tree.Branches[0].Tree.Fields["a"][0].Value)
	assert.Equal(t, 2, tree.Branches[1].Tree.Fields["a"][0].Value)
}

func TestParse_Idempotent(t *testing.T) {
	entries := filter.Entries{
		{Key: searchkey.Encode(searchkey.OpEqual, "a", false), Value: []int{1, 2}},
		{Key: searchkey.Encode(searchkey.OpLike, "b", false), Value: "x"},
		{Key: searchkey.Encode(searchkey.OpAndOr, "g", false), Value: filter.Entries{
			{Key: searchkey.Encode(searchkey.OpNull, "c", false)},
		}},
	}

	first := filter.Parse(filter.FromEntries(entries))
	second := filter.Parse(filter.FromEntries(entries))
	assert.Equal(t, first, second)
}

func TestFromMap_DecodesEncodedKeys(t *testing.T) {
	search := filter.FromMap(map[string]any{
		searchkey.Equal("status"): "open",
		searchkey.AndOr(): map[string]any{
			searchkey.Like("name"):  "bob",
			searchkey.Equal("city"): "Paris",
		},
		searchkey.Like("title"): map[string]any{"not": "a group"},
	})

	tree := filter.Parse(search)
	assert.Equal(t, []filter.Clause{{ExprFn: filter.ExprEq, Value: "open"}}, tree.Fields["status"])
	require.Len(t, tree.Branches, 1)
	assert.ElementsMatch(t, []string{"name", "city"}, tree.Branches[0].Tree.Keys())
	assert.Contains(t, tree.Keys(), "title")
}
