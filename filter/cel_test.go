package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fy0/searchclause/filter"
)

func TestParseCEL(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want filter.Search
	}{
		{
			name: "conjunction",
			expr: `status == "open" && priority >= 3`,
			want: filter.Search{filter.Equal("status", "open"), filter.GreaterOrEqual("priority", int64(3))},
		},
		{
			name: "flipped comparison",
			expr: `3 < priority`,
			want: filter.Search{filter.Greater("priority", int64(3))},
		},
		{
			name: "null checks",
			expr: `owner == null && status != null`,
			want: filter.Search{filter.Null("owner"), filter.NotNull("status")},
		},
		{
			name: "in and not in",
			expr: `priority in [1, 2] && !(status in ["closed"])`,
			want: filter.Search{
				filter.Equal("priority", []any{int64(1), int64(2)}),
				filter.NotEqual("status", []any{"closed"}),
			},
		},
		{
			name: "string matching",
			expr: `title.contains("go") && !title.contains("java") && owner.startsWith("a_") && owner.endsWith("z")`,
			want: filter.Search{
				filter.Like("title", "go"),
				filter.NotLike("title", "java"),
				filter.LikeStrict("owner", `a\_%`),
				filter.LikeStrict("owner", "%z"),
			},
		},
		{
			name: "disjunction",
			expr: `status == "open" || (owner == "ann" && priority > 1) || owner == null`,
			want: filter.Search{
				filter.AndOr(
					filter.Equal("status", "open"),
					filter.Or(filter.Equal("owner", "ann"), filter.Greater("priority", int64(1))),
					filter.Null("owner"),
				),
			},
		},
	}

	keys := []string{"status", "priority", "owner", "title"}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := filter.ParseCEL(tc.expr, keys...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseCEL_Errors(t *testing.T) {
	tests := []struct {
		expr string
		msg  string
	}{
		{``, "empty"},
		{`unknown == 1`, "failed to compile"},
		{`status == owner`, "not a literal"},
		{`!(status == "a")`, "logical NOT"},
		{`size(status) == 1`, "must reference a field"},
	}

	for _, tc := range tests {
		_, err := filter.ParseCEL(tc.expr, "status", "priority", "owner")
		require.Error(t, err, tc.expr)
		assert.Contains(t, err.Error(), tc.msg, tc.expr)
	}
}

func TestParseCEL_CompilesToNestedGroups(t *testing.T) {
	search, err := filter.ParseCEL(`a == 1 || (b == 2 && c == 3)`, "a", "b", "c")
	require.NoError(t, err)

	out := compile(t, filter.FieldMapping{
		{Key: "a", Column: "t.a"},
		{Key: "b", Column: "t.b"},
		{Key: "c", Column: "t.c"},
	}, search)

	ok, err := out.Match(map[string]any{"t.a": 0, "t.b": 2, "t.c": 3})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = out.Match(map[string]any{"t.a": 0, "t.b": 2, "t.c": 4})
	require.NoError(t, err)
	assert.False(t, ok)
}
