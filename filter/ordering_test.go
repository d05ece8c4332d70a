package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fy0/searchclause/filter"
)

func TestParseSort(t *testing.T) {
	tests := []struct {
		spec string
		want []filter.Sort
	}{
		{"", nil},
		{" , ,", nil},
		{"name", []filter.Sort{{Field: "name", Direction: "ASC"}}},
		{"name desc, d.date ASC", []filter.Sort{
			{Field: "name", Direction: "DESC"},
			{Field: "d.date", Direction: "ASC"},
		}},
		{"name foo, d.date Desc; DROP", []filter.Sort{
			{Field: "name", Direction: "ASC"},
			{Field: "d.date", Direction: "ASC"},
		}},
		{"a  DESC,,b", []filter.Sort{
			{Field: "a", Direction: "DESC"},
			{Field: "b", Direction: "ASC"},
		}},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, filter.ParseSort(tc.spec), "spec %q", tc.spec)
	}
}

func TestApplyOrdering_KeepsPreviousAsTiebreak(t *testing.T) {
	b := &recordingBuilder{sorts: []filter.Sort{{Field: "created_at", Direction: "DESC"}}}

	filter.ApplyOrdering(b, "name ASC")

	assert.Equal(t, []filter.Sort{
		{Field: "name", Direction: "ASC"},
		{Field: "created_at", Direction: "DESC"},
	}, b.sorts)
}

func TestApplyOrdering_EmptySpecLeavesBuilder(t *testing.T) {
	b := &recordingBuilder{sorts: []filter.Sort{{Field: "id", Direction: "ASC"}}}

	assert.Nil(t, filter.ApplyOrdering(b, " "))
	assert.Equal(t, []filter.Sort{{Field: "id", Direction: "ASC"}}, b.sorts)
}

func TestSort_String(t *testing.T) {
	assert.Equal(t, "name ASC", filter.Sort{Field: "name"}.String())
	assert.Equal(t, "name DESC", filter.Sort{Field: "name", Direction: "DESC"}.String())
	assert.Equal(t, "name DESC", filter.Sort{Field: "name", Direction: "desc"}.String())
	assert.Equal(t, "name ASC", filter.Sort{Field: "name", Direction: "sideways"}.String())
}
