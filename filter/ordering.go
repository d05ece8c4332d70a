package filter

import (
	"strings"
)

// Sort directions.
const (
	Asc  = "ASC"
	Desc = "DESC"
)

// Sort is one ORDER BY term.
//
// Expr optionally carries the backend's own representation of the term, for
// orderings that were read back from a builder and must be re-applied as is.
type Sort struct {
	Field     string
	Direction string
	Expr      any
}

// String renders the term as SQL. Directions other than DESC render ASC.
func (s Sort) String() string {
	if strings.EqualFold(s.Direction, Desc) {
		return s.Field + " " + Desc
	}
	return s.Field + " " + Asc
}

// ParseSort parses "field1 ASC, field2 DESC". Empty segments are skipped and
// any direction other than DESC is ASC.
func ParseSort(spec string) []Sort {
	var sorts []Sort
	for _, segment := range strings.Split(spec, ",") {
		parts := strings.Fields(segment)
		if len(parts) == 0 {
			continue
		}
		dir := Asc
		if len(parts) > 1 && strings.EqualFold(parts[1], Desc) {
			dir = Desc
		}
		sorts = append(sorts, Sort{Field: parts[0], Direction: dir})
	}
	return sorts
}

// ApplyOrdering replaces the ordering of b with spec, then re-appends the
// ordering b held before so it still acts as a tiebreak. An empty spec
// leaves b untouched.
func ApplyOrdering(b Builder, spec string) []Sort {
	sorts := ParseSort(spec)
	if len(sorts) == 0 {
		return nil
	}

	previous := b.OrderBy()
	b.ResetOrderBy()
	for _, s := range sorts {
		b.AddOrderBy(s)
	}
	for _, s := range previous {
		b.AddOrderBy(s)
	}
	return append(sorts, previous...)
}
