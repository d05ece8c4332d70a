package searchclause

import "errors"

var (
	// ErrNilQueryBuilder is returned by New for a nil query builder.
	ErrNilQueryBuilder = errors.New("query builder is nil")
	// ErrUnsupportedQueryBuilder is returned by New for a query builder that
	// is neither a goqu dataset nor a filter.Builder.
	ErrUnsupportedQueryBuilder = errors.New("unsupported query builder")
	// ErrInvalidDefinition is returned when a query definition is malformed.
	ErrInvalidDefinition = errors.New("invalid query definition")
)
