// Package sqlstmt is a flat, string-rendering query holder in the manner of
// a DBAL query builder. It accumulates andWhere/orWhere predicates, bound
// parameters and ORDER BY terms, and renders them as SQL for one dialect.
package sqlstmt

import "errors"

// DialectName enumerates supported SQL dialects.
type DialectName string

const (
	DialectSQLite   DialectName = "sqlite"
	DialectMySQL    DialectName = "mysql"
	DialectPostgres DialectName = "postgres"
	// DialectPostgresNamedArgs renders Postgres SQL using named arguments (`@name`).
	//
	// The generated statement uses `Statement.NamedArgs` instead of positional `Statement.Args`.
	// Lists bind as one typed array: `col = ANY(@name)`.
	DialectPostgresNamedArgs DialectName = "postgres_pgx"
	// DialectNamed renders `:name` placeholders and keeps lists as a single
	// `IN (:name)` parameter, leaving expansion to the driver.
	DialectNamed DialectName = "named"
)

// ErrUnknownDialect is returned when rendering with an unsupported dialect.
var ErrUnknownDialect = errors.New("unknown dialect")

func (d DialectName) valid() bool {
	switch d {
	case DialectSQLite, DialectMySQL, DialectPostgres, DialectPostgresNamedArgs, DialectNamed:
		return true
	default:
		return false
	}
}

func (d DialectName) named() bool {
	return d == DialectPostgresNamedArgs || d == DialectNamed
}
