// Package searchclause compiles search filters into the WHERE and ORDER BY
// clauses of a query builder.
//
// A search is a list of criteria built with the filter package (or decoded
// from encoded search keys, see package searchkey). A ClauseBuilder maps the
// criteria keys to columns and applies them to either a goqu SelectDataset
// or any filter.Builder, such as a sqlstmt.Query:
//
//	cb, err := searchclause.New(goqu.From(goqu.T("document").As("d")))
//	cb.SetSearchFields(filter.Field{Key: "title", Column: "d.title"})
//	ds, err := cb.QueryBuilder(filter.Search{filter.Like("title", "report")}, "title ASC")
package searchclause

import (
	"fmt"
	"reflect"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"

	"github.com/fy0/searchclause/filter"
	"github.com/fy0/searchclause/goqubuilder"
)

// ClauseBuilder applies searches to the query builder it was created with.
type ClauseBuilder[Q any] struct {
	query       Q
	fields      filter.FieldMapping
	defaultLike []string
	cfg         config
}

// New validates qb and returns a ClauseBuilder for it.
//
// qb must be a *goqu.SelectDataset or implement filter.Builder. Anything
// else fails with ErrUnsupportedQueryBuilder, a nil builder with
// ErrNilQueryBuilder.
func New[Q any](qb Q, opts ...Option) (*ClauseBuilder[Q], error) {
	if err := checkQueryBuilder(qb); err != nil {
		return nil, err
	}

	cfg := config{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &ClauseBuilder[Q]{query: qb, cfg: cfg}, nil
}

func checkQueryBuilder(qb any) error {
	if qb == nil {
		return ErrNilQueryBuilder
	}
	switch qb.(type) {
	case *goqu.SelectDataset, filter.Builder:
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedQueryBuilder, qb)
	}
	if v := reflect.ValueOf(qb); v.Kind() == reflect.Pointer && v.IsNil() {
		return ErrNilQueryBuilder
	}
	return nil
}

// SetSearchFields adds searchable fields. A key already set keeps its
// position and takes the new column.
func (cb *ClauseBuilder[Q]) SetSearchFields(fields ...filter.Field) *ClauseBuilder[Q] {
	cb.fields = cb.fields.Set(fields...)
	return cb
}

// SetDefaultLikeFields adds searchable fields whose plain filters match with
// Like instead of equality.
func (cb *ClauseBuilder[Q]) SetDefaultLikeFields(fields ...filter.Field) *ClauseBuilder[Q] {
	cb.SetSearchFields(fields...)
	for _, f := range fields {
		if f.Key != "" {
			cb.defaultLike = append(cb.defaultLike, f.Key)
		}
	}
	return cb
}

// UseDefinition adds the fields and default-like keys of def.
func (cb *ClauseBuilder[Q]) UseDefinition(def Definition) *ClauseBuilder[Q] {
	cb.SetSearchFields(def.Fields...)
	cb.defaultLike = append(cb.defaultLike, def.DefaultLike...)
	return cb
}

// UseModel adds the fields read from the struct tags of model. See
// filter.FieldsFromStruct.
func (cb *ClauseBuilder[Q]) UseModel(alias string, model any) error {
	sf, err := filter.FieldsFromStruct(alias, model)
	if err != nil {
		return err
	}
	cb.UseDefinition(Definition{Fields: sf.Fields, DefaultLike: sf.DefaultLike})
	return nil
}

// Fields returns the searchable fields in order.
func (cb *ClauseBuilder[Q]) Fields() filter.FieldMapping {
	return append(filter.FieldMapping(nil), cb.fields...)
}

// Compile parses and compiles search without touching the query builder.
func (cb *ClauseBuilder[Q]) Compile(search filter.Search) *filter.Compiled {
	tree := filter.Parse(search, filter.WithDefaultLike(cb.defaultLike...))
	compiler := filter.NewCompiler(cb.fields,
		filter.WithCompilerLogger(cb.cfg.logger),
		filter.WithTokenSource(cb.cfg.token),
	)
	return compiler.Compile(tree)
}

// QueryBuilder applies search and the sort specification to the query
// builder and returns it.
//
// A filter.Builder is modified in place. A goqu dataset is immutable, so the
// returned dataset is derived from the one New was given and repeated calls
// do not stack.
func (cb *ClauseBuilder[Q]) QueryBuilder(search filter.Search, paginatorSort string) (Q, error) {
	compiled := cb.Compile(search)

	switch qb := any(cb.query).(type) {
	case *goqu.SelectDataset:
		b := goqubuilder.New(qb)
		compiled.ApplyTo(b)
		sorts := filter.ApplyOrdering(b, paginatorSort)
		ds, err := b.Dataset()
		if err != nil {
			var zero Q
			return zero, err
		}
		cb.logApplied(compiled, sorts)
		return any(ds).(Q), nil
	case filter.Builder:
		compiled.ApplyTo(qb)
		sorts := filter.ApplyOrdering(qb, paginatorSort)
		cb.logApplied(compiled, sorts)
	}
	return cb.query, nil
}

func (cb *ClauseBuilder[Q]) logApplied(compiled *filter.Compiled, sorts []filter.Sort) {
	if !cb.cfg.logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	cb.cfg.logger.Debug("search clause applied",
		zap.Int("predicates", len(compiled.Parts)),
		zap.Int("parameters", len(compiled.Params)),
		zap.Int("order_by", len(sorts)),
	)
}
