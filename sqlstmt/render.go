package sqlstmt

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cast"

	"github.com/fy0/searchclause/filter"
)

// RenderOptions configure SQL rendering.
type RenderOptions struct {
	Dialect           DialectName
	PlaceholderOffset int
}

// Statement contains the rendered SQL and its args.
type Statement struct {
	// SQL is the full query: base, WHERE and ORDER BY.
	SQL string
	// Where is the rendered predicate alone, empty when unconstrained.
	Where   string
	OrderBy string
	Args    []any
	// NamedArgs is populated when rendering with a named dialect.
	NamedArgs map[string]any
}

// PgxNamedArgs returns the named args in the form pgx expects:
//
//	conn.Query(ctx, stmt.SQL, stmt.PgxNamedArgs())
func (s Statement) PgxNamedArgs() pgx.NamedArgs {
	return pgx.NamedArgs(s.NamedArgs)
}

// Render converts the query into dialect-specific SQL.
func (q *Query) Render(opts RenderOptions) (Statement, error) {
	if !opts.Dialect.valid() {
		return Statement{}, fmt.Errorf("%w %q", ErrUnknownDialect, opts.Dialect)
	}

	r := newRenderer(opts, q.params)

	stmt := Statement{}
	if q.where != nil {
		result, err := r.renderExpr(q.where.Expr())
		if err != nil {
			return Statement{}, err
		}
		switch {
		case result.unsatisfiable:
			stmt.Where = "1 = 0"
		case !result.trivial:
			stmt.Where = result.sql
		}
	}

	terms := make([]string, 0, len(q.orderBy))
	for _, s := range q.orderBy {
		terms = append(terms, s.String())
	}
	stmt.OrderBy = strings.Join(terms, ", ")

	var sql strings.Builder
	sql.WriteString(q.base)
	if stmt.Where != "" {
		sql.WriteString(" WHERE ")
		sql.WriteString(stmt.Where)
	}
	if stmt.OrderBy != "" {
		sql.WriteString(" ORDER BY ")
		sql.WriteString(stmt.OrderBy)
	}
	stmt.SQL = strings.TrimSpace(sql.String())

	stmt.Args = r.args
	if stmt.Args == nil {
		stmt.Args = []any{}
	}
	stmt.NamedArgs = r.named
	return stmt, nil
}

type renderer struct {
	dialect            DialectName
	placeholderOffset  int
	placeholderCounter int
	params             map[string]filter.Parameter
	args               []any
	named              map[string]any
	// namedOrder lists named keys in binding order, for rollback.
	namedOrder []string
	// lenient renders unbound parameters instead of failing.
	lenient bool
}

type renderResult struct {
	sql           string
	trivial       bool
	unsatisfiable bool
}

func newRenderer(opts RenderOptions, params []filter.Parameter) *renderer {
	r := &renderer{
		dialect:           opts.Dialect,
		placeholderOffset: opts.PlaceholderOffset,
		params:            make(map[string]filter.Parameter, len(params)),
	}
	for _, p := range params {
		r.params[p.Name] = p
	}
	if r.dialect.named() {
		r.named = map[string]any{}
	}
	return r
}

func (r *renderer) renderExpr(expr filter.Expr) (renderResult, error) {
	switch e := expr.(type) {
	case *filter.Junction:
		return r.renderJunction(e)
	case *filter.Literal:
		return renderLiteral(e.SQL), nil
	case *filter.Comparison:
		return r.renderComparison(e)
	default:
		return renderResult{}, fmt.Errorf("unsupported expression type %T", expr)
	}
}

func renderLiteral(sql string) renderResult {
	switch strings.ReplaceAll(strings.TrimSpace(sql), " ", "") {
	case "1=1", "":
		return renderResult{trivial: true}
	case "1=0":
		return renderResult{sql: "1 = 0", unsatisfiable: true}
	default:
		return renderResult{sql: "(" + strings.TrimSpace(sql) + ")"}
	}
}

func (r *renderer) renderJunction(j *filter.Junction) (renderResult, error) {
	if len(j.Parts) == 0 {
		return renderLiteral(j.Seed), nil
	}

	start := r.mark()
	rendered := make([]renderResult, 0, len(j.Parts))
	for _, part := range j.Parts {
		m := r.mark()
		result, err := r.renderExpr(part)
		if err != nil {
			return renderResult{}, err
		}
		// Folded parts leave no SQL, so they must leave no args either.
		if result.trivial || result.unsatisfiable {
			r.reset(m)
		}
		rendered = append(rendered, result)
	}

	var combined renderResult
	if j.Type == filter.JunctionOr {
		combined = combineOrAll(rendered)
	} else {
		combined = combineAndAll(rendered)
	}
	if combined.trivial || combined.unsatisfiable {
		r.reset(start)
	}
	return combined, nil
}

type argMark struct {
	args    int
	counter int
	named   int
}

func (r *renderer) mark() argMark {
	return argMark{args: len(r.args), counter: r.placeholderCounter, named: len(r.namedOrder)}
}

func (r *renderer) reset(m argMark) {
	r.args = r.args[:m.args]
	r.placeholderCounter = m.counter
	for _, name := range r.namedOrder[m.named:] {
		delete(r.named, name)
	}
	r.namedOrder = r.namedOrder[:m.named]
}

func combineAndAll(conds []renderResult) renderResult {
	filtered := make([]renderResult, 0, len(conds))
	for _, cond := range conds {
		if cond.unsatisfiable {
			return renderResult{sql: "1 = 0", unsatisfiable: true}
		}
		if cond.trivial {
			continue
		}
		filtered = append(filtered, cond)
	}

	switch len(filtered) {
	case 0:
		return renderResult{trivial: true}
	case 1:
		return filtered[0]
	default:
		parts := make([]string, 0, len(filtered))
		for _, cond := range filtered {
			parts = append(parts, cond.sql)
		}
		return renderResult{sql: fmt.Sprintf("(%s)", strings.Join(parts, " AND "))}
	}
}

func combineOrAll(conds []renderResult) renderResult {
	filtered := make([]renderResult, 0, len(conds))
	for _, cond := range conds {
		if cond.trivial {
			return renderResult{trivial: true}
		}
		if cond.unsatisfiable {
			continue
		}
		filtered = append(filtered, cond)
	}

	switch len(filtered) {
	case 0:
		return renderResult{sql: "1 = 0", unsatisfiable: true}
	case 1:
		return filtered[0]
	default:
		parts := make([]string, 0, len(filtered))
		for _, cond := range filtered {
			parts = append(parts, cond.sql)
		}
		return renderResult{sql: fmt.Sprintf("(%s)", strings.Join(parts, " OR "))}
	}
}

var comparisonSQL = map[filter.ExprFn]string{
	filter.ExprEq:      "=",
	filter.ExprNeq:     "<>",
	filter.ExprLt:      "<",
	filter.ExprLte:     "<=",
	filter.ExprGt:      ">",
	filter.ExprGte:     ">=",
	filter.ExprLike:    "LIKE",
	filter.ExprNotLike: "NOT LIKE",
}

func (r *renderer) renderComparison(c *filter.Comparison) (renderResult, error) {
	switch c.Fn {
	case filter.ExprIsNull:
		return renderResult{sql: c.Column + " IS NULL"}, nil
	case filter.ExprIsNotNull:
		return renderResult{sql: c.Column + " IS NOT NULL"}, nil
	case filter.ExprIn, filter.ExprNotIn:
		return r.renderSet(c)
	}

	op, ok := comparisonSQL[c.Fn]
	if !ok {
		return renderResult{}, fmt.Errorf("unsupported comparison %s", c.Fn)
	}

	param, err := r.param(c.Param)
	if err != nil {
		return renderResult{}, err
	}
	placeholder := r.addArg(c.Param, param.Value)

	sql := fmt.Sprintf("%s %s %s", c.Column, op, placeholder)
	if r.dialect == DialectSQLite && (c.Fn == filter.ExprLike || c.Fn == filter.ExprNotLike) {
		sql += ` ESCAPE '\'`
	}
	return renderResult{sql: sql}, nil
}

func (r *renderer) renderSet(c *filter.Comparison) (renderResult, error) {
	param, err := r.param(c.Param)
	if err != nil {
		return renderResult{}, err
	}
	list, _ := toList(param.Value)

	switch r.dialect {
	case DialectNamed:
		r.bindNamed(c.Param, param.Value)
		if c.Fn == filter.ExprNotIn {
			return renderResult{sql: fmt.Sprintf("%s NOT IN (:%s)", c.Column, c.Param)}, nil
		}
		return renderResult{sql: fmt.Sprintf("%s IN (:%s)", c.Column, c.Param)}, nil

	case DialectPostgresNamedArgs:
		typed, err := typedList(param, list)
		if err != nil {
			return renderResult{}, err
		}
		placeholder := r.addArg(c.Param, typed)
		if c.Fn == filter.ExprNotIn {
			return renderResult{sql: fmt.Sprintf("%s <> ALL(%s)", c.Column, placeholder)}, nil
		}
		return renderResult{sql: fmt.Sprintf("%s = ANY(%s)", c.Column, placeholder)}, nil
	}

	if len(list) == 0 {
		if c.Fn == filter.ExprNotIn {
			return renderResult{trivial: true}, nil
		}
		return renderResult{sql: "1 = 0", unsatisfiable: true}, nil
	}

	placeholders := make([]string, 0, len(list))
	for _, v := range list {
		placeholders = append(placeholders, r.addArg(c.Param, v))
	}
	op := "IN"
	if c.Fn == filter.ExprNotIn {
		op = "NOT IN"
	}
	return renderResult{sql: fmt.Sprintf("%s %s (%s)", c.Column, op, strings.Join(placeholders, ","))}, nil
}

func (r *renderer) param(name string) (filter.Parameter, error) {
	p, ok := r.params[name]
	if !ok {
		if r.lenient {
			return filter.Parameter{Name: name}, nil
		}
		return filter.Parameter{}, fmt.Errorf("missing parameter %q", name)
	}
	return p, nil
}

func (r *renderer) addArg(name string, value any) string {
	switch r.dialect {
	case DialectPostgresNamedArgs:
		r.bindNamed(name, value)
		return "@" + name
	case DialectNamed:
		r.bindNamed(name, value)
		return ":" + name
	case DialectPostgres:
		r.placeholderCounter++
		r.args = append(r.args, value)
		return fmt.Sprintf("$%d", r.placeholderOffset+r.placeholderCounter)
	default:
		r.placeholderCounter++
		r.args = append(r.args, value)
		return "?"
	}
}

func (r *renderer) bindNamed(name string, value any) {
	if r.named == nil {
		return
	}
	if _, ok := r.named[name]; !ok {
		r.namedOrder = append(r.namedOrder, name)
	}
	r.named[name] = value
}

func toList(value any) ([]any, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case []any:
		return v, true
	default:
		list, err := cast.ToSliceE(value)
		if err != nil {
			return nil, false
		}
		return list, true
	}
}

// typedList converts a list parameter to the slice type its hint names, so
// pgx encodes it as a Postgres array.
func typedList(p filter.Parameter, list []any) (any, error) {
	switch p.Type {
	case filter.ParamIntegerList:
		out := make([]int64, 0, len(list))
		for _, v := range list {
			n, err := cast.ToInt64E(v)
			if err != nil {
				return nil, fmt.Errorf("parameter %q expects integer values: %w", p.Name, err)
			}
			out = append(out, n)
		}
		return out, nil
	default:
		out := make([]string, 0, len(list))
		for _, v := range list {
			s, err := cast.ToStringE(v)
			if err != nil {
				return nil, fmt.Errorf("parameter %q expects string values: %w", p.Name, err)
			}
			out = append(out, s)
		}
		return out, nil
	}
}
