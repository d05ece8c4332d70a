// Package goqubuilder applies compiled search clauses to a goqu SelectDataset.
//
// goqu datasets are immutable and have no orWhere, so Builder records the
// andWhere/orWhere instructions and folds them into one expression when the
// dataset is requested.
package goqubuilder

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/spf13/cast"

	"github.com/fy0/searchclause/filter"
)

// Builder implements filter.Builder on top of a goqu SelectDataset.
type Builder struct {
	base    *goqu.SelectDataset
	dialect string
	where   exp.Expression
	parts   []filter.WherePart
	params  map[string]filter.Parameter
	orderBy []filter.Sort
}

var _ filter.Builder = (*Builder)(nil)

// New wraps ds. The WHERE and ORDER BY clauses already on ds are kept: the
// existing predicate becomes the start of the accumulation and the existing
// ordering is reported by OrderBy.
func New(ds *goqu.SelectDataset) *Builder {
	b := &Builder{params: map[string]filter.Parameter{}, dialect: ds.Dialect().Dialect()}
	clauses := ds.GetClauses()

	if w := clauses.Where(); w != nil && !w.IsEmpty() {
		b.where = w
	}
	if order := clauses.Order(); order != nil {
		for _, col := range order.Columns() {
			if oe, ok := col.(exp.OrderedExpression); ok {
				b.orderBy = append(b.orderBy, sortFromOrdered(oe))
			}
		}
	}

	b.base = ds.ClearWhere().ClearOrder()
	return b
}

func (b *Builder) AndWhere(expr filter.Expr) {
	if expr != nil {
		b.parts = append(b.parts, filter.WherePart{Conjunction: filter.JunctionAnd, Expr: expr})
	}
}

func (b *Builder) OrWhere(expr filter.Expr) {
	if expr != nil {
		b.parts = append(b.parts, filter.WherePart{Conjunction: filter.JunctionOr, Expr: expr})
	}
}

func (b *Builder) SetParameter(param filter.Parameter) {
	b.params[param.Name] = param
}

func (b *Builder) AddOrderBy(sort filter.Sort) {
	b.orderBy = append(b.orderBy, sort)
}

func (b *Builder) OrderBy() []filter.Sort {
	return append([]filter.Sort(nil), b.orderBy...)
}

func (b *Builder) ResetOrderBy() {
	b.orderBy = nil
}

// Dataset returns the wrapped dataset with the accumulated WHERE and ORDER BY
// applied.
func (b *Builder) Dataset() (*goqu.SelectDataset, error) {
	ds := b.base

	where := b.where
	for _, part := range b.parts {
		e, err := b.translate(part.Expr)
		if err != nil {
			return nil, err
		}
		switch {
		case where == nil:
			where = e
		case part.Conjunction == filter.JunctionOr:
			where = goqu.Or(where, e)
		default:
			where = goqu.And(where, e)
		}
	}
	if where != nil {
		ds = ds.Where(where)
	}

	if len(b.orderBy) > 0 {
		order := make([]exp.OrderedExpression, 0, len(b.orderBy))
		for _, s := range b.orderBy {
			order = append(order, orderedExpression(s))
		}
		ds = ds.Order(order...)
	}
	return ds, nil
}

func (b *Builder) translate(expr filter.Expr) (exp.Expression, error) {
	switch e := expr.(type) {
	case *filter.Junction:
		if len(e.Parts) == 0 {
			return goqu.L(e.Seed), nil
		}
		parts := make([]exp.Expression, 0, len(e.Parts))
		for _, p := range e.Parts {
			t, err := b.translate(p)
			if err != nil {
				return nil, err
			}
			parts = append(parts, t)
		}
		if e.Type == filter.JunctionOr {
			return goqu.Or(parts...), nil
		}
		return goqu.And(parts...), nil
	case *filter.Literal:
		return goqu.L(e.SQL), nil
	case *filter.Comparison:
		return b.comparison(e)
	default:
		return nil, fmt.Errorf("unsupported expression type %T", expr)
	}
}

// operand is what goqu.I and goqu.L have in common.
type operand interface {
	exp.Comparable
	exp.Inable
	exp.Likeable
	exp.Isable
	exp.Orderable
}

func (b *Builder) comparison(c *filter.Comparison) (exp.Expression, error) {
	col := column(c.Column)
	switch c.Fn {
	case filter.ExprIsNull:
		return col.IsNull(), nil
	case filter.ExprIsNotNull:
		return col.IsNotNull(), nil
	}

	p, ok := b.params[c.Param]
	if !ok {
		return nil, fmt.Errorf("missing parameter %q", c.Param)
	}

	switch c.Fn {
	case filter.ExprEq:
		return col.Eq(p.Value), nil
	case filter.ExprNeq:
		return col.Neq(p.Value), nil
	case filter.ExprLt:
		return col.Lt(p.Value), nil
	case filter.ExprLte:
		return col.Lte(p.Value), nil
	case filter.ExprGt:
		return col.Gt(p.Value), nil
	case filter.ExprGte:
		return col.Gte(p.Value), nil
	case filter.ExprLike, filter.ExprNotLike:
		return b.like(col, c.Fn == filter.ExprNotLike, cast.ToString(p.Value)), nil
	case filter.ExprIn, filter.ExprNotIn:
		list, err := typedList(p)
		if err != nil {
			return nil, err
		}
		if list == nil {
			// goqu renders an empty IN list as invalid SQL.
			if c.Fn == filter.ExprNotIn {
				return goqu.L("1=1"), nil
			}
			return goqu.L("1=0"), nil
		}
		if c.Fn == filter.ExprNotIn {
			return col.NotIn(list), nil
		}
		return col.In(list), nil
	default:
		return nil, fmt.Errorf("unsupported comparison %s", c.Fn)
	}
}

// like matches col against a pattern whose wildcards are escaped with `\`.
// SQLite has no default escape character, so it is spelled out there.
func (b *Builder) like(col operand, negate bool, pattern string) exp.Expression {
	if b.dialect == "sqlite3" {
		op := "LIKE"
		if negate {
			op = "NOT LIKE"
		}
		return goqu.L("(? "+op+" ? ESCAPE '\\')", col, pattern)
	}
	if negate {
		return col.NotLike(pattern)
	}
	return col.Like(pattern)
}

// column maps a mapped column to a goqu operand. Dotted identifier paths are
// quoted; anything else, such as YEAR(d.date), is used verbatim.
func column(name string) operand {
	if isIdentifierPath(name) {
		return goqu.I(name)
	}
	return goqu.L(name)
}

func isIdentifierPath(name string) bool {
	if name == "" {
		return false
	}
	for _, seg := range strings.Split(name, ".") {
		if seg == "" || unicode.IsDigit(rune(seg[0])) {
			return false
		}
		for _, r := range seg {
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				return false
			}
		}
	}
	return true
}

// typedList returns the list parameter as []int64 or []string following its
// type hint, or nil when it is empty.
func typedList(p filter.Parameter) (any, error) {
	list, err := cast.ToSliceE(p.Value)
	if err != nil {
		return nil, fmt.Errorf("parameter %q is not a list: %w", p.Name, err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	if p.Type == filter.ParamIntegerList {
		out := make([]int64, 0, len(list))
		for _, v := range list {
			n, err := cast.ToInt64E(v)
			if err != nil {
				return nil, fmt.Errorf("parameter %q expects integer values: %w", p.Name, err)
			}
			out = append(out, n)
		}
		return out, nil
	}
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

func orderedExpression(s filter.Sort) exp.OrderedExpression {
	if oe, ok := s.Expr.(exp.OrderedExpression); ok {
		return oe
	}
	col := column(s.Field)
	if strings.EqualFold(s.Direction, filter.Desc) {
		return col.Desc()
	}
	return col.Asc()
}

func sortFromOrdered(oe exp.OrderedExpression) filter.Sort {
	s := filter.Sort{Direction: filter.Asc, Expr: oe}
	if !oe.IsAsc() {
		s.Direction = filter.Desc
	}
	switch se := oe.SortExpression().(type) {
	case exp.IdentifierExpression:
		s.Field = fmt.Sprint(se.GetCol())
		if t := se.GetTable(); t != "" {
			s.Field = t + "." + s.Field
		}
	case exp.LiteralExpression:
		s.Field = se.Literal()
	}
	return s
}
