package sqlstmt

import (
	"github.com/fy0/searchclause/filter"
)

// Query accumulates the WHERE and ORDER BY parts of a SELECT.
//
// Query implements filter.Builder. Predicates accumulate like a DBAL query
// builder: AndWhere on an OR-ed where yields `(prev) AND x`.
type Query struct {
	base    string
	where   *CompositeExpression
	params  []filter.Parameter
	orderBy []filter.Sort
}

var _ filter.Builder = (*Query)(nil)

// NewQuery starts a query from base, the SELECT ... FROM ... part.
func NewQuery(base string) *Query {
	return &Query{base: base}
}

// Where adds a raw SQL predicate with AND.
func (q *Query) Where(sql string) *Query {
	q.AndWhere(&filter.Literal{SQL: sql})
	return q
}

// OrderByTerm appends an ORDER BY term.
func (q *Query) OrderByTerm(field, direction string) *Query {
	q.AddOrderBy(filter.Sort{Field: field, Direction: direction})
	return q
}

func (q *Query) AndWhere(expr filter.Expr) {
	q.addWhere(filter.JunctionAnd, expr)
}

func (q *Query) OrWhere(expr filter.Expr) {
	q.addWhere(filter.JunctionOr, expr)
}

func (q *Query) addWhere(typ filter.JunctionType, expr filter.Expr) {
	if expr == nil {
		return
	}
	var next CompositeExpression
	switch {
	case q.where == nil:
		next = CompositeExpression{Type: typ}.With(expr)
	case q.where.Type == typ || q.where.Count() == 1:
		next = q.where.With(expr)
		next.Type = typ
	default:
		next = CompositeExpression{Type: typ}.With(q.where.Expr(), expr)
	}
	q.where = &next
}

// SetParameter binds param, replacing a parameter of the same name.
func (q *Query) SetParameter(param filter.Parameter) {
	for i, p := range q.params {
		if p.Name == param.Name {
			q.params[i] = param
			return
		}
	}
	q.params = append(q.params, param)
}

// Parameter returns the parameter bound under name.
func (q *Query) Parameter(name string) (filter.Parameter, bool) {
	for _, p := range q.params {
		if p.Name == name {
			return p, true
		}
	}
	return filter.Parameter{}, false
}

// Parameters returns the bound parameters in binding order.
func (q *Query) Parameters() []filter.Parameter {
	return append([]filter.Parameter(nil), q.params...)
}

// WhereExpr returns the accumulated predicate, or nil.
func (q *Query) WhereExpr() filter.Expr {
	if q.where == nil {
		return nil
	}
	return q.where.Expr()
}

func (q *Query) AddOrderBy(sort filter.Sort) {
	if sort.Field == "" {
		return
	}
	q.orderBy = append(q.orderBy, sort)
}

func (q *Query) OrderBy() []filter.Sort {
	return append([]filter.Sort(nil), q.orderBy...)
}

func (q *Query) ResetOrderBy() {
	q.orderBy = nil
}
