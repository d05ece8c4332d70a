package sqlstmt

import (
	"github.com/fy0/searchclause/filter"
)

// CompositeExpression is an immutable list of predicates joined by Type.
type CompositeExpression struct {
	Type  filter.JunctionType
	Parts []filter.Expr
}

// And returns an AND composite of parts.
func And(parts ...filter.Expr) CompositeExpression {
	return CompositeExpression{Type: filter.JunctionAnd}.With(parts...)
}

// Or returns an OR composite of parts.
func Or(parts ...filter.Expr) CompositeExpression {
	return CompositeExpression{Type: filter.JunctionOr}.With(parts...)
}

// With returns a copy of c with parts appended. Nil parts are skipped.
func (c CompositeExpression) With(parts ...filter.Expr) CompositeExpression {
	out := CompositeExpression{Type: c.Type, Parts: make([]filter.Expr, 0, len(c.Parts)+len(parts))}
	out.Parts = append(out.Parts, c.Parts...)
	for _, p := range parts {
		if p == nil {
			continue
		}
		out.Parts = append(out.Parts, p)
	}
	return out
}

// Count returns the number of parts.
func (c CompositeExpression) Count() int {
	return len(c.Parts)
}

// Expr converts c into a predicate usable as a part of another expression.
func (c CompositeExpression) Expr() filter.Expr {
	j := &filter.Junction{Type: c.Type, Seed: "1=1"}
	if c.Type == filter.JunctionOr {
		j.Seed = "1=0"
	}
	return j.With(c.Parts...)
}

// String renders c with `:name` placeholders. Parameters are not resolved.
func (c CompositeExpression) String() string {
	r := newRenderer(RenderOptions{Dialect: DialectNamed}, nil)
	r.lenient = true
	result, err := r.renderExpr(c.Expr())
	if err != nil {
		return ""
	}
	switch {
	case result.unsatisfiable:
		return "1 = 0"
	case result.trivial:
		return ""
	default:
		return result.sql
	}
}
