package filter

// Builder is the query-builder capability the compiled clause is applied to.
//
// AndWhere and OrWhere attach a predicate to everything accumulated so far,
// the way a DBAL query builder does: `(prev) AND x` and `(prev) OR x`.
type Builder interface {
	AndWhere(expr Expr)
	OrWhere(expr Expr)
	SetParameter(param Parameter)

	AddOrderBy(sort Sort)
	OrderBy() []Sort
	ResetOrderBy()
}

// WherePart is one andWhere/orWhere instruction.
type WherePart struct {
	Conjunction JunctionType
	Expr        Expr
}

// Compiled is the accumulated output of a compilation: the predicates in
// emission order and every parameter they reference.
type Compiled struct {
	Parts  []WherePart
	Params []Parameter
}

// Empty reports whether nothing was emitted.
func (c *Compiled) Empty() bool {
	return c == nil || len(c.Parts) == 0
}

// Parameter returns the parameter bound under name.
func (c *Compiled) Parameter(name string) (Parameter, bool) {
	if c == nil {
		return Parameter{}, false
	}
	for _, p := range c.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// ApplyTo replays the compiled clause onto b.
func (c *Compiled) ApplyTo(b Builder) {
	if c == nil {
		return
	}
	for _, p := range c.Params {
		b.SetParameter(p)
	}
	for _, part := range c.Parts {
		if part.Conjunction == JunctionOr {
			b.OrWhere(part.Expr)
			continue
		}
		b.AndWhere(part.Expr)
	}
}

func (c *Compiled) bind(name string, value any, typ ParamType) {
	c.Params = append(c.Params, Parameter{Name: name, Value: value, Type: typ})
}
