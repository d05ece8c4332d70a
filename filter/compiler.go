package filter

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fy0/searchclause/searchkey"
)

// Compiler renders clause trees against a field mapping.
type Compiler struct {
	fields FieldMapping
	token  func() string
	logger *zap.Logger
}

// CompilerOption customizes a Compiler.
type CompilerOption func(*Compiler)

// WithTokenSource replaces the random token used in composite group
// radicals. Tests use it to get stable parameter names.
func WithTokenSource(fn func() string) CompilerOption {
	return func(c *Compiler) {
		if fn == nil {
			return
		}
		c.token = fn
	}
}

// WithCompilerLogger sets the logger used for skipped keys and groups.
func WithCompilerLogger(logger *zap.Logger) CompilerOption {
	return func(c *Compiler) {
		if logger == nil {
			return
		}
		c.logger = logger
	}
}

// NewCompiler builds a compiler for fields.
func NewCompiler(fields FieldMapping, opts ...CompilerOption) *Compiler {
	c := &Compiler{
		fields: fields,
		token:  searchkey.Token,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// Compile walks tree and returns the predicates and parameters to apply.
//
// Fields are emitted in mapping order, then composite groups in submission
// order. Keys missing from the mapping are dropped.
func (c *Compiler) Compile(tree *Tree) *Compiled {
	out := &Compiled{}
	if tree.Empty() {
		return out
	}

	c.logUnmapped(tree)

	for _, f := range c.fields {
		clauses, ok := tree.Fields[f.Key]
		if !ok {
			continue
		}
		for i, clause := range clauses {
			radical := fmt.Sprintf("%s_i%d", f.Key, i)
			out.Parts = append(out.Parts, WherePart{
				Conjunction: JunctionAnd,
				Expr:        c.predicate(out, f.Column, radical, clause),
			})
		}
	}

	for n, branch := range tree.Branches {
		shape, ok := compositeShapeOf(branch.Operator)
		if !ok {
			continue
		}
		radical := fmt.Sprintf("%s%d_%s", shape.radical, n+1, c.token())
		group := c.group(out, branch.Tree, radical, shape.junction)
		if group == nil {
			c.logger.Debug("composite group has no mapped field",
				zap.String("operator", string(branch.Operator)),
				zap.String("radical", radical))
			continue
		}
		out.Parts = append(out.Parts, WherePart{Conjunction: shape.conjunction, Expr: group})
	}

	return out
}

type compositeShape struct {
	radical     string
	conjunction JunctionType
	junction    JunctionType
}

// compositeShapeOf maps a composite operator to the way it is attached:
//
//	&|  ... AND (a OR b)
//	|   ... OR (a AND b)
//	&   ... AND (a AND b)
func compositeShapeOf(op searchkey.Operator) (compositeShape, bool) {
	switch op {
	case searchkey.OpAndOr:
		return compositeShape{radical: "ANDOR", conjunction: JunctionAnd, junction: JunctionOr}, true
	case searchkey.OpOr:
		return compositeShape{radical: "OR", conjunction: JunctionOr, junction: JunctionAnd}, true
	case searchkey.OpAnd:
		return compositeShape{radical: "AND", conjunction: JunctionAnd, junction: JunctionAnd}, true
	default:
		return compositeShape{}, false
	}
}

func (c *Compiler) group(out *Compiled, tree *Tree, radical string, typ JunctionType) Expr {
	if tree.Empty() {
		return nil
	}
	c.logUnmapped(tree)

	var j *Junction
	open := func() {
		if j != nil {
			return
		}
		if typ == JunctionOr {
			j = newOr()
		} else {
			j = newAnd()
		}
	}

	for _, f := range c.fields {
		clauses, ok := tree.Fields[f.Key]
		if !ok {
			continue
		}
		open()
		for i, clause := range clauses {
			name := fmt.Sprintf("%s_%s_i%d", radical, f.Key, i)
			j.With(c.predicate(out, f.Column, name, clause))
		}
	}

	for n, branch := range tree.Branches {
		shape, ok := compositeShapeOf(branch.Operator)
		if !ok {
			continue
		}
		child := c.group(out, branch.Tree, fmt.Sprintf("%s_%s%d", radical, shape.radical, n+1), shape.junction)
		if child == nil {
			continue
		}
		open()
		j.With(child)
	}

	if j == nil {
		return nil
	}
	return j
}

func (c *Compiler) predicate(out *Compiled, column, name string, clause Clause) Expr {
	list, isList := clause.Value.([]any)

	if isList && !clause.ExprFn.IsSet() {
		// One predicate per element, OR-ed.
		if len(list) == 0 {
			return &Literal{SQL: "1 = 0"}
		}
		or := newOr()
		for j, v := range list {
			param := fmt.Sprintf("%s_%d", name, j)
			out.bind(param, v, ParamScalar)
			or.With(&Comparison{Column: column, Fn: clause.ExprFn, Param: param})
		}
		return or
	}

	if clause.ExprFn.IsNullCheck() || clause.Value == NullSentinel {
		return &Comparison{Column: column, Fn: clause.ExprFn}
	}

	if clause.ExprFn.IsSet() {
		if len(list) == 0 {
			if clause.ExprFn == ExprNotIn {
				return &Literal{SQL: "1 = 1"}
			}
			return &Literal{SQL: "1 = 0"}
		}
		out.bind(name, list, listParamType(list))
		return &Comparison{Column: column, Fn: clause.ExprFn, Param: name}
	}

	out.bind(name, clause.Value, ParamScalar)
	return &Comparison{Column: column, Fn: clause.ExprFn, Param: name}
}

func (c *Compiler) logUnmapped(tree *Tree) {
	if !c.logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	for _, key := range tree.Keys() {
		if _, ok := c.fields.Column(key); !ok {
			c.logger.Debug("search key not mapped", zap.String("key", key))
		}
	}
}
