package filter

// Expr is a predicate emitted by the compiler.
type Expr interface {
	isExpr()
}

// Comparison applies Fn to Column and the parameter named Param.
//
// Param is empty for IS NULL / IS NOT NULL.
type Comparison struct {
	Column string
	Fn     ExprFn
	Param  string
}

func (*Comparison) isExpr() {}

// JunctionType is the connective of a Junction.
type JunctionType string

const (
	JunctionAnd JunctionType = "AND"
	JunctionOr  JunctionType = "OR"
)

// Junction joins its parts with Type.
//
// Seed is the predicate the group starts from: "1=1" for AND, "1=0" for OR.
// It is what an empty junction evaluates to.
type Junction struct {
	Type  JunctionType
	Seed  string
	Parts []Expr
}

func (*Junction) isExpr() {}

// With appends parts and returns the junction.
func (j *Junction) With(parts ...Expr) *Junction {
	for _, p := range parts {
		if p == nil {
			continue
		}
		j.Parts = append(j.Parts, p)
	}
	return j
}

// Literal is a raw SQL predicate.
type Literal struct {
	SQL string
}

func (*Literal) isExpr() {}

const (
	seedAnd = "1=1"
	seedOr  = "1=0"
)

func newAnd(parts ...Expr) *Junction {
	return (&Junction{Type: JunctionAnd, Seed: seedAnd}).With(parts...)
}

func newOr(parts ...Expr) *Junction {
	return (&Junction{Type: JunctionOr, Seed: seedOr}).With(parts...)
}

// ParamType tells a backend how to bind a parameter.
type ParamType int

const (
	ParamScalar ParamType = iota
	ParamIntegerList
	ParamStringList
)

func (t ParamType) String() string {
	switch t {
	case ParamIntegerList:
		return "integer[]"
	case ParamStringList:
		return "string[]"
	default:
		return "scalar"
	}
}

// Parameter is a bound value.
type Parameter struct {
	Name  string
	Value any
	Type  ParamType
}

// listParamType picks the element type of a list parameter from its first
// element.
func listParamType(list []any) ParamType {
	if len(list) > 0 && isInteger(list[0]) {
		return ParamIntegerList
	}
	return ParamStringList
}
