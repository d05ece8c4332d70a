package filter

// ExprFn names the predicate a clause entry renders to.
type ExprFn string

const (
	ExprEq        ExprFn = "eq"
	ExprNeq       ExprFn = "neq"
	ExprIn        ExprFn = "in"
	ExprNotIn     ExprFn = "notIn"
	ExprLt        ExprFn = "lt"
	ExprLte       ExprFn = "lte"
	ExprGt        ExprFn = "gt"
	ExprGte       ExprFn = "gte"
	ExprLike      ExprFn = "like"
	ExprNotLike   ExprFn = "notLike"
	ExprIsNull    ExprFn = "isNull"
	ExprIsNotNull ExprFn = "isNotNull"
)

// IsSet reports whether fn takes a whole list as a single parameter.
func (fn ExprFn) IsSet() bool {
	return fn == ExprIn || fn == ExprNotIn
}

// IsNullCheck reports whether fn renders without a bound parameter.
func (fn ExprFn) IsNullCheck() bool {
	return fn == ExprIsNull || fn == ExprIsNotNull
}

// Negated reports whether fn is the negative form of a comparison.
func (fn ExprFn) Negated() bool {
	switch fn {
	case ExprNeq, ExprNotIn, ExprNotLike, ExprIsNotNull:
		return true
	default:
		return false
	}
}
