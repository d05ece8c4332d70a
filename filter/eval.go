package filter

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Match evaluates the compiled clause against one row, keyed by column
// expression, following SQL semantics: comparisons involving NULL are false
// and LIKE is case-insensitive with `\` escaping wildcards.
//
// andWhere/orWhere parts are folded left to right the way a query builder
// accumulates them.
func (c *Compiled) Match(record map[string]any) (bool, error) {
	if c.Empty() {
		return true, nil
	}
	if record == nil {
		record = map[string]any{}
	}

	var (
		acc     bool
		started bool
	)
	for _, part := range c.Parts {
		ok, err := c.evalExpr(part.Expr, record)
		if err != nil {
			return false, err
		}
		switch {
		case !started:
			acc = ok
			started = true
		case part.Conjunction == JunctionOr:
			acc = acc || ok
		default:
			acc = acc && ok
		}
	}
	return acc, nil
}

func (c *Compiled) evalExpr(expr Expr, record map[string]any) (bool, error) {
	switch e := expr.(type) {
	case *Junction:
		if len(e.Parts) == 0 {
			return e.Type == JunctionAnd, nil
		}
		for _, part := range e.Parts {
			ok, err := c.evalExpr(part, record)
			if err != nil {
				return false, err
			}
			if e.Type == JunctionOr && ok {
				return true, nil
			}
			if e.Type == JunctionAnd && !ok {
				return false, nil
			}
		}
		return e.Type == JunctionAnd, nil

	case *Literal:
		switch strings.ReplaceAll(e.SQL, " ", "") {
		case seedAnd:
			return true, nil
		case seedOr:
			return false, nil
		default:
			return false, fmt.Errorf("literal %q does not support in-memory evaluation", e.SQL)
		}

	case *Comparison:
		return c.evalComparison(e, record)

	default:
		return false, fmt.Errorf("unsupported expression type %T", expr)
	}
}

func (c *Compiled) evalComparison(cmp *Comparison, record map[string]any) (bool, error) {
	left, ok := record[cmp.Column]
	if !ok {
		return false, fmt.Errorf("missing value for column %q", cmp.Column)
	}
	left = coerceBool(left)

	switch cmp.Fn {
	case ExprIsNull:
		return left == nil, nil
	case ExprIsNotNull:
		return left != nil, nil
	}

	param, ok := c.Parameter(cmp.Param)
	if !ok {
		return false, fmt.Errorf("missing parameter %q", cmp.Param)
	}
	if left == nil {
		return false, nil
	}

	switch cmp.Fn {
	case ExprIn, ExprNotIn:
		list, _ := toAnySlice(param.Value)
		found := false
		for _, v := range list {
			if equalsLoose(left, v) {
				found = true
				break
			}
		}
		return found != cmp.Fn.Negated(), nil
	case ExprLike, ExprNotLike:
		matched, err := likeMatch(cast.ToString(left), cast.ToString(param.Value))
		if err != nil {
			return false, err
		}
		return matched != cmp.Fn.Negated(), nil
	case ExprEq:
		return equalsLoose(left, param.Value), nil
	case ExprNeq:
		if param.Value == nil {
			return false, nil
		}
		return !equalsLoose(left, param.Value), nil
	case ExprLt, ExprLte, ExprGt, ExprGte:
		if param.Value == nil {
			return false, nil
		}
		order, err := compareOrdered(left, param.Value)
		if err != nil {
			return false, fmt.Errorf("column %q: %w", cmp.Column, err)
		}
		switch cmp.Fn {
		case ExprLt:
			return order < 0, nil
		case ExprLte:
			return order <= 0, nil
		case ExprGt:
			return order > 0, nil
		default:
			return order >= 0, nil
		}
	default:
		return false, fmt.Errorf("unsupported comparison %s", cmp.Fn)
	}
}

func equalsLoose(left, right any) bool {
	left, right = coerceBool(left), coerceBool(right)
	if left == nil || right == nil {
		return false
	}
	order, err := compareOrdered(left, right)
	return err == nil && order == 0
}

func compareOrdered(left, right any) (int, error) {
	_, lt := left.(time.Time)
	_, rt := right.(time.Time)
	if lt || rt {
		l, err := cast.ToTimeE(left)
		if err != nil {
			return 0, fmt.Errorf("comparison expects time values: %w", err)
		}
		r, err := cast.ToTimeE(right)
		if err != nil {
			return 0, fmt.Errorf("comparison expects time values: %w", err)
		}
		return l.Compare(r), nil
	}

	ls, lok := left.(string)
	rs, rok := right.(string)
	if lok && rok {
		return strings.Compare(ls, rs), nil
	}

	l, err := cast.ToFloat64E(left)
	if err != nil {
		if lok || rok {
			return strings.Compare(cast.ToString(left), cast.ToString(right)), nil
		}
		return 0, fmt.Errorf("comparison expects numeric values: %w", err)
	}
	r, err := cast.ToFloat64E(right)
	if err != nil {
		if lok || rok {
			return strings.Compare(cast.ToString(left), cast.ToString(right)), nil
		}
		return 0, fmt.Errorf("comparison expects numeric values: %w", err)
	}
	switch {
	case l < r:
		return -1, nil
	case l > r:
		return 1, nil
	default:
		return 0, nil
	}
}

// likeMatch reports whether s matches the SQL LIKE pattern.
func likeMatch(s, pattern string) (bool, error) {
	var re strings.Builder
	re.WriteString(`(?is)^`)
	escaped := false
	for _, ch := range pattern {
		switch {
		case escaped:
			re.WriteString(regexp.QuoteMeta(string(ch)))
			escaped = false
		case ch == '\\':
			escaped = true
		case ch == '%':
			re.WriteString(`.*`)
		case ch == '_':
			re.WriteString(`.`)
		default:
			re.WriteString(regexp.QuoteMeta(string(ch)))
		}
	}
	if escaped {
		re.WriteString(regexp.QuoteMeta(`\`))
	}
	re.WriteString(`$`)

	compiled, err := regexp.Compile(re.String())
	if err != nil {
		return false, fmt.Errorf("invalid LIKE pattern %q: %w", pattern, err)
	}
	return compiled.MatchString(s), nil
}
