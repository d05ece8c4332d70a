package filter

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
	exprv1 "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// ParseCEL builds a Search from a CEL boolean expression over keys.
//
//	status == "open" && (priority >= 3 || owner == null)
//
// `&&` chains become sibling criteria, `||` becomes an AND-OR group whose
// `&&` members are nested OR groups. Supported predicates are the six
// comparisons, `in` lists, contains, startsWith, endsWith and their negation.
func ParseCEL(expr string, keys ...string) (Search, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("filter expression is empty")
	}

	opts := make([]cel.EnvOption, 0, len(keys))
	for _, k := range keys {
		opts = append(opts, cel.Variable(k, cel.DynType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile filter: %w", issues.Err())
	}
	parsed, err := cel.AstToParsedExpr(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to convert AST: %w", err)
	}

	criteria, err := buildCriteria(parsed.GetExpr())
	if err != nil {
		return nil, err
	}
	return Search(criteria), nil
}

func buildCriteria(expr *exprv1.Expr) ([]Criterion, error) {
	call := expr.GetCallExpr()
	if call == nil {
		return nil, fmt.Errorf("unsupported top-level expression")
	}

	switch call.Function {
	case "_&&_":
		var out []Criterion
		for _, arg := range call.Args {
			sub, err := buildCriteria(arg)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		}
		return out, nil

	case "_||_":
		var members []Criterion
		for _, arg := range flattenOr(expr) {
			sub, err := buildCriteria(arg)
			if err != nil {
				return nil, err
			}
			if len(sub) == 1 {
				members = append(members, sub[0])
				continue
			}
			members = append(members, Or(sub...))
		}
		return []Criterion{AndOr(members...)}, nil

	case "!_":
		if len(call.Args) != 1 {
			return nil, fmt.Errorf("logical NOT expects one argument")
		}
		c, err := buildNegated(call.Args[0])
		if err != nil {
			return nil, err
		}
		return []Criterion{c}, nil

	default:
		c, err := buildPredicate(call)
		if err != nil {
			return nil, err
		}
		return []Criterion{c}, nil
	}
}

func flattenOr(expr *exprv1.Expr) []*exprv1.Expr {
	call := expr.GetCallExpr()
	if call == nil || call.Function != "_||_" {
		return []*exprv1.Expr{expr}
	}
	var out []*exprv1.Expr
	for _, arg := range call.Args {
		out = append(out, flattenOr(arg)...)
	}
	return out
}

func buildPredicate(call *exprv1.Expr_Call) (Criterion, error) {
	switch call.Function {
	case "_==_", "_!=_", "_<_", "_>_", "_<=_", "_>=_":
		return buildComparison(call)

	case "@in":
		key, list, err := inArgs(call)
		if err != nil {
			return nil, err
		}
		return Equal(key, list), nil

	case "contains":
		key, s, err := stringCallArgs(call)
		if err != nil {
			return nil, err
		}
		return Like(key, s), nil

	case "startsWith":
		key, s, err := stringCallArgs(call)
		if err != nil {
			return nil, err
		}
		return LikeStrict(key, EscapeLike(s)+"%"), nil

	case "endsWith":
		key, s, err := stringCallArgs(call)
		if err != nil {
			return nil, err
		}
		return LikeStrict(key, "%"+EscapeLike(s)), nil

	default:
		return nil, fmt.Errorf("unsupported call expression %q", call.Function)
	}
}

func buildNegated(expr *exprv1.Expr) (Criterion, error) {
	call := expr.GetCallExpr()
	if call == nil {
		return nil, fmt.Errorf("logical NOT only supports in, contains, startsWith and endsWith")
	}
	switch call.Function {
	case "@in":
		key, list, err := inArgs(call)
		if err != nil {
			return nil, err
		}
		return NotEqual(key, list), nil
	case "contains":
		key, s, err := stringCallArgs(call)
		if err != nil {
			return nil, err
		}
		return NotLike(key, s), nil
	case "startsWith":
		key, s, err := stringCallArgs(call)
		if err != nil {
			return nil, err
		}
		return NotLikeStrict(key, EscapeLike(s)+"%"), nil
	case "endsWith":
		key, s, err := stringCallArgs(call)
		if err != nil {
			return nil, err
		}
		return NotLikeStrict(key, "%"+EscapeLike(s)), nil
	default:
		return nil, fmt.Errorf("logical NOT only supports in, contains, startsWith and endsWith")
	}
}

var flippedComparison = map[string]string{
	"_<_":  "_>_",
	"_>_":  "_<_",
	"_<=_": "_>=_",
	"_>=_": "_<=_",
}

func buildComparison(call *exprv1.Expr_Call) (Criterion, error) {
	if len(call.Args) != 2 {
		return nil, fmt.Errorf("comparison expects two arguments")
	}

	fn := call.Function
	left, right := call.Args[0], call.Args[1]
	if left.GetIdentExpr() == nil && right.GetIdentExpr() != nil {
		left, right = right, left
		if flipped, ok := flippedComparison[fn]; ok {
			fn = flipped
		}
	}

	ident := left.GetIdentExpr()
	if ident == nil {
		return nil, fmt.Errorf("comparison must reference a field")
	}
	key := ident.GetName()

	value, err := getConstValue(right)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", key, err)
	}

	switch fn {
	case "_==_":
		if value == nil {
			return Null(key), nil
		}
		return Equal(key, value), nil
	case "_!=_":
		if value == nil {
			return NotNull(key), nil
		}
		return NotEqual(key, value), nil
	}

	if value == nil {
		return nil, fmt.Errorf("field %q: operator %s not supported for null comparison", key, fn)
	}
	switch fn {
	case "_<_":
		return Lower(key, value), nil
	case "_<=_":
		return LowerOrEqual(key, value), nil
	case "_>_":
		return Greater(key, value), nil
	default:
		return GreaterOrEqual(key, value), nil
	}
}

func inArgs(call *exprv1.Expr_Call) (string, []any, error) {
	if len(call.Args) != 2 {
		return "", nil, fmt.Errorf("in expects two arguments")
	}
	ident := call.Args[0].GetIdentExpr()
	if ident == nil {
		return "", nil, fmt.Errorf("in must test a field")
	}
	listExpr := call.Args[1].GetListExpr()
	if listExpr == nil {
		return "", nil, fmt.Errorf("field %q: in expects a list literal", ident.GetName())
	}

	values := make([]any, 0, len(listExpr.Elements))
	for _, elem := range listExpr.Elements {
		v, err := getConstValue(elem)
		if err != nil {
			return "", nil, fmt.Errorf("field %q: %w", ident.GetName(), err)
		}
		values = append(values, v)
	}
	return ident.GetName(), values, nil
}

func stringCallArgs(call *exprv1.Expr_Call) (string, string, error) {
	if call.Target == nil || len(call.Args) != 1 {
		return "", "", fmt.Errorf("%s() expects a field receiver and one argument", call.Function)
	}
	ident := call.Target.GetIdentExpr()
	if ident == nil {
		return "", "", fmt.Errorf("%s() receiver must be a field", call.Function)
	}
	v, err := getConstValue(call.Args[0])
	if err != nil {
		return "", "", fmt.Errorf("%s(): %w", call.Function, err)
	}
	s, ok := v.(string)
	if !ok {
		return "", "", fmt.Errorf("%s() requires a string literal, got %T", call.Function, v)
	}
	return ident.GetName(), s, nil
}

func getConstValue(expr *exprv1.Expr) (any, error) {
	v, ok := expr.ExprKind.(*exprv1.Expr_ConstExpr)
	if !ok {
		return nil, fmt.Errorf("expression is not a literal")
	}
	switch x := v.ConstExpr.ConstantKind.(type) {
	case *exprv1.Constant_StringValue:
		return v.ConstExpr.GetStringValue(), nil
	case *exprv1.Constant_Int64Value:
		return v.ConstExpr.GetInt64Value(), nil
	case *exprv1.Constant_Uint64Value:
		return int64(v.ConstExpr.GetUint64Value()), nil
	case *exprv1.Constant_DoubleValue:
		return v.ConstExpr.GetDoubleValue(), nil
	case *exprv1.Constant_BoolValue:
		return v.ConstExpr.GetBoolValue(), nil
	case *exprv1.Constant_NullValue:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported constant %T", x)
	}
}
