package filter

import (
	"github.com/fy0/searchclause/searchkey"
)

type parseConfig struct {
	defaultLike map[string]struct{}
}

// ParseOption customizes Parse.
type ParseOption func(*parseConfig)

// WithDefaultLike makes plain filters on keys behave as Like filters.
// Only top-level criteria are rewritten.
func WithDefaultLike(keys ...string) ParseOption {
	return func(cfg *parseConfig) {
		if len(keys) == 0 {
			return
		}
		if cfg.defaultLike == nil {
			cfg.defaultLike = make(map[string]struct{}, len(keys))
		}
		for _, k := range keys {
			cfg.defaultLike[k] = struct{}{}
		}
	}
}

// Parse turns a search into a clause tree.
func Parse(search Search, opts ...ParseOption) *Tree {
	cfg := &parseConfig{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	return parseSearch(applyDefaultLike(search, cfg.defaultLike))
}

func applyDefaultLike(search Search, defaultLike map[string]struct{}) Search {
	if len(defaultLike) == 0 {
		return search
	}
	out := make(Search, 0, len(search))
	for _, c := range search {
		l, ok := c.(*Leaf)
		// Empty plain filters stay plain so they are still suppressed.
		if ok && searchkey.Normalize(string(l.Operator)) == searchkey.OpFilter && !isEmpty(l.Value) {
			if _, like := defaultLike[l.Key]; like {
				c = &Leaf{Operator: searchkey.OpLike, Key: l.Key, Value: l.Value}
			}
		}
		out = append(out, c)
	}
	return out
}

func parseSearch(search Search) *Tree {
	tree := NewTree()
	for _, c := range search {
		switch v := c.(type) {
		case *Group:
			op := searchkey.Normalize(string(v.Operator))
			if !op.IsComposite() {
				continue
			}
			tree.Branches = append(tree.Branches, Branch{
				Operator: op,
				Key:      v.Key,
				Tree:     parseSearch(v.Criteria),
			})
		case *Leaf:
			if v.Key == "" {
				continue
			}
			clause, ok := parseLeaf(searchkey.Normalize(string(v.Operator)), v.Value)
			if !ok {
				continue
			}
			tree.add(v.Key, clause)
		}
	}
	return tree
}

func parseLeaf(op searchkey.Operator, value any) (Clause, bool) {
	list, isList := toAnySlice(value)

	switch op {
	case searchkey.OpEqual:
		return equality(ExprEq, ExprIn, value, list, isList), true
	case searchkey.OpNotEqual:
		return equality(ExprNeq, ExprNotIn, value, list, isList), true
	case searchkey.OpNull:
		return Clause{ExprFn: ExprIsNull, Value: NullSentinel}, true
	case searchkey.OpNotNull:
		return Clause{ExprFn: ExprIsNotNull, Value: NullSentinel}, true
	case searchkey.OpLower:
		return plain(ExprLt, value, list, isList), true
	case searchkey.OpLowerOrEqual:
		return plain(ExprLte, value, list, isList), true
	case searchkey.OpGreater:
		return plain(ExprGt, value, list, isList), true
	case searchkey.OpGreaterOrEqual:
		return plain(ExprGte, value, list, isList), true
	case searchkey.OpLike:
		return pattern(ExprLike, value, false), true
	case searchkey.OpNotLike:
		return pattern(ExprNotLike, value, false), true
	case searchkey.OpLikeStrict:
		return pattern(ExprLike, value, true), true
	case searchkey.OpNotLikeStrict:
		return pattern(ExprNotLike, value, true), true
	default:
		// Plain filters and unknown sigils: no constraint when empty.
		if isEmpty(value) {
			return Clause{}, false
		}
		return equality(ExprEq, ExprIn, value, list, isList), true
	}
}

func equality(scalarFn, setFn ExprFn, value any, list []any, isList bool) Clause {
	if isList {
		return Clause{ExprFn: setFn, Value: coerceList(list)}
	}
	return Clause{ExprFn: scalarFn, Value: coerceBool(value)}
}

func plain(fn ExprFn, value any, list []any, isList bool) Clause {
	if isList {
		return Clause{ExprFn: fn, Value: coerceList(list)}
	}
	return Clause{ExprFn: fn, Value: coerceBool(value)}
}

func pattern(fn ExprFn, value any, strict bool) Clause {
	switch v := SQLSearchString(value, strict).(type) {
	case []string:
		list := make([]any, 0, len(v))
		for _, s := range v {
			list = append(list, s)
		}
		return Clause{ExprFn: fn, Value: list}
	default:
		return Clause{ExprFn: fn, Value: v}
	}
}

func coerceList(list []any) []any {
	out := make([]any, 0, len(list))
	for _, v := range list {
		out = append(out, coerceBool(v))
	}
	return out
}
