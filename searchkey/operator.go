package searchkey

// Operator is the sigil prefixed to a field key inside an encoded search key.
type Operator string

const (
	OpFilter         Operator = ""
	OpEqual          Operator = "="
	OpNotEqual       Operator = "!"
	OpLike           Operator = "%"
	OpNotLike        Operator = "!%"
	OpLikeStrict     Operator = "%="
	OpNotLikeStrict  Operator = "!%="
	OpNull           Operator = "_"
	OpNotNull        Operator = "!_"
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLower          Operator = "<"
	OpLowerOrEqual   Operator = "<="
	OpOr             Operator = "|"
	OpAnd            Operator = "&"
	OpAndOr          Operator = "&|"
)

// Kind is the comparison semantics carried by an Operator.
type Kind int

const (
	KindUnknown Kind = iota
	KindFilter
	KindEqual
	KindNotEqual
	KindLike
	KindNotLike
	KindLikeStrict
	KindNotLikeStrict
	KindIsNull
	KindIsNotNull
	KindGreater
	KindGreaterOrEqual
	KindLower
	KindLowerOrEqual
	KindCompositeOr
	KindCompositeAnd
	KindCompositeAndOr
)

var kindNames = [...]string{
	KindUnknown:        "unknown",
	KindFilter:         "filter",
	KindEqual:          "equal",
	KindNotEqual:       "not_equal",
	KindLike:           "like",
	KindNotLike:        "not_like",
	KindLikeStrict:     "like_strict",
	KindNotLikeStrict:  "not_like_strict",
	KindIsNull:         "is_null",
	KindIsNotNull:      "is_not_null",
	KindGreater:        "greater",
	KindGreaterOrEqual: "greater_or_equal",
	KindLower:          "lower",
	KindLowerOrEqual:   "lower_or_equal",
	KindCompositeOr:    "composite_or",
	KindCompositeAnd:   "composite_and",
	KindCompositeAndOr: "composite_and_or",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return kindNames[KindUnknown]
	}
	return kindNames[k]
}

var operatorAliases = map[string]Operator{
	"==": OpEqual,
	"!=": OpNotEqual,
	"||": OpOr,
}

// Normalize resolves operator aliases. Unrecognised sigils are returned as-is.
func Normalize(op string) Operator {
	if canonical, ok := operatorAliases[op]; ok {
		return canonical
	}
	return Operator(op)
}

// Kind reports the comparison semantics of op. Aliases must be normalized first.
func (op Operator) Kind() Kind {
	switch op {
	case OpFilter:
		return KindFilter
	case OpEqual:
		return KindEqual
	case OpNotEqual:
		return KindNotEqual
	case OpLike:
		return KindLike
	case OpNotLike:
		return KindNotLike
	case OpLikeStrict:
		return KindLikeStrict
	case OpNotLikeStrict:
		return KindNotLikeStrict
	case OpNull:
		return KindIsNull
	case OpNotNull:
		return KindIsNotNull
	case OpGreater:
		return KindGreater
	case OpGreaterOrEqual:
		return KindGreaterOrEqual
	case OpLower:
		return KindLower
	case OpLowerOrEqual:
		return KindLowerOrEqual
	case OpOr:
		return KindCompositeOr
	case OpAnd:
		return KindCompositeAnd
	case OpAndOr:
		return KindCompositeAndOr
	default:
		return KindUnknown
	}
}

// IsComposite reports whether op groups a nested search (AND, OR, AND-OR).
func (op Operator) IsComposite() bool {
	switch op {
	case OpAnd, OpOr, OpAndOr:
		return true
	default:
		return false
	}
}

// Operators lists every canonical operator, composite ones last.
func Operators() []Operator {
	return []Operator{
		OpFilter, OpEqual, OpNotEqual,
		OpLike, OpNotLike, OpLikeStrict, OpNotLikeStrict,
		OpNull, OpNotNull,
		OpGreater, OpGreaterOrEqual, OpLower, OpLowerOrEqual,
		OpOr, OpAnd, OpAndOr,
	}
}
