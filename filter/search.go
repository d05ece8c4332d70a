package filter

import (
	"slices"

	"github.com/fy0/searchclause/searchkey"
)

// Criterion is one entry of a Search: a *Leaf or a *Group.
type Criterion interface {
	isCriterion()
}

// Leaf filters a single field.
type Leaf struct {
	Operator searchkey.Operator
	Key      string
	Value    any
}

func (*Leaf) isCriterion() {}

// Group nests criteria under a composite operator (AND, OR, AND-OR).
type Group struct {
	Operator searchkey.Operator
	// Key is the encoded key the group was submitted under, if any.
	Key      string
	Criteria []Criterion
}

func (*Group) isCriterion() {}

// Search is an ordered list of criteria, AND-ed together at the top level.
type Search []Criterion

func leaf(op searchkey.Operator, key string, value any) Criterion {
	return &Leaf{Operator: op, Key: key, Value: value}
}

// Filter constrains key to value only when value is not empty
// (nil, "", false or an empty list mean "no constraint").
func Filter(key string, value any) Criterion { return leaf(searchkey.OpFilter, key, value) }

// Equal renders `key = value`, or `key IN (...)` when value is a list.
func Equal(key string, value any) Criterion { return leaf(searchkey.OpEqual, key, value) }

// NotEqual renders `key <> value`, or `key NOT IN (...)` when value is a list.
func NotEqual(key string, value any) Criterion { return leaf(searchkey.OpNotEqual, key, value) }

// Like renders `key LIKE '%value%'`. A list renders one LIKE per element, OR-ed.
func Like(key string, value any) Criterion { return leaf(searchkey.OpLike, key, value) }

// NotLike renders `key NOT LIKE '%value%'`.
func NotLike(key string, value any) Criterion { return leaf(searchkey.OpNotLike, key, value) }

// LikeStrict renders `key LIKE value`, value being used as the pattern verbatim.
func LikeStrict(key string, value any) Criterion { return leaf(searchkey.OpLikeStrict, key, value) }

// NotLikeStrict renders `key NOT LIKE value`.
func NotLikeStrict(key string, value any) Criterion {
	return leaf(searchkey.OpNotLikeStrict, key, value)
}

// Null renders `key IS NULL`.
func Null(key string) Criterion { return leaf(searchkey.OpNull, key, nil) }

// NotNull renders `key IS NOT NULL`.
func NotNull(key string) Criterion { return leaf(searchkey.OpNotNull, key, nil) }

func Greater(key string, value any) Criterion { return leaf(searchkey.OpGreater, key, value) }

func GreaterOrEqual(key string, value any) Criterion {
	return leaf(searchkey.OpGreaterOrEqual, key, value)
}

func Lower(key string, value any) Criterion { return leaf(searchkey.OpLower, key, value) }

func LowerOrEqual(key string, value any) Criterion {
	return leaf(searchkey.OpLowerOrEqual, key, value)
}

// And groups criteria as `... AND (a AND b)`.
func And(criteria ...Criterion) Criterion {
	return &Group{Operator: searchkey.OpAnd, Criteria: criteria}
}

// Or groups criteria as `... OR (a AND b)`.
func Or(criteria ...Criterion) Criterion {
	return &Group{Operator: searchkey.OpOr, Criteria: criteria}
}

// AndOr groups criteria as `... AND (a OR b)`.
func AndOr(criteria ...Criterion) Criterion {
	return &Group{Operator: searchkey.OpAndOr, Criteria: criteria}
}

// Entry is a value keyed by an encoded search key (see package searchkey).
type Entry struct {
	Key   string
	Value any
}

// Entries is an ordered encoded search. A composite entry's Value may be
// Entries or map[string]any.
type Entries []Entry

// FromEntries decodes an encoded search, keeping its order.
func FromEntries(entries Entries) Search {
	search := make(Search, 0, len(entries))
	for _, e := range entries {
		search = append(search, decodeEntry(e.Key, e.Value))
	}
	return search
}

// FromMap decodes an encoded search held in a map. Map iteration order is
// random, so keys are visited in sorted order.
func FromMap(m map[string]any) Search {
	return FromEntries(sortedEntries(m))
}

func sortedEntries(m map[string]any) Entries {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	entries := make(Entries, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k, Value: m[k]})
	}
	return entries
}

func decodeEntry(key string, value any) Criterion {
	e := searchkey.Decode(key)
	if e.Operator.IsComposite() {
		var nested Entries
		switch v := value.(type) {
		case Entries:
			nested = v
		case []Entry:
			nested = v
		case map[string]any:
			nested = sortedEntries(v)
		}
		if nested != nil {
			return &Group{Operator: e.Operator, Key: key, Criteria: FromEntries(nested)}
		}
	}
	return &Leaf{Operator: e.Operator, Key: e.Key, Value: value}
}
