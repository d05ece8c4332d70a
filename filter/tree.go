package filter

import "github.com/fy0/searchclause/searchkey"

// Clause is one parsed, operator-resolved filter on a field.
//
// Value is NullSentinel, a scalar or a []any.
type Clause struct {
	ExprFn ExprFn
	Value  any
}

// Branch is one occurrence of a composite group.
type Branch struct {
	Operator searchkey.Operator
	Key      string
	Tree     *Tree
}

// Tree is the parsed form of a Search. Field entries and composite branches
// are held apart; several entries under one field are AND-ed.
type Tree struct {
	Fields   map[string][]Clause
	Branches []Branch

	order []string
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{Fields: make(map[string][]Clause)}
}

func (t *Tree) add(key string, c Clause) {
	if _, ok := t.Fields[key]; !ok {
		t.order = append(t.order, key)
	}
	t.Fields[key] = append(t.Fields[key], c)
}

// Keys returns the field keys in the order they were first seen.
func (t *Tree) Keys() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Empty reports whether the tree holds neither entries nor branches.
func (t *Tree) Empty() bool {
	return t == nil || (len(t.Fields) == 0 && len(t.Branches) == 0)
}
