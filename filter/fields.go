package filter

// Field maps a search key to the column expression it filters.
type Field struct {
	Key    string
	Column string
}

// FieldMapping is an ordered set of searchable fields. Its order is the
// order predicates are emitted in.
type FieldMapping []Field

// Set adds fields, replacing the column of keys already present while
// keeping their position.
func (m FieldMapping) Set(fields ...Field) FieldMapping {
	for _, f := range fields {
		if f.Key == "" {
			continue
		}
		if i := m.index(f.Key); i >= 0 {
			m[i].Column = f.Column
			continue
		}
		m = append(m, f)
	}
	return m
}

// Column returns the column mapped to key.
func (m FieldMapping) Column(key string) (string, bool) {
	if i := m.index(key); i >= 0 {
		return m[i].Column, true
	}
	return "", false
}

// Keys returns the mapped keys in order.
func (m FieldMapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for _, f := range m {
		keys = append(keys, f.Key)
	}
	return keys
}

func (m FieldMapping) index(key string) int {
	for i, f := range m {
		if f.Key == key {
			return i
		}
	}
	return -1
}
