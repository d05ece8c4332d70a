package filter

import (
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

type nullValue struct{}

func (nullValue) String() string { return "_NULL_" }

// NullSentinel is the value of IS NULL / IS NOT NULL entries; it is never
// bound as a parameter.
var NullSentinel any = nullValue{}

var likeEscaper = strings.NewReplacer(`%`, `\%`, `_`, `\_`)

// SQLSearchString turns a searched value into a LIKE pattern: lower-cased,
// trimmed, `%` and `_` escaped with a backslash and wrapped in `%...%`.
//
// With strict the trimmed value is returned untouched so its own wildcards
// apply. A list yields a []string transformed element-wise.
func SQLSearchString(value any, strict bool) any {
	if list, ok := toAnySlice(value); ok {
		out := make([]string, 0, len(list))
		for _, v := range list {
			out = append(out, searchPattern(v, strict))
		}
		return out
	}
	return searchPattern(value, strict)
}

func searchPattern(value any, strict bool) string {
	s := strings.TrimSpace(cast.ToString(coerceBool(value)))
	if strict {
		return s
	}
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}

// EscapeLike escapes the LIKE wildcards of s without wrapping it.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func toAnySlice(value any) ([]any, bool) {
	if value == nil {
		return nil, false
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	n := rv.Len()
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, rv.Index(i).Interface())
	}
	return out, true
}

// isEmpty mirrors "no constraint" for plain filters: nil, "", false and
// empty lists. Zero numbers are real values.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return v == ""
	case bool:
		return !v
	}
	if list, ok := toAnySlice(value); ok {
		return len(list) == 0
	}
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

func coerceBool(value any) any {
	if b, ok := value.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return value
}

func isInteger(value any) bool {
	switch value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}
