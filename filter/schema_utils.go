package filter

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"
)

var timeType = reflect.TypeOf(time.Time{})

// StructFields is the field mapping read from a model struct.
type StructFields struct {
	Fields FieldMapping
	// DefaultLike lists the keys tagged `like`.
	DefaultLike []string
}

// FieldsFromStruct builds a field mapping from a Go struct type using
// reflection, qualifying columns with alias (usually the query's table alias).
//
// Search key resolution precedence:
//  1. `search` tag (first segment)
//  2. `json` tag
//  3. `db` tag
//  4. snake_case of Go field name
//
// Column resolution precedence:
//  1. `search` tag option `column=...`, used verbatim (e.g. YEAR(d.date))
//  2. alias + `db` tag
//  3. alias + `gorm` tag option `column:...`
//  4. alias + search key
//
// The `search` tag supports "-" to skip the field and "like" to make plain
// filters on the key behave as Like. Embedded structs are flattened.
func FieldsFromStruct(alias string, model any) (StructFields, error) {
	rt, err := normalizeStructType(model)
	if err != nil {
		return StructFields{}, err
	}

	out := StructFields{}
	seen := map[string]bool{}
	if err := collectFieldsFromStruct(rt, strings.TrimSpace(alias), &out, seen); err != nil {
		return StructFields{}, err
	}
	return out, nil
}

func normalizeStructType(model any) (reflect.Type, error) {
	if model == nil {
		return nil, fmt.Errorf("model is nil")
	}

	var rt reflect.Type
	if t, ok := model.(reflect.Type); ok {
		rt = t
	} else {
		rt = reflect.TypeOf(model)
	}

	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model must be a struct (or pointer to struct), got %s", rt.Kind())
	}
	return rt, nil
}

type parsedSearchTag struct {
	skip   bool
	name   string
	column string
	like   bool
}

func parseSearchTag(raw string) parsedSearchTag {
	if raw == "" {
		return parsedSearchTag{}
	}

	out := parsedSearchTag{}
	for idx, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if part == "-" {
			out.skip = true
			return out
		}
		if idx == 0 && !strings.Contains(part, "=") && part != "like" {
			out.name = part
			continue
		}

		switch {
		case part == "like":
			out.like = true
		case strings.HasPrefix(part, "column="):
			out.column = strings.TrimPrefix(part, "column=")
		}
	}
	return out
}

func collectFieldsFromStruct(rt reflect.Type, alias string, out *StructFields, seen map[string]bool) error {
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)

		// Skip unexported fields unless they are anonymous (embedded) structs.
		if sf.PkgPath != "" && !sf.Anonymous {
			continue
		}

		rawTag, tagPresent := sf.Tag.Lookup("search")
		tag := parseSearchTag(rawTag)
		if tag.skip {
			continue
		}

		fieldType := sf.Type
		for fieldType.Kind() == reflect.Pointer {
			fieldType = fieldType.Elem()
		}

		if sf.Anonymous && fieldType.Kind() == reflect.Struct && fieldType != timeType && !tagPresent {
			if err := collectFieldsFromStruct(fieldType, alias, out, seen); err != nil {
				return err
			}
			continue
		}
		if sf.PkgPath != "" {
			continue
		}

		key := tag.name
		if key == "" {
			key = pickTagName(sf.Tag.Get("json"))
		}
		if key == "" {
			key = pickTagName(sf.Tag.Get("db"))
		}
		if key == "" {
			key = snakeCase(sf.Name)
		}
		if key == "-" {
			continue
		}

		column := tag.column
		if column == "" {
			name := pickTagName(sf.Tag.Get("db"))
			if name == "" || name == "-" {
				name = pickGormColumn(sf.Tag.Get("gorm"))
			}
			if name == "" {
				name = key
			}
			column = qualify(alias, name)
		}

		if seen[key] {
			return fmt.Errorf("duplicate search key %q", key)
		}
		seen[key] = true

		out.Fields = append(out.Fields, Field{Key: key, Column: column})
		if tag.like {
			out.DefaultLike = append(out.DefaultLike, key)
		}
	}
	return nil
}

func qualify(alias, name string) string {
	if alias == "" {
		return name
	}
	return alias + "." + name
}

func pickTagName(tag string) string {
	if tag == "" {
		return ""
	}
	name := strings.Split(tag, ",")[0]
	name = strings.TrimSpace(name)
	return name
}

func pickGormColumn(tag string) string {
	if tag == "" {
		return ""
	}
	parts := strings.Split(tag, ";")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch {
		case strings.HasPrefix(part, "column:"):
			return strings.TrimPrefix(part, "column:")
		case strings.HasPrefix(part, "column="):
			return strings.TrimPrefix(part, "column=")
		}
	}
	return ""
}

func snakeCase(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s) + 4)

	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				var next rune
				if i+1 < len(runes) {
					next = runes[i+1]
				}
				if (unicode.IsLower(prev) || unicode.IsDigit(prev)) || (next != 0 && unicode.IsLower(next)) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
