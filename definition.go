package searchclause

import (
	"fmt"
	"os"
	"slices"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v2"

	"github.com/fy0/searchclause/filter"
)

// Definition is the search configuration of one query: which search keys map
// to which columns, and which keys match with Like by default.
//
// In YAML the field order is kept:
//
//	fields:
//	  isremoval: d.isremoval
//	  title: d.title
//	  year: YEAR(d.date)
//	default_like: [title]
type Definition struct {
	Fields      filter.FieldMapping
	DefaultLike []string
}

type yamlDefinition struct {
	Fields      yaml.MapSlice `yaml:"fields"`
	DefaultLike []string      `yaml:"default_like"`
}

// LoadDefinition reads a YAML definition file.
func LoadDefinition(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to read definition file: %w", err)
	}
	return ParseDefinition(data)
}

// ParseDefinition parses a YAML definition.
func ParseDefinition(data []byte) (Definition, error) {
	var raw yamlDefinition
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Definition{}, fmt.Errorf("failed to parse definition: %w", err)
	}

	def := Definition{DefaultLike: raw.DefaultLike}
	for _, item := range raw.Fields {
		key, err := cast.ToStringE(item.Key)
		if err != nil {
			return Definition{}, fmt.Errorf("%w: field key %v: %v", ErrInvalidDefinition, item.Key, err)
		}
		column, err := cast.ToStringE(item.Value)
		if err != nil {
			return Definition{}, fmt.Errorf("%w: column of %q: %v", ErrInvalidDefinition, key, err)
		}
		def.Fields = append(def.Fields, filter.Field{Key: key, Column: column})
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// DecodeDefinition decodes a definition held in generic maps, such as a
// section of an application config:
//
//	{"fields": {"title": "d.title"}, "default_like": "title"}
//
// Maps carry no order, so fields are sorted by key.
func DecodeDefinition(input map[string]any) (Definition, error) {
	var raw struct {
		Fields      map[string]string `mapstructure:"fields"`
		DefaultLike []string          `mapstructure:"default_like"`
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &raw,
	})
	if err != nil {
		return Definition{}, err
	}
	if err := dec.Decode(input); err != nil {
		return Definition{}, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	keys := make([]string, 0, len(raw.Fields))
	for k := range raw.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	def := Definition{DefaultLike: raw.DefaultLike}
	for _, k := range keys {
		def.Fields = append(def.Fields, filter.Field{Key: k, Column: raw.Fields[k]})
	}
	if err := def.Validate(); err != nil {
		return Definition{}, err
	}
	return def, nil
}

// Validate checks that every field has a key and a column, and that every
// default-like key is a mapped field.
func (d Definition) Validate() error {
	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.Key == "" {
			return fmt.Errorf("%w: empty field key", ErrInvalidDefinition)
		}
		if f.Column == "" {
			return fmt.Errorf("%w: field %q has no column", ErrInvalidDefinition, f.Key)
		}
		if seen[f.Key] {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidDefinition, f.Key)
		}
		seen[f.Key] = true
	}
	for _, key := range d.DefaultLike {
		if !seen[key] {
			return fmt.Errorf("%w: default-like key %q is not a field", ErrInvalidDefinition, key)
		}
	}
	return nil
}
