// Package schema holds the raw, untyped schema documents the AAT normalizer
// consumes. A document is either a boolean node (true = anything, false =
// nothing) or a map of JSON-Schema-like keywords. The package deliberately
// does not interpret keywords beyond shape accessors; classification lives in
// the aat package.
package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Document is a raw schema node. Exactly one of boolean or object form is
// set; the zero value is an empty object schema.
type Document struct {
	boolean  *bool
	keywords map[string]any
}

// True and False are the two boolean schema nodes.
func True() Document  { b := true; return Document{boolean: &b} }
func False() Document { b := false; return Document{boolean: &b} }

// FromMap wraps a keyword map as an object schema. The map is not copied;
// callers hand over ownership.
func FromMap(m map[string]any) Document {
	if m == nil {
		m = map[string]any{}
	}
	return Document{keywords: m}
}

// FromValue converts a decoded JSON/YAML value into a Document. Booleans and
// maps are valid schema nodes; anything else is an error.
func FromValue(v any) (Document, error) {
	switch t := v.(type) {
	case bool:
		if t {
			return True(), nil
		}
		return False(), nil
	case map[string]any:
		return FromMap(t), nil
	case Document:
		return t, nil
	default:
		return Document{}, fmt.Errorf("schema: node must be an object or bool, got %T", v)
	}
}

// FromJSON parses a JSON-encoded schema document.
func FromJSON(data []byte) (Document, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return Document{}, fmt.Errorf("schema: parse json: %w", err)
	}
	return FromValue(v)
}

// FromYAML parses a YAML-encoded schema document. JSON is a subset of YAML,
// so this also accepts JSON input.
func FromYAML(data []byte) (Document, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Document{}, fmt.Errorf("schema: parse yaml: %w", err)
	}
	return FromValue(normalizeYAML(v))
}

// normalizeYAML rewrites yaml.v3's map[string]any values recursively so that
// nested maps and arrays match what encoding/json produces.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case []any:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	default:
		return v
	}
}

// IsBool reports whether the document is a boolean node, and its value.
func (d Document) IsBool() (value, ok bool) {
	if d.boolean == nil {
		return false, false
	}
	return *d.boolean, true
}

// Keywords returns the keyword map of an object node, or nil for boolean
// nodes. The map is shared, not copied; callers must not mutate it.
func (d Document) Keywords() map[string]any {
	return d.keywords
}

// Has reports whether an object node declares the given keyword.
func (d Document) Has(key string) bool {
	if d.keywords == nil {
		return false
	}
	_, ok := d.keywords[key]
	return ok
}

// Get returns a keyword's raw value.
func (d Document) Get(key string) (any, bool) {
	if d.keywords == nil {
		return nil, false
	}
	v, ok := d.keywords[key]
	return v, ok
}

// GetString returns a keyword's value when it is a string.
func (d Document) GetString(key string) (string, bool) {
	v, ok := d.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetBool returns a keyword's value when it is a bool.
func (d Document) GetBool(key string) (bool, bool) {
	v, ok := d.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// GetArray returns a keyword's value when it is an array.
func (d Document) GetArray(key string) ([]any, bool) {
	v, ok := d.Get(key)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	return arr, ok
}

// GetMap returns a keyword's value when it is a map.
func (d Document) GetMap(key string) (map[string]any, bool) {
	v, ok := d.Get(key)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// GetFloat returns a keyword's numeric value. JSON numbers decode as float64;
// YAML integers decode as int, so both are accepted.
func (d Document) GetFloat(key string) (float64, bool) {
	v, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	return asFloat(v)
}

// GetInt returns a keyword's value as a non-negative int.
func (d Document) GetInt(key string) (int, bool) {
	f, ok := d.GetFloat(key)
	if !ok || f < 0 || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
