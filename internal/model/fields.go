package model

import (
	"fmt"
	"strconv"
)

// Fields is one decoded YAML mapping. Values are limited to what yaml.v3
// produces when decoding into an interface: string, int, int64, uint64,
// float64, bool, nil, []any and nested mappings.
type Fields map[string]any

// Lookup returns the raw value stored under key.
func (f Fields) Lookup(key string) (any, bool) {
	v, ok := f[key]
	return v, ok
}

// Has reports whether key is present, even with a null value.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Get returns the value under key, or nil when absent.
func (f Fields) Get(key string) any {
	return f[key]
}

// Map returns the nested mapping under key. The second result is false when
// the key is absent, null, or holds something other than a mapping.
func (f Fields) Map(key string) (Fields, bool) {
	return AsFields(f[key])
}

// List returns the sequence under key. The second result is false when the
// key is absent or not a sequence.
func (f Fields) List(key string) ([]any, bool) {
	l, ok := f[key].([]any)
	return l, ok
}

// AsFields converts a decoded mapping into Fields. Mappings with non-string
// keys are accepted and their keys stringified.
func AsFields(v any) (Fields, bool) {
	switch m := v.(type) {
	case Fields:
		return m, true
	case map[string]any:
		return Fields(m), true
	case map[any]any:
		out := make(Fields, len(m))
		for k, val := range m {
			out[Stringify(k)] = val
		}
		return out, true
	}
	return nil, false
}

// Stringify coerces a decoded YAML scalar to its string form. Null becomes
// the empty string.
func Stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case uint64:
		return strconv.FormatUint(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprintf("%v", v)
}

// Strings stringifies every element of a sequence.
func Strings(list []any) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, Stringify(v))
	}
	return out
}

// TypeName describes the shape of a decoded value for diagnostics.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, float64:
		return "number"
	case []any:
		return "sequence"
	case map[string]any, map[any]any, Fields:
		return "mapping"
	}
	return fmt.Sprintf("%T", v)
}
