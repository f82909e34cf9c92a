package model

import (
	"net/url"
	"sort"
	"strings"
)

// Param is one provisioning field handed to the container host.
type Param struct {
	Key   string
	Value any
}

// Params is the flat parameter set used to create a container. Order is
// preserved so requests and printed plans are stable.
type Params []Param

// Get returns the value stored under key.
func (p Params) Get(key string) (any, bool) {
	for _, kv := range p {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Has reports whether key was supplied.
func (p Params) Has(key string) bool {
	_, ok := p.Get(key)
	return ok
}

// Keys lists parameter names in order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for _, kv := range p {
		keys = append(keys, kv.Key)
	}
	return keys
}

// Form encodes the parameters as a Proxmox API form body. Null values are
// left out since the API treats a missing field as "not supplied".
func (p Params) Form() url.Values {
	form := url.Values{}
	for _, kv := range p {
		if kv.Value == nil {
			continue
		}
		form.Set(kv.Key, FormValue(kv.Value))
	}
	return form
}

// FormValue renders one value the way the Proxmox API expects it: booleans
// as 1/0 and mappings as sorted key=value lists (e.g. features).
func FormValue(v any) string {
	switch val := v.(type) {
	case bool:
		if val {
			return "1"
		}
		return "0"
	case []any:
		return strings.Join(Strings(val), ",")
	}
	if m, ok := AsFields(v); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+FormValue(m[k]))
		}
		return strings.Join(parts, ",")
	}
	return Stringify(v)
}
