// Package env normalizes the environment section of a service definition.
package env

import (
	"os"
	"strings"

	"github.com/GothShoot/proxmox-swarm/internal/model"
	"go.uber.org/zap"
)

// Lookup resolves variables for environment entries declared without a value.
type Lookup interface {
	LookupEnv(key string) (string, bool)
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(key string) (string, bool)

func (f LookupFunc) LookupEnv(key string) (string, bool) {
	return f(key)
}

// OS reads the current process environment.
var OS Lookup = LookupFunc(os.LookupEnv)

// Static is a fixed set of variables.
type Static map[string]string

func (s Static) LookupEnv(key string) (string, bool) {
	v, ok := s[key]
	return v, ok
}

// Normalize converts an environment section into a string map. Mappings are
// stringified, with null values resolved through lookup; sequences hold
// KEY=VALUE strings split on the first '='. Malformed entries and unknown
// shapes are dropped with a warning.
func Normalize(raw any, lookup Lookup, log *zap.Logger) map[string]string {
	if lookup == nil {
		lookup = OS
	}
	if log == nil {
		log = zap.NewNop()
	}

	parsed := make(map[string]string)

	if raw == nil {
		return parsed
	}

	if m, ok := model.AsFields(raw); ok {
		for key, v := range m {
			if v == nil {
				value, _ := lookup.LookupEnv(key)
				parsed[key] = value
				continue
			}
			parsed[key] = model.Stringify(v)
		}
		return parsed
	}

	if list, ok := raw.([]any); ok {
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				log.Warn("ignoring malformed environment entry", zap.Any("entry", item), zap.String("type", model.TypeName(item)))
				continue
			}
			key, value, found := strings.Cut(s, "=")
			if !found {
				log.Warn("ignoring malformed environment entry", zap.String("entry", s))
				continue
			}
			parsed[key] = value
		}
		return parsed
	}

	log.Warn("unrecognised environment type", zap.String("type", model.TypeName(raw)))
	return parsed
}
