// Package processors implements the concrete Transform/Import/Export/FileOp
// processors: the lookup processor (§4.6, the spec's representative
// transform) and its trivial siblings (§1: "filter, rename, subtotal...
// reuse the same infrastructure").
package processors

import (
	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// requireString returns config[key] as a non-empty string, or a ConfigError.
func requireString(config map[string]any, key string) (string, error) {
	v, ok := config[key]
	if !ok {
		return "", xerr.Wrapf(xerr.ErrConfig, "missing required option %q", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", xerr.Wrapf(xerr.ErrConfig, "option %q must be a non-empty string", key)
	}
	return s, nil
}

// optionalString returns config[key] as a string, or def if absent.
func optionalString(config map[string]any, key, def string) string {
	v, ok := config[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// optionalBool returns config[key] as a bool, or def if absent.
func optionalBool(config map[string]any, key string, def bool) bool {
	v, ok := config[key]
	if !ok {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		return def
	}
	return b
}

// stringList returns config[key] as a []string. Accepts a YAML sequence
// decoded as []any of strings. Missing or wrong-typed keys yield nil.
func stringList(config map[string]any, key string) []string {
	v, ok := config[key]
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// stringMap returns config[key] as a map[string]string, for options like
// lookup's per-column default_value map.
func stringMap(config map[string]any, key string) map[string]string {
	v, ok := config[key]
	if !ok {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}
