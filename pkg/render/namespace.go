package render

import (
	"fmt"
	"maps"
	"strings"
)

// Namespace is the short-lived key/value scope passed from a component to the
// partial it invokes. Values are never written back to the caller's scope.
type Namespace map[string]any

// With returns a copy of ns with key set to value.
func (ns Namespace) With(key string, value any) Namespace {
	out := make(Namespace, len(ns)+1)
	maps.Copy(out, ns)
	out[key] = value
	return out
}

// Merge returns a copy of ns overlaid with other.
func (ns Namespace) Merge(other Namespace) Namespace {
	out := make(Namespace, len(ns)+len(other))
	maps.Copy(out, ns)
	maps.Copy(out, other)
	return out
}

// Get returns the raw value for key.
func (ns Namespace) Get(key string) (any, bool) {
	value, ok := ns[key]
	return value, ok
}

// String returns the value for key formatted as a string, or "" when unset.
func (ns Namespace) String(key string) string {
	value, ok := ns[key]
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

// Bool returns the boolean value for key. Non-bool values are false.
func (ns Namespace) Bool(key string) bool {
	value, ok := ns[key].(bool)
	return ok && value
}

// Require fails with an UndefinedError for the first key that is missing,
// nil or an empty string.
func (ns Namespace) Require(component string, keys ...string) error {
	for _, key := range keys {
		value, ok := ns[key]
		if !ok || value == nil {
			return &UndefinedError{Component: component, Variable: key}
		}
		if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
			return &UndefinedError{Component: component, Variable: key}
		}
	}
	return nil
}
