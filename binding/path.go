// Package binding connects templates to runtime data: it resolves field
// paths, evaluates visibility conditions and applies data-bound overrides to
// elements.
//
// Nothing in this package fails. A path that cannot be resolved is reported
// as undefined and the element keeps its static value, so incomplete data
// never blocks a document.
package binding

import (
	"reflect"
	"strings"
)

// ArraySuffix marks a schema path that refers to an array as a whole.
const ArraySuffix = "[]"

// Resolve looks up a dotted path such as "customer.name" or "items[]" in data.
// A single trailing "[]" is ignored. The second result is false when any
// segment is missing or an intermediate value is not an object. A present
// JSON null yields (nil, true).
func Resolve(data any, path string) (any, bool) {
	path = strings.TrimSuffix(path, ArraySuffix)
	if path == "" {
		return nil, false
	}

	cur := data
	for _, seg := range strings.Split(path, ".") {
		next, ok := field(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// field returns the named member of an object value. Besides decoded JSON
// objects it accepts any map with string keys, so callers may pass data
// built in Go.
func field(obj any, name string) (any, bool) {
	switch m := obj.(type) {
	case map[string]any:
		v, ok := m[name]
		return v, ok
	case map[string]string:
		v, ok := m[name]
		return v, ok
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
	if !v.IsValid() {
		return nil, false
	}
	return v.Interface(), true
}
