package binding

import (
	"math"
	"reflect"

	"github.com/jafranjemal/aavanamkit/doctpl"
)

var nan = math.NaN()

// Bind returns a copy of el with its bound property replaced by the value
// found in data. The override only happens when the path resolves; otherwise
// the copy keeps the static value. el is never modified.
func Bind(el doctpl.Element, data any) doctpl.Element {
	out := el.Clone()
	db := out.Common().DataBinding
	if db == nil || db.Field == "" || db.Property == "" {
		return out
	}
	v, ok := Resolve(data, db.Field)
	if !ok {
		return out
	}
	if s, isSlice := asSlice(v); isSlice {
		v = s
	}
	out.SetProperty(db.Property, v)
	return out
}

// Rows returns the row array bound to a table, falling back to the table's
// static items.
func Rows(t *doctpl.Table, data any) []any {
	bound, ok := Bind(t, data).(*doctpl.Table)
	if !ok {
		return nil
	}
	return bound.Items
}

// asSlice converts slices built in Go ([]map[string]any, []string, ...) to
// the []any shape decoded JSON has.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case nil, string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
