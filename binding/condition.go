package binding

import (
	"github.com/jafranjemal/aavanamkit/coerce"
	"github.com/jafranjemal/aavanamkit/doctpl"
)

// IsVisible reports whether el should be drawn for data.
// Elements without a condition, or whose condition names no field, are
// visible. An unrecognised operator also leaves the element visible.
func IsVisible(el doctpl.Element, data any) bool {
	c := el.Common().Conditional
	if c == nil || c.Field == "" {
		return true
	}
	return Evaluate(*c, data)
}

// Evaluate applies one condition to data.
func Evaluate(c doctpl.Conditional, data any) bool {
	v, defined := Resolve(data, c.Field)

	switch c.Operator {
	case doctpl.OpExists:
		return exists(v, defined)
	case doctpl.OpNotExists:
		return !exists(v, defined)
	case doctpl.OpEqual:
		return stringOf(v, defined) == c.Value
	case doctpl.OpNotEqual:
		return stringOf(v, defined) != c.Value
	case doctpl.OpGreater:
		// NaN on either side compares false.
		return numberOf(v, defined) > coerce.Number(c.Value)
	case doctpl.OpLess:
		return numberOf(v, defined) < coerce.Number(c.Value)
	default:
		return true
	}
}

func exists(v any, defined bool) bool {
	if !defined || v == nil {
		return false
	}
	if s, ok := v.(string); ok && s == "" {
		return false
	}
	return true
}

func stringOf(v any, defined bool) string {
	if !defined {
		return "undefined"
	}
	return coerce.String(v)
}

func numberOf(v any, defined bool) float64 {
	if !defined {
		return nan
	}
	return coerce.Number(v)
}
