package table

import (
	"github.com/jafranjemal/aavanamkit/binding"
	"github.com/jafranjemal/aavanamkit/coerce"
	"github.com/jafranjemal/aavanamkit/doctpl"
)

// CellInset is the horizontal and vertical inset of cell text.
const CellInset = 5.0

// LineHeight is the line advance as a multiple of the font size.
const LineHeight = 1.2

// CellText returns the display string of row[key]. Missing keys, null values
// and rows that are not objects yield "". A key that is not a member of the
// row is tried as a dotted path.
func CellText(row any, key string) string {
	if key == "" {
		return ""
	}
	if m, ok := row.(map[string]any); ok {
		if v, ok := m[key]; ok {
			return coerce.Text(v)
		}
	}
	v, ok := binding.Resolve(row, key)
	if !ok {
		return ""
	}
	return coerce.Text(v)
}

// ContentWidth returns the width available to text inside a cell of width w.
func ContentWidth(w float64) float64 {
	cw := w - 2*CellInset
	if cw < 1 {
		return 1
	}
	return cw
}

// ColumnOffsets returns the x offset of each column relative to the table's
// left edge.
func ColumnOffsets(cols []doctpl.Column) []float64 {
	offsets := make([]float64, len(cols))
	var x float64
	for i, c := range cols {
		offsets[i] = x
		x += c.Width
	}
	return offsets
}
