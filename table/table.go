package table

import (
	"github.com/jafranjemal/aavanamkit/doctpl"
)

// CellPadding is added to the measured text height of every cell when
// computing row heights.
const CellPadding = 10.0

// MeasureFunc returns the height of text wrapped to a column of the given
// width at the given font size. Each renderer supplies its own.
type MeasureFunc func(text string, width, fontSize float64) float64

// Row is one data row placed on a page.
type Row struct {
	Index  int     // position in the input row array
	Data   any     // the row value as bound from runtime data
	Height float64 // resolved height including padding
}

// Chunk is the group of rows drawn beneath one repetition of the header.
type Chunk struct {
	Rows []Row
}

// Height returns the summed height of the chunk's rows.
func (c Chunk) Height() float64 {
	var h float64
	for _, r := range c.Rows {
		h += r.Height
	}
	return h
}

// Layouter splits table rows into page-sized chunks.
type Layouter struct {
	Measure MeasureFunc

	// CellPadding overrides the package constant when non-zero.
	CellPadding float64

	// Unbounded places every row in a single chunk, as used for roll paper
	// where the page grows with its content. Row heights are still measured.
	Unbounded bool
}

// Layout splits rows with the default padding. See Layouter.Layout.
func Layout(t *doctpl.Table, rows []any, measure MeasureFunc) []Chunk {
	return Layouter{Measure: measure}.Layout(t, rows)
}

// Layout assigns rows, in order, to chunks whose summed height fits the
// table's per-page budget (table height minus header height). A row never
// spans chunks. A row taller than the whole budget is placed alone so that
// layout always makes progress; with a negative budget every row lands on
// its own chunk. Empty input yields no chunks.
func (l Layouter) Layout(t *doctpl.Table, rows []any) []Chunk {
	if len(rows) == 0 {
		return nil
	}

	budget := t.Height - t.Header.Height
	available := budget

	var (
		chunks  []Chunk
		current []Row
	)
	for i, item := range rows {
		h := l.RowHeight(t, item)

		if !l.Unbounded && available < h && len(current) > 0 {
			chunks = append(chunks, Chunk{Rows: current})
			current = nil
			available = budget
		}

		current = append(current, Row{Index: i, Data: item, Height: h})
		available -= h
	}
	if len(current) > 0 {
		chunks = append(chunks, Chunk{Rows: current})
	}
	return chunks
}

// RowHeight is the larger of the table's minimum row height and the tallest
// padded cell of item.
func (l Layouter) RowHeight(t *doctpl.Table, item any) float64 {
	pad := l.CellPadding
	if pad == 0 {
		pad = CellPadding
	}

	h := t.Rows.MinHeight
	if l.Measure == nil {
		return h
	}
	for _, col := range t.Columns {
		cell := l.Measure(CellText(item, col.DataKey), col.Width, t.Rows.FontSize) + pad
		if cell > h {
			h = cell
		}
	}
	return h
}

// PageCount returns the number of pages a chunk list occupies. A template
// always produces at least one page.
func PageCount(chunks []Chunk) int {
	if len(chunks) == 0 {
		return 1
	}
	return len(chunks)
}

// ChunkAt returns the chunk drawn on page i, or an empty chunk when the table
// has fewer chunks than the document has pages.
func ChunkAt(chunks []Chunk, i int) Chunk {
	if i < 0 || i >= len(chunks) {
		return Chunk{}
	}
	return chunks[i]
}
