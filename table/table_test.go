package table_test

import (
	"reflect"
	"strings"
	"testing"

	"github.com/jafranjemal/aavanamkit/doctpl"
	"github.com/jafranjemal/aavanamkit/table"
)

func newTable(height, headerHeight, minHeight float64, cols ...doctpl.Column) *doctpl.Table {
	return &doctpl.Table{
		Base:    doctpl.Base{ID: "items", Type: doctpl.KindTable, Width: 400, Height: height},
		Columns: cols,
		Header:  doctpl.TableHeader{Height: headerHeight, FontSize: 12},
		Rows:    doctpl.TableRows{MinHeight: minHeight, FontSize: 10},
	}
}

// fixed measures every cell as h-CellPadding, giving rows of exactly h.
func fixed(h float64) table.MeasureFunc {
	return func(string, float64, float64) float64 { return h - table.CellPadding }
}

// byLines measures one line of 10pt per newline-separated line.
func byLines(text string, _, _ float64) float64 {
	if text == "" {
		return 0
	}
	return float64(strings.Count(text, "\n")+1) * 10
}

func rowsOf(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = map[string]any{"name": strings.Repeat("x\n", i%4) + "x"}
	}
	return out
}

func indexes(chunks []table.Chunk) [][]int {
	var out [][]int
	for _, c := range chunks {
		var idx []int
		for _, r := range c.Rows {
			idx = append(idx, r.Index)
		}
		out = append(out, idx)
	}
	return out
}

func TestLayoutBreaksWhenBudgetExhausted(t *testing.T) {
	tbl := newTable(100, 30, 0, doctpl.Column{DataKey: "name", Width: 100})

	chunks := table.Layout(tbl, rowsOf(3), fixed(30))

	want := [][]int{{0, 1}, {2}}
	if got := indexes(chunks); !reflect.DeepEqual(got, want) {
		t.Fatalf("chunks = %v, want %v", got, want)
	}
	if h := chunks[0].Height(); h != 60 {
		t.Errorf("first chunk height = %v, want 60", h)
	}
}

func TestLayoutConservesRows(t *testing.T) {
	tbl := newTable(120, 30, 25, doctpl.Column{DataKey: "name", Width: 100})

	for _, n := range []int{1, 2, 7, 50} {
		rows := rowsOf(n)
		chunks := table.Layout(tbl, rows, byLines)

		var got []any
		for i, c := range chunks {
			if len(c.Rows) == 0 {
				t.Fatalf("n=%d: chunk %d is empty", n, i)
			}
			for _, r := range c.Rows {
				if r.Index != len(got) {
					t.Fatalf("n=%d: row index %d out of order, want %d", n, r.Index, len(got))
				}
				got = append(got, r.Data)
			}
		}
		if !reflect.DeepEqual(got, rows) {
			t.Errorf("n=%d: concatenated rows differ from input", n)
		}
	}
}

func TestLayoutRespectsBudget(t *testing.T) {
	tbl := newTable(150, 30, 25, doctpl.Column{DataKey: "name", Width: 100})
	budget := tbl.Height - tbl.Header.Height

	chunks := table.Layout(tbl, rowsOf(40), byLines)
	for i, c := range chunks {
		if len(c.Rows) > 1 && c.Height() > budget {
			t.Errorf("chunk %d height %v exceeds budget %v", i, c.Height(), budget)
		}
	}
}

func TestLayoutOversizedRowsProgress(t *testing.T) {
	tbl := newTable(100, 30, 0, doctpl.Column{DataKey: "name", Width: 100})

	chunks := table.Layout(tbl, rowsOf(4), fixed(500))

	if len(chunks) != 4 {
		t.Fatalf("chunks = %d, want 4 singleton chunks", len(chunks))
	}
	for i, c := range chunks {
		if len(c.Rows) != 1 || c.Rows[0].Index != i {
			t.Errorf("chunk %d = %v, want row %d alone", i, indexes([]table.Chunk{c}), i)
		}
	}
}

func TestLayoutNegativeBudget(t *testing.T) {
	tbl := newTable(10, 30, 5, doctpl.Column{DataKey: "name", Width: 100})

	chunks := table.Layout(tbl, rowsOf(3), fixed(20))
	want := [][]int{{0}, {1}, {2}}
	if got := indexes(chunks); !reflect.DeepEqual(got, want) {
		t.Errorf("chunks = %v, want %v", got, want)
	}
}

func TestLayoutIsDeterministic(t *testing.T) {
	tbl := newTable(200, 30, 25,
		doctpl.Column{DataKey: "name", Width: 100},
		doctpl.Column{DataKey: "qty", Width: 50},
	)
	rows := rowsOf(30)

	a := table.Layout(tbl, rows, byLines)
	b := table.Layout(tbl, rows, byLines)
	if !reflect.DeepEqual(a, b) {
		t.Error("layout differs between identical calls")
	}
}

func TestLayoutEmptyInput(t *testing.T) {
	tbl := newTable(100, 30, 25, doctpl.Column{DataKey: "name", Width: 100})

	if chunks := table.Layout(tbl, nil, byLines); len(chunks) != 0 {
		t.Errorf("chunks = %d, want none", len(chunks))
	}
	if n := table.PageCount(nil); n != 1 {
		t.Errorf("PageCount(nil) = %d, want 1", n)
	}
}

func TestLayoutWithoutColumnsUsesMinHeight(t *testing.T) {
	tbl := newTable(100, 30, 25)

	chunks := table.Layout(tbl, rowsOf(3), fixed(80))
	want := [][]int{{0, 1}, {2}}
	if got := indexes(chunks); !reflect.DeepEqual(got, want) {
		t.Fatalf("chunks = %v, want %v", got, want)
	}
	for _, r := range chunks[0].Rows {
		if r.Height != 25 {
			t.Errorf("row %d height = %v, want min height 25", r.Index, r.Height)
		}
	}
}

func TestLayoutRowHeightTakesTallestCell(t *testing.T) {
	tbl := newTable(1000, 30, 25,
		doctpl.Column{DataKey: "a", Width: 100},
		doctpl.Column{DataKey: "b", Width: 100},
	)
	rows := []any{map[string]any{"a": "one", "b": "one\ntwo\nthree"}}

	chunks := table.Layout(tbl, rows, byLines)
	if got := chunks[0].Rows[0].Height; got != 40 {
		t.Errorf("row height = %v, want 30+padding", got)
	}
}

func TestLayoutPassesColumnGeometry(t *testing.T) {
	tbl := newTable(1000, 30, 25, doctpl.Column{DataKey: "qty", Width: 77})
	tbl.Rows.FontSize = 9

	var gotText string
	var gotWidth, gotSize float64
	measure := func(text string, w, size float64) float64 {
		gotText, gotWidth, gotSize = text, w, size
		return 0
	}
	table.Layout(tbl, []any{map[string]any{"qty": 0.0}}, measure)

	if gotText != "0" || gotWidth != 77 || gotSize != 9 {
		t.Errorf("measure(%q, %v, %v), want (\"0\", 77, 9)", gotText, gotWidth, gotSize)
	}
}

func TestLayoutUnbounded(t *testing.T) {
	tbl := newTable(100, 30, 0, doctpl.Column{DataKey: "name", Width: 100})

	l := table.Layouter{Measure: fixed(30), Unbounded: true}
	chunks := l.Layout(tbl, rowsOf(10))
	if len(chunks) != 1 || len(chunks[0].Rows) != 10 {
		t.Fatalf("unbounded layout = %v, want one chunk of 10", indexes(chunks))
	}
	if h := chunks[0].Height(); h != 300 {
		t.Errorf("height = %v, want 300", h)
	}
}

func TestLayoutCustomPadding(t *testing.T) {
	tbl := newTable(1000, 30, 0, doctpl.Column{DataKey: "name", Width: 100})

	l := table.Layouter{Measure: fixed(table.CellPadding), CellPadding: 4}
	if h := l.RowHeight(tbl, map[string]any{"name": "x"}); h != 4 {
		t.Errorf("RowHeight = %v, want 4", h)
	}
}

func TestCellText(t *testing.T) {
	tests := []struct {
		row  any
		key  string
		want string
	}{
		{map[string]any{"name": "Widget"}, "name", "Widget"},
		{map[string]any{"qty": 0.0}, "qty", "0"},
		{map[string]any{"price": 12.5}, "price", "12.5"},
		{map[string]any{"ok": true}, "ok", "true"},
		{map[string]any{"gone": nil}, "gone", ""},
		{map[string]any{}, "missing", ""},
		{map[string]any{"a.b": "literal"}, "a.b", "literal"},
		{map[string]any{"a": map[string]any{"b": "nested"}}, "a.b", "nested"},
		{"scalar row", "name", ""},
		{nil, "name", ""},
		{map[string]any{"name": "x"}, "", ""},
	}
	for _, tt := range tests {
		if got := table.CellText(tt.row, tt.key); got != tt.want {
			t.Errorf("CellText(%v, %q) = %q, want %q", tt.row, tt.key, got, tt.want)
		}
	}
}

func TestGeometryHelpers(t *testing.T) {
	offsets := table.ColumnOffsets([]doctpl.Column{{Width: 100}, {Width: 50}, {Width: 25}})
	if want := []float64{0, 100, 150}; !reflect.DeepEqual(offsets, want) {
		t.Errorf("ColumnOffsets = %v, want %v", offsets, want)
	}
	if w := table.ContentWidth(100); w != 90 {
		t.Errorf("ContentWidth(100) = %v, want 90", w)
	}
	if w := table.ContentWidth(4); w != 1 {
		t.Errorf("ContentWidth(4) = %v, want 1", w)
	}
}

func TestChunkAt(t *testing.T) {
	chunks := []table.Chunk{{Rows: []table.Row{{Index: 0}}}}
	if c := table.ChunkAt(chunks, 0); len(c.Rows) != 1 {
		t.Error("ChunkAt(0) should return the first chunk")
	}
	if c := table.ChunkAt(chunks, 3); len(c.Rows) != 0 {
		t.Error("ChunkAt past the end should be empty")
	}
}

func TestStyleFor(t *testing.T) {
	tbl := newTable(100, 30, 25)
	tbl.Header = doctpl.DefaultTableHeader
	tbl.Rows = doctpl.DefaultTableRows
	tbl.Rows.OddBackgroundColor = "lightgray"

	s := table.StyleFor(tbl)

	if got := s.HeaderStyle.FillColor.Hex(); got != "f0f0f0" {
		t.Errorf("header fill = %s, want f0f0f0", got)
	}
	if s.HeaderStyle.Font.Size != 12 {
		t.Errorf("header font size = %v, want 12", s.HeaderStyle.Font.Size)
	}

	even, odd := s.RowStyle(0), s.RowStyle(1)
	if got := even.FillColor.CSS(); got != "#ffffff" {
		t.Errorf("even fill = %s, want #ffffff", got)
	}
	if got := odd.FillColor.CSS(); got != "#d3d3d3" {
		t.Errorf("odd fill = %s, want #d3d3d3", got)
	}
	if *even.TextColor != (table.RGBColor{R: 0x33, G: 0x33, B: 0x33}) {
		t.Errorf("row text = %+v, want #333333", *even.TextColor)
	}
	if even.Font.Size != 10 {
		t.Errorf("row font size = %v, want 10", even.Font.Size)
	}
	if s.RowStyle(2).FillColor.CSS() != "#ffffff" {
		t.Error("stripes should alternate by position")
	}
}

func TestStyleForBadColours(t *testing.T) {
	tbl := newTable(100, 30, 25)
	tbl.Header.BackgroundColor = "not-a-colour"

	if got := table.StyleFor(tbl).HeaderStyle.FillColor.CSS(); got != "#000000" {
		t.Errorf("bad colour = %s, want #000000", got)
	}
}
