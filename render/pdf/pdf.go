// Package pdf renders prepared documents to PDF with go-pdf/fpdf.
//
// Coordinates are template points, so one template unit maps to one PDF
// unit. Text uses the core fonts (Helvetica, Times, Courier) with a cp1252
// translation; table rows are measured with the same metrics. Characters
// outside cp1252 are drawn as '.'.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/gofpdi"

	"github.com/jafranjemal/aavanamkit/asset"
	"github.com/jafranjemal/aavanamkit/colors"
	"github.com/jafranjemal/aavanamkit/doctpl"
	"github.com/jafranjemal/aavanamkit/render"
	"github.com/jafranjemal/aavanamkit/shape"
	"github.com/jafranjemal/aavanamkit/table"
)

// Creator is written to the document information dictionary.
const Creator = "AavanamKit"

// Backend renders PDF documents. It is safe for concurrent use.
type Backend struct {
	mu      sync.Mutex
	measure *fpdf.Fpdf
	tr      func(string) string
}

// New creates a PDF backend.
func New() *Backend {
	m := fpdf.NewCustom(&fpdf.InitType{OrientationStr: "P", UnitStr: "pt", Size: fpdf.SizeType{Wd: 595, Ht: 842}})
	m.SetCellMargin(0)
	return &Backend{measure: m, tr: m.UnicodeTranslatorFromDescriptor("")}
}

// Format implements render.Backend.
func (b *Backend) Format() render.Format { return render.PDF }

// MeasureTextHeight implements render.Backend using Helvetica metrics.
func (b *Backend) MeasureTextHeight(text string, width, fontSize float64) float64 {
	if text == "" {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.measure.SetFont("Helvetica", "", fontSize)
	lines := splitLines(b.measure, b.tr(text), table.ContentWidth(width))
	return float64(max(len(lines), 1)) * fontSize * table.LineHeight
}

// splitLines wraps cp1252 text, the output of the translator, to width w in
// the current font. The text is split per byte: fpdf.SplitText decodes runes
// and cannot index the core font widths with translated bytes above 0x7f.
func splitLines(f *fpdf.Fpdf, cp1252 string, w float64) []string {
	raw := f.SplitLines([]byte(cp1252), w)
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = string(l)
	}
	return lines
}

// Render implements render.Backend.
func (b *Backend) Render(ctx context.Context, doc *render.Document, w io.Writer) (render.Stats, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: doc.Width, Ht: doc.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCellMargin(0)
	pdf.SetCreator(Creator, false)

	r := &renderer{
		pdf:    pdf,
		doc:    doc,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		images: make(map[string]bool),
		letter: -1,
	}

	pages := doc.PageCount()
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return render.Stats{}, err
		}
		pdf.AddPage()
		r.drawBackground()
		for _, it := range doc.Items {
			r.drawItem(it)
		}
		if doc.Table != nil {
			r.drawTable(doc.Chunk(i))
		}
		if pdf.Err() {
			return render.Stats{}, fmt.Errorf("pdf: page %d: %w", i+1, pdf.Error())
		}
	}

	if err := pdf.Output(w); err != nil {
		return render.Stats{}, fmt.Errorf("pdf: writing output: %w", err)
	}
	return render.Stats{Pages: pages, Warnings: r.warnings}, nil
}

type renderer struct {
	pdf      *fpdf.Fpdf
	doc      *render.Document
	tr       func(string) string
	images   map[string]bool // registered image names; false marks a failure
	letter   int             // imported letterhead template, -1 if none
	imp      *gofpdi.Importer
	warnings []render.Warning
}

func (r *renderer) warn(id string, kind render.WarningKind, err error) {
	r.warnings = append(r.warnings, render.Warning{ElementID: id, Kind: kind, Err: err})
}

func (r *renderer) setFill(hex string) {
	cr, cg, cb := colors.RGB(hex)
	r.pdf.SetFillColor(cr, cg, cb)
}

func (r *renderer) setDraw(hex string) {
	cr, cg, cb := colors.RGB(hex)
	r.pdf.SetDrawColor(cr, cg, cb)
}

func (r *renderer) setText(hex string) {
	cr, cg, cb := colors.RGB(hex)
	r.pdf.SetTextColor(cr, cg, cb)
}

func (r *renderer) drawBackground() {
	bg := r.doc.Background
	if bg.Color != "" {
		r.setFill(bg.Color)
		r.pdf.Rect(0, 0, r.doc.Width, r.doc.Height, "F")
	}
	if bg.Image == nil {
		return
	}
	if bg.Image.IsPDF() {
		r.drawLetterhead(bg.Image)
		return
	}
	r.drawImage("", "background", bg.Image, 0, 0, r.doc.Width, r.doc.Height)
}

// drawLetterhead places the first page of a PDF background as a template.
func (r *renderer) drawLetterhead(a *asset.Asset) {
	if r.letter == -1 {
		r.letter = -2
		if err := r.importLetterhead(a); err != nil {
			r.warn("", render.WarnAsset, err)
		}
	}
	if r.letter >= 0 {
		r.imp.UseImportedTemplate(r.pdf, r.letter, 0, 0, r.doc.Width, r.doc.Height)
	}
}

func (r *renderer) importLetterhead(a *asset.Asset) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("pdf: importing background %s: %v", a.Source, p)
		}
	}()
	imp := gofpdi.NewImporter()
	var rs io.ReadSeeker = bytes.NewReader(a.Data)
	tpl := imp.ImportPageFromStream(r.pdf, &rs, 1, "/MediaBox")
	r.imp, r.letter = imp, tpl
	return nil
}

func (r *renderer) drawItem(it render.Item) {
	base := it.Element.Common()
	x, y := r.doc.Origin(base)

	if base.Rotation != 0 {
		r.pdf.TransformBegin()
		r.pdf.TransformRotate(-base.Rotation, x, y)
		defer r.pdf.TransformEnd()
	}

	switch el := it.Element.(type) {
	case *doctpl.Text:
		r.drawText(el, x, y)
	case *doctpl.Image:
		if it.Asset != nil {
			r.drawImage(el.ID, el.Src, it.Asset, x, y, el.Width, el.Height)
		}
	case *doctpl.Barcode:
		if it.Asset != nil {
			r.drawImage(el.ID, "barcode:"+el.ID, it.Asset, x, y, el.Width, el.Height)
		}
	case *doctpl.Shape:
		r.drawShape(el, x, y)
	}
}

func fontFamily(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "courier"), strings.Contains(n, "mono"):
		return "Courier"
	case strings.Contains(n, "times"), n == "serif", strings.Contains(n, "georgia"):
		return "Times"
	}
	return "Helvetica"
}

func fontStyle(f render.Font) string {
	s := ""
	if f.Bold {
		s += "B"
	}
	if f.Italic {
		s += "I"
	}
	return s
}

func alignStr(a string) string {
	switch a {
	case render.AlignCenter:
		return "C"
	case render.AlignRight:
		return "R"
	case render.AlignJustify:
		return "J"
	}
	return "L"
}

func (r *renderer) drawText(el *doctpl.Text, x, y float64) {
	if el.Text == "" {
		return
	}
	f := render.FontOf(el)
	r.pdf.SetFont(fontFamily(f.Family), fontStyle(f), f.Size)
	r.setText(f.Color)
	r.textBox(el.Text, x, y, el.Width, el.Height, f.Size, alignStr(f.Align))
}

// textBox wraps text to width and drops lines that would overflow height.
// A zero width or height leaves that dimension unbounded.
func (r *renderer) textBox(text string, x, y, w, h, size float64, align string) {
	lineH := size * table.LineHeight
	txt := r.tr(text)
	if w <= 0 {
		w = r.doc.Width - x
	}
	if h > 0 {
		lines := splitLines(r.pdf, txt, w)
		limit := max(int(math.Floor(h/lineH+1e-9)), 1)
		if len(lines) > limit {
			txt = strings.Join(lines[:limit], "\n")
		}
	}
	r.pdf.SetXY(x, y)
	r.pdf.MultiCell(w, lineH, txt, "", align, false)
}

func (r *renderer) drawImage(id, name string, a *asset.Asset, x, y, w, h float64) {
	if a.IsPDF() {
		r.warn(id, render.WarnAsset, fmt.Errorf("pdf: %s: a PDF can only be used as a page background", a.Source))
		return
	}
	ok, seen := r.images[name]
	if !seen {
		opt := fpdf.ImageOptions{ImageType: a.ImageType()}
		r.pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(a.Data))
		ok = !r.pdf.Err()
		if !ok {
			r.warn(id, render.WarnAsset, fmt.Errorf("pdf: embedding %s: %w", a.Source, r.pdf.Error()))
			r.pdf.ClearError()
		}
		r.images[name] = ok
	}
	if !ok {
		return
	}
	r.pdf.ImageOptions(name, x, y, w, h, false, fpdf.ImageOptions{ImageType: a.ImageType()}, 0, "")
}

func (r *renderer) drawShape(el *doctpl.Shape, x, y float64) {
	p := shape.PaintOf(el)
	if !p.Visible() {
		return
	}
	if p.Fill != "" {
		r.setFill(p.Fill)
	}
	if p.Stroke != "" {
		r.setDraw(p.Stroke)
		r.pdf.SetLineWidth(p.StrokeWidth)
	}

	switch p.Kind {
	case doctpl.ShapeLine:
		r.pdf.Line(x, y, x+el.Width, y)
	case doctpl.ShapeCircle:
		r.pdf.Ellipse(x+el.Width/2, y+el.Height/2, el.Width/2, el.Height/2, 0, p.Style())
	default:
		r.pdf.Rect(x, y, el.Width, el.Height, p.Style())
	}

	r.pdf.SetDrawColor(0, 0, 0)
	r.pdf.SetLineWidth(1)
}

// drawTable draws the header and one chunk of rows.
func (r *renderer) drawTable(chunk table.Chunk) {
	t := r.doc.Table
	el := t.Element
	x, y := r.doc.Origin(&el.Base)
	offsets := table.ColumnOffsets(el.Columns)

	hs := t.Style.HeaderStyle
	fill := hs.FillColor
	r.pdf.SetFillColor(fill.R, fill.G, fill.B)
	r.pdf.Rect(x, y, el.Width, el.Header.Height, "F")
	tc := hs.TextColor
	r.pdf.SetTextColor(tc.R, tc.G, tc.B)
	r.pdf.SetFont("Helvetica", "", hs.Font.Size)
	for i, col := range el.Columns {
		r.textBox(col.Header, x+offsets[i]+table.CellInset, y+table.CellInset,
			table.ContentWidth(col.Width), el.Header.Height-2*table.CellInset, hs.Font.Size, "L")
	}
	y += el.Header.Height

	for i, row := range chunk.Rows {
		s := t.Style.RowStyle(i)
		r.pdf.SetFillColor(s.FillColor.R, s.FillColor.G, s.FillColor.B)
		r.pdf.Rect(x, y, el.Width, row.Height, "F")
		r.pdf.SetTextColor(s.TextColor.R, s.TextColor.G, s.TextColor.B)
		r.pdf.SetFont("Helvetica", "", s.Font.Size)
		for c, col := range el.Columns {
			text := table.CellText(row.Data, col.DataKey)
			if text == "" {
				continue
			}
			r.textBox(text, x+offsets[c]+table.CellInset, y+table.CellInset,
				table.ContentWidth(col.Width), row.Height-2*table.CellInset, s.Font.Size, "L")
		}
		y += row.Height
	}

	r.pdf.SetTextColor(0, 0, 0)
}
