// Package docx renders prepared documents as Office Open XML word processing
// files.
//
// Word has no absolute page canvas, so every element is anchored to the page
// instead: text as framed paragraphs, images, barcodes and shapes as floating
// pictures, and the table as a floating table repeated once per page. Pages
// are separated by explicit page breaks. Rotation is not supported.
package docx

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jafranjemal/aavanamkit/asset"
	"github.com/jafranjemal/aavanamkit/doctpl"
	"github.com/jafranjemal/aavanamkit/render"
	"github.com/jafranjemal/aavanamkit/shape"
	"github.com/jafranjemal/aavanamkit/table"
	"github.com/jafranjemal/aavanamkit/textmetrics"
)

// Unit conversions from points.
const (
	TwipsPerPoint = 20
	EMUPerPoint   = 12700
)

// MaxPageTwips is the largest page dimension Word accepts (22 inches).
const MaxPageTwips = 31680

// DefaultFont is used for text without a font family.
const DefaultFont = "Arial"

// Backend renders DOCX. It is safe for concurrent use.
type Backend struct {
	metrics *textmetrics.Measurer
}

// New creates a DOCX backend that measures text with m, or with the default
// Go Regular metrics when m is nil.
func New(m *textmetrics.Measurer) *Backend {
	if m == nil {
		m = textmetrics.Default()
	}
	return &Backend{metrics: m}
}

// Format implements render.Backend.
func (b *Backend) Format() render.Format { return render.DOCX }

// MeasureTextHeight implements render.Backend.
func (b *Backend) MeasureTextHeight(text string, width, fontSize float64) float64 {
	return b.metrics.Height(text, table.ContentWidth(width), fontSize)
}

// Render implements render.Backend.
func (b *Backend) Render(ctx context.Context, doc *render.Document, w io.Writer) (render.Stats, error) {
	r := &renderer{
		doc:    doc,
		media:  newMedia(),
		pieces: make(map[int]*piece),
	}

	var blocks []any
	if bg := doc.Background.Image; bg != nil {
		r.background = r.picture(-1, "", "background", bg)
	}

	pages := doc.PageCount()
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return render.Stats{}, err
		}
		if i > 0 {
			blocks = append(blocks, paragraph{Runs: []run{{Break: &brk{Type: "page"}}}})
		}
		blocks = append(blocks, r.page(i)...)
	}

	d := document{
		W: nsW, R: nsR, WP: nsWP, A: nsA, Pic: nsPic,
		Body: body{
			Blocks: blocks,
			Section: section{
				Size: pageSize{W: pageTwips(doc.Width), H: pageTwips(doc.Height)},
			},
		},
	}
	if c := doc.Background.Color; c != "" {
		d.Background = &background{Color: hex(c)}
	}

	if err := writePackage(w, &d, r.media, d.Background != nil); err != nil {
		return render.Stats{}, fmt.Errorf("docx: writing output: %w", err)
	}
	return render.Stats{Pages: pages, Warnings: r.warnings}, nil
}

// piece is the drawable form of a static item, built once and repeated on
// every page.
type piece struct {
	para *paragraph
	pic  *placed
}

// placed is an embedded picture and its page rectangle.
type placed struct {
	relID, name string
	x, y, w, h  float64
	behind      bool
}

type renderer struct {
	doc        *render.Document
	media      *media
	pieces     map[int]*piece
	background *placed
	drawings   int
	warnings   []render.Warning
}

func (r *renderer) warn(id string, kind render.WarningKind, err error) {
	r.warnings = append(r.warnings, render.Warning{ElementID: id, Kind: kind, Err: err})
}

func (r *renderer) page(i int) []any {
	var out []any
	var anchors []run
	if r.background != nil {
		anchors = append(anchors, r.anchorRun(r.background))
	}

	for idx, it := range r.doc.Items {
		p, ok := r.pieces[idx]
		if !ok {
			p = r.build(idx, it)
			r.pieces[idx] = p
		}
		switch {
		case p == nil:
		case p.para != nil:
			out = append(out, *p.para)
		case p.pic != nil:
			anchors = append(anchors, r.anchorRun(p.pic))
		}
	}
	if len(anchors) > 0 {
		out = append([]any{paragraph{Runs: anchors}}, out...)
	}

	if r.doc.Table != nil {
		out = append(out, r.table(r.doc.Chunk(i)))
		// A table cannot end a page's content before the next break.
		out = append(out, paragraph{})
	}
	return out
}

func (r *renderer) build(idx int, it render.Item) *piece {
	base := it.Element.Common()
	x, y := r.doc.Origin(base)

	switch el := it.Element.(type) {
	case *doctpl.Text:
		if el.Text == "" {
			return nil
		}
		para := r.frame(el, x, y)
		return &piece{para: &para}

	case *doctpl.Image, *doctpl.Barcode:
		if it.Asset == nil {
			return nil
		}
		p := r.picture(idx, base.ID, it.Asset.Source, it.Asset)
		if p == nil {
			return nil
		}
		p.x, p.y, p.w, p.h = x, y, base.Width, base.Height
		return &piece{pic: p}

	case *doctpl.Shape:
		paint := shape.PaintOf(el)
		if !paint.Visible() {
			return nil
		}
		a, err := shape.Rasterize(el)
		if err != nil {
			r.warn(el.ID, render.WarnElement, err)
			return nil
		}
		p := r.picture(idx, el.ID, "shape:"+el.ID, a)
		w, h := paint.Bounds(el.Width, el.Height)
		p.x, p.y, p.w, p.h = x, y, w, h
		if paint.Kind == doctpl.ShapeLine {
			p.y -= h / 2
		}
		return &piece{pic: p}
	}
	return nil
}

// picture embeds a once and returns its placement, or nil for assets Word
// cannot show.
func (r *renderer) picture(idx int, id, key string, a *asset.Asset) *placed {
	if a.IsPDF() {
		r.warn(id, render.WarnAsset, fmt.Errorf("docx: %s: PDF documents cannot be embedded", a.Source))
		return nil
	}
	rel := r.media.add(key, a)
	p := &placed{relID: rel, name: id}
	if idx < 0 {
		p.w, p.h, p.behind = r.doc.Width, r.doc.Height, true
	}
	return p
}

func (r *renderer) anchorRun(p *placed) run {
	r.drawings++
	id := r.drawings
	name := p.name
	if name == "" {
		name = fmt.Sprintf("Picture %d", id)
	}
	cx, cy := emu(p.w), emu(p.h)
	behind := 0
	if p.behind {
		behind = 1
	}
	return run{Drawing: &drawing{Anchor: anchor{
		RelativeHeight: id,
		BehindDoc:      behind,
		LayoutInCell:   1,
		AllowOverlap:   1,
		PosH:           position{RelativeFrom: "page", Offset: emu(p.x)},
		PosV:           position{RelativeFrom: "page", Offset: emu(p.y)},
		Extent:         extent{CX: cx, CY: cy},
		DocPr:          docPr{ID: id, Name: name},
		Graphic: graphic{Data: graphicData{
			URI: nsPic,
			Pic: pic{
				NonVisual: nvPicPr{Props: docPr{ID: id, Name: name}},
				Fill:      blipFill{Blip: blip{Embed: p.relID}},
				Shape: spPr{
					Xfrm: xfrm{Ext: extent{CX: cx, CY: cy}},
					Geom: prstGeom{Prst: "rect"},
				},
			},
		}},
	}}}
}

// frame positions a text element as a framed paragraph.
func (r *renderer) frame(el *doctpl.Text, x, y float64) paragraph {
	f := render.FontOf(el)
	fp := &framePr{
		W:       twips(el.Width),
		X:       twips(x),
		Y:       twips(y),
		HAnchor: "page",
		VAnchor: "page",
		Wrap:    "none",
	}
	if el.Height > 0 {
		fp.H, fp.HRule = twips(el.Height), "exact"
	}
	if fp.W <= 0 {
		fp.W = twips(r.doc.Width - x)
	}

	props := &rPr{
		Fonts:  fontsOf(f.Family),
		Color:  &val{Val: hex(f.Color)},
		Size:   &val{Val: halfPoints(f.Size)},
		SizeCs: &val{Val: halfPoints(f.Size)},
	}
	if f.Bold {
		props.Bold = &empty{}
	}
	if f.Italic {
		props.Italic = &empty{}
	}

	return paragraph{
		Props: &pPr{Frame: fp, Spacing: tight(), Jc: &val{Val: justify(f.Align)}},
		Runs:  textRuns(el.Text, props),
	}
}

func (r *renderer) table(chunk table.Chunk) tbl {
	t := r.doc.Table
	el := t.Element
	x, y := r.doc.Origin(&el.Base)
	inset := width{W: twips(table.CellInset), Type: "dxa"}

	out := tbl{
		Props: tblPr{
			Position: tblpPr{VertAnchor: "page", HorzAnchor: "page", X: twips(x), Y: twips(y)},
			Overlap:  val{Val: "overlap"},
			Width:    width{W: twips(el.Width), Type: "dxa"},
			Layout:   typ{Type: "fixed"},
			Margins:  cellMar{Top: inset, Left: inset, Bottom: inset, Right: inset},
		},
	}
	for _, c := range el.Columns {
		out.Grid = append(out.Grid, width{W: twips(c.Width)})
	}

	header := make([]string, len(el.Columns))
	for i, c := range el.Columns {
		header[i] = c.Header
	}
	hr := r.row(el.Columns, header, el.Header.Height, t.Style.HeaderStyle)
	hr.Props.Header = &empty{}
	out.Rows = append(out.Rows, hr)

	for i, rw := range chunk.Rows {
		cells := make([]string, len(el.Columns))
		for c, col := range el.Columns {
			cells[c] = table.CellText(rw.Data, col.DataKey)
		}
		out.Rows = append(out.Rows, r.row(el.Columns, cells, rw.Height, t.Style.RowStyle(i)))
	}
	return out
}

func (r *renderer) row(cols []doctpl.Column, cells []string, height float64, s table.CellStyle) row {
	props := &rPr{Fonts: fontsOf("")}
	if s.TextColor != nil {
		props.Color = &val{Val: s.TextColor.Hex()}
	}
	if s.Font != nil && s.Font.Size > 0 {
		props.Size = &val{Val: halfPoints(s.Font.Size)}
		props.SizeCs = props.Size
	}
	fill := "auto"
	if s.FillColor != nil {
		fill = s.FillColor.Hex()
	}

	out := row{Props: trPr{Height: trHeight{Val: twips(height), HRule: "atLeast"}}}
	for i, col := range cols {
		out.Cells = append(out.Cells, cell{
			Props: tcPr{
				Width:   width{W: twips(col.Width), Type: "dxa"},
				Shading: shd{Val: "clear", Color: "auto", Fill: fill},
			},
			Paras: paragraph{
				Props: &pPr{Spacing: tight()},
				Runs:  textRuns(cells[i], props),
			},
		})
	}
	return out
}

// textRuns splits text on newlines into runs joined by line breaks.
func textRuns(s string, props *rPr) []run {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	runs := make([]run, len(lines))
	for i, line := range lines {
		runs[i] = run{Props: props, Text: &text{Space: "preserve", Value: line}}
		if i > 0 {
			runs[i].Break = &brk{}
		}
	}
	return runs
}

func tight() *spacing {
	return &spacing{Line: int(math.Round(240 * table.LineHeight)), LineRule: "auto"}
}

func fontsOf(family string) *fonts {
	if family == "" {
		family = DefaultFont
	}
	return &fonts{ASCII: family, HAnsi: family, CS: family}
}

func justify(align string) string {
	switch align {
	case render.AlignCenter:
		return "center"
	case render.AlignRight:
		return "right"
	case render.AlignJustify:
		return "both"
	}
	return "left"
}

// hex converts "#rrggbb" to the "RRGGBB" form used by WordprocessingML.
func hex(c string) string {
	return strings.ToUpper(strings.TrimPrefix(c, "#"))
}

func twips(pt float64) int { return int(math.Round(pt * TwipsPerPoint)) }

func pageTwips(pt float64) int { return min(max(twips(pt), 1), MaxPageTwips) }

func emu(pt float64) int64 { return int64(math.Round(pt * EMUPerPoint)) }

func halfPoints(size float64) string { return fmt.Sprint(int(math.Round(size * 2))) }
