// Package html renders prepared documents as a standalone HTML page.
//
// Each page becomes a fixed-size block with absolutely positioned children,
// measured in CSS points so that the template coordinates carry over
// unchanged. Images and barcodes are inlined as data URIs; the output has no
// external references except images that could not be fetched.
package html

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/jafranjemal/aavanamkit/doctpl"
	"github.com/jafranjemal/aavanamkit/render"
	"github.com/jafranjemal/aavanamkit/shape"
	"github.com/jafranjemal/aavanamkit/table"
	"github.com/jafranjemal/aavanamkit/textmetrics"
)

// Title is the document title written to the head element.
const Title = "AavanamKit document"

const stylesheet = `body{margin:0;background:#e0e0e0}
.page{position:relative;overflow:hidden;margin:0 auto 12pt;background:#fff;box-sizing:border-box}
.page>*{position:absolute;box-sizing:border-box}
.text{white-space:pre-wrap;overflow:hidden;line-height:1.2;overflow-wrap:anywhere}
table{border-collapse:collapse;table-layout:fixed}
th,td{padding:5pt;text-align:left;vertical-align:top;font-weight:normal;line-height:1.2;white-space:pre-wrap;overflow-wrap:anywhere}
@media print{body{background:none}.page{margin:0;break-after:page}}`

// Backend renders HTML. It is safe for concurrent use.
type Backend struct {
	metrics *textmetrics.Measurer
}

// New creates an HTML backend that measures text with m, or with the
// default Go Regular metrics when m is nil.
func New(m *textmetrics.Measurer) *Backend {
	if m == nil {
		m = textmetrics.Default()
	}
	return &Backend{metrics: m}
}

// Format implements render.Backend.
func (b *Backend) Format() render.Format { return render.HTML }

// MeasureTextHeight implements render.Backend.
func (b *Backend) MeasureTextHeight(text string, width, fontSize float64) float64 {
	return b.metrics.Height(text, table.ContentWidth(width), fontSize)
}

// Render implements render.Backend.
func (b *Backend) Render(ctx context.Context, doc *render.Document, w io.Writer) (render.Stats, error) {
	r := &renderer{doc: doc}

	body := elem(atom.Body)
	pages := doc.PageCount()
	for i := 0; i < pages; i++ {
		if err := ctx.Err(); err != nil {
			return render.Stats{}, err
		}
		body.AppendChild(r.page(i))
	}

	head := elem(atom.Head)
	head.AppendChild(elem(atom.Meta, "charset", "utf-8"))
	title := elem(atom.Title)
	title.AppendChild(text(Title))
	head.AppendChild(title)
	style := elem(atom.Style)
	style.AppendChild(text(stylesheet))
	head.AppendChild(style)

	root := elem(atom.Html)
	root.AppendChild(head)
	root.AppendChild(body)

	document := &nethtml.Node{Type: nethtml.DocumentNode}
	document.AppendChild(&nethtml.Node{Type: nethtml.DoctypeNode, Data: "html"})
	document.AppendChild(root)

	if err := nethtml.Render(w, document); err != nil {
		return render.Stats{}, fmt.Errorf("html: writing output: %w", err)
	}
	return render.Stats{Pages: pages, Warnings: r.warnings}, nil
}

type renderer struct {
	doc      *render.Document
	warnings []render.Warning
}

func (r *renderer) warn(id string, kind render.WarningKind, err error) {
	r.warnings = append(r.warnings, render.Warning{ElementID: id, Kind: kind, Err: err})
}

func (r *renderer) page(i int) *nethtml.Node {
	var s css
	s.add("width", pt(r.doc.Width))
	if r.doc.Roll {
		s.add("min-height", pt(r.doc.Height))
	} else {
		s.add("height", pt(r.doc.Height))
	}
	bg := r.doc.Background
	if bg.Color != "" {
		s.add("background-color", bg.Color)
	}
	if a := bg.Image; a != nil {
		if a.IsPDF() {
			if i == 0 {
				r.warn("", render.WarnAsset, fmt.Errorf("html: %s: PDF backgrounds are not supported", a.Source))
			}
		} else {
			s.add("background-image", "url("+a.DataURI()+")")
			s.add("background-size", "100% 100%")
		}
	}

	div := elem(atom.Div, "class", "page", "data-page", strconv.Itoa(i+1), "style", s.String())
	for _, it := range r.doc.Items {
		if n := r.item(it, i == 0); n != nil {
			div.AppendChild(n)
		}
	}
	if r.doc.Table != nil {
		div.AppendChild(r.table(r.doc.Chunk(i)))
	}
	return div
}

// box returns the positioning declarations of an element.
func (r *renderer) box(b *doctpl.Base) css {
	x, y := r.doc.Origin(b)
	var s css
	s.add("left", pt(x))
	s.add("top", pt(y))
	s.add("width", pt(b.Width))
	s.add("height", pt(b.Height))
	if b.Rotation != 0 {
		s.add("transform", "rotate("+num(b.Rotation)+"deg)")
		s.add("transform-origin", "0 0")
	}
	return s
}

// item builds the node of a static element. Warnings are only recorded on
// the first page since every page repeats the same items.
func (r *renderer) item(it render.Item, first bool) *nethtml.Node {
	base := it.Element.Common()
	s := r.box(base)

	switch el := it.Element.(type) {
	case *doctpl.Text:
		f := render.FontOf(el)
		s.add("font-family", fontStack(f.Family))
		s.add("font-size", pt(f.Size))
		if f.Bold {
			s.add("font-weight", "bold")
		}
		if f.Italic {
			s.add("font-style", "italic")
		}
		s.add("text-align", f.Align)
		s.add("color", f.Color)
		n := elem(atom.Div, "class", "text", "data-id", el.ID, "style", s.String())
		n.AppendChild(text(el.Text))
		return n

	case *doctpl.Image:
		src := el.Src
		if a := it.Asset; a != nil {
			if a.IsPDF() {
				if first {
					r.warn(el.ID, render.WarnAsset, fmt.Errorf("html: %s: a PDF cannot be shown as an image", a.Source))
				}
				return nil
			}
			src = a.DataURI()
		}
		if src == "" {
			return nil
		}
		return elem(atom.Img, "data-id", el.ID, "src", src, "alt", "", "style", s.String())

	case *doctpl.Barcode:
		if it.Asset == nil {
			return nil
		}
		return elem(atom.Img, "data-id", el.ID, "src", it.Asset.DataURI(), "alt", el.Text, "style", s.String())

	case *doctpl.Shape:
		p := shape.PaintOf(el)
		if !p.Visible() {
			return nil
		}
		paintShape(&s, p)
		return elem(atom.Div, "data-id", el.ID, "style", s.String())
	}
	return nil
}

func paintShape(s *css, p shape.Paint) {
	border := pt(p.StrokeWidth) + " solid " + p.Stroke
	switch p.Kind {
	case doctpl.ShapeLine:
		s.add("height", "0")
		s.add("border-top", border)
		return
	case doctpl.ShapeCircle:
		s.add("border-radius", "50%")
	}
	if p.Fill != "" {
		s.add("background-color", p.Fill)
	}
	if p.Stroke != "" {
		s.add("border", border)
	}
}

func (r *renderer) table(chunk table.Chunk) *nethtml.Node {
	t := r.doc.Table
	el := t.Element

	x, y := r.doc.Origin(&el.Base)
	var s css
	s.add("left", pt(x))
	s.add("top", pt(y))
	s.add("width", pt(el.Width))
	tbl := elem(atom.Table, "data-id", el.ID, "style", s.String())

	cols := elem(atom.Colgroup)
	for _, c := range el.Columns {
		cols.AppendChild(elem(atom.Col, "style", "width:"+pt(c.Width)))
	}
	tbl.AppendChild(cols)

	hs := t.Style.HeaderStyle
	head := elem(atom.Thead)
	hr := elem(atom.Tr, "style", rowCSS(el.Header.Height, hs))
	for _, c := range el.Columns {
		th := elem(atom.Th, "scope", "col")
		th.AppendChild(text(c.Header))
		hr.AppendChild(th)
	}
	head.AppendChild(hr)
	tbl.AppendChild(head)

	body := elem(atom.Tbody)
	for i, row := range chunk.Rows {
		tr := elem(atom.Tr, "style", rowCSS(row.Height, t.Style.RowStyle(i)))
		for _, c := range el.Columns {
			td := elem(atom.Td)
			if v := table.CellText(row.Data, c.DataKey); v != "" {
				td.AppendChild(text(v))
			}
			tr.AppendChild(td)
		}
		body.AppendChild(tr)
	}
	tbl.AppendChild(body)
	return tbl
}

func rowCSS(height float64, cs table.CellStyle) string {
	var s css
	s.add("height", pt(height))
	if cs.FillColor != nil {
		s.add("background-color", cs.FillColor.CSS())
	}
	if cs.TextColor != nil {
		s.add("color", cs.TextColor.CSS())
	}
	if cs.Font != nil && cs.Font.Size > 0 {
		s.add("font-size", pt(cs.Font.Size))
	}
	return s.String()
}

func fontStack(family string) string {
	generic := "sans-serif"
	n := strings.ToLower(family)
	switch {
	case strings.Contains(n, "mono"), strings.Contains(n, "courier"):
		generic = "monospace"
	case strings.Contains(n, "times"), strings.Contains(n, "georgia"), n == "serif":
		generic = "serif"
	}
	if family == "" || strings.EqualFold(family, generic) {
		return generic
	}
	return strconv.Quote(family) + "," + generic
}

// css accumulates inline style declarations in order.
type css []string

func (c *css) add(prop, val string) {
	*c = append(*c, prop+":"+val)
}

func (c css) String() string { return strings.Join(c, ";") }

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func pt(v float64) string { return num(v) + "pt" }

func elem(a atom.Atom, attrs ...string) *nethtml.Node {
	n := &nethtml.Node{Type: nethtml.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, nethtml.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func text(s string) *nethtml.Node {
	return &nethtml.Node{Type: nethtml.TextNode, Data: s}
}
