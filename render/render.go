// Package render turns a template and its data into a laid-out Document and
// defines the Backend contract implemented by each output format.
//
// Everything that must agree between formats happens once, in Prepare:
// visibility, binding, table pagination, image fetching and barcode
// encoding. A Backend only maps the prepared Document onto its own drawing
// primitives, so all formats produce the same pages with the same rows.
package render

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/jafranjemal/aavanamkit/asset"
	"github.com/jafranjemal/aavanamkit/doctpl"
	"github.com/jafranjemal/aavanamkit/table"
)

// Format is an output format.
type Format string

// Supported formats.
const (
	PDF  Format = "pdf"
	DOCX Format = "docx"
	HTML Format = "html"
)

// Formats lists the supported formats.
func Formats() []Format { return []Format{PDF, DOCX, HTML} }

// ParseFormat matches a requested output type case-insensitively.
func ParseFormat(s string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case PDF, DOCX, HTML:
		return f, true
	}
	return "", false
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case PDF:
		return "application/pdf"
	case DOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case HTML:
		return "text/html; charset=utf-8"
	}
	return "application/octet-stream"
}

// Backend draws a prepared Document in one output format.
type Backend interface {
	Format() Format

	// MeasureTextHeight returns the height of text wrapped inside a table
	// cell of the given width, using the backend's own font metrics. Empty
	// text has no height.
	MeasureTextHeight(text string, width, fontSize float64) float64

	// Render writes the document. Per-element problems are reported as
	// warnings in Stats; an error means no usable output was written.
	Render(ctx context.Context, doc *Document, w io.Writer) (Stats, error)
}

// Stats describes a finished rendering.
type Stats struct {
	Pages    int
	Warnings []Warning
}

// WarningKind classifies a recovered problem.
type WarningKind string

// Warning kinds.
const (
	WarnAsset   WarningKind = "asset"
	WarnBarcode WarningKind = "barcode"
	WarnElement WarningKind = "element"
	WarnLayout  WarningKind = "layout"
)

// Warning is a per-element problem that did not stop rendering.
type Warning struct {
	ElementID string
	Kind      WarningKind
	Err       error
}

func (w Warning) Error() string {
	if w.ElementID == "" {
		return fmt.Sprintf("%s: %v", w.Kind, w.Err)
	}
	return fmt.Sprintf("%s: element %q: %v", w.Kind, w.ElementID, w.Err)
}

func (w Warning) Unwrap() error { return w.Err }

// Item is a static element ready to draw. Asset holds the fetched image of
// an Image element or the encoded symbol of a Barcode; it is nil when that
// failed.
type Item struct {
	Element doctpl.Element
	Asset   *asset.Asset
}

// Background is drawn first on every page.
type Background struct {
	Color string // normalized, or "" for none
	Image *asset.Asset
}

// Table is the paginated table of a document.
type Table struct {
	Element *doctpl.Table
	Chunks  []table.Chunk
	Style   table.TableStyle
}

// Document is a template resolved against data and laid out into pages.
type Document struct {
	Settings   doctpl.PageSettings
	Width      float64
	Height     float64
	Roll       bool
	Background Background
	Items      []Item
	Table      *Table
	Warnings   []Warning
}

// PageCount returns the number of pages the document occupies.
func (d *Document) PageCount() int {
	if d.Table == nil {
		return 1
	}
	return table.PageCount(d.Table.Chunks)
}

// Chunk returns the table rows drawn on page i.
func (d *Document) Chunk(i int) table.Chunk {
	if d.Table == nil {
		return table.Chunk{}
	}
	return table.ChunkAt(d.Table.Chunks, i)
}

// Origin returns the page position of an element's top-left corner, offset
// by the page margins.
func (d *Document) Origin(b *doctpl.Base) (x, y float64) {
	return b.X + d.Settings.MarginLeft, b.Y + d.Settings.MarginTop
}

// Warn records a warning on the document.
func (d *Document) Warn(id string, kind WarningKind, err error) {
	d.Warnings = append(d.Warnings, Warning{ElementID: id, Kind: kind, Err: err})
}
