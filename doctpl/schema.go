// Package doctpl defines the JSON template format produced by the visual
// designer and consumed by the rendering engine.
//
// A template describes one page of absolutely positioned elements. Units are
// PDF points (1/72 inch). Elements may bind a property to a path in the
// runtime data and may carry a visibility condition.
//
// Example JSON:
//
//	{
//	  "pageSettings": {"mode": "paged", "size": "a4", "orientation": "portrait",
//	                   "marginTop": 30, "marginLeft": 30},
//	  "pages": [{
//	    "id": "page-1",
//	    "elements": [
//	      {"id": "t1", "type": "Text", "x": 0, "y": 0, "width": 200, "height": 20,
//	       "text": "Invoice", "dataBinding": {"property": "text", "field": "title"}},
//	      {"id": "items", "type": "Table", "x": 0, "y": 60, "width": 500, "height": 300,
//	       "dataBinding": {"property": "items", "field": "items[]"},
//	       "columns": [{"header": "Item", "dataKey": "name", "width": 300}]}
//	    ]
//	  }]
//	}
//
// Only the first page is rendered. Additional pages survive decoding and
// re-encoding but are not drawn.
package doctpl

// Template is the top-level document saved by the designer.
type Template struct {
	PageSettings PageSettings `json:"pageSettings"`
	Pages        []Page       `json:"pages"`
}

// FirstPage returns the page that is rendered, or nil if there is none.
func (t *Template) FirstPage() *Page {
	if t == nil || len(t.Pages) == 0 {
		return nil
	}
	return &t.Pages[0]
}

// IgnoredPages reports how many pages beyond the first the template carries.
func (t *Template) IgnoredPages() int {
	if t == nil || len(t.Pages) < 2 {
		return 0
	}
	return len(t.Pages) - 1
}

// Page is a single designed page.
type Page struct {
	ID              string   `json:"id,omitempty"`
	Width           float64  `json:"width,omitempty"`
	Height          float64  `json:"height,omitempty"`
	BackgroundColor string   `json:"backgroundColor,omitempty"`
	BackgroundImage string   `json:"backgroundImage,omitempty"`
	Elements        Elements `json:"elements"`
}

// Tables returns the table elements of the page in document order.
func (p *Page) Tables() []*Table {
	var out []*Table
	for _, el := range p.Elements {
		if t, ok := el.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// DataBinding links one element property to a path in the runtime data.
type DataBinding struct {
	Property string `json:"property"`
	Field    string `json:"field"`
}

// Condition operators, as written in templates.
const (
	OpExists    = "exists"
	OpNotExists = "notExists"
	OpEqual     = "=="
	OpNotEqual  = "!="
	OpGreater   = ">"
	OpLess      = "<"
)

// Conditional gates an element's visibility on runtime data.
type Conditional struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Kind is the value of an element's "type" field.
type Kind string

// Element kinds understood by the renderers.
const (
	KindText    Kind = "Text"
	KindImage   Kind = "Image"
	KindShape   Kind = "Shape"
	KindBarcode Kind = "Barcode"
	KindTable   Kind = "Table"
)

// Base holds the fields shared by every element.
type Base struct {
	ID          string       `json:"id"`
	Type        Kind         `json:"type"`
	X           float64      `json:"x"`
	Y           float64      `json:"y"`
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
	Rotation    float64      `json:"rotation,omitempty"`
	DataBinding *DataBinding `json:"dataBinding,omitempty"`
	Conditional *Conditional `json:"conditional,omitempty"`
}

// Common gives access to the shared fields of any element.
func (b *Base) Common() *Base { return b }

// Text is a block of wrapped text.
type Text struct {
	Base
	Text       string  `json:"text"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontStyle  string  `json:"fontStyle,omitempty"` // normal, bold, italic, "bold italic"
	FontFamily string  `json:"fontFamily,omitempty"`
	Align      string  `json:"align,omitempty"` // left, center, right
	Fill       string  `json:"fill,omitempty"`
}

// Image is a raster image loaded from a URL, data URI or file.
type Image struct {
	Base
	Src string `json:"src"`
}

// Shape kinds.
const (
	ShapeRect   = "rect"
	ShapeCircle = "circle"
	ShapeLine   = "line"
)

// Shape is a filled and/or stroked primitive.
type Shape struct {
	Base
	Shape       string  `json:"shape"`
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
}

// Barcode renders its text with a barcode symbology.
type Barcode struct {
	Base
	Text   string `json:"text"`
	Format string `json:"format,omitempty"` // CODE128 when empty
}

// Column describes one table column.
type Column struct {
	Header  string  `json:"header"`
	DataKey string  `json:"dataKey"`
	Width   float64 `json:"width"`
}

// TableHeader styles the header row repeated on every page.
type TableHeader struct {
	Height          float64 `json:"height"`
	FontSize        float64 `json:"fontSize"`
	BackgroundColor string  `json:"backgroundColor"`
	TextColor       string  `json:"textColor"`
}

// TableRows styles the data rows.
type TableRows struct {
	MinHeight           float64 `json:"minHeight"`
	FontSize            float64 `json:"fontSize"`
	TextColor           string  `json:"textColor"`
	EvenBackgroundColor string  `json:"evenBackgroundColor"`
	OddBackgroundColor  string  `json:"oddBackgroundColor"`
}

// Table is the data-driven table; it is the only element that paginates.
// Height is the space available on each page for the header plus rows.
type Table struct {
	Base
	Columns []Column    `json:"columns"`
	Header  TableHeader `json:"header"`
	Rows    TableRows   `json:"rows"`
	Items   []any       `json:"items,omitempty"`
}

// DefaultTableHeader and DefaultTableRows are applied beneath whatever the
// template specifies.
var (
	DefaultTableHeader = TableHeader{
		Height:          30,
		FontSize:        12,
		BackgroundColor: "#f0f0f0",
		TextColor:       "#000000",
	}
	DefaultTableRows = TableRows{
		MinHeight:           25,
		FontSize:            10,
		TextColor:           "#333333",
		EvenBackgroundColor: "#ffffff",
		OddBackgroundColor:  "#f9f9f9",
	}
)

// Unknown preserves elements whose type the engine does not render.
type Unknown struct {
	Base
	Raw []byte `json:"-"`
}
