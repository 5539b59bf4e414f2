package doctpl

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/jafranjemal/aavanamkit/coerce"
)

// Element is one visual unit on a page. The concrete type is one of *Text,
// *Image, *Shape, *Barcode, *Table or *Unknown.
type Element interface {
	// Common returns the fields shared by all element kinds.
	Common() *Base
	// Clone returns a copy that can be modified without affecting the receiver.
	Clone() Element
	// SetProperty assigns a value decoded from runtime data to the property
	// with the given JSON name. It reports whether the property exists.
	SetProperty(name string, v any) bool
}

// Elements is the ordered element list of a page. It decodes the "type"
// discriminator into concrete element types.
type Elements []Element

// UnmarshalJSON implements json.Unmarshaler.
func (es *Elements) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return fmt.Errorf("doctpl: decoding elements: %w", err)
	}
	out := make(Elements, 0, len(raws))
	for i, raw := range raws {
		el, err := decodeElement(raw)
		if err != nil {
			return fmt.Errorf("doctpl: element %d: %w", i, err)
		}
		out = append(out, el)
	}
	*es = out
	return nil
}

func decodeElement(raw json.RawMessage) (Element, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, err
	}

	var el Element
	switch {
	case kindIs(head.Type, KindText):
		el = &Text{}
	case kindIs(head.Type, KindImage):
		el = &Image{}
	case kindIs(head.Type, KindShape):
		el = &Shape{}
	case kindIs(head.Type, KindBarcode):
		el = &Barcode{}
	case kindIs(head.Type, KindTable):
		el = &Table{}
	default:
		u := &Unknown{Raw: append([]byte(nil), raw...)}
		if err := json.Unmarshal(raw, &u.Base); err != nil {
			return nil, err
		}
		return u, nil
	}
	if err := json.Unmarshal(raw, el); err != nil {
		return nil, err
	}
	return el, nil
}

func kindIs(k, want Kind) bool {
	return strings.EqualFold(string(k), string(want))
}

// UnmarshalJSON decodes a table over DefaultTableHeader and DefaultTableRows
// so that partial header/rows objects keep the defaults they omit.
func (t *Table) UnmarshalJSON(b []byte) error {
	type plain Table
	p := plain{Header: DefaultTableHeader, Rows: DefaultTableRows}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*t = Table(p)
	return nil
}

// MarshalJSON re-emits the original JSON of an unrecognised element.
func (u *Unknown) MarshalJSON() ([]byte, error) {
	if len(u.Raw) > 0 {
		return u.Raw, nil
	}
	return json.Marshal(u.Base)
}

func (b Base) clone() Base {
	c := b
	if b.DataBinding != nil {
		db := *b.DataBinding
		c.DataBinding = &db
	}
	if b.Conditional != nil {
		cond := *b.Conditional
		c.Conditional = &cond
	}
	return c
}

// setGeometry handles the positional properties every element has.
func (b *Base) setGeometry(name string, v any) bool {
	var dst *float64
	switch name {
	case "x":
		dst = &b.X
	case "y":
		dst = &b.Y
	case "width":
		dst = &b.Width
	case "height":
		dst = &b.Height
	case "rotation":
		dst = &b.Rotation
	default:
		return false
	}
	if n := coerce.Number(v); !math.IsNaN(n) && !math.IsInf(n, 0) {
		*dst = n
	}
	return true
}

func setNumber(dst *float64, v any) {
	if n := coerce.Number(v); !math.IsNaN(n) && !math.IsInf(n, 0) {
		*dst = n
	}
}

// Clone implements Element.
func (t *Text) Clone() Element {
	c := *t
	c.Base = t.Base.clone()
	return &c
}

// SetProperty implements Element.
func (t *Text) SetProperty(name string, v any) bool {
	switch name {
	case "text":
		t.Text = coerce.Text(v)
	case "fontSize":
		setNumber(&t.FontSize, v)
	case "fontStyle":
		t.FontStyle = coerce.Text(v)
	case "fontFamily":
		t.FontFamily = coerce.Text(v)
	case "align":
		t.Align = coerce.Text(v)
	case "fill":
		t.Fill = coerce.Text(v)
	default:
		return t.setGeometry(name, v)
	}
	return true
}

// Clone implements Element.
func (i *Image) Clone() Element {
	c := *i
	c.Base = i.Base.clone()
	return &c
}

// SetProperty implements Element.
func (i *Image) SetProperty(name string, v any) bool {
	if name == "src" {
		i.Src = coerce.Text(v)
		return true
	}
	return i.setGeometry(name, v)
}

// Clone implements Element.
func (s *Shape) Clone() Element {
	c := *s
	c.Base = s.Base.clone()
	return &c
}

// SetProperty implements Element.
func (s *Shape) SetProperty(name string, v any) bool {
	switch name {
	case "shape":
		s.Shape = coerce.Text(v)
	case "fill":
		s.Fill = coerce.Text(v)
	case "stroke":
		s.Stroke = coerce.Text(v)
	case "strokeWidth":
		setNumber(&s.StrokeWidth, v)
	default:
		return s.setGeometry(name, v)
	}
	return true
}

// Clone implements Element.
func (bc *Barcode) Clone() Element {
	c := *bc
	c.Base = bc.Base.clone()
	return &c
}

// SetProperty implements Element.
func (bc *Barcode) SetProperty(name string, v any) bool {
	switch name {
	case "text", "value":
		bc.Text = coerce.Text(v)
	case "format":
		bc.Format = coerce.Text(v)
	default:
		return bc.setGeometry(name, v)
	}
	return true
}

// Clone implements Element.
func (t *Table) Clone() Element {
	c := *t
	c.Base = t.Base.clone()
	c.Columns = append([]Column(nil), t.Columns...)
	c.Items = append([]any(nil), t.Items...)
	return &c
}

// SetProperty implements Element. Any binding that is not a geometry
// property targets the table's rows: an array replaces them and anything else
// leaves the table without rows.
func (t *Table) SetProperty(name string, v any) bool {
	if t.setGeometry(name, v) {
		return true
	}
	rows, _ := v.([]any)
	t.Items = rows
	return true
}

// Clone implements Element.
func (u *Unknown) Clone() Element {
	c := *u
	c.Base = u.Base.clone()
	c.Raw = append([]byte(nil), u.Raw...)
	return &c
}

// SetProperty implements Element. Unknown elements only accept geometry.
func (u *Unknown) SetProperty(name string, v any) bool {
	return u.setGeometry(name, v)
}
