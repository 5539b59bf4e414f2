// Package table lays out the data-bound table of a template.
//
// Layout splits the bound rows into chunks, one per page, each fitting the
// table's height beneath a repeated header. The geometry helpers and the
// resolved styles in this package are shared by every renderer so that all
// output formats paginate and colour a table identically.
package table

import (
	"fmt"

	"github.com/jafranjemal/aavanamkit/colors"
	"github.com/jafranjemal/aavanamkit/doctpl"
)

// RGBColor represents an RGB color value.
type RGBColor struct {
	R, G, B int
}

// ParseColor normalizes a template colour and returns its components.
func ParseColor(s string) RGBColor {
	r, g, b := colors.RGB(s)
	return RGBColor{r, g, b}
}

// Hex returns the colour as lower-case "rrggbb".
func (c RGBColor) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}

// CSS returns the colour as "#rrggbb".
func (c RGBColor) CSS() string {
	return "#" + c.Hex()
}

// FontSpec defines font properties for text rendering.
type FontSpec struct {
	Size float64 // in points
}

// CellStyle defines the visual appearance of a cell.
type CellStyle struct {
	FillColor *RGBColor
	TextColor *RGBColor
	Font      *FontSpec
}

// AlternateStyle defines alternating row colors.
type AlternateStyle struct {
	Even CellStyle
	Odd  CellStyle
}

// TableStyle is the resolved appearance of a template table.
type TableStyle struct {
	HeaderStyle   CellStyle
	AlternateRows AlternateStyle
	CellFont      FontSpec
}

// StyleFor resolves the colours and fonts of t. Colours are normalized, so
// an unreadable value falls back to black.
func StyleFor(t *doctpl.Table) TableStyle {
	headerFill := ParseColor(t.Header.BackgroundColor)
	headerText := ParseColor(t.Header.TextColor)
	rowText := ParseColor(t.Rows.TextColor)
	even := ParseColor(t.Rows.EvenBackgroundColor)
	odd := ParseColor(t.Rows.OddBackgroundColor)

	return TableStyle{
		HeaderStyle: CellStyle{
			FillColor: &headerFill,
			TextColor: &headerText,
			Font:      &FontSpec{Size: t.Header.FontSize},
		},
		AlternateRows: AlternateStyle{
			Even: CellStyle{FillColor: &even, TextColor: &rowText},
			Odd:  CellStyle{FillColor: &odd, TextColor: &rowText},
		},
		CellFont: FontSpec{Size: t.Rows.FontSize},
	}
}

// RowStyle returns the style of the row at position i inside its chunk.
// Every chunk starts with the even stripe.
func (s TableStyle) RowStyle(i int) CellStyle {
	result := CellStyle{Font: &s.CellFont}
	if i%2 == 0 {
		mergeStyle(&result, &s.AlternateRows.Even)
	} else {
		mergeStyle(&result, &s.AlternateRows.Odd)
	}
	return result
}

// mergeStyle copies non-nil fields from src to dst.
func mergeStyle(dst, src *CellStyle) {
	if src.FillColor != nil {
		dst.FillColor = src.FillColor
	}
	if src.TextColor != nil {
		dst.TextColor = src.TextColor
	}
	if src.Font != nil {
		dst.Font = src.Font
	}
}
