package render

import (
	"strings"

	"github.com/jafranjemal/aavanamkit/colors"
	"github.com/jafranjemal/aavanamkit/doctpl"
)

// DefaultFontSize applies to text elements that do not set one.
const DefaultFontSize = 12.0

// Text alignments.
const (
	AlignLeft    = "left"
	AlignCenter  = "center"
	AlignRight   = "right"
	AlignJustify = "justify"
)

// Font is the resolved typography of a text element.
type Font struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
	Align  string
	Color  string // normalized "#rrggbb"
}

// FontOf resolves the typography of t.
func FontOf(t *doctpl.Text) Font {
	f := Font{
		Family: t.FontFamily,
		Size:   t.FontSize,
		Align:  AlignLeft,
		Color:  colors.Normalize(t.Fill),
	}
	if f.Size <= 0 {
		f.Size = DefaultFontSize
	}
	style := strings.ToLower(t.FontStyle)
	f.Bold = strings.Contains(style, "bold")
	f.Italic = strings.Contains(style, "italic") || strings.Contains(style, "oblique")

	switch a := strings.ToLower(t.Align); a {
	case AlignCenter, AlignRight, AlignJustify:
		f.Align = a
	}
	return f
}
