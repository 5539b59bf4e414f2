// Package shape resolves shape paint and rasterizes shapes for formats that
// cannot draw vector primitives at absolute positions.
package shape

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/vector"

	"github.com/jafranjemal/aavanamkit/asset"
	"github.com/jafranjemal/aavanamkit/colors"
	"github.com/jafranjemal/aavanamkit/doctpl"
)

// PixelsPerPoint is the raster density of Rasterize.
const PixelsPerPoint = 2

// kappa places cubic Bézier control points to approximate a quarter circle.
const kappa = 0.5522847498

// Paint is the resolved fill and stroke of a shape. An empty colour means
// the part is not drawn.
type Paint struct {
	Kind        string
	Fill        string
	Stroke      string
	StrokeWidth float64
}

// PaintOf resolves the paint of s. Colours are normalized. A line always has
// a stroke, black unless specified; unknown kinds draw as rectangles.
func PaintOf(s *doctpl.Shape) Paint {
	p := Paint{Kind: strings.ToLower(s.Shape), StrokeWidth: s.StrokeWidth}
	switch p.Kind {
	case doctpl.ShapeRect, doctpl.ShapeCircle, doctpl.ShapeLine:
	default:
		p.Kind = doctpl.ShapeRect
	}

	if s.Fill != "" && p.Kind != doctpl.ShapeLine {
		p.Fill = colors.Normalize(s.Fill)
	}
	if s.Stroke != "" {
		p.Stroke = colors.Normalize(s.Stroke)
	} else if p.Kind == doctpl.ShapeLine {
		p.Stroke = colors.Default
	}
	if p.Stroke != "" && (p.StrokeWidth <= 0 || math.IsNaN(p.StrokeWidth)) {
		p.StrokeWidth = 1
	}
	if p.Stroke == "" {
		p.StrokeWidth = 0
	}
	return p
}

// Visible reports whether anything would be drawn.
func (p Paint) Visible() bool { return p.Fill != "" || p.Stroke != "" }

// Style returns the fpdf-style draw operation: "F", "D", "FD" or "".
func (p Paint) Style() string {
	switch {
	case p.Fill != "" && p.Stroke != "":
		return "FD"
	case p.Fill != "":
		return "F"
	case p.Stroke != "":
		return "D"
	}
	return ""
}

// Bounds returns the box a shape occupies for the given element size. A
// line is as tall as its stroke.
func (p Paint) Bounds(width, height float64) (w, h float64) {
	if p.Kind == doctpl.ShapeLine {
		return width, math.Max(p.StrokeWidth, 1)
	}
	return width, height
}

// Rasterize draws s at its own size into a transparent PNG.
func Rasterize(s *doctpl.Shape) (*asset.Asset, error) {
	p := PaintOf(s)
	bw, bh := p.Bounds(s.Width, s.Height)
	w, h := px(bw), px(bh)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("shape: %q has no area", s.ID)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	sw := float32(p.StrokeWidth * PixelsPerPoint)
	fw, fh := float32(w), float32(h)

	switch p.Kind {
	case doctpl.ShapeLine:
		fill(dst, p.Stroke, func(z *vector.Rasterizer) { rect(z, 0, 0, fw, fh, false) })

	case doctpl.ShapeCircle:
		if p.Fill != "" {
			fill(dst, p.Fill, func(z *vector.Rasterizer) { ellipse(z, 0, 0, fw, fh, false) })
		}
		if p.Stroke != "" {
			fill(dst, p.Stroke, func(z *vector.Rasterizer) {
				ellipse(z, 0, 0, fw, fh, false)
				ellipse(z, sw, sw, fw-2*sw, fh-2*sw, true)
			})
		}

	default:
		if p.Fill != "" {
			fill(dst, p.Fill, func(z *vector.Rasterizer) { rect(z, 0, 0, fw, fh, false) })
		}
		if p.Stroke != "" {
			fill(dst, p.Stroke, func(z *vector.Rasterizer) {
				rect(z, 0, 0, fw, fh, false)
				rect(z, sw, sw, fw-2*sw, fh-2*sw, true)
			})
		}
	}

	return asset.EncodePNG("shape:"+s.ID, dst)
}

func fill(dst *image.NRGBA, hex string, path func(z *vector.Rasterizer)) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	path(z)
	r, g, bl := colors.RGB(hex)
	src := image.NewUniform(color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(bl), A: 0xff})
	z.Draw(dst, b, src, image.Point{})
}

// rect adds a rectangle path; reverse winds it the other way to cut a hole.
func rect(z *vector.Rasterizer, x, y, w, h float32, reverse bool) {
	if w <= 0 || h <= 0 {
		return
	}
	z.MoveTo(x, y)
	if reverse {
		z.LineTo(x, y+h)
		z.LineTo(x+w, y+h)
		z.LineTo(x+w, y)
	} else {
		z.LineTo(x+w, y)
		z.LineTo(x+w, y+h)
		z.LineTo(x, y+h)
	}
	z.ClosePath()
}

// ellipse adds the ellipse inscribed in the given box.
func ellipse(z *vector.Rasterizer, x, y, w, h float32, reverse bool) {
	if w <= 0 || h <= 0 {
		return
	}
	rx, ry := w/2, h/2
	cx, cy := x+rx, y+ry
	kx, ky := rx*kappa, ry*kappa

	z.MoveTo(cx+rx, cy)
	if reverse {
		z.CubeTo(cx+rx, cy-ky, cx+kx, cy-ry, cx, cy-ry)
		z.CubeTo(cx-kx, cy-ry, cx-rx, cy-ky, cx-rx, cy)
		z.CubeTo(cx-rx, cy+ky, cx-kx, cy+ry, cx, cy+ry)
		z.CubeTo(cx+kx, cy+ry, cx+rx, cy+ky, cx+rx, cy)
	} else {
		z.CubeTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
		z.CubeTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
		z.CubeTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
		z.CubeTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	}
	z.ClosePath()
}

func px(pt float64) int {
	if pt <= 0 || math.IsNaN(pt) || math.IsInf(pt, 0) {
		return 0
	}
	return int(math.Ceil(pt * PixelsPerPoint))
}
