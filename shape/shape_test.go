package shape

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/jafranjemal/aavanamkit/doctpl"
)

func newShape(kind, fill, stroke string, sw, w, h float64) *doctpl.Shape {
	return &doctpl.Shape{
		Base:        doctpl.Base{ID: "s", Type: doctpl.KindShape, Width: w, Height: h},
		Shape:       kind,
		Fill:        fill,
		Stroke:      stroke,
		StrokeWidth: sw,
	}
}

func TestPaintOf(t *testing.T) {
	tests := []struct {
		name  string
		shape *doctpl.Shape
		want  Paint
	}{
		{"filled rect", newShape("rect", "red", "", 0, 10, 10),
			Paint{Kind: "rect", Fill: "#ff0000"}},
		{"stroke default width", newShape("circle", "", "00FF00", 0, 10, 10),
			Paint{Kind: "circle", Stroke: "#00ff00", StrokeWidth: 1}},
		{"line defaults to black", newShape("line", "blue", "", 3, 10, 0),
			Paint{Kind: "line", Stroke: "#000000", StrokeWidth: 3}},
		{"unknown kind", newShape("star", "white", "", 0, 10, 10),
			Paint{Kind: "rect", Fill: "#ffffff"}},
		{"nothing", newShape("rect", "", "", 4, 10, 10),
			Paint{Kind: "rect"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PaintOf(tt.shape); got != tt.want {
				t.Errorf("PaintOf = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPaintStyle(t *testing.T) {
	if s := (Paint{Fill: "#000000", Stroke: "#ffffff"}).Style(); s != "FD" {
		t.Errorf("fill+stroke = %q", s)
	}
	if s := (Paint{Stroke: "#ffffff"}).Style(); s != "D" {
		t.Errorf("stroke = %q", s)
	}
	if (Paint{}).Visible() {
		t.Error("empty paint should be invisible")
	}
}

func decode(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return img
}

func alphaAt(img image.Image, x, y int) uint32 {
	_, _, _, a := img.At(x, y).RGBA()
	return a
}

func TestRasterizeRect(t *testing.T) {
	a, err := Rasterize(newShape("rect", "#ff0000", "", 0, 20, 10))
	if err != nil {
		t.Fatal(err)
	}
	if a.Width != 40 || a.Height != 20 {
		t.Errorf("size = %dx%d, want 40x20", a.Width, a.Height)
	}
	img := decode(t, a.Data)
	r, g, b, al := img.At(20, 10).RGBA()
	if r>>8 != 0xff || g != 0 || b != 0 || al>>8 != 0xff {
		t.Errorf("centre pixel = %d,%d,%d,%d, want opaque red", r>>8, g>>8, b>>8, al>>8)
	}
}

func TestRasterizeOutlineLeavesCentreEmpty(t *testing.T) {
	for _, kind := range []string{"rect", "circle"} {
		a, err := Rasterize(newShape(kind, "", "black", 2, 40, 40))
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		img := decode(t, a.Data)
		if alphaAt(img, 40, 40) != 0 {
			t.Errorf("%s: centre should be transparent", kind)
		}
		if alphaAt(img, 40, 1) == 0 {
			t.Errorf("%s: top edge should be stroked", kind)
		}
	}
}

func TestRasterizeCircleCornersEmpty(t *testing.T) {
	a, err := Rasterize(newShape("circle", "blue", "", 0, 30, 30))
	if err != nil {
		t.Fatal(err)
	}
	img := decode(t, a.Data)
	if alphaAt(img, 0, 0) != 0 {
		t.Error("corner of a circle should be transparent")
	}
	if alphaAt(img, 30, 30) == 0 {
		t.Error("centre of a filled circle should be painted")
	}
}

func TestRasterizeLine(t *testing.T) {
	a, err := Rasterize(newShape("line", "", "", 2, 50, 0))
	if err != nil {
		t.Fatal(err)
	}
	if a.Width != 100 || a.Height != 4 {
		t.Errorf("line size = %dx%d, want 100x4", a.Width, a.Height)
	}
}

func TestRasterizeNoArea(t *testing.T) {
	if _, err := Rasterize(newShape("rect", "red", "", 0, 0, 10)); err == nil {
		t.Error("expected error for zero width")
	}
}
