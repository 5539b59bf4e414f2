// Package rendertest provides templates, data and fetchers for testing
// backends.
package rendertest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/jafranjemal/aavanamkit/asset"
	"github.com/jafranjemal/aavanamkit/doctpl"
	"github.com/jafranjemal/aavanamkit/render"
	"github.com/jafranjemal/aavanamkit/table"
)

// Sources understood by Fetcher.
const (
	LogoURL   = "https://assets.test/logo.png"
	BrokenURL = "https://assets.test/missing.png"
)

// PNG returns a small opaque PNG of the given size.
func PNG(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 0x20, G: 0x60, B: 0xc0, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// ErrMissing is returned by Fetcher for BrokenURL.
var ErrMissing = errors.New("rendertest: asset not found")

// Fetcher serves LogoURL as a PNG and fails every other source.
var Fetcher = asset.FetcherFunc(func(_ context.Context, src string) (*asset.Asset, error) {
	if src == LogoURL {
		return asset.Normalize(src, PNG(8, 4))
	}
	return nil, fmt.Errorf("%s: %w", src, ErrMissing)
})

// Items returns n invoice lines.
func Items(n int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = map[string]any{
			"name":  fmt.Sprintf("Item %d", i+1),
			"qty":   float64(i + 1),
			"price": "9.99",
		}
	}
	return out
}

// Invoice returns a template exercising every element kind: a bound title, a
// logo, a broken image, a conditional note, a rule, a barcode and a table
// bound to "items[]" that fits a few rows per page.
func Invoice() *doctpl.Template {
	return &doctpl.Template{
		PageSettings: doctpl.PageSettings{
			Mode: doctpl.ModePaged, Size: "a4",
			MarginTop: 20, MarginLeft: 20,
		},
		Pages: []doctpl.Page{{
			ID:              "page-1",
			BackgroundColor: "ivory",
			Elements: doctpl.Elements{
				&doctpl.Text{
					Base: doctpl.Base{ID: "title", Type: doctpl.KindText, Width: 300, Height: 30,
						DataBinding: &doctpl.DataBinding{Property: "text", Field: "customer.name"}},
					Text: "Customer", FontSize: 18, FontStyle: "bold", Fill: "navy",
				},
				&doctpl.Image{
					Base: doctpl.Base{ID: "logo", Type: doctpl.KindImage, X: 450, Width: 80, Height: 40},
					Src:  LogoURL,
				},
				&doctpl.Image{
					Base: doctpl.Base{ID: "stamp", Type: doctpl.KindImage, X: 450, Y: 50, Width: 40, Height: 40},
					Src:  BrokenURL,
				},
				&doctpl.Text{
					Base: doctpl.Base{ID: "paid", Type: doctpl.KindText, Y: 40, Width: 200, Height: 20,
						Conditional: &doctpl.Conditional{Field: "paid", Operator: doctpl.OpEqual, Value: "true"}},
					Text: "PAID", Align: "center",
				},
				&doctpl.Shape{
					Base:  doctpl.Base{ID: "rule", Type: doctpl.KindShape, Y: 95, Width: 500},
					Shape: doctpl.ShapeLine, StrokeWidth: 1,
				},
				&doctpl.Barcode{
					Base: doctpl.Base{ID: "code", Type: doctpl.KindBarcode, Y: 700, Width: 200, Height: 50,
						DataBinding: &doctpl.DataBinding{Property: "text", Field: "number"}},
					Format: "CODE128",
				},
				&doctpl.Table{
					Base: doctpl.Base{ID: "items", Type: doctpl.KindTable, Y: 110, Width: 500, Height: 130,
						DataBinding: &doctpl.DataBinding{Property: "items", Field: "items[]"}},
					Columns: []doctpl.Column{
						{Header: "Item", DataKey: "name", Width: 300},
						{Header: "Qty", DataKey: "qty", Width: 100},
						{Header: "Price", DataKey: "price", Width: 100},
					},
					Header: doctpl.DefaultTableHeader,
					Rows:   doctpl.DefaultTableRows,
				},
			},
		}},
	}
}

// Data returns runtime data for Invoice with n table rows.
func Data(n int) map[string]any {
	return map[string]any{
		"customer": map[string]any{"name": "Acme Trading"},
		"number":   "INV-0042",
		"paid":     true,
		"items":    Items(n),
	}
}

// Prepare lays out tpl against data with b's metrics and Fetcher.
func Prepare(t testing.TB, b render.Backend, tpl *doctpl.Template, data any) *render.Document {
	t.Helper()
	doc, err := render.Prepare(context.Background(), tpl, data, table.MeasureFunc(b.MeasureTextHeight),
		render.Options{Fetcher: Fetcher})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	return doc
}
