package pdf_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jafranjemal/aavanamkit/asset"
	"github.com/jafranjemal/aavanamkit/render"
	"github.com/jafranjemal/aavanamkit/render/pdf"
	"github.com/jafranjemal/aavanamkit/render/rendertest"
)

func TestRenderInvoice(t *testing.T) {
	b := pdf.New()
	doc := rendertest.Prepare(t, b, rendertest.Invoice(), rendertest.Data(10))

	var buf bytes.Buffer
	stats, err := b.Render(context.Background(), doc, &buf)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("output does not start with a PDF header: %q", buf.Bytes()[:min(16, buf.Len())])
	}
	if stats.Pages != 3 || stats.Pages != doc.PageCount() {
		t.Errorf("Pages = %d, want 3 (document says %d)", stats.Pages, doc.PageCount())
	}
	if got := bytes.Count(buf.Bytes(), []byte("/Type /Page\n")); got != 3 {
		t.Errorf("page objects = %d, want 3", got)
	}
	if !bytes.Contains(buf.Bytes(), []byte(pdf.Creator)) {
		t.Error("creator missing from document info")
	}

	var missing bool
	for _, w := range doc.Warnings {
		if w.ElementID == "stamp" && w.Kind == render.WarnAsset && errors.Is(w, rendertest.ErrMissing) {
			missing = true
		}
	}
	if !missing {
		t.Errorf("expected a warning for the broken image, got %v", doc.Warnings)
	}
}

func TestRenderEmptyTable(t *testing.T) {
	b := pdf.New()
	doc := rendertest.Prepare(t, b, rendertest.Invoice(), rendertest.Data(0))

	var buf bytes.Buffer
	stats, err := b.Render(context.Background(), doc, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Pages != 1 {
		t.Errorf("Pages = %d, want 1", stats.Pages)
	}
}

func TestRenderPDFImageWarns(t *testing.T) {
	b := pdf.New()
	doc := rendertest.Prepare(t, b, rendertest.Invoice(), rendertest.Data(1))
	for i, it := range doc.Items {
		if it.Element.Common().ID == "logo" {
			doc.Items[i].Asset = &asset.Asset{Source: "letter.pdf", ContentType: asset.TypePDF, Data: []byte("%PDF-1.4")}
		}
	}

	stats, err := b.Render(context.Background(), doc, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if len(stats.Warnings) != 1 || stats.Warnings[0].ElementID != "logo" {
		t.Errorf("warnings = %v, want one for logo", stats.Warnings)
	}
}

func TestRenderBrokenBackground(t *testing.T) {
	b := pdf.New()
	doc := rendertest.Prepare(t, b, rendertest.Invoice(), rendertest.Data(1))
	doc.Background.Image = &asset.Asset{Source: "letterhead.pdf", ContentType: asset.TypePDF, Data: []byte("not a pdf")}

	var buf bytes.Buffer
	stats, err := b.Render(context.Background(), doc, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats.Warnings) != 1 || stats.Warnings[0].Kind != render.WarnAsset {
		t.Errorf("warnings = %v, want one asset warning", stats.Warnings)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("document should still be written")
	}
}

func TestRenderCancelled(t *testing.T) {
	b := pdf.New()
	doc := rendertest.Prepare(t, b, rendertest.Invoice(), rendertest.Data(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.Render(ctx, doc, &bytes.Buffer{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestMeasureTextHeight(t *testing.T) {
	b := pdf.New()
	if h := b.MeasureTextHeight("", 100, 10); h != 0 {
		t.Errorf("empty text height = %v, want 0", h)
	}
	one := b.MeasureTextHeight("short", 200, 10)
	if one != 12 {
		t.Errorf("single line height = %v, want 12", one)
	}
	long := b.MeasureTextHeight("a considerably longer description that cannot fit in a narrow column", 60, 10)
	if long <= one {
		t.Errorf("wrapped height %v should exceed %v", long, one)
	}
	if b.Format() != render.PDF {
		t.Errorf("Format = %q", b.Format())
	}
}

func TestMeasureTextHeightNonASCII(t *testing.T) {
	b := pdf.New()
	tests := []struct {
		name  string
		text  string
		width float64
		want  float64
	}{
		{"latin-1", "Café €5", 100, 12},
		{"outside cp1252", "日本語テキスト", 40, 12},
		{"euro signs wrap", strings.Repeat("€", 10), 40, 24},
		{"newline", "Crème\nbrûlée", 200, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.MeasureTextHeight(tt.text, tt.width, 10); got != tt.want {
				t.Errorf("MeasureTextHeight(%q, %v) = %v, want %v", tt.text, tt.width, got, tt.want)
			}
		})
	}

	// Helvetica gives the accented vowels the width of the plain ones.
	for _, w := range []float64{40, 70, 120} {
		accented := b.MeasureTextHeight("Crème brûlée aux fraises", w, 10)
		plain := b.MeasureTextHeight("Creme brulee aux fraises", w, 10)
		if accented != plain {
			t.Errorf("width %v: accented height %v, plain %v", w, accented, plain)
		}
	}
}

func TestRenderNonASCII(t *testing.T) {
	b := pdf.New()
	data := rendertest.Data(0)
	data["customer"] = map[string]any{"name": "Société Générale, Zürich"}
	data["items"] = []any{
		map[string]any{"name": "Crème brûlée", "qty": 2.0, "price": "€ 12,50"},
		map[string]any{"name": "Smørrebrød og æbleskiver", "qty": 1.0, "price": "£3"},
		map[string]any{"name": "寿司 盛り合わせ", "qty": 3.0, "price": "¥1200"},
		map[string]any{"name": "Ελληνική σαλάτα", "qty": 1.0, "price": "9.99"},
	}
	doc := rendertest.Prepare(t, b, rendertest.Invoice(), data)

	var buf bytes.Buffer
	stats, err := b.Render(context.Background(), doc, &buf)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if stats.Pages != doc.PageCount() {
		t.Errorf("Pages = %d, document says %d", stats.Pages, doc.PageCount())
	}
	if got := bytes.Count(buf.Bytes(), []byte("/Type /Page\n")); got != stats.Pages {
		t.Errorf("page objects = %d, want %d", got, stats.Pages)
	}
}
