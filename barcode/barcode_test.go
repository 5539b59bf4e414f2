package barcode

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"github.com/jafranjemal/aavanamkit/asset"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", Code128},
		{"code128", Code128},
		{"CODE-39", Code39},
		{"ean_13", EAN13},
		{"EAN8", EAN8},
		{"qrcode", QR},
		{"QR", QR},
		{"pdf417", PDF417},
		{"DataMatrix", DataMatrix},
	}
	for _, tt := range tests {
		got, err := Canonical(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("Canonical(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := Canonical("MSI"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Canonical(MSI) error = %v, want ErrUnknownFormat", err)
	}
}

func TestEncodeFormats(t *testing.T) {
	tests := []struct {
		format string
		text   string
	}{
		{"", "INV-0001"},
		{Code39, "ABC-123"},
		{EAN13, "590123412345"},
		{EAN13, "5901234123457"},
		{EAN8, "9638507"},
		{QR, "https://example.com/invoice/1"},
		{PDF417, "PDF417 payload"},
		{DataMatrix, "datamatrix"},
	}
	for _, tt := range tests {
		t.Run(tt.format+"/"+tt.text, func(t *testing.T) {
			a, err := Encode(tt.text, tt.format, 150, 50)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if a.ContentType != asset.TypePNG {
				t.Errorf("content type = %s", a.ContentType)
			}
			img, err := png.Decode(bytes.NewReader(a.Data))
			if err != nil {
				t.Fatalf("output is not a PNG: %v", err)
			}
			if img.Bounds().Dx() != a.Width || a.Width == 0 || a.Height == 0 {
				t.Errorf("size = %dx%d, image %v", a.Width, a.Height, img.Bounds())
			}
		})
	}
}

func TestEncodeLinearSize(t *testing.T) {
	a, err := Encode("12345", Code128, 200, 40)
	if err != nil {
		t.Fatal(err)
	}
	if a.Width != 400 || a.Height != 80 {
		t.Errorf("size = %dx%d, want 400x80", a.Width, a.Height)
	}

	// Too narrow for the symbol: the natural width wins.
	a, err = Encode("A VERY LONG CODE 128 PAYLOAD", Code128, 5, 10)
	if err != nil {
		t.Fatal(err)
	}
	if a.Width <= 10 {
		t.Errorf("width = %d, want at least the module count", a.Width)
	}
}

func TestEncodeSizeCapped(t *testing.T) {
	tests := []struct {
		format string
		w, h   float64
	}{
		{Code128, 1e9, 1e12},
		{Code128, 300, 1e7},
		{QR, 5e6, 5e6},
		{DataMatrix, 1e8, 1e8},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			a, err := Encode("12345", tt.format, tt.w, tt.h)
			if err != nil {
				t.Fatal(err)
			}
			if a.Width > MaxPixels || a.Height > MaxPixels {
				t.Errorf("size = %dx%d, want at most %d per side", a.Width, a.Height, MaxPixels)
			}
		})
	}
}

func TestEncodeFailures(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		format string
	}{
		{"empty", "", Code128},
		{"ean letters", "ABCDEFGHIJKL", EAN13},
		{"ean bad checksum", "5901234123450", EAN13},
		{"ean8 length", "590123412345", EAN8},
		{"ean13 length", "9638507", EAN13},
		{"unknown format", "x", "ITF14"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.text, tt.format, 100, 40)
			if !errors.Is(err, ErrEncode) {
				t.Errorf("error = %v, want ErrEncode", err)
			}
		})
	}
}

func TestEncodeDegenerateSize(t *testing.T) {
	if _, err := Encode("12345", Code128, 0, -3); err != nil {
		t.Errorf("zero size should still encode at natural size: %v", err)
	}
}
