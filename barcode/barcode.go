// Package barcode draws barcode elements as PNG images.
//
// Symbologies are named the way the designer names them: CODE128 (the
// default), CODE39, EAN13, EAN8, QR, PDF417 and DATAMATRIX. Images are
// rendered at twice the element's size in points, or at the symbol's
// natural module count when that is larger, so bars never blur.
package barcode

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	bc "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/datamatrix"
	"github.com/boombuler/barcode/ean"
	pdf417 "github.com/ruudk/golang-pdf417"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/jafranjemal/aavanamkit/asset"
)

// Supported formats.
const (
	Code128    = "CODE128"
	Code39     = "CODE39"
	EAN13      = "EAN13"
	EAN8       = "EAN8"
	QR         = "QR"
	PDF417     = "PDF417"
	DataMatrix = "DATAMATRIX"
)

// Sentinel errors for barcode generation.
var (
	ErrEncode        = errors.New("barcode: cannot encode text")
	ErrUnknownFormat = errors.New("barcode: unknown format")
)

// PixelsPerPoint is the raster density of generated images.
const PixelsPerPoint = 2

// MaxPixels caps each side of the raster requested by an element's size.
// Larger elements are drawn by scaling the capped image up.
const MaxPixels = 4096

const (
	pdf417Columns  = 10
	pdf417Security = 2
)

// Formats lists the supported format names.
func Formats() []string {
	return []string{Code128, Code39, EAN13, EAN8, QR, PDF417, DataMatrix}
}

// Canonical maps a format name as written in a template to one of the
// supported constants. Case, dashes and underscores are ignored and an empty
// name means Code128.
func Canonical(format string) (string, error) {
	f := strings.ToUpper(strings.NewReplacer("-", "", "_", "", " ", "").Replace(format))
	switch f {
	case "", Code128:
		return Code128, nil
	case Code39, EAN13, EAN8, PDF417, DataMatrix:
		return f, nil
	case QR, "QRCODE":
		return QR, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Encode renders text in the given format for an element of width x height
// points. Failures wrap ErrEncode.
func Encode(text, format string, width, height float64) (a *asset.Asset, err error) {
	f, err := Canonical(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if text == "" {
		return nil, fmt.Errorf("%w: empty %s payload", ErrEncode, f)
	}

	defer func() {
		if r := recover(); r != nil {
			a, err = nil, fmt.Errorf("%w: %s: %v", ErrEncode, f, r)
		}
	}()

	w, h := pixels(width), pixels(height)
	img, err := symbol(text, f, w, h)
	if err != nil {
		return nil, err
	}
	a, err = asset.EncodePNG(f+":"+text, img)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return a, nil
}

func symbol(text, format string, w, h int) (image.Image, error) {
	var (
		code bc.Barcode
		err  error
	)
	switch format {
	case Code128:
		code, err = code128.Encode(text)
	case Code39:
		code, err = code39.Encode(text, false, true)
	case EAN13, EAN8:
		code, err = ean.Encode(text)
		if err == nil && !eanLength(format, text) {
			err = fmt.Errorf("%d digits is not %s", len(text), format)
		}
	case DataMatrix:
		code, err = datamatrix.Encode(text)
	case PDF417:
		code = pdf417.Encode(text, pdf417Columns, pdf417Security)
	case QR:
		return qrImage(text, w, h)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %v", ErrEncode, format, text, err)
	}
	return scale(code, w, h)
}

func eanLength(format, text string) bool {
	if format == EAN8 {
		return len(text) == 7 || len(text) == 8
	}
	return len(text) == 12 || len(text) == 13
}

// scale grows code to at least w x h pixels without going below its natural
// size. Two-dimensional symbols keep square modules.
func scale(code bc.Barcode, w, h int) (image.Image, error) {
	b := code.Bounds()
	nw, nh := b.Dx(), b.Dy()
	if nh > 1 {
		side := max(min(w, h), nw, nh)
		w, h = side*nw/max(nw, nh), side*nh/max(nw, nh)
	}
	w, h = max(w, nw), max(h, nh)
	scaled, err := bc.Scale(code, w, h)
	if err != nil {
		return nil, fmt.Errorf("%w: scaling: %v", ErrEncode, err)
	}
	return scaled, nil
}

func qrImage(text string, w, h int) (image.Image, error) {
	q, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("%w: QR: %v", ErrEncode, err)
	}
	q.DisableBorder = true
	// A negative size asks for a fixed pixel size per module.
	side := min(w, h)
	if side < 21 {
		return q.Image(-1), nil
	}
	return q.Image(side), nil
}

func pixels(pt float64) int {
	if pt <= 0 || math.IsNaN(pt) || math.IsInf(pt, 0) {
		return 1
	}
	return int(min(math.Ceil(pt*PixelsPerPoint), MaxPixels))
}
