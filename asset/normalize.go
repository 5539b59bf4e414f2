package asset

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"

	xdraw "golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// MaxPixels guards against decompression bombs.
	MaxPixels = 40_000_000

	// MaxDimension is the longest side kept when re-encoding; larger images
	// are scaled down.
	MaxDimension = 4096
)

var pdfMagic = []byte("%PDF-")

// Normalize inspects raw bytes and returns them in an embeddable form.
func Normalize(src string, data []byte) (*Asset, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s: no data", ErrUndecodable, src)
	}
	if bytes.HasPrefix(data, pdfMagic) {
		return &Asset{Source: src, ContentType: TypePDF, Data: data}, nil
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUndecodable, src, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %s: %dx%d pixels", ErrTooLarge, src, cfg.Width, cfg.Height)
	}

	if format == "jpeg" && cfg.Width <= MaxDimension && cfg.Height <= MaxDimension {
		return &Asset{Source: src, ContentType: TypeJPEG, Data: data, Width: cfg.Width, Height: cfg.Height}, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUndecodable, src, err)
	}
	return EncodePNG(src, img)
}

// EncodePNG re-encodes img as a non-interlaced 8-bit NRGBA PNG, scaling it
// down when its longest side exceeds MaxDimension.
func EncodePNG(src string, img image.Image) (*Asset, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %s: empty image", ErrUndecodable, src)
	}

	dw, dh := fit(w, h, MaxDimension)
	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	if dw == w && dh == h {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	}

	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("asset: encoding %s: %w", src, err)
	}
	return &Asset{Source: src, ContentType: TypePNG, Data: buf.Bytes(), Width: dw, Height: dh}, nil
}

func fit(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, h*limit/w)
	}
	return max(1, w*limit/h), limit
}
