// Package asset loads the images a template refers to.
//
// Sources may be http(s) URLs, data URIs or, when enabled, local files.
// Whatever the source, a fetched asset is normalized to a form every
// renderer can embed: JPEG data is kept as is, a PDF document is kept as is
// for letterhead import, and every other raster format is re-encoded as an
// 8-bit PNG.
package asset

import (
	"context"
	"encoding/base64"
	"errors"
)

// Sentinel errors for asset loading failures.
var (
	ErrUnsupportedSource = errors.New("asset: unsupported source")
	ErrTooLarge          = errors.New("asset: source exceeds size limit")
	ErrUndecodable       = errors.New("asset: data is not a supported image")
	ErrEmptySource       = errors.New("asset: empty source")
)

// Content types produced by Normalize.
const (
	TypePNG  = "image/png"
	TypeJPEG = "image/jpeg"
	TypePDF  = "application/pdf"
)

// Asset is a fetched and normalized image.
type Asset struct {
	Source      string
	ContentType string
	Data        []byte

	// Pixel dimensions; zero for PDF documents.
	Width, Height int
}

// IsPDF reports whether the asset is a PDF document rather than an image.
func (a *Asset) IsPDF() bool { return a.ContentType == TypePDF }

// ImageType returns the short type name used by PDF writers ("PNG", "JPG").
func (a *Asset) ImageType() string {
	switch a.ContentType {
	case TypeJPEG:
		return "JPG"
	case TypePNG:
		return "PNG"
	}
	return ""
}

// Ext returns the file extension for the asset's type, without a dot.
func (a *Asset) Ext() string {
	switch a.ContentType {
	case TypeJPEG:
		return "jpeg"
	case TypePDF:
		return "pdf"
	}
	return "png"
}

// DataURI returns the asset encoded as a data URI.
func (a *Asset) DataURI() string {
	return "data:" + a.ContentType + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// Fetcher loads the asset named by src.
type Fetcher interface {
	Fetch(ctx context.Context, src string) (*Asset, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, src string) (*Asset, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, src string) (*Asset, error) {
	return f(ctx, src)
}
