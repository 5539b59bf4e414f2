// Package aavanamkit generates PDF, DOCX and HTML documents from designer
// templates and runtime data.
//
// A template (package doctpl) places text, images, shapes, barcodes and one
// data-driven table on a page. Generate binds the template to the data,
// paginates the table and renders the result with the backend for the
// requested output type:
//
//	tpl, _ := doctpl.Parse(templateJSON)
//	res, err := aavanamkit.Generate(ctx, aavanamkit.Request{
//		Template:   tpl,
//		Data:       map[string]any{"customer": map[string]any{"name": "Acme"}},
//		OutputType: "pdf",
//	})
//
// Problems confined to one element, such as an image that cannot be fetched
// or a barcode value the symbology rejects, do not fail the request; they are
// reported in Result.Warnings.
package aavanamkit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jafranjemal/aavanamkit/asset"
	"github.com/jafranjemal/aavanamkit/doctpl"
	"github.com/jafranjemal/aavanamkit/render"
	"github.com/jafranjemal/aavanamkit/render/docx"
	"github.com/jafranjemal/aavanamkit/render/html"
	"github.com/jafranjemal/aavanamkit/render/pdf"
	"github.com/jafranjemal/aavanamkit/table"
)

// DefaultCacheBytes sizes the in-memory asset cache of the default fetcher.
const DefaultCacheBytes = 32 << 20

// Request is one document generation.
type Request struct {
	Template *doctpl.Template `json:"template"`
	Data     any              `json:"data"`

	// Schema describes Data for the designer. The engine does not use it.
	Schema any `json:"schema,omitempty"`

	// OutputType is "pdf", "docx" or "html", in any case.
	OutputType string `json:"outputType"`
}

// Result is a generated document.
type Result struct {
	Format   render.Format
	Data     []byte
	Pages    int
	Warnings []Warning
}

// ContentType returns the MIME type of the document.
func (r *Result) ContentType() string { return r.Format.ContentType() }

// String returns the document as text. It is meant for HTML output.
func (r *Result) String() string { return string(r.Data) }

// Err joins the warnings into a single error, or returns nil if there are
// none. Each warning is an *Error whose kind matches its cause.
func (r *Result) Err() error {
	errs := make([]error, 0, len(r.Warnings))
	for _, w := range r.Warnings {
		errs = append(errs, newError(warningKind(w), "Generate", w))
	}
	return errors.Join(errs...)
}

// Engine generates documents. It is safe for concurrent use and keeps no
// state between requests other than its collaborators.
type Engine struct {
	logger      *slog.Logger
	fetcher     asset.Fetcher
	backends    map[render.Format]render.Backend
	concurrency int
	measure     table.MeasureFunc
}

// New creates an Engine with the PDF, DOCX and HTML backends.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.Default(),
		backends: map[render.Format]render.Backend{
			render.PDF:  pdf.New(),
			render.DOCX: docx.New(nil),
			render.HTML: html.New(nil),
		},
		concurrency: render.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.fetcher == nil {
		e.fetcher = asset.NewHTTPFetcher(
			asset.WithCache(asset.NewMemoryCache(DefaultCacheBytes)),
			asset.WithLogger(e.logger),
		)
	}
	return e
}

// Formats lists the output types the engine can produce.
func (e *Engine) Formats() []render.Format {
	var out []render.Format
	for _, f := range render.Formats() {
		if _, ok := e.backends[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Generate renders req. The returned error is an *Error of kind
// InvalidInput, UnsupportedOutputType or RenderFailure.
func (e *Engine) Generate(ctx context.Context, req Request) (*Result, error) {
	const op = "Generate"
	if err := checkRequest(op, req); err != nil {
		return nil, err
	}
	format, backend, err := e.backend(op, req.OutputType)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	log := e.logger.With("format", string(format))
	log.Debug("generating document")

	doc, err := render.Prepare(ctx, req.Template, req.Data, e.measureFor(backend), render.Options{
		Fetcher:     e.fetcher,
		Concurrency: e.concurrency,
		Logger:      log,
	})
	switch {
	case errors.Is(err, render.ErrNoTemplate), errors.Is(err, render.ErrNoPages):
		return nil, newError(InvalidInput, op, err)
	case err != nil:
		return nil, newError(RenderFailure, op, err)
	}

	var buf bytes.Buffer
	stats, err := backend.Render(ctx, doc, &buf)
	if err != nil {
		log.Error("rendering failed", "error", err)
		return nil, newError(RenderFailure, op, err)
	}

	warnings := append(append([]Warning(nil), doc.Warnings...), stats.Warnings...)
	for _, w := range warnings {
		log.Warn("element degraded", "element", w.ElementID, "kind", string(w.Kind), "error", w.Err)
	}
	log.Info("document generated",
		"pages", stats.Pages,
		"bytes", buf.Len(),
		"warnings", len(warnings),
		"duration", time.Since(start),
	)

	return &Result{
		Format:   format,
		Data:     buf.Bytes(),
		Pages:    stats.Pages,
		Warnings: warnings,
	}, nil
}

// ErrNoData reports a request without runtime data. Templates without
// bindings still need an empty object.
var ErrNoData = errors.New("aavanamkit: data is required")

// checkRequest rejects a missing template or missing data before the output
// type is looked at.
func checkRequest(op string, req Request) error {
	if req.Template == nil {
		return newError(InvalidInput, op, render.ErrNoTemplate)
	}
	if req.Data == nil {
		return newError(InvalidInput, op, ErrNoData)
	}
	return nil
}

func (e *Engine) backend(op, outputType string) (render.Format, render.Backend, error) {
	format, ok := render.ParseFormat(outputType)
	if !ok {
		return "", nil, newError(UnsupportedOutputType, op, fmt.Errorf("output type %q", outputType))
	}
	backend, ok := e.backends[format]
	if !ok {
		return "", nil, newError(UnsupportedOutputType, op, fmt.Errorf("no backend for %s", format))
	}
	return format, backend, nil
}

func (e *Engine) measureFor(b render.Backend) table.MeasureFunc {
	if e.measure != nil {
		return e.measure
	}
	return b.MeasureTextHeight
}

// GenerateJSON decodes a template and data from JSON and generates the
// document. Empty or null data is rejected like a nil Request.Data.
func (e *Engine) GenerateJSON(ctx context.Context, templateJSON, dataJSON []byte, outputType string) (*Result, error) {
	const op = "GenerateJSON"
	tpl, err := doctpl.Parse(templateJSON)
	if err != nil {
		return nil, newError(InvalidInput, op, err)
	}
	var data any
	if len(bytes.TrimSpace(dataJSON)) > 0 {
		if err := json.Unmarshal(dataJSON, &data); err != nil {
			return nil, newError(InvalidInput, op, fmt.Errorf("decoding data: %w", err))
		}
	}
	if data == nil {
		return nil, newError(InvalidInput, op, ErrNoData)
	}
	return e.Generate(ctx, Request{Template: tpl, Data: data, OutputType: outputType})
}

var defaultEngine = sync.OnceValue(func() *Engine { return New() })

// Generate renders req with a shared Engine using the default options.
func Generate(ctx context.Context, req Request) (*Result, error) {
	return defaultEngine().Generate(ctx, req)
}

// GenerateJSON is Engine.GenerateJSON on the shared default Engine.
func GenerateJSON(ctx context.Context, templateJSON, dataJSON []byte, outputType string) (*Result, error) {
	return defaultEngine().GenerateJSON(ctx, templateJSON, dataJSON, outputType)
}
