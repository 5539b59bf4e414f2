package aavanamkit

import (
	"log/slog"

	"github.com/jafranjemal/aavanamkit/asset"
	"github.com/jafranjemal/aavanamkit/render"
	"github.com/jafranjemal/aavanamkit/table"
)

// Option is a functional option for configuring an Engine via New.
type Option func(*Engine)

// WithLogger sets the structured logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithFetcher sets how image sources are loaded. The default is an
// asset.HTTPFetcher with an in-memory cache and no file access.
func WithFetcher(f asset.Fetcher) Option {
	return func(e *Engine) {
		e.fetcher = f
	}
}

// WithBackend installs or replaces the backend for b.Format().
func WithBackend(b render.Backend) Option {
	return func(e *Engine) {
		e.backends[b.Format()] = b
	}
}

// WithConcurrency bounds the number of parallel image fetches per request.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		e.concurrency = n
	}
}

// WithTextMeasurer makes every backend paginate tables with m instead of its
// own font metrics, so that all formats produce the same page breaks.
func WithTextMeasurer(m table.MeasureFunc) Option {
	return func(e *Engine) {
		e.measure = m
	}
}
