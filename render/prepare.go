package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jafranjemal/aavanamkit/asset"
	"github.com/jafranjemal/aavanamkit/barcode"
	"github.com/jafranjemal/aavanamkit/binding"
	"github.com/jafranjemal/aavanamkit/colors"
	"github.com/jafranjemal/aavanamkit/doctpl"
	"github.com/jafranjemal/aavanamkit/table"
)

// Sentinel errors returned by Prepare.
var (
	ErrNoTemplate = errors.New("render: template is nil")
	ErrNoPages    = errors.New("render: template has no pages")
)

// DefaultConcurrency bounds parallel asset fetches.
const DefaultConcurrency = 4

// Options are the collaborators of Prepare.
type Options struct {
	Fetcher     asset.Fetcher
	Concurrency int
	Logger      *slog.Logger

	// SkipAssets lays the document out without fetching images or encoding
	// barcodes.
	SkipAssets bool
}

// Prepare resolves tpl against data and lays it out. measure is the text
// measurement used for table pagination.
//
// Only the first page of the template is used. The first Table element
// paginates; further tables are skipped with a warning. Image fetches run
// concurrently; a failed fetch or barcode becomes a warning and the element
// is left without an asset.
func Prepare(ctx context.Context, tpl *doctpl.Template, data any, measure table.MeasureFunc, opts Options) (*Document, error) {
	if tpl == nil {
		return nil, ErrNoTemplate
	}
	page := tpl.FirstPage()
	if page == nil {
		return nil, ErrNoPages
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	settings := tpl.PageSettings.Normalized()
	doc := &Document{
		Settings: settings,
		Width:    settings.Width,
		Height:   settings.Height,
		Roll:     settings.IsRoll(),
	}
	if page.BackgroundColor != "" {
		doc.Background.Color = colors.Normalize(page.BackgroundColor)
	}
	if n := tpl.IgnoredPages(); n > 0 {
		doc.Warn("", WarnLayout, fmt.Errorf("only the first page is rendered; %d more ignored", n))
	}

	var tbl *doctpl.Table
	for _, el := range page.Elements {
		switch e := el.(type) {
		case *doctpl.Table:
			if tbl != nil {
				doc.Warn(e.ID, WarnLayout, errors.New("only one table per page is paginated; table skipped"))
				continue
			}
			tbl = e
		case *doctpl.Unknown:
			logger.Debug("skipping unknown element", "id", e.ID, "type", e.Type)
		default:
			if !binding.IsVisible(el, data) {
				continue
			}
			doc.Items = append(doc.Items, Item{Element: binding.Bind(el, data)})
		}
	}

	if tbl != nil && binding.IsVisible(tbl, data) {
		bound := binding.Bind(tbl, data).(*doctpl.Table)
		l := table.Layouter{Measure: measure, Unbounded: doc.Roll}
		doc.Table = &Table{
			Element: bound,
			Chunks:  l.Layout(bound, bound.Items),
			Style:   table.StyleFor(bound),
		}
	}

	if !opts.SkipAssets {
		if err := doc.fetchAssets(ctx, page.BackgroundImage, opts, logger); err != nil {
			return nil, err
		}
		doc.encodeBarcodes()
	} else if err := ctx.Err(); err != nil {
		return nil, err
	}

	if doc.Roll {
		doc.Height = math.Max(1, doc.contentBottom()+settings.MarginBottom)
	}
	return doc, nil
}

// fetchAssets loads the background and every image source once, in
// parallel. Results are attached in document order.
func (d *Document) fetchAssets(ctx context.Context, background string, opts Options, logger *slog.Logger) error {
	var sources []string
	seen := make(map[string]bool)
	add := func(src string) {
		if src != "" && !seen[src] {
			seen[src] = true
			sources = append(sources, src)
		}
	}
	add(background)
	for _, it := range d.Items {
		if img, ok := it.Element.(*doctpl.Image); ok {
			add(img.Src)
		}
	}
	if len(sources) == 0 {
		return nil
	}

	fetched := make(map[string]*asset.Asset, len(sources))
	failed := make(map[string]error)
	if opts.Fetcher == nil {
		for _, src := range sources {
			failed[src] = errors.New("no asset fetcher configured")
		}
	} else {
		limit := opts.Concurrency
		if limit <= 0 {
			limit = DefaultConcurrency
		}
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)
		for _, src := range sources {
			src := src
			g.Go(func() error {
				a, err := opts.Fetcher.Fetch(gctx, src)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failed[src] = err
					return nil
				}
				fetched[src] = a
				return nil
			})
		}
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	if background != "" {
		if a, ok := fetched[background]; ok {
			d.Background.Image = a
		} else {
			d.Warn("", WarnAsset, fmt.Errorf("page background: %w", failed[background]))
		}
	}
	for i := range d.Items {
		img, ok := d.Items[i].Element.(*doctpl.Image)
		if !ok || img.Src == "" {
			continue
		}
		if a, ok := fetched[img.Src]; ok {
			d.Items[i].Asset = a
			continue
		}
		logger.Warn("image fetch failed", "element", img.ID, "error", failed[img.Src])
		d.Warn(img.ID, WarnAsset, failed[img.Src])
	}
	return nil
}

func (d *Document) encodeBarcodes() {
	for i := range d.Items {
		b, ok := d.Items[i].Element.(*doctpl.Barcode)
		if !ok {
			continue
		}
		a, err := barcode.Encode(b.Text, b.Format, b.Width, b.Height)
		if err != nil {
			d.Warn(b.ID, WarnBarcode, err)
			continue
		}
		d.Items[i].Asset = a
	}
}

// contentBottom is the lowest point drawn, used to size roll pages.
func (d *Document) contentBottom() float64 {
	bottom := d.Settings.MarginTop
	for _, it := range d.Items {
		b := it.Element.Common()
		_, y := d.Origin(b)
		bottom = math.Max(bottom, y+b.Height)
	}
	if d.Table != nil {
		_, y := d.Origin(&d.Table.Element.Base)
		var rows float64
		for _, c := range d.Table.Chunks {
			rows += c.Height()
		}
		bottom = math.Max(bottom, y+d.Table.Element.Header.Height+rows)
	}
	return bottom
}
