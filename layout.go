package aavanamkit

import (
	"context"
	"errors"

	"github.com/jafranjemal/aavanamkit/render"
)

// Plan is the pagination of a document, computed without rendering it.
type Plan struct {
	Format render.Format `json:"format"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Roll   bool          `json:"roll"`
	Pages  int           `json:"pages"`

	// Table is the id of the paginated table, or "" when none is shown.
	Table  string      `json:"table,omitempty"`
	Chunks []PlanChunk `json:"chunks"`

	Warnings []Warning `json:"-"`
}

// PlanChunk lists the data rows drawn on one page.
type PlanChunk struct {
	Page   int     `json:"page"`
	Rows   []int   `json:"rows"`
	Height float64 `json:"height"`
}

// Layout binds req.Template to req.Data and paginates its table with the
// measurements of the requested backend. Images are not fetched, so the plan
// carries only binding and layout warnings.
func (e *Engine) Layout(ctx context.Context, req Request) (*Plan, error) {
	const op = "Layout"
	if err := checkRequest(op, req); err != nil {
		return nil, err
	}
	format, backend, err := e.backend(op, req.OutputType)
	if err != nil {
		return nil, err
	}
	doc, err := render.Prepare(ctx, req.Template, req.Data, e.measureFor(backend), render.Options{
		Logger:     e.logger,
		SkipAssets: true,
	})
	switch {
	case errors.Is(err, render.ErrNoTemplate), errors.Is(err, render.ErrNoPages):
		return nil, newError(InvalidInput, op, err)
	case err != nil:
		return nil, newError(RenderFailure, op, err)
	}

	plan := &Plan{
		Format:   format,
		Width:    doc.Width,
		Height:   doc.Height,
		Roll:     doc.Roll,
		Pages:    doc.PageCount(),
		Chunks:   []PlanChunk{},
		Warnings: doc.Warnings,
	}
	if doc.Table != nil {
		plan.Table = doc.Table.Element.ID
		for i := 0; i < plan.Pages; i++ {
			chunk := doc.Chunk(i)
			pc := PlanChunk{Page: i + 1, Rows: make([]int, 0, len(chunk.Rows)), Height: chunk.Height()}
			for _, r := range chunk.Rows {
				pc.Rows = append(pc.Rows, r.Index)
			}
			plan.Chunks = append(plan.Chunks, pc)
		}
	}
	return plan, nil
}
