// Package server exposes the document engine over HTTP.
//
// Routes:
//
//	GET    /health            liveness and the supported output types
//	POST   /v1/generate       render {template, data, schema?, outputType}
//	POST   /v1/layout         pagination plan for the same body
//	DELETE /v1/cache/assets   purge the shared asset cache, when configured
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jafranjemal/aavanamkit"
	"github.com/jafranjemal/aavanamkit/render"
)

// Response headers set by /v1/generate.
const (
	PageCountHeader = "X-Page-Count"
	WarningsHeader  = "X-Render-Warnings"
)

// DefaultMaxBodyBytes bounds a request body when Options leaves it zero.
const DefaultMaxBodyBytes = 32 << 20

// Purger empties a shared cache. *asset.RedisCache implements it.
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

// Options configure a Server.
type Options struct {
	Logger       *slog.Logger
	MaxBodyBytes int64
	// AssetCache, when set, enables DELETE /v1/cache/assets.
	AssetCache Purger
}

// Server handles document requests with an Engine.
type Server struct {
	engine  *aavanamkit.Engine
	logger  *slog.Logger
	maxBody int64
	cache   Purger
}

// New creates a Server.
func New(e *aavanamkit.Engine, opts Options) *Server {
	s := &Server{engine: e, logger: opts.Logger, maxBody: opts.MaxBodyBytes, cache: opts.AssetCache}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	return s
}

// Handler returns the router with all middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Recoverer(s.logger))
	r.Use(Logger(s.logger))

	r.Get("/health", s.health)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/generate", s.generate)
		r.Post("/layout", s.layout)
		if s.cache != nil {
			r.Delete("/cache/assets", s.purgeAssets)
		}
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"formats": s.engine.Formats(),
	})
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	res, err := s.engine.Generate(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	for _, warn := range res.Warnings {
		s.logger.Warn("render warning",
			"request_id", RequestIDFrom(r.Context()),
			"element", warn.ElementID,
			"kind", string(warn.Kind),
			"error", warn.Err,
		)
	}

	h := w.Header()
	h.Set("Content-Type", res.ContentType())
	h.Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "document."+string(res.Format)))
	h.Set("Content-Length", strconv.Itoa(len(res.Data)))
	h.Set(PageCountHeader, strconv.Itoa(res.Pages))
	h.Set(WarningsHeader, strconv.Itoa(len(res.Warnings)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(res.Data); err != nil {
		s.logger.Debug("writing document", "error", err)
	}
}

type layoutResponse struct {
	*aavanamkit.Plan
	Warnings []string `json:"warnings"`
}

func (s *Server) layout(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	if req.OutputType == "" {
		req.OutputType = string(render.PDF)
	}

	plan, err := s.engine.Layout(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp := layoutResponse{Plan: plan, Warnings: []string{}}
	for _, warn := range plan.Warnings {
		resp.Warnings = append(resp.Warnings, warn.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) purgeAssets(w http.ResponseWriter, r *http.Request) {
	n, err := s.cache.Purge(r.Context())
	if err != nil {
		s.logger.Error("purging asset cache", "error", err)
		writeError(w, http.StatusInternalServerError, "purging asset cache failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"purged": n})
}

// decode reads a JSON request body. On failure it writes the error response
// and returns false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (aavanamkit.Request, bool) {
	var req aavanamkit.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return req, false
		}
		writeError(w, http.StatusBadRequest, "malformed request: "+err.Error())
		return req, false
	}
	return req, true
}

// fail writes the response for an engine error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("generation failed", "request_id", RequestIDFrom(r.Context()), "error", err)
	}
	writeError(w, status, err.Error())
}

func statusOf(err error) int {
	switch aavanamkit.KindOf(err) {
	case aavanamkit.InvalidInput:
		return http.StatusBadRequest
	case aavanamkit.UnsupportedOutputType:
		return http.StatusUnsupportedMediaType
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
