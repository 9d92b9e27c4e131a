package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/matzehuels/extgraph/pkg/buildinfo"
	"github.com/matzehuels/extgraph/pkg/errors"
	"github.com/matzehuels/extgraph/pkg/filter"
	"github.com/matzehuels/extgraph/pkg/graph"
	"github.com/matzehuels/extgraph/pkg/pipeline"
)

// Response headers.
const (
	HeaderCache     = "X-Cache"
	HeaderSelection = "X-Selection"
)

var contentTypes = map[string]string{
	pipeline.FormatJSON:  "application/json",
	pipeline.FormatGraph: "application/json",
	pipeline.FormatDOT:   "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatSVG:   "image/svg+xml",
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap, hash := s.runner.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"time":     time.Now().UTC().Format(time.RFC3339),
		"build":    buildinfo.Get(),
		"plugins":  len(snap),
		"snapshot": hash,
	})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := opts.ValidateForGraph(); err != nil {
		s.writeError(w, r, err)
		return
	}
	data, canonical, info, err := s.runner.GraphWithCacheInfo(r.Context(), opts.Mode, opts.Selection)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set(HeaderCache, cacheStatus(info.ResultHit || info.GraphHit))
	w.Header().Set(HeaderSelection, canonical.Encode(data.Mode).Encode())
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.execute(w, r, pipeline.FormatJSON)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	s.execute(w, r, format)
}

// execute runs the whole pipeline and writes the single requested artifact.
func (s *Server) execute(w http.ResponseWriter, r *http.Request, format string) {
	opts, err := s.options(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set(HeaderCache, cacheStatus(res.CacheInfo.LayoutHit))
	w.Header().Set(HeaderSelection, res.Selection.Encode(res.Graph.Mode).Encode())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

func (s *Server) handleCandidates(w http.ResponseWriter, r *http.Request) {
	mode, err := graph.ParseMode(r.URL.Query().Get(filter.ParamView))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.runner.Candidates(r.Context(), mode)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"size": s.runner.Results.Size()})
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	results, stored, err := s.runner.ClearCache(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("cache cleared", "results", results, "stored", stored)
	writeJSON(w, http.StatusOK, map[string]int{"results": results, "stored": stored})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.cfg.SnapshotPath == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "server has no snapshot source"))
		return
	}
	if err := s.runner.LoadSnapshot(r.Context(), s.cfg.SnapshotPath); err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, hash := s.runner.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{"plugins": len(snap), "snapshot": hash})
}

// options builds pipeline options from query parameters. Unlike the UI,
// the API rejects unknown views instead of falling back.
func (s *Server) options(q url.Values) (pipeline.Options, error) {
	mode, err := graph.ParseMode(q.Get(filter.ParamView))
	if err != nil {
		return pipeline.Options{}, err
	}
	_, sel := filter.ParseQuery(q)

	width, err := dimension(q, "width", s.cfg.Width)
	if err != nil {
		return pipeline.Options{}, err
	}
	height, err := dimension(q, "height", s.cfg.Height)
	if err != nil {
		return pipeline.Options{}, err
	}
	detailed, _ := strconv.ParseBool(q.Get("detailed"))
	refresh, _ := strconv.ParseBool(q.Get("refresh"))

	return pipeline.Options{
		Mode:      mode,
		Selection: sel,
		Refresh:   refresh,
		Width:     width,
		Height:    height,
		Layout:    s.cfg.Layout,
		Detailed:  detailed,
		Logger:    s.logger,
	}, nil
}

func dimension(q url.Values, key string, def float64) (float64, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be a positive number, got %q", key, raw)
	}
	return v, nil
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsClientError(err):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeNotFound), errors.Is(err, errors.ErrCodeFileNotFound):
		status = http.StatusNotFound
	}

	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	observabilityError(r, err)
	writeJSON(w, status, ErrorResponse{Code: code, Message: errors.UserMessage(err)})
}
