// Package pipeline provides the extension graph pipeline for extgraph.
//
// This package implements the complete snapshot → filters → process →
// layout → render pipeline that is used by the CLI, the HTTP API and the
// TUI. By centralizing this logic, every entry point resolves filters,
// hits the caches and lays out graphs the same way.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Resolve: Normalize the raw filter selection against the candidates
//     of the requested mode
//  2. Process: Build the GraphData for the mode (memoized by the result
//     cache and, optionally, a byte cache)
//  3. Layout: Compute node positions for the graph
//  4. Render: Generate output in various formats (JSON, DOT, SVG)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner, give it a snapshot and execute the pipeline:
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	if err := runner.LoadSnapshot(ctx, "snapshot.json"); err != nil {
//	    log.Fatal(err)
//	}
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Mode:    graph.ModeExtensionPoint,
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	data, info, err := runner.GraphWithCacheInfo(ctx, mode, sel)
//	l, hit, err := runner.ComputeLayout(ctx, data, opts)
//	artifacts, err := Render(ctx, l, data, opts)
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/extgraph/pkg/cache"
	"github.com/matzehuels/extgraph/pkg/errors"
	"github.com/matzehuels/extgraph/pkg/filter"
	"github.com/matzehuels/extgraph/pkg/graph"
	"github.com/matzehuels/extgraph/pkg/layout"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and TUI
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = float64(layout.DefaultFallbackWidth)

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 800.0

	// TTLGraph is how long encoded graphs stay in the byte cache. Keys are
	// content-addressed, so stale entries are unreachable rather than wrong.
	TTLGraph = 24 * time.Hour

	// TTLLayout is how long encoded layouts stay in the byte cache.
	TTLLayout = 24 * time.Hour
)

// Format constants for output formats.
const (
	FormatJSON  = "json"  // Layout JSON
	FormatGraph = "graph" // GraphData JSON
	FormatDOT   = "dot"
	FormatSVG   = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON:  true,
	FormatGraph: true,
	FormatDOT:   true,
	FormatSVG:   true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Graph options
	Mode      graph.Mode       `json:"mode,omitempty"`
	Selection filter.Selection `json:"selection"`
	Refresh   bool             `json:"refresh,omitempty"` // Bypass the byte cache

	// Layout options
	Width  float64       `json:"width,omitempty"`
	Height float64       `json:"height,omitempty"`
	Layout layout.Config `json:"layout"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // Detailed DOT labels

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the processed extension graph.
	Graph graph.GraphData

	// GraphHash is the content hash of the encoded graph.
	GraphHash string

	// Selection is the effective filter selection in canonical form. Empty
	// dimensions mean "no filter".
	Selection filter.Selection

	// Layout contains the node positions.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit a cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	ProcessTime time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ResultHit bool // Graph came from the in-memory result cache
	GraphHit  bool // Graph came from the byte cache
	LayoutHit bool // Layout came from the byte cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, graph, dot, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForGraph(); err != nil {
		return err
	}
	o.SetLayoutDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForGraph checks the mode and the selected identifiers and
// applies graph defaults. An empty mode becomes graph.DefaultMode; an
// unknown mode is an error.
func (o *Options) ValidateForGraph() error {
	mode, err := graph.ParseMode(string(o.Mode))
	if err != nil {
		return err
	}
	o.Mode = mode
	o.Selection = o.Selection.Normalize()
	if err := validateSelection(o.Selection); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	o.Layout = o.Layout.WithDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// LayoutOptions returns the layout engine options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Mode:   o.Mode,
		Width:  o.Width,
		Height: o.Height,
		Config: o.Layout,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:  o.Width,
		Height: o.Height,
		Config: o.Layout.WithDefaults(),
	}
}

// WantsFormat reports whether format was requested.
func (o *Options) WantsFormat(format string) bool {
	return slices.Contains(o.Formats, format)
}

// validateSelection checks every selected identifier at the request
// boundary.
func validateSelection(sel filter.Selection) error {
	for _, ids := range [][]string{
		sel.ContentProviders,
		sel.ContentConsumers,
		sel.ExtensionPoints,
		sel.ContentConsumersForExtensionPoint,
	} {
		if err := errors.ValidatePluginIDs(ids); err != nil {
			return err
		}
	}
	return nil
}
