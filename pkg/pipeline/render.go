package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/extgraph/pkg/graph"
	"github.com/matzehuels/extgraph/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats.
//
// The JSON layout is the canonical output for interactive renderers; DOT and
// SVG are static node-link renderings of the same graph.
func Render(ctx context.Context, l graph.Layout, data graph.GraphData, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var dot string
	dotFor := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(data, nodelink.Options{Detailed: opts.Detailed, Badges: l.Badges})
		}
		return dot
	}

	for _, format := range opts.Formats {
		var out []byte
		var err error

		switch format {
		case FormatJSON:
			out, err = graph.MarshalLayout(l)
		case FormatGraph:
			out, err = graph.MarshalGraph(data)
		case FormatDOT:
			out = []byte(dotFor())
		case FormatSVG:
			out, err = nodelink.RenderSVG(ctx, dotFor())
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = out
	}

	return artifacts, nil
}

// RenderFromLayoutData renders output from serialized layout data.
// This is useful when the layout was computed elsewhere (e.g., cached or
// written by `extgraph layout`).
func RenderFromLayoutData(ctx context.Context, layoutData []byte, data graph.GraphData, opts Options) (map[string][]byte, error) {
	parsed, err := graph.UnmarshalLayout(layoutData)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	return Render(ctx, parsed, data, opts)
}
