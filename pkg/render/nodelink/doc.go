// Package nodelink renders extension graphs as node-link diagrams.
//
// # Overview
//
// This package produces Graphviz DOT for a [graph.GraphData] and renders it
// to SVG. Nodes are grouped into the same columns the layout engine uses
// (providers on the left, consumers on the right), so a Graphviz rendering
// reads like the interactive view.
//
// # Usage
//
//	dot := nodelink.ToDOT(data, nodelink.Options{Detailed: false})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Styling
//
// Node shapes follow the node kind: plugins are rounded boxes, extension
// points are folders, extensions are notes and exposed components are
// components. Edge styles follow the dependency type, and extension points
// nobody declares are drawn dashed in red.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
