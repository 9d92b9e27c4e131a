// Package render holds the renderers that turn extension graphs into
// pictures.
//
// The engine itself stops at positioned nodes (see pkg/layout); everything
// here is an outer collaborator. The [nodelink] subpackage exports a
// GraphData as Graphviz DOT, one rank per layout column, and renders it to
// SVG in-process.
//
//	dot := nodelink.ToDOT(data, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
package render
