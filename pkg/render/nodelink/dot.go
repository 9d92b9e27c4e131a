package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/extgraph/pkg/graph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the kind and owning plugin to node labels.
	// When false, only the display label is shown.
	Detailed bool

	// Badges, when set, is rendered as a legend of the extension types
	// present in the view.
	Badges *graph.BadgeSet
}

var kindShapes = map[graph.NodeKind]string{
	graph.KindProvider:         "box",
	graph.KindConsumer:         "box",
	graph.KindExtension:        "note",
	graph.KindExtensionPoint:   "folder",
	graph.KindExposedComponent: "component",
}

var edgeStyles = map[graph.DependencyType]string{
	graph.DependencyLink:      `style=solid, color="#3871dc"`,
	graph.DependencyComponent: `style=dashed, color="#8f43b3"`,
	graph.DependencyFunction:  `style=dotted, color="#e0752d"`,
	graph.DependencyExposure:  `style=bold, color="#1a7f37"`,
	graph.DependencyExtension: `style=solid, color="#6e7781"`,
}

// ToDOT converts a graph to Graphviz DOT format. Nodes of one layout column
// share a rank; columns run left to right. The resulting DOT string can be
// rendered using [RenderSVG].
func ToDOT(data graph.GraphData, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.2;\n")
	fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", title(data.Mode, opts.Badges))
	buf.WriteString("\n")

	mode := data.Mode
	if !mode.IsValid() {
		mode = graph.DefaultMode
	}
	for i, kind := range mode.Columns() {
		nodes := data.NodesOfKind(kind)
		if len(nodes) == 0 {
			continue
		}
		fmt.Fprintf(&buf, "  subgraph col%d {\n    rank=same;\n", i)
		for _, n := range nodes {
			fmt.Fprintf(&buf, "    %q [%s];\n", n.ID, strings.Join(fmtAttrs(data, n, opts.Detailed), ", "))
		}
		buf.WriteString("  }\n")
	}

	buf.WriteString("\n")
	for _, d := range data.Dependencies {
		style, ok := edgeStyles[d.Type]
		if !ok {
			style = "style=solid"
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", d.From, d.To, style)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func title(mode graph.Mode, badges *graph.BadgeSet) string {
	t := string(mode)
	if badges == nil {
		return t
	}
	var types []string
	if badges.Link {
		types = append(types, string(graph.ExtensionLink))
	}
	if badges.Component {
		types = append(types, string(graph.ExtensionComponent))
	}
	if badges.Function {
		types = append(types, string(graph.ExtensionFunction))
	}
	if len(types) == 0 {
		return t
	}
	return t + " (" + strings.Join(types, ", ") + ")"
}

func fmtLabel(n graph.Node, detailed bool) string {
	label := n.DisplayLabel()
	if !detailed {
		return label
	}
	parts := []string{label, "kind: " + string(n.Kind)}
	if n.PluginID != "" && !n.IsPlugin() {
		parts = append(parts, "plugin: "+n.PluginID)
	}
	return strings.Join(parts, "\n")
}

func fmtAttrs(data graph.GraphData, n graph.Node, detailed bool) []string {
	shape, ok := kindShapes[n.Kind]
	if !ok {
		shape = "box"
	}
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed)), "shape=" + shape}
	if n.Kind == graph.KindExtensionPoint {
		if ep, ok := data.ExtensionPoint(n.RefID); ok && ep.Missing {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "color=\"#cf222e\"")
		}
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales with its
// container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
