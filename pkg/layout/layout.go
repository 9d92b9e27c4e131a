// Package layout places graph nodes in mode-specific columns.
//
// Each mode defines its columns left to right (see graph.Mode.Columns).
// Within a column, nodes are stacked top to bottom in the order they appear
// in GraphData.Nodes; nothing is sorted, so identical input always yields
// identical positions. The first column hugs the left margin, the last
// column the responsive right margin, and middle columns are spread evenly
// in between. The canvas is widened when the viewport is too narrow for the
// columns and heightened to fit the tallest column.
package layout

import (
	"github.com/matzehuels/extgraph/pkg/graph"
)

// Options are the inputs of Build besides the graph.
type Options struct {
	Mode   graph.Mode // Used only when the graph has no valid mode
	Width  float64    // Viewport width; Config.FallbackWidth when <= 0
	Height float64    // Viewport height; Config.MinHeight when <= 0
	Config Config     // Zero fields take their defaults
}

// Position is the placement of one node. X and Y are the top-left corner.
type Position struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Column int     `json:"column"`
	Row    int     `json:"row"`
}

// Bottom returns the y coordinate of the lower edge.
func (p Position) Bottom() float64 { return p.Y + p.Height }

// Right returns the x coordinate of the right edge.
func (p Position) Right() float64 { return p.X + p.Width }

// Result is a computed layout.
type Result struct {
	Mode           graph.Mode
	Positions      map[string]Position
	Columns        [][]string // Node ids per column, in row order
	RequiredWidth  float64
	RequiredHeight float64
}

type column struct {
	kind   graph.NodeKind
	width  float64
	height float64
	ids    []string
}

// Build lays out data. It never fails: an empty graph yields an empty
// position map and the minimum height.
func Build(data graph.GraphData, opts Options) Result {
	cfg := opts.Config.WithDefaults()
	mode := data.Mode
	if !mode.IsValid() {
		mode = opts.Mode
	}
	if !mode.IsValid() {
		mode = graph.DefaultMode
	}

	kinds := mode.Columns()
	cols := make([]column, len(kinds))
	index := make(map[graph.NodeKind]int, len(kinds))
	for i, k := range kinds {
		w, h := cfg.size(k)
		cols[i] = column{kind: k, width: w, height: h}
		index[k] = i
	}
	for _, n := range data.Nodes {
		if i, ok := index[n.Kind]; ok {
			cols[i].ids = append(cols[i].ids, n.ID)
		}
	}

	width := requiredWidth(opts.Width, cols, cfg)
	viewHeight := opts.Height
	if viewHeight <= 0 {
		viewHeight = cfg.MinHeight
	}
	top := cfg.HeaderOffset + GroupSpacing(viewHeight)

	res := Result{
		Mode:      mode,
		Positions: make(map[string]Position, len(data.Nodes)),
		Columns:   make([][]string, len(cols)),
	}

	xs := columnXs(width, cols, cfg)
	tallest := 0.0
	for ci, col := range cols {
		res.Columns[ci] = append([]string{}, col.ids...)
		for row, id := range col.ids {
			res.Positions[id] = Position{
				X:      xs[ci],
				Y:      top + float64(row)*(col.height+cfg.NodeGap),
				Width:  col.width,
				Height: col.height,
				Column: ci,
				Row:    row,
			}
		}
		if h := float64(len(col.ids)) * (col.height + cfg.NodeGap); h > tallest {
			tallest = h
		}
	}

	res.RequiredWidth = width
	res.RequiredHeight = max(top+tallest, cfg.MinHeight)
	if len(res.Positions) == 0 {
		res.RequiredHeight = cfg.MinHeight
	}
	return res
}

func (c Config) size(kind graph.NodeKind) (w, h float64) {
	switch kind {
	case graph.KindProvider, graph.KindConsumer:
		return c.NodeWidth, c.NodeHeight
	default:
		return c.BoxWidth, c.BoxHeight
	}
}

// requiredWidth returns the viewport width, widened until the columns fit
// side by side with at least ColumnGap between them. The right margin grows
// with the width, so widening repeats until stable.
func requiredWidth(viewport float64, cols []column, cfg Config) float64 {
	width := viewport
	if width <= 0 {
		width = cfg.FallbackWidth
	}

	content := cfg.LeftMargin
	for _, c := range cols {
		content += c.width
	}
	if len(cols) > 1 {
		content += float64(len(cols)-1) * cfg.ColumnGap
	}

	for i := 0; i < 4; i++ {
		need := content + RightMargin(width)
		if width >= need {
			break
		}
		width = need
	}
	return width
}

func columnXs(width float64, cols []column, cfg Config) []float64 {
	xs := make([]float64, len(cols))
	if len(cols) == 0 {
		return xs
	}
	xs[0] = cfg.LeftMargin
	if len(cols) == 1 {
		return xs
	}

	last := len(cols) - 1
	xs[last] = width - RightMargin(width) - cols[last].width

	bandStart := xs[0] + cols[0].width
	middle := 0.0
	for _, c := range cols[1:last] {
		middle += c.width
	}
	gap := (xs[last] - bandStart - middle) / float64(last)

	x := bandStart + gap
	for i := 1; i < last; i++ {
		xs[i] = x
		x += cols[i].width + gap
	}
	return xs
}

// Overlaps returns the pairs of node ids in the same column whose vertical
// ranges intersect. Build output never overlaps.
func (r Result) Overlaps() [][2]string {
	var out [][2]string
	for _, ids := range r.Columns {
		for i := 0; i < len(ids); i++ {
			a := r.Positions[ids[i]]
			for j := i + 1; j < len(ids); j++ {
				b := r.Positions[ids[j]]
				if a.Y < b.Bottom() && b.Y < a.Bottom() {
					out = append(out, [2]string{ids[i], ids[j]})
				}
			}
		}
	}
	return out
}

// Export converts the result into the serialized layout of data. Nodes
// keep the order of data.Nodes; nodes without a position are skipped, and
// so are edges touching them.
func (r Result) Export(data graph.GraphData) graph.Layout {
	l := graph.Layout{
		Mode:    r.Mode,
		Width:   r.RequiredWidth,
		Height:  r.RequiredHeight,
		Nodes:   make([]graph.Placement, 0, len(r.Positions)),
		Edges:   make([]graph.Dependency, 0, len(data.Dependencies)),
		Columns: r.Columns,
	}
	for _, n := range data.Nodes {
		p, ok := r.Positions[n.ID]
		if !ok {
			continue
		}
		l.Nodes = append(l.Nodes, graph.Placement{
			ID:     n.ID,
			Kind:   n.Kind,
			Label:  n.DisplayLabel(),
			X:      p.X,
			Y:      p.Y,
			Width:  p.Width,
			Height: p.Height,
			Column: p.Column,
			Row:    p.Row,
		})
	}
	for _, d := range data.Dependencies {
		if _, ok := r.Positions[d.From]; !ok {
			continue
		}
		if _, ok := r.Positions[d.To]; !ok {
			continue
		}
		l.Edges = append(l.Edges, d)
	}
	return l
}
