package cache

import (
	"github.com/matzehuels/extgraph/pkg/filter"
	"github.com/matzehuels/extgraph/pkg/graph"
)

// Keyer builds byte-cache keys. Keys are content-addressed: they include a
// hash of the snapshot or graph they derive from.
type Keyer interface {
	// GraphKey addresses an encoded graph of one snapshot.
	GraphKey(snapshotHash string, mode graph.Mode, sel filter.Selection) string

	// LayoutKey addresses an encoded layout of one graph.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// LayoutKeyOpts holds the layout inputs besides the graph itself.
type LayoutKeyOpts struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Config any     `json:"config,omitempty"`
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey hashes the snapshot hash together with the canonical result key.
func (DefaultKeyer) GraphKey(snapshotHash string, mode graph.Mode, sel filter.Selection) string {
	return hashKey("graph", snapshotHash, ResultKey(mode, sel))
}

// LayoutKey hashes the graph hash together with the layout options.
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}
