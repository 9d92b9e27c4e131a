package process

import (
	"github.com/matzehuels/extgraph/pkg/graph"
	"github.com/matzehuels/extgraph/pkg/plugin"
)

// BadgeTypes reports which extension types target the extension points of
// an added-mode graph, across every plugin of the snapshot. A point extended
// by both links and functions shows both badges, even in the links view.
// Other modes yield an empty set.
func BadgeTypes(snap plugin.Snapshot, data graph.GraphData) graph.BadgeSet {
	var badges graph.BadgeSet
	if !data.Mode.IsAdded() || len(data.ExtensionPoints) == 0 {
		return badges
	}

	present := make(map[string]bool, len(data.ExtensionPoints))
	for _, ep := range data.ExtensionPoints {
		present[ep.ID] = true
	}

	for _, pid := range snap.PluginIDs() {
		app := snap[pid]
		for _, t := range graph.ExtensionTypes {
			for _, c := range app.Added(t) {
				for _, target := range c.Targets {
					if present[target] {
						badges.Set(t)
						break
					}
				}
			}
		}
	}
	return badges
}
