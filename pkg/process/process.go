// Package process derives renderable graphs from plugin extension
// snapshots.
//
// All five visualization modes run the same pipeline, parameterized by a
// mode descriptor:
//
//  1. filter candidate providers, consumers and extension points
//  2. scan each plugin once, in sorted id order
//  3. accumulate entities into id-keyed maps (last write wins for
//     descriptive fields, targets are unioned)
//  4. derive providers and consumers from the accumulated relationships
//  5. emit nodes and edges through a builder that drops self edges,
//     duplicate edges and edges with unknown endpoints
//
// Graph never fails: unknown references become placeholder extension
// points, and a snapshot with nothing relevant yields an empty graph.
package process

import (
	"github.com/matzehuels/extgraph/pkg/filter"
	"github.com/matzehuels/extgraph/pkg/graph"
	"github.com/matzehuels/extgraph/pkg/plugin"
)

// consumerDimension selects which selection dimension filters the
// consumer column.
type consumerDimension int

const (
	contentConsumers consumerDimension = iota
	extensionPointConsumers
)

// descriptor parameterizes the shared algorithm for one mode.
type descriptor struct {
	mode           graph.Mode
	scan           []graph.ExtensionType // added arrays walked
	exposure       bool                  // walk exposed components and their dependents
	extensionNodes bool                  // emit one node per extension
	declaredPoints bool                  // keep declared points nothing contributes to
	pointFilter    bool                  // honour the extension-point dimension
	consumers      consumerDimension
}

var descriptors = map[graph.Mode]descriptor{
	graph.ModeExposedComponents: {
		mode:     graph.ModeExposedComponents,
		exposure: true,
	},
	graph.ModeExtensionPoint: {
		mode:           graph.ModeExtensionPoint,
		scan:           graph.ExtensionTypes,
		extensionNodes: true,
		declaredPoints: true,
		pointFilter:    true,
		consumers:      extensionPointConsumers,
	},
	graph.ModeAddedLinks: {
		mode: graph.ModeAddedLinks,
		scan: []graph.ExtensionType{graph.ExtensionLink},
	},
	graph.ModeAddedComponents: {
		mode: graph.ModeAddedComponents,
		scan: []graph.ExtensionType{graph.ExtensionComponent},
	},
	graph.ModeAddedFunctions: {
		mode: graph.ModeAddedFunctions,
		scan: []graph.ExtensionType{graph.ExtensionFunction},
	},
}

func descriptorFor(mode graph.Mode) descriptor {
	if d, ok := descriptors[mode]; ok {
		return d
	}
	return descriptors[graph.DefaultMode]
}

// Graph builds the graph of snap for mode under the effective filters.
// Unknown modes fall back to graph.DefaultMode. The snapshot is normalized
// before use and never modified.
func Graph(snap plugin.Snapshot, mode graph.Mode, eff filter.Effective) graph.GraphData {
	d := descriptorFor(mode)
	snap = snap.Normalize()

	if d.exposure {
		return exposedComponents(snap, d, eff)
	}
	return extensions(snap, d, eff)
}

// Run resolves sel against the candidates of mode and builds the graph.
func Run(snap plugin.Snapshot, mode graph.Mode, sel filter.Selection) graph.GraphData {
	return Graph(snap, mode, Resolve(snap, mode, sel))
}

// Resolve resolves a raw selection against the candidates of mode.
func Resolve(snap plugin.Snapshot, mode graph.Mode, sel filter.Selection) filter.Effective {
	return sel.Resolve(Candidates(snap, mode))
}

// Candidates returns the full candidate set of every filter dimension for
// mode: the plugins and extension points of the unfiltered graph.
func Candidates(snap plugin.Snapshot, mode graph.Mode) filter.Candidates {
	return CandidatesOf(Graph(snap, mode, filter.Effective{}))
}

// CandidatesOf extracts the candidate sets from an unfiltered graph.
func CandidatesOf(data graph.GraphData) filter.Candidates {
	consumers := nonNil(data.PluginsOfKind(graph.KindConsumer))
	points := make([]string, 0, len(data.ExtensionPoints))
	for _, ep := range data.ExtensionPoints {
		points = append(points, ep.ID)
	}
	return filter.Candidates{
		ContentProviders:                  nonNil(data.PluginsOfKind(graph.KindProvider)),
		ContentConsumers:                  consumers,
		ExtensionPoints:                   points,
		ContentConsumersForExtensionPoint: consumers,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
