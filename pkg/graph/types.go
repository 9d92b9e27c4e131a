package graph

import (
	"slices"
	"strings"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node kinds.
const (
	KindProvider         NodeKind = "provider"
	KindConsumer         NodeKind = "consumer"
	KindExtension        NodeKind = "extension"
	KindExtensionPoint   NodeKind = "extensionpoint"
	KindExposedComponent NodeKind = "exposedcomponent"
)

// Dependency types, used by renderers for edge styling.
const (
	DependencyLink      DependencyType = "link"
	DependencyComponent DependencyType = "component"
	DependencyFunction  DependencyType = "function"
	DependencyExposure  DependencyType = "exposure"
	DependencyExtension DependencyType = "extension"
)

// Extension types. Each corresponds to one "added" array of a plugin.
const (
	ExtensionLink      ExtensionType = "link"
	ExtensionComponent ExtensionType = "component"
	ExtensionFunction  ExtensionType = "function"
)

// ExtensionTypes lists all extension types in canonical order.
var ExtensionTypes = []ExtensionType{ExtensionLink, ExtensionComponent, ExtensionFunction}

// NodeKind tags what a node represents.
type NodeKind string

// DependencyType tags an edge for styling.
type DependencyType string

// ExtensionType is the type of an added extension.
type ExtensionType string

// DependencyType returns the edge type used for edges carrying this
// extension type.
func (t ExtensionType) DependencyType() DependencyType {
	return DependencyType(t)
}

// =============================================================================
// Node - Visual Vertex
// =============================================================================

// Node is one visual vertex of a graph.
type Node struct {
	ID       string   `json:"id"`
	Kind     NodeKind `json:"kind"`
	Label    string   `json:"label"`
	PluginID string   `json:"pluginId,omitempty"` // Owning plugin, empty for unresolved extension points
	RefID    string   `json:"refId"`              // Plugin or entity id the node stands for
}

// NodeID builds the graph-unique id of a node. Kinds live in separate
// namespaces so a plugin can be both a provider and a consumer.
func NodeID(kind NodeKind, ref string) string {
	return string(kind) + ":" + ref
}

// ProviderID returns the node id of a content provider.
func ProviderID(pluginID string) string { return NodeID(KindProvider, pluginID) }

// ConsumerID returns the node id of a content consumer.
func ConsumerID(pluginID string) string { return NodeID(KindConsumer, pluginID) }

// ExtensionID returns the node id of an extension.
func ExtensionID(id string) string { return NodeID(KindExtension, id) }

// ExtensionPointID returns the node id of an extension point.
func ExtensionPointID(id string) string { return NodeID(KindExtensionPoint, id) }

// ExposedComponentID returns the node id of an exposed component.
func ExposedComponentID(id string) string { return NodeID(KindExposedComponent, id) }

// IsPlugin reports whether the node represents a plugin (provider or consumer).
func (n *Node) IsPlugin() bool {
	return n.Kind == KindProvider || n.Kind == KindConsumer
}

// DisplayLabel returns the label if set, otherwise the referenced id.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.RefID
}

// =============================================================================
// Dependency - Directed Edge
// =============================================================================

// Dependency is a directed edge between two nodes of the same graph.
type Dependency struct {
	From string         `json:"from"`
	To   string         `json:"to"`
	Type DependencyType `json:"type"`
}

// =============================================================================
// Catalog Entries
// =============================================================================

// Extension is one added link, component or function.
type Extension struct {
	ID              string        `json:"id"`
	Type            ExtensionType `json:"type"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	ProvidingPlugin string        `json:"providingPlugin"`
	Targets         []string      `json:"targets"`
}

// ExtensionPoint is a slot a plugin declares for others to extend.
//
// Missing marks a placeholder synthesized for a target no plugin declares.
// Placeholders have no defining plugin and an empty provider list.
type ExtensionPoint struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	DefiningPlugin string   `json:"definingPlugin"`
	Providers      []string `json:"providers"`
	Missing        bool     `json:"missing,omitempty"`
}

// ExposedComponent is a component one plugin publishes for consumption by id.
type ExposedComponent struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	ProvidingPlugin string   `json:"providingPlugin"`
	Consumers       []string `json:"consumers"`
}

// =============================================================================
// GraphData - Output Aggregate
// =============================================================================

// GraphData is the renderable graph produced for one visualization mode.
//
// Catalogs are sorted by id. Nodes keep the order in which the processor
// created them; the layout engine uses that order as row order.
// A GraphData is shared by the result cache and must be treated as
// read-only.
type GraphData struct {
	Mode              Mode               `json:"mode"`
	Nodes             []Node             `json:"nodes"`
	Dependencies      []Dependency       `json:"dependencies"`
	ExtensionPoints   []ExtensionPoint   `json:"extensionPoints"`
	Extensions        []Extension        `json:"extensions"`
	ExposedComponents []ExposedComponent `json:"exposedComponents"`
}

// IsEmpty reports the "no data available" state: nothing to draw.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}

// Node returns the node with the given id.
func (g *GraphData) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodesOfKind returns the nodes of the given kind in graph order.
func (g *GraphData) NodesOfKind(kind NodeKind) []Node {
	var out []Node
	for _, n := range g.Nodes {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// PluginsOfKind returns the plugin ids of provider or consumer nodes,
// sorted.
func (g *GraphData) PluginsOfKind(kind NodeKind) []string {
	var out []string
	for _, n := range g.Nodes {
		if n.Kind == kind {
			out = append(out, n.RefID)
		}
	}
	slices.Sort(out)
	return out
}

// ExtensionPoint looks up a catalog entry by id.
func (g *GraphData) ExtensionPoint(id string) (ExtensionPoint, bool) {
	i, ok := slices.BinarySearchFunc(g.ExtensionPoints, id, func(ep ExtensionPoint, id string) int {
		return strings.Compare(ep.ID, id)
	})
	if !ok {
		return ExtensionPoint{}, false
	}
	return g.ExtensionPoints[i], true
}

// ExposedComponent looks up a catalog entry by id.
func (g *GraphData) ExposedComponent(id string) (ExposedComponent, bool) {
	i, ok := slices.BinarySearchFunc(g.ExposedComponents, id, func(c ExposedComponent, id string) int {
		return strings.Compare(c.ID, id)
	})
	if !ok {
		return ExposedComponent{}, false
	}
	return g.ExposedComponents[i], true
}

// Extension looks up a catalog entry by id.
func (g *GraphData) Extension(id string) (Extension, bool) {
	i, ok := slices.BinarySearchFunc(g.Extensions, id, func(e Extension, id string) int {
		return strings.Compare(e.ID, id)
	})
	if !ok {
		return Extension{}, false
	}
	return g.Extensions[i], true
}

// Stats summarizes a graph for logs and API responses.
type Stats struct {
	Nodes        int                    `json:"nodes"`
	Dependencies int                    `json:"dependencies"`
	ByKind       map[NodeKind]int       `json:"byKind"`
	ByType       map[DependencyType]int `json:"byType"`
}

// Stats counts nodes per kind and edges per type.
func (g *GraphData) Stats() Stats {
	s := Stats{
		Nodes:        len(g.Nodes),
		Dependencies: len(g.Dependencies),
		ByKind:       make(map[NodeKind]int),
		ByType:       make(map[DependencyType]int),
	}
	for _, n := range g.Nodes {
		s.ByKind[n.Kind]++
	}
	for _, d := range g.Dependencies {
		s.ByType[d.Type]++
	}
	return s
}

// BadgeSet records which extension types are present in a view.
type BadgeSet struct {
	Link      bool `json:"link"`
	Component bool `json:"component"`
	Function  bool `json:"function"`
}

// Set marks t as present.
func (b *BadgeSet) Set(t ExtensionType) {
	switch t {
	case ExtensionLink:
		b.Link = true
	case ExtensionComponent:
		b.Component = true
	case ExtensionFunction:
		b.Function = true
	}
}

// =============================================================================
// Display Names
// =============================================================================

// DisplayName shortens a plugin id for labels by trimming the conventional
// "grafana-" prefix and "-app" suffix. Ids that would become empty are
// returned unchanged.
func DisplayName(pluginID string) string {
	name := strings.TrimPrefix(pluginID, "grafana-")
	name = strings.TrimSuffix(name, "-app")
	if name == "" {
		return pluginID
	}
	return name
}
