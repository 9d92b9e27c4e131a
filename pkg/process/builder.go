package process

import (
	"github.com/matzehuels/extgraph/pkg/graph"
)

// builder accumulates nodes and edges while enforcing the edge invariants:
// every endpoint exists, no self edges, no duplicate (from, to, type).
type builder struct {
	data  graph.GraphData
	nodes map[string]bool
	edges map[graph.Dependency]bool
}

func newBuilder(mode graph.Mode) *builder {
	return &builder{
		data: graph.GraphData{
			Mode:              mode,
			Nodes:             []graph.Node{},
			Dependencies:      []graph.Dependency{},
			ExtensionPoints:   []graph.ExtensionPoint{},
			Extensions:        []graph.Extension{},
			ExposedComponents: []graph.ExposedComponent{},
		},
		nodes: make(map[string]bool),
		edges: make(map[graph.Dependency]bool),
	}
}

// node adds n unless a node with the same id exists. Returns the node id.
func (b *builder) node(n graph.Node) string {
	if !b.nodes[n.ID] {
		b.nodes[n.ID] = true
		b.data.Nodes = append(b.data.Nodes, n)
	}
	return n.ID
}

func (b *builder) provider(pluginID string) string {
	return b.node(graph.Node{
		ID:       graph.ProviderID(pluginID),
		Kind:     graph.KindProvider,
		Label:    graph.DisplayName(pluginID),
		PluginID: pluginID,
		RefID:    pluginID,
	})
}

func (b *builder) consumer(pluginID string) string {
	return b.node(graph.Node{
		ID:       graph.ConsumerID(pluginID),
		Kind:     graph.KindConsumer,
		Label:    graph.DisplayName(pluginID),
		PluginID: pluginID,
		RefID:    pluginID,
	})
}

func (b *builder) entity(kind graph.NodeKind, id, title, owner string) string {
	if title == "" {
		title = id
	}
	return b.node(graph.Node{
		ID:       graph.NodeID(kind, id),
		Kind:     kind,
		Label:    title,
		PluginID: owner,
		RefID:    id,
	})
}

func (b *builder) edge(from, to string, t graph.DependencyType) {
	if from == to || !b.nodes[from] || !b.nodes[to] {
		return
	}
	d := graph.Dependency{From: from, To: to, Type: t}
	if b.edges[d] {
		return
	}
	b.edges[d] = true
	b.data.Dependencies = append(b.data.Dependencies, d)
}

func (b *builder) build() graph.GraphData {
	return b.data
}
