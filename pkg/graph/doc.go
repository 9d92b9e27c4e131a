// Package graph provides the output model of the extension graph engine and
// its serialization types.
//
// This package defines the canonical wire format for extgraph's graph data,
// used for JSON files, API responses, caching, and renderers.
//
// # Core Types
//
//   - [GraphData]: nodes, directed dependencies and the extension,
//     extension-point and exposed-component catalogs for one [Mode]
//   - [Node], [Dependency]: visual vertices and edges
//   - [Layout], [Placement]: a graph with absolute node positions
//
// # Constants
//
// This package is the single source of truth for modes, node kinds and
// dependency types:
//
//	graph.ModeAddedLinks        // "addedlinks"
//	graph.ModeExposedComponents // "exposedComponents"
//	graph.KindExtensionPoint    // "extensionpoint"
//	graph.DependencyExposure    // "exposure"
//
// # Node Identity
//
// Node ids are "<kind>:<ref>", so a plugin that both provides and consumes
// content appears as two distinct nodes:
//
//	graph.ProviderID("grafana-k8s-app")  // "provider:grafana-k8s-app"
//	graph.ConsumerID("grafana-k8s-app")  // "consumer:grafana-k8s-app"
//
// # Graph Serialization
//
//	data, _ := graph.MarshalGraph(g)            // GraphData → []byte
//	graph.WriteGraphFile(g, "graph.json")       // GraphData → File
//	g, _ := graph.ReadGraphFile("graph.json")   // File → GraphData
//
// # Concurrency
//
// A GraphData handed out by the engine is shared and must not be mutated.
// All functions are safe for concurrent reads.
package graph
