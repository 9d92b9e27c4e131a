// Package pkg provides the core libraries for extgraph, the plugin extension
// dependency graph engine.
//
// # Overview
//
// A host application and its plugins declare extension points, contribute
// links, components and functions to them, and expose components for other
// plugins to embed. extgraph turns a snapshot of that metadata into a graph
// of who extends whom, filtered and laid out for display.
//
//  1. [plugin] - Snapshot model and decoding (JSON, YAML, remote URLs)
//  2. [filter] - Selections, effective filters and UI query parameters
//  3. [process] - One processor per visualization mode
//  4. [layout] - Column layout of a processed graph
//  5. [pipeline] - Orchestration with result and byte caching
//  6. [graph] - Graph and layout types with their JSON encoding
//
// # Architecture
//
// The typical data flow:
//
//	Snapshot file or URL
//	         ↓
//	    [plugin] package (decode, normalize)
//	         ↓
//	    [filter] package (selection → effective filter)
//	         ↓
//	    [process] package (mode processor → GraphData)
//	         ↓
//	    [layout] package (columns → positions)
//	         ↓
//	    JSON/DOT/SVG output
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	if err := runner.LoadSnapshot(ctx, "plugins.json"); err != nil {
//	    return err
//	}
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Mode:    graph.ModeExtensionPoint,
//	    Formats: []string{pipeline.FormatSVG},
//	})
//
// # Supporting Packages
//
//   - [cache] - Byte caches (memory, file, Redis) and the result cache
//   - [config] - TOML, .env and environment configuration
//   - [errors] - Coded errors and input validation
//   - [httputil] - Remote snapshot fetching with retry
//   - [observability] - Hooks and OpenTelemetry tracing
//   - [render/nodelink] - Graphviz DOT and SVG rendering
//   - [watch] - Snapshot file watching
//
// [plugin]: github.com/matzehuels/extgraph/pkg/plugin
// [filter]: github.com/matzehuels/extgraph/pkg/filter
// [process]: github.com/matzehuels/extgraph/pkg/process
// [layout]: github.com/matzehuels/extgraph/pkg/layout
// [pipeline]: github.com/matzehuels/extgraph/pkg/pipeline
// [graph]: github.com/matzehuels/extgraph/pkg/graph
// [cache]: github.com/matzehuels/extgraph/pkg/cache
// [config]: github.com/matzehuels/extgraph/pkg/config
// [errors]: github.com/matzehuels/extgraph/pkg/errors
// [httputil]: github.com/matzehuels/extgraph/pkg/httputil
// [observability]: github.com/matzehuels/extgraph/pkg/observability
// [render/nodelink]: github.com/matzehuels/extgraph/pkg/render/nodelink
// [watch]: github.com/matzehuels/extgraph/pkg/watch
package pkg
