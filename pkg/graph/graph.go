package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// =============================================================================
// GraphData Serialization API
// =============================================================================

// MarshalGraph converts a graph to indented JSON bytes.
func MarshalGraph(g GraphData) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a graph to a JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g GraphData, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(g, f)
}

// WriteGraph writes a graph as JSON to an io.Writer.
// Use MarshalGraph for in-memory serialization or WriteGraphFile for files.
func WriteGraph(g GraphData, w io.Writer) error {
	return writeGraphTo(g, w)
}

// ReadGraphFile reads a JSON file and returns the decoded graph.
func ReadGraphFile(path string) (GraphData, error) {
	f, err := os.Open(path)
	if err != nil {
		return GraphData{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON graph from an io.Reader.
// Edges whose endpoints are not nodes of the graph are rejected.
func ReadGraph(r io.Reader) (GraphData, error) {
	return readGraphFrom(r)
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(g GraphData, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(emptyToNonNil(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (GraphData, error) {
	var g GraphData
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return GraphData{}, fmt.Errorf("decode: %w", err)
	}
	if err := Validate(g); err != nil {
		return GraphData{}, err
	}
	return g, nil
}

// Validate checks the structural invariants of a graph: unique node ids,
// no self edges and no edges to unknown nodes.
func Validate(g GraphData) error {
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("node with empty id")
		}
		if ids[n.ID] {
			return fmt.Errorf("duplicate node %q", n.ID)
		}
		ids[n.ID] = true
	}
	for _, d := range g.Dependencies {
		if d.From == d.To {
			return fmt.Errorf("self edge on %q", d.From)
		}
		if !ids[d.From] {
			return fmt.Errorf("edge from unknown node %q", d.From)
		}
		if !ids[d.To] {
			return fmt.Errorf("edge to unknown node %q", d.To)
		}
	}
	return nil
}

// emptyToNonNil makes empty collections encode as [] instead of null.
func emptyToNonNil(g GraphData) GraphData {
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Dependencies == nil {
		g.Dependencies = []Dependency{}
	}
	if g.ExtensionPoints == nil {
		g.ExtensionPoints = []ExtensionPoint{}
	}
	if g.Extensions == nil {
		g.Extensions = []Extension{}
	}
	if g.ExposedComponents == nil {
		g.ExposedComponents = []ExposedComponent{}
	}
	return g
}
