package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Layout - Positioned Graph
// =============================================================================

// Layout is the serialization format for a positioned graph.
//
// Nodes carry absolute coordinates (top-left corner) and sizes. Columns
// lists node ids per column, left to right, in row order. Width and Height
// are the canvas size needed to show every node without overlap.
type Layout struct {
	Mode    Mode         `json:"mode"`
	Width   float64      `json:"width"`
	Height  float64      `json:"height"`
	Nodes   []Placement  `json:"nodes"`
	Edges   []Dependency `json:"edges"`
	Columns [][]string   `json:"columns"`
	Badges  *BadgeSet    `json:"badges,omitempty"`
}

// Placement is one positioned node in a Layout.
type Placement struct {
	ID     string   `json:"id"`
	Kind   NodeKind `json:"kind"`
	Label  string   `json:"label"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
	Column int      `json:"column"`
	Row    int      `json:"row"`
}

// Placement returns the placement of the node with the given id.
func (l *Layout) Placement(id string) (Placement, bool) {
	for _, p := range l.Nodes {
		if p.ID == id {
			return p, true
		}
	}
	return Placement{}, false
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Validates that the mode is known and that every edge endpoint is placed.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}

	if l.Mode == "" {
		l.Mode = DefaultMode
	}
	if !l.Mode.IsValid() {
		return Layout{}, fmt.Errorf("layout has unknown mode %q", l.Mode)
	}

	placed := make(map[string]bool, len(l.Nodes))
	for _, p := range l.Nodes {
		placed[p.ID] = true
	}
	for _, e := range l.Edges {
		if !placed[e.From] || !placed[e.To] {
			return Layout{}, fmt.Errorf("layout edge %s -> %s references unplaced node", e.From, e.To)
		}
	}

	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
