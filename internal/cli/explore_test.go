package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/extgraph/pkg/filter"
	"github.com/matzehuels/extgraph/pkg/graph"
	"github.com/matzehuels/extgraph/pkg/pipeline"
	"github.com/matzehuels/extgraph/pkg/plugin"
)

func candidatesFixture() filter.Candidates {
	return filter.Candidates{
		ContentProviders:                  []string{"grafana-k8s-app"},
		ContentConsumers:                  []string{"grafana"},
		ExtensionPoints:                   []string{"a", "b", "c", "d", "e", "f", "g", "h"},
		ContentConsumersForExtensionPoint: []string{"grafana"},
	}
}

func newExploreModel(t *testing.T) ExploreModel {
	t.Helper()
	snap, err := plugin.DecodeJSON([]byte(snapshotJSON))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	runner := pipeline.NewRunner(nil, nil, log.NewWithOptions(&strings.Builder{}, log.Options{}))
	runner.SetSnapshot(ctx, snap)
	return NewExploreModel(ctx, runner, graph.ModeAddedLinks, filter.Selection{})
}

func press(m ExploreModel, keys ...tea.KeyMsg) ExploreModel {
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(ExploreModel)
	}
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestExploreModelInitial(t *testing.T) {
	m := newExploreModel(t)
	if m.Err != nil {
		t.Fatalf("initial load: %v", m.Err)
	}
	if got := m.Data.PluginsOfKind(graph.KindProvider); len(got) != 2 {
		t.Errorf("providers = %v, want 2", got)
	}
	view := m.View()
	for _, want := range []string{"Explore", "Providers", "(all)", "grafana-k8s-app", "extensionpoint (1)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestExploreModelSwitchMode(t *testing.T) {
	m := newExploreModel(t)

	m = press(m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Mode != graph.ModeAddedComponents {
		t.Errorf("mode after tab = %q", m.Mode)
	}
	if !m.Data.IsEmpty() {
		t.Errorf("addedcomponents should have no data, got %d nodes", len(m.Data.Nodes))
	}
	if !strings.Contains(m.View(), "no data available") {
		t.Error("empty view should say so")
	}

	m = press(m, tea.KeyMsg{Type: tea.KeyShiftTab}, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.Mode != graph.ModeExtensionPoint {
		t.Errorf("mode after shift+tab wrap = %q", m.Mode)
	}
}

func TestExploreModelToggle(t *testing.T) {
	m := newExploreModel(t)

	// Providers are sorted: grafana-asserts-app, grafana-k8s-app.
	m = press(m, key("j"), tea.KeyMsg{Type: tea.KeySpace})
	if want := []string{"grafana-k8s-app"}; !equal(m.Selection.ContentProviders, want) {
		t.Fatalf("providers selection = %v, want %v", m.Selection.ContentProviders, want)
	}
	if got := m.Data.PluginsOfKind(graph.KindProvider); !equal(got, []string{"grafana-k8s-app"}) {
		t.Errorf("filtered providers = %v", got)
	}
	if len(m.Candidates.ContentProviders) != 2 {
		t.Errorf("candidates should stay unfiltered, got %v", m.Candidates.ContentProviders)
	}

	m = press(m, key("c"))
	if len(m.Selection.ContentProviders) != 0 {
		t.Errorf("c should clear the dimension, got %v", m.Selection.ContentProviders)
	}

	m = press(m, key("l"))
	if m.Dim != 1 || m.Cursor != 0 {
		t.Errorf("dim=%d cursor=%d after l", m.Dim, m.Cursor)
	}
	m = press(m, key("h"), key("h"))
	if m.Dim != len(dimensions)-1 {
		t.Errorf("dim should wrap to %d, got %d", len(dimensions)-1, m.Dim)
	}
}

func TestExploreModelEnter(t *testing.T) {
	m := newExploreModel(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(ExploreModel)
	if cmd == nil {
		t.Error("enter should quit")
	}
	if m.Selected == nil || m.Selected.Mode != graph.ModeAddedLinks {
		t.Fatalf("selected = %+v", m.Selected)
	}

	next, _ = newExploreModel(t).Update(key("q"))
	if next.(ExploreModel).Selected != nil {
		t.Error("q should quit without a selection")
	}
}

func TestShiftMode(t *testing.T) {
	last := graph.Modes[len(graph.Modes)-1]
	if got := shiftMode(last, 1); got != graph.Modes[0] {
		t.Errorf("shiftMode(last, 1) = %q", got)
	}
	if got := shiftMode(graph.Modes[0], -1); got != last {
		t.Errorf("shiftMode(first, -1) = %q", got)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
