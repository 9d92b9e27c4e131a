package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/extgraph/pkg/graph"
)

func sampleGraph() graph.GraphData {
	return graph.GraphData{
		Mode: graph.ModeAddedLinks,
		Nodes: []graph.Node{
			{ID: graph.ProviderID("grafana-k8s-app"), Kind: graph.KindProvider, Label: "k8s", RefID: "grafana-k8s-app", PluginID: "grafana-k8s-app"},
			{ID: graph.ExtensionPointID("ep/declared"), Kind: graph.KindExtensionPoint, Label: "Declared", RefID: "ep/declared", PluginID: "grafana"},
			{ID: graph.ExtensionPointID("ep/missing"), Kind: graph.KindExtensionPoint, RefID: "ep/missing"},
			{ID: graph.ConsumerID("grafana"), Kind: graph.KindConsumer, Label: "grafana", RefID: "grafana", PluginID: "grafana"},
		},
		Dependencies: []graph.Dependency{
			{From: graph.ProviderID("grafana-k8s-app"), To: graph.ExtensionPointID("ep/declared"), Type: graph.DependencyLink},
			{From: graph.ProviderID("grafana-k8s-app"), To: graph.ExtensionPointID("ep/missing"), Type: graph.DependencyLink},
			{From: graph.ExtensionPointID("ep/declared"), To: graph.ConsumerID("grafana"), Type: graph.DependencyExtension},
		},
		ExtensionPoints: []graph.ExtensionPoint{
			{ID: "ep/declared", Title: "Declared", DefiningPlugin: "grafana"},
			{ID: "ep/missing", Providers: []string{}, Missing: true},
		},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{})

	for _, want := range []string{
		"digraph G {",
		"rankdir=LR;",
		`"provider:grafana-k8s-app" [label="k8s", shape=box]`,
		`"extensionpoint:ep/declared" [label="Declared", shape=folder]`,
		`"provider:grafana-k8s-app" -> "extensionpoint:ep/declared" [style=solid, color="#3871dc"]`,
		`"extensionpoint:ep/declared" -> "consumer:grafana" [style=solid, color="#6e7781"]`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}

	// Placeholder extension points are dashed.
	if !strings.Contains(dot, `"extensionpoint:ep/missing" [label="ep/missing", shape=folder, style="rounded,filled,dashed"`) {
		t.Errorf("placeholder not styled as missing:\n%s", dot)
	}

	// One rank group per non-empty column.
	if got := strings.Count(dot, "rank=same;"); got != 3 {
		t.Errorf("rank groups = %d, want 3", got)
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{Detailed: true})
	if !strings.Contains(dot, `label="Declared\nkind: extensionpoint\nplugin: grafana"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
}

func TestToDOTTitle(t *testing.T) {
	dot := ToDOT(sampleGraph(), Options{Badges: &graph.BadgeSet{Link: true, Function: true}})
	if !strings.Contains(dot, `label="addedlinks (link, function)";`) {
		t.Errorf("title missing badges:\n%s", dot)
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(graph.GraphData{Mode: graph.ModeExposedComponents}, Options{})
	if strings.Contains(dot, "subgraph") || strings.Contains(dot, "->") {
		t.Errorf("empty graph produced nodes or edges:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50">`
	if !strings.HasPrefix(out, want) {
		t.Errorf("normalizeViewBox = %s", out)
	}

	// No viewBox: unchanged
	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox was modified")
	}
}
