package process

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/extgraph/pkg/filter"
	"github.com/matzehuels/extgraph/pkg/graph"
	"github.com/matzehuels/extgraph/pkg/plugin"
)

func nodeIDs(data graph.GraphData, kind graph.NodeKind) []string {
	var out []string
	for _, n := range data.NodesOfKind(kind) {
		out = append(out, n.RefID)
	}
	return out
}

func pointIDs(data graph.GraphData) []string {
	var out []string
	for _, ep := range data.ExtensionPoints {
		out = append(out, ep.ID)
	}
	return out
}

func extensionIDs(data graph.GraphData) []string {
	var out []string
	for _, e := range data.Extensions {
		out = append(out, e.ID)
	}
	return out
}

func requireWellFormed(t *testing.T, data graph.GraphData) {
	t.Helper()
	require.NoError(t, graph.Validate(data))

	seen := make(map[graph.Dependency]bool)
	for _, d := range data.Dependencies {
		require.False(t, seen[d], "duplicate edge %v", d)
		seen[d] = true
	}
}

func TestExposedComponentsAssertsScenario(t *testing.T) {
	data := Graph(assertsSnapshot(), graph.ModeExposedComponents, filter.Effective{})
	requireWellFormed(t, data)

	_, ok := data.Node(graph.ProviderID(asserts))
	assert.True(t, ok, "provider node for %s", asserts)
	assert.Len(t, data.ExposedComponents, 8)
	assert.Empty(t, data.ExtensionPoints)
	assert.Empty(t, data.Extensions)

	for _, c := range data.ExposedComponents {
		assert.Equal(t, asserts, c.ProvidingPlugin)
		assert.NotEmpty(t, c.Consumers, "component %s", c.ID)
	}
}

func TestExposedComponentsConsumerFilter(t *testing.T) {
	snap := ecosystemSnapshot()
	data := Run(snap, graph.ModeExposedComponents, filter.Selection{
		ContentConsumers: []string{collector},
	})
	requireWellFormed(t, data)

	assert.Equal(t, []string{collector}, nodeIDs(data, graph.KindConsumer))
	_, ok := data.Node(graph.ProviderID(k8s))
	assert.True(t, ok, "provider node for %s", k8s)

	c, ok := data.ExposedComponent(clusterConfig)
	require.True(t, ok)
	assert.Equal(t, []string{collector}, c.Consumers, "consumers derived from filtered set only")

	assert.ElementsMatch(t, []string{clusterConfig, assertsComponents[3]}, componentIDs(data))
	assert.Contains(t, data.Dependencies, graph.Dependency{
		From: graph.ConsumerID(collector), To: graph.ProviderID(k8s), Type: graph.DependencyExposure,
	})
}

func componentIDs(data graph.GraphData) []string {
	var out []string
	for _, c := range data.ExposedComponents {
		out = append(out, c.ID)
	}
	return out
}

func TestExposedComponentsUnfiltered(t *testing.T) {
	data := Graph(ecosystemSnapshot(), graph.ModeExposedComponents, filter.Effective{})
	requireWellFormed(t, data)

	assert.Equal(t, []string{asserts, k8s}, nodeIDs(data, graph.KindProvider))
	assert.Equal(t, []string{asserts, collector, k8s, lokiExplore, pyroscope}, nodeIDs(data, graph.KindConsumer))
	assert.Len(t, data.ExposedComponents, 9)

	graphComp, ok := data.ExposedComponent("grafana-asserts-app/entity-graph/v1")
	require.True(t, ok)
	assert.Equal(t, []string{lokiExplore}, graphComp.Consumers, "self dependency is ignored")
	assert.NotContains(t, data.Dependencies, graph.Dependency{
		From: graph.ConsumerID(asserts), To: graph.ProviderID(asserts), Type: graph.DependencyExposure,
	})
}

func TestExposedComponentsProviderFilter(t *testing.T) {
	eff := filter.Effective{Providers: filter.Only(k8s)}
	data := Graph(ecosystemSnapshot(), graph.ModeExposedComponents, eff)
	requireWellFormed(t, data)

	assert.Equal(t, []string{k8s}, nodeIDs(data, graph.KindProvider))
	assert.Equal(t, []string{clusterConfig}, componentIDs(data))
	assert.Equal(t, []string{asserts, collector}, nodeIDs(data, graph.KindConsumer))
}

func TestExposedComponentsDropsUnconsumed(t *testing.T) {
	snap := plugin.Snapshot{
		"a": {Extensions: plugin.Extensions{ExposedComponents: items("a/used/v1", "a/unused/v1")}},
		"b": {Extensions: plugin.Extensions{ExposedComponents: items("b/unused/v1")}},
		"c": {Dependencies: depends("a/used/v1")},
	}

	data := Graph(snap, graph.ModeExposedComponents, filter.Effective{})
	requireWellFormed(t, data)

	assert.Equal(t, []string{"a/used/v1"}, componentIDs(data))
	assert.Equal(t, []string{"a"}, nodeIDs(data, graph.KindProvider), "provider without surviving components is dropped")
}

func TestExposedComponentsUnfilteredDropsUnconsumed(t *testing.T) {
	const orphan = "grafana-asserts-app/orphan-widget/v1"
	snap := assertsSnapshot()
	app := snap[asserts]
	app.Extensions.ExposedComponents = append(items(assertsComponents...), items(orphan)...)
	snap[asserts] = app

	data := Graph(snap, graph.ModeExposedComponents, filter.Effective{})
	requireWellFormed(t, data)

	assert.Len(t, data.ExposedComponents, len(assertsComponents))
	assert.NotContains(t, componentIDs(data), orphan)
	_, ok := data.Node(graph.ExposedComponentID(orphan))
	assert.False(t, ok, "no node for a component nobody consumes")
	assert.Equal(t, []string{asserts}, nodeIDs(data, graph.KindProvider))
}

func TestExtensionPointFilterScenario(t *testing.T) {
	data := Run(ecosystemSnapshot(), graph.ModeExtensionPoint, filter.Selection{
		ExtensionPoints: []string{investigation},
	})
	requireWellFormed(t, data)

	require.Len(t, data.ExtensionPoints, 1)
	assert.Equal(t, investigation, data.ExtensionPoints[0].ID)
	assert.Equal(t, []string{lokiExplore, pyroscope}, data.ExtensionPoints[0].Providers)

	assert.ElementsMatch(t, []string{"loki-fn", "loki-investigate", "pyro-investigate"}, extensionIDs(data))
	loki, ok := data.Extension("loki-investigate")
	require.True(t, ok)
	assert.Equal(t, []string{investigation}, loki.Targets, "targets restricted to surviving points")
	assert.Equal(t, []string{exploreTraces}, nodeIDs(data, graph.KindConsumer))
}

func TestExtensionPointUnfiltered(t *testing.T) {
	data := Graph(ecosystemSnapshot(), graph.ModeExtensionPoint, filter.Effective{})
	requireWellFormed(t, data)

	assert.Equal(t, []string{
		exploreTraces + "/details/v1",
		unusedPoint,
		investigation,
		clusterView,
		alertingHome,
		panelMenu,
		exploreAction,
	}, sortedCopy(pointIDs(data)), "declared points are kept even without contributions")

	unused, ok := data.ExtensionPoint(unusedPoint)
	require.True(t, ok)
	assert.Empty(t, unused.Providers)
	assert.False(t, unused.Missing)

	assert.ElementsMatch(t, []string{asserts, exploreTraces, lokiExplore, pyroscope}, nodeIDs(data, graph.KindProvider))
	assert.ElementsMatch(t, []string{exploreTraces, k8s}, nodeIDs(data, graph.KindConsumer))
	assert.NotContains(t, extensionIDs(data), "loki-empty")
	assert.Empty(t, data.ExposedComponents)

	assert.Contains(t, data.Dependencies, graph.Dependency{
		From: graph.ProviderID(lokiExplore), To: graph.ExtensionID("loki-fn"), Type: graph.DependencyExtension,
	})
	assert.Contains(t, data.Dependencies, graph.Dependency{
		From: graph.ExtensionID("loki-fn"), To: graph.ExtensionPointID(investigation), Type: graph.DependencyFunction,
	})
	assert.Contains(t, data.Dependencies, graph.Dependency{
		From: graph.ExtensionPointID(investigation), To: graph.ConsumerID(exploreTraces), Type: graph.DependencyExtension,
	})
}

func sortedCopy(s []string) []string {
	out := slices.Clone(s)
	slices.Sort(out)
	return out
}

func TestPlaceholderCompleteness(t *testing.T) {
	for _, mode := range []graph.Mode{graph.ModeExtensionPoint, graph.ModeAddedLinks} {
		t.Run(string(mode), func(t *testing.T) {
			data := Graph(ecosystemSnapshot(), mode, filter.Effective{})
			requireWellFormed(t, data)

			for _, id := range []string{panelMenu, exploreAction} {
				ep, ok := data.ExtensionPoint(id)
				require.True(t, ok, "placeholder %s", id)
				assert.True(t, ep.Missing)
				assert.Empty(t, ep.DefiningPlugin)
				assert.NotNil(t, ep.Providers)
				assert.Empty(t, ep.Providers)

				_, ok = data.Node(graph.ExtensionPointID(id))
				assert.True(t, ok, "placeholder node %s", id)
			}
		})
	}
}

func TestExtensionPointConsumerFilter(t *testing.T) {
	eff := filter.Effective{ExtensionPointConsumers: filter.Only(k8s)}
	data := Graph(ecosystemSnapshot(), graph.ModeExtensionPoint, eff)
	requireWellFormed(t, data)

	assert.Equal(t, []string{clusterView}, pointIDs(data), "placeholders cannot match an owner filter")
	assert.Equal(t, []string{"grafana-asserts-app/rca-panel"}, extensionIDs(data))
	assert.Equal(t, []string{k8s}, nodeIDs(data, graph.KindConsumer))
	assert.Equal(t, []string{asserts}, nodeIDs(data, graph.KindProvider))
}

func TestExtensionPointIgnoresContentConsumers(t *testing.T) {
	snap := ecosystemSnapshot()
	plain := Graph(snap, graph.ModeExtensionPoint, filter.Effective{})
	filtered := Graph(snap, graph.ModeExtensionPoint, filter.Effective{Consumers: filter.Only(k8s)})
	assert.Equal(t, plain, filtered)
}

func TestAddedLinks(t *testing.T) {
	data := Graph(ecosystemSnapshot(), graph.ModeAddedLinks, filter.Effective{})
	requireWellFormed(t, data)

	assert.Equal(t, []string{"loki-investigate", "open-trace", "pyro-investigate"}, extensionIDs(data))
	assert.ElementsMatch(t, []string{investigation, panelMenu, exploreAction}, pointIDs(data),
		"points without contributions are not emitted")
	assert.Empty(t, data.NodesOfKind(graph.KindExtension))
	assert.Empty(t, data.ExposedComponents)

	inv, ok := data.ExtensionPoint(investigation)
	require.True(t, ok)
	assert.Equal(t, []string{lokiExplore, pyroscope}, inv.Providers)
	assert.Equal(t, exploreTraces, inv.DefiningPlugin)

	assert.Contains(t, data.Dependencies, graph.Dependency{
		From: graph.ProviderID(pyroscope), To: graph.ExtensionPointID(investigation), Type: graph.DependencyLink,
	})
	assert.Contains(t, data.Dependencies, graph.Dependency{
		From: graph.ExtensionPointID(investigation), To: graph.ConsumerID(exploreTraces), Type: graph.DependencyExtension,
	})
	for _, e := range data.Extensions {
		assert.Equal(t, graph.ExtensionLink, e.Type)
		assert.NotEmpty(t, e.Targets)
	}
}

func TestAddedComponentsAndFunctions(t *testing.T) {
	snap := ecosystemSnapshot()

	comps := Graph(snap, graph.ModeAddedComponents, filter.Effective{})
	requireWellFormed(t, comps)
	assert.ElementsMatch(t, []string{"grafana-asserts-app/alert-badge", "grafana-asserts-app/rca-panel", "pyro-flame"}, extensionIDs(comps))
	assert.ElementsMatch(t, []string{clusterView, alertingHome, traceDetails}, pointIDs(comps))
	assert.ElementsMatch(t, []string{k8s, exploreTraces}, nodeIDs(comps, graph.KindConsumer))

	funcs := Graph(snap, graph.ModeAddedFunctions, filter.Effective{})
	requireWellFormed(t, funcs)
	assert.Equal(t, []string{"loki-fn"}, extensionIDs(funcs))
	assert.Equal(t, []string{investigation}, pointIDs(funcs))
	assert.Equal(t, []string{lokiExplore}, nodeIDs(funcs, graph.KindProvider))
}

func TestAddedModeConsumerFilterExcludesPlaceholders(t *testing.T) {
	eff := filter.Effective{Consumers: filter.Only(exploreTraces)}
	data := Graph(ecosystemSnapshot(), graph.ModeAddedLinks, eff)
	requireWellFormed(t, data)

	assert.Equal(t, []string{investigation}, pointIDs(data))
	assert.Equal(t, []string{"loki-investigate", "pyro-investigate"}, extensionIDs(data))
	assert.Equal(t, []string{lokiExplore, pyroscope}, nodeIDs(data, graph.KindProvider),
		"a provider whose only link targets a placeholder disappears")
}

func TestAddedModeIgnoresExtensionPointDimension(t *testing.T) {
	snap := ecosystemSnapshot()
	plain := Graph(snap, graph.ModeAddedLinks, filter.Effective{})
	filtered := Graph(snap, graph.ModeAddedLinks, filter.Effective{ExtensionPoints: filter.Only(investigation)})
	assert.Equal(t, plain, filtered)
}

func TestScalarTargetsNormalized(t *testing.T) {
	scalar, err := plugin.DecodeJSON([]byte(`{
		"a": {"extensions": {"addedLinks": [{"id": "l", "targets": "single-ep-id"}]}},
		"b": {"extensions": {"extensionPoints": [{"id": "single-ep-id"}]}}
	}`))
	require.NoError(t, err)
	list, err := plugin.DecodeJSON([]byte(`{
		"a": {"extensions": {"addedLinks": [{"id": "l", "targets": ["single-ep-id"]}]}},
		"b": {"extensions": {"extensionPoints": [{"id": "single-ep-id"}]}}
	}`))
	require.NoError(t, err)

	for _, mode := range graph.Modes {
		assert.Equal(t, Graph(list, mode, filter.Effective{}), Graph(scalar, mode, filter.Effective{}), "mode %s", mode)
	}

	data := Graph(scalar, graph.ModeAddedLinks, filter.Effective{})
	ext, ok := data.Extension("l")
	require.True(t, ok)
	assert.Equal(t, []string{"single-ep-id"}, ext.Targets)
}

func TestDeterminism(t *testing.T) {
	snap := ecosystemSnapshot()
	for _, mode := range graph.Modes {
		t.Run(string(mode), func(t *testing.T) {
			first := Graph(snap, mode, filter.Effective{})
			for i := 0; i < 5; i++ {
				assert.Equal(t, first, Graph(snap, mode, filter.Effective{}))
			}
		})
	}
}

func TestNoDanglingEdges(t *testing.T) {
	snaps := map[string]plugin.Snapshot{
		"asserts":   assertsSnapshot(),
		"ecosystem": ecosystemSnapshot(),
	}
	effs := map[string]filter.Effective{
		"none":      {},
		"providers": {Providers: filter.Only(lokiExplore, asserts)},
		"consumers": {Consumers: filter.Only(collector, exploreTraces)},
		"points":    {ExtensionPoints: filter.Only(investigation, panelMenu)},
		"owners":    {ExtensionPointConsumers: filter.Only(exploreTraces)},
		"unknown":   {Providers: filter.Only("does-not-exist")},
	}

	for sname, snap := range snaps {
		for ename, eff := range effs {
			for _, mode := range graph.Modes {
				data := Graph(snap, mode, eff)
				t.Run(sname+"/"+ename+"/"+string(mode), func(t *testing.T) {
					requireWellFormed(t, data)
					if mode == graph.ModeExposedComponents {
						assert.Empty(t, data.ExtensionPoints)
						assert.Empty(t, data.Extensions)
					} else {
						assert.Empty(t, data.ExposedComponents)
					}
				})
			}
		}
	}
}

func TestEmptySnapshot(t *testing.T) {
	for _, mode := range graph.Modes {
		data := Graph(nil, mode, filter.Effective{})
		assert.True(t, data.IsEmpty(), "mode %s", mode)
		assert.Equal(t, mode, data.Mode)
	}

	data := Graph(plugin.Snapshot{"quiet-app": {}}, graph.ModeExtensionPoint, filter.Effective{})
	assert.True(t, data.IsEmpty(), "a plugin with no extensions contributes no nodes")
}

func TestUnknownModeFallsBack(t *testing.T) {
	snap := ecosystemSnapshot()
	data := Graph(snap, graph.Mode("sankey"), filter.Effective{})
	assert.Equal(t, graph.ModeAddedLinks, data.Mode)
	assert.Equal(t, Graph(snap, graph.ModeAddedLinks, filter.Effective{}), data)
}

func TestNodeLabels(t *testing.T) {
	data := Graph(ecosystemSnapshot(), graph.ModeAddedLinks, filter.Effective{})

	n, ok := data.Node(graph.ProviderID(lokiExplore))
	require.True(t, ok)
	assert.Equal(t, "lokiexplore", n.Label)

	n, ok = data.Node(graph.ExtensionPointID(investigation))
	require.True(t, ok)
	assert.Equal(t, "Title of "+investigation, n.Label)
	assert.Equal(t, exploreTraces, n.PluginID)

	n, ok = data.Node(graph.ExtensionPointID(panelMenu))
	require.True(t, ok)
	assert.Equal(t, panelMenu, n.Label)
	assert.Empty(t, n.PluginID)
}

func TestCandidates(t *testing.T) {
	snap := ecosystemSnapshot()

	c := Candidates(snap, graph.ModeExtensionPoint)
	assert.Equal(t, []string{asserts, exploreTraces, lokiExplore, pyroscope}, c.ContentProviders)
	assert.Equal(t, []string{exploreTraces, k8s}, c.ContentConsumersForExtensionPoint)
	assert.Len(t, c.ExtensionPoints, 7)

	c = Candidates(snap, graph.ModeExposedComponents)
	assert.Equal(t, []string{asserts, k8s}, c.ContentProviders)
	assert.Empty(t, c.ExtensionPoints)
	assert.NotNil(t, c.ExtensionPoints)
}

func TestSelectAllMatchesNoSelection(t *testing.T) {
	snap := ecosystemSnapshot()
	for _, mode := range graph.Modes {
		t.Run(string(mode), func(t *testing.T) {
			c := Candidates(snap, mode)
			all := filter.Selection{
				ContentProviders:                  c.ContentProviders,
				ContentConsumers:                  c.ContentConsumers,
				ExtensionPoints:                   c.ExtensionPoints,
				ContentConsumersForExtensionPoint: c.ContentConsumersForExtensionPoint,
			}
			assert.Equal(t, Resolve(snap, mode, filter.Selection{}), Resolve(snap, mode, all))
			assert.Equal(t, Run(snap, mode, filter.Selection{}), Run(snap, mode, all))
		})
	}
}

func TestGraphDoesNotMutateSnapshot(t *testing.T) {
	snap := plugin.Snapshot{
		"a": {Extensions: plugin.Extensions{AddedLinks: plugin.Contributions{{Targets: plugin.IDList{"x", "x", ""}}}}},
	}
	_ = Graph(snap, graph.ModeAddedLinks, filter.Effective{})

	link := snap["a"].Extensions.AddedLinks[0]
	assert.Empty(t, link.ID)
	assert.Equal(t, plugin.IDList{"x", "x", ""}, link.Targets)
}

func TestBadgeTypes(t *testing.T) {
	snap := ecosystemSnapshot()

	links := Graph(snap, graph.ModeAddedLinks, filter.Effective{})
	assert.Equal(t, graph.BadgeSet{Link: true, Function: true}, BadgeTypes(snap, links))

	comps := Graph(snap, graph.ModeAddedComponents, filter.Effective{})
	assert.Equal(t, graph.BadgeSet{Component: true}, BadgeTypes(snap, comps))

	ep := Graph(snap, graph.ModeExtensionPoint, filter.Effective{})
	assert.Equal(t, graph.BadgeSet{}, BadgeTypes(snap, ep))
}
