package process

import (
	"github.com/matzehuels/extgraph/pkg/plugin"
)

const (
	asserts       = "grafana-asserts-app"
	k8s           = "grafana-k8s-app"
	collector     = "grafana-collector-app"
	exploreTraces = "grafana-exploretraces-app"
	lokiExplore   = "grafana-lokiexplore-app"
	pyroscope     = "grafana-pyroscope-app"

	clusterConfig = "grafana-k8s-app/cluster-config/v1"
	clusterView   = "grafana-k8s-app/cluster/overview/v1"
	investigation = "grafana-exploretraces-app/investigation/v1"
	traceDetails  = "grafana-exploretraces-app/details/v1"
	unusedPoint   = "grafana-exploretraces-app/empty/v1"
	panelMenu     = "grafana/dashboard/panel/menu"
	exploreAction = "grafana/explore/toolbar/action"
	alertingHome  = "grafana/alerting/home"
)

var assertsComponents = []string{
	"grafana-asserts-app/entity-assertions-widget/v1",
	"grafana-asserts-app/insights-timeline-widget/v1",
	"grafana-asserts-app/add-to-rca-drawer/v1",
	"grafana-asserts-app/rca-workbench/v1",
	"grafana-asserts-app/entity-graph/v1",
	"grafana-asserts-app/service-map/v1",
	"grafana-asserts-app/alert-rules/v1",
	"grafana-asserts-app/kpi-dashboard/v1",
}

func items(ids ...string) plugin.Items {
	out := make(plugin.Items, len(ids))
	for i, id := range ids {
		out[i] = plugin.Item{ID: id, Title: "Title of " + id}
	}
	return out
}

func contribution(id string, targets ...string) plugin.Contribution {
	return plugin.Contribution{ID: id, Title: id, Targets: plugin.IDList(targets)}
}

func depends(ids ...string) plugin.Dependencies {
	return plugin.Dependencies{Extensions: plugin.DependencyExtensions{ExposedComponents: plugin.IDList(ids)}}
}

// assertsSnapshot has six plugins; only grafana-asserts-app exposes
// components, and every one of them is consumed.
func assertsSnapshot() plugin.Snapshot {
	return plugin.Snapshot{
		asserts: {
			Extensions: plugin.Extensions{
				ExposedComponents: items(assertsComponents...),
				AddedComponents: plugin.Contributions{
					contribution("grafana-asserts-app/rca-panel", clusterView),
					contribution("grafana-asserts-app/alert-badge", alertingHome),
				},
			},
		},
		k8s:           {Dependencies: depends(assertsComponents[0], assertsComponents[1])},
		collector:     {Dependencies: depends(assertsComponents[2], assertsComponents[3])},
		exploreTraces: {Dependencies: depends(assertsComponents[4])},
		lokiExplore:   {Dependencies: depends(assertsComponents[5], assertsComponents[6])},
		pyroscope:     {Dependencies: depends(assertsComponents[7], assertsComponents[0])},
	}
}

// ecosystemSnapshot exercises every mode: exposed components across two
// providers, declared and undeclared extension points, all three added
// types, scalar targets and a contribution without targets.
func ecosystemSnapshot() plugin.Snapshot {
	return plugin.Snapshot{
		asserts: {
			Extensions: plugin.Extensions{
				ExposedComponents: items(assertsComponents...),
				AddedComponents: plugin.Contributions{
					contribution("grafana-asserts-app/rca-panel", clusterView),
					contribution("grafana-asserts-app/alert-badge", alertingHome),
				},
			},
			Dependencies: depends(clusterConfig, "grafana-asserts-app/entity-graph/v1"),
		},
		k8s: {
			Extensions: plugin.Extensions{
				ExposedComponents: items(clusterConfig),
				ExtensionPoints:   items(clusterView),
			},
			Dependencies: depends(assertsComponents[0], assertsComponents[1], assertsComponents[2]),
		},
		collector: {
			Dependencies: depends(clusterConfig, assertsComponents[3]),
		},
		exploreTraces: {
			Extensions: plugin.Extensions{
				ExtensionPoints: items(investigation, traceDetails, unusedPoint),
				AddedLinks: plugin.Contributions{
					contribution("open-trace", panelMenu),
				},
			},
		},
		lokiExplore: {
			Extensions: plugin.Extensions{
				AddedLinks: plugin.Contributions{
					contribution("loki-investigate", investigation, exploreAction),
					contribution("loki-empty"),
				},
				AddedFunctions: plugin.Contributions{
					contribution("loki-fn", investigation),
				},
			},
			Dependencies: depends(assertsComponents[4], assertsComponents[5]),
		},
		pyroscope: {
			Extensions: plugin.Extensions{
				AddedLinks: plugin.Contributions{
					contribution("pyro-investigate", investigation),
				},
				AddedComponents: plugin.Contributions{
					contribution("pyro-flame", traceDetails),
				},
			},
			Dependencies: depends(assertsComponents[6], assertsComponents[7]),
		},
	}
}
