package process

import (
	"cmp"
	"slices"

	"github.com/matzehuels/extgraph/pkg/filter"
	"github.com/matzehuels/extgraph/pkg/graph"
	"github.com/matzehuels/extgraph/pkg/plugin"
)

type pointAcc struct {
	item     plugin.Item
	owner    string
	declared bool
	touched  bool
}

type extensionAcc struct {
	ext     graph.Extension
	targets map[string]bool
}

// extensions handles the extension-point mode and the three added modes.
// Contributions are attached to the points they target; targets no plugin
// declares become placeholder points.
func extensions(snap plugin.Snapshot, d descriptor, eff filter.Effective) graph.GraphData {
	ids := snap.PluginIDs()

	owners := eff.Consumers
	if d.consumers == extensionPointConsumers {
		owners = eff.ExtensionPointConsumers
	}
	pointFilter := filter.All()
	if d.pointFilter {
		pointFilter = eff.ExtensionPoints
	}

	points := make(map[string]*pointAcc)
	for _, pid := range ids {
		for _, item := range snap[pid].Extensions.ExtensionPoints {
			points[item.ID] = &pointAcc{item: item, owner: pid, declared: true}
		}
	}

	// keep reports whether a target point survives the filters. Placeholders
	// have no owner and so cannot match an active owner filter.
	keep := func(id string) bool {
		if !pointFilter.Match(id) {
			return false
		}
		if p, ok := points[id]; ok {
			return owners.Match(p.owner)
		}
		return owners.All()
	}

	exts := make(map[string]*extensionAcc)
	var order []string
	for _, pid := range ids {
		if !eff.Providers.Match(pid) {
			continue
		}
		app := snap[pid]
		for _, t := range d.scan {
			for _, c := range app.Added(t) {
				var targets []string
				for _, target := range c.Targets {
					if keep(target) {
						targets = append(targets, target)
					}
				}
				if len(targets) == 0 {
					continue
				}

				acc, ok := exts[c.ID]
				if !ok {
					acc = &extensionAcc{targets: make(map[string]bool)}
					exts[c.ID] = acc
					order = append(order, c.ID)
				}
				acc.ext = graph.Extension{
					ID:              c.ID,
					Type:            t,
					Title:           titleOr(c.Title, c.ID),
					Description:     c.Description,
					ProvidingPlugin: pid,
					Targets:         acc.ext.Targets,
				}
				for _, target := range targets {
					if !acc.targets[target] {
						acc.targets[target] = true
						acc.ext.Targets = append(acc.ext.Targets, target)
					}
				}
			}
		}
	}

	// Providers are derived from the surviving extensions only.
	providers := make(map[string]map[string]bool)
	for _, id := range order {
		e := exts[id].ext
		for _, target := range e.Targets {
			p, ok := points[target]
			if !ok {
				p = &pointAcc{item: plugin.Item{ID: target}}
				points[target] = p
			}
			p.touched = true
			if !p.declared {
				continue
			}
			if providers[target] == nil {
				providers[target] = make(map[string]bool)
			}
			providers[target][e.ProvidingPlugin] = true
		}
	}

	var emitted []*pointAcc
	for id, p := range points {
		if p.touched || (d.declaredPoints && p.declared && keep(id)) {
			emitted = append(emitted, p)
		}
	}
	slices.SortFunc(emitted, func(a, b *pointAcc) int {
		if a.declared != b.declared {
			if a.declared {
				return -1
			}
			return 1
		}
		return cmp.Or(cmp.Compare(a.owner, b.owner), cmp.Compare(a.item.ID, b.item.ID))
	})

	sortedExts := make([]graph.Extension, 0, len(order))
	for _, id := range order {
		sortedExts = append(sortedExts, exts[id].ext)
	}
	slices.SortFunc(sortedExts, func(a, b graph.Extension) int {
		return cmp.Or(cmp.Compare(a.ProvidingPlugin, b.ProvidingPlugin), cmp.Compare(a.ID, b.ID))
	})

	b := newBuilder(d.mode)
	for _, e := range sortedExts {
		b.provider(e.ProvidingPlugin)
	}
	if d.extensionNodes {
		for _, e := range sortedExts {
			b.entity(graph.KindExtension, e.ID, e.Title, e.ProvidingPlugin)
		}
	}
	for _, p := range emitted {
		b.entity(graph.KindExtensionPoint, p.item.ID, p.item.Title, p.owner)
	}
	for _, p := range emitted {
		if p.declared {
			b.consumer(p.owner)
		}
	}

	for _, e := range sortedExts {
		from := graph.ProviderID(e.ProvidingPlugin)
		if d.extensionNodes {
			b.edge(from, graph.ExtensionID(e.ID), graph.DependencyExtension)
			from = graph.ExtensionID(e.ID)
		}
		for _, target := range e.Targets {
			b.edge(from, graph.ExtensionPointID(target), e.Type.DependencyType())
		}
	}
	for _, p := range emitted {
		if p.declared {
			b.edge(graph.ExtensionPointID(p.item.ID), graph.ConsumerID(p.owner), graph.DependencyExtension)
		}
	}

	for _, p := range emitted {
		ep := graph.ExtensionPoint{
			ID:             p.item.ID,
			Title:          titleOr(p.item.Title, p.item.ID),
			Description:    p.item.Description,
			DefiningPlugin: p.owner,
			Providers:      sortedKeys(providers[p.item.ID]),
			Missing:        !p.declared,
		}
		b.data.ExtensionPoints = append(b.data.ExtensionPoints, ep)
	}
	slices.SortFunc(b.data.ExtensionPoints, func(x, y graph.ExtensionPoint) int {
		return cmp.Compare(x.ID, y.ID)
	})

	b.data.Extensions = sortedExts
	slices.SortFunc(b.data.Extensions, func(x, y graph.Extension) int {
		return cmp.Compare(x.ID, y.ID)
	})

	return b.build()
}
