package process

import (
	"cmp"
	"slices"

	"github.com/matzehuels/extgraph/pkg/filter"
	"github.com/matzehuels/extgraph/pkg/graph"
	"github.com/matzehuels/extgraph/pkg/plugin"
)

type componentAcc struct {
	item      plugin.Item
	provider  string
	consumers map[string]bool
}

// exposedComponents links consumers to the plugins whose exposed components
// they depend on. Components nobody consumes are dropped, and so are
// providers left without components.
func exposedComponents(snap plugin.Snapshot, d descriptor, eff filter.Effective) graph.GraphData {
	ids := snap.PluginIDs()
	components := make(map[string]*componentAcc)

	for _, pid := range ids {
		if !eff.Providers.Match(pid) {
			continue
		}
		for _, item := range snap[pid].Extensions.ExposedComponents {
			components[item.ID] = &componentAcc{item: item, provider: pid, consumers: make(map[string]bool)}
		}
	}

	for _, qid := range ids {
		if !eff.Consumers.Match(qid) {
			continue
		}
		for _, cid := range snap[qid].Dependencies.Extensions.ExposedComponents {
			c, ok := components[cid]
			if !ok || c.provider == qid {
				continue
			}
			c.consumers[qid] = true
		}
	}

	var kept []*componentAcc
	for _, c := range components {
		if len(c.consumers) > 0 {
			kept = append(kept, c)
		}
	}
	slices.SortFunc(kept, func(a, b *componentAcc) int {
		return cmp.Or(cmp.Compare(a.provider, b.provider), cmp.Compare(a.item.ID, b.item.ID))
	})

	b := newBuilder(d.mode)
	for _, c := range kept {
		b.provider(c.provider)
	}
	for _, c := range kept {
		b.entity(graph.KindExposedComponent, c.item.ID, c.item.Title, c.provider)
	}
	consumers := make(map[string]bool)
	for _, c := range kept {
		for q := range c.consumers {
			consumers[q] = true
		}
	}
	for _, q := range sortedKeys(consumers) {
		b.consumer(q)
	}

	for _, c := range kept {
		for _, q := range sortedKeys(c.consumers) {
			b.edge(graph.ConsumerID(q), graph.ProviderID(c.provider), graph.DependencyExposure)
		}
		b.data.ExposedComponents = append(b.data.ExposedComponents, graph.ExposedComponent{
			ID:              c.item.ID,
			Title:           titleOr(c.item.Title, c.item.ID),
			Description:     c.item.Description,
			ProvidingPlugin: c.provider,
			Consumers:       sortedKeys(c.consumers),
		})
	}
	slices.SortFunc(b.data.ExposedComponents, func(x, y graph.ExposedComponent) int {
		return cmp.Compare(x.ID, y.ID)
	})

	return b.build()
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func titleOr(title, fallback string) string {
	if title == "" {
		return fallback
	}
	return title
}
