// Package plugin models the extension metadata a host application reports
// for its installed app plugins.
//
// A [Snapshot] maps plugin ids to the extensions each plugin declares
// (extension points, exposed components, added links, components and
// functions) and to the ids it depends on. Snapshots decode from JSON or
// YAML in the host's boot-data shape and are normalized on ingestion:
// missing arrays become empty, scalar targets become single-element lists,
// blank and duplicate ids are dropped. Downstream code never sees the
// string-or-list union of the wire format.
package plugin

import (
	"fmt"
	"slices"

	"github.com/matzehuels/extgraph/pkg/graph"
)

// Snapshot maps plugin id to the plugin's declared extension metadata.
type Snapshot map[string]App

// App is the extension metadata of one plugin.
type App struct {
	Extensions   Extensions   `json:"extensions" yaml:"extensions"`
	Dependencies Dependencies `json:"dependencies" yaml:"dependencies"`
}

// Extensions lists what a plugin declares or contributes.
type Extensions struct {
	ExposedComponents Items         `json:"exposedComponents" yaml:"exposedComponents"`
	ExtensionPoints   Items         `json:"extensionPoints" yaml:"extensionPoints"`
	AddedLinks        Contributions `json:"addedLinks" yaml:"addedLinks"`
	AddedComponents   Contributions `json:"addedComponents" yaml:"addedComponents"`
	AddedFunctions    Contributions `json:"addedFunctions" yaml:"addedFunctions"`
}

// Dependencies lists what a plugin consumes from other plugins.
type Dependencies struct {
	Extensions DependencyExtensions `json:"extensions" yaml:"extensions"`
}

// DependencyExtensions holds the consumed exposed-component and
// extension-point ids.
type DependencyExtensions struct {
	ExposedComponents IDList `json:"exposedComponents" yaml:"exposedComponents"`
	ExtensionPoints   IDList `json:"extensionPoints" yaml:"extensionPoints"`
}

// Item is a declared exposed component or extension point.
type Item struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Contribution is an added link, component or function.
//
// Targets are the extension-point ids the contribution extends. On the
// wire they may be a single string or a list.
type Contribution struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Targets     IDList `json:"targets" yaml:"targets"`
}

// Items is a list of declared items that decodes leniently.
type Items []Item

// Contributions is a list of contributions that decodes leniently.
type Contributions []Contribution

// Added returns the contributions of the given extension type.
func (a App) Added(t graph.ExtensionType) Contributions {
	switch t {
	case graph.ExtensionLink:
		return a.Extensions.AddedLinks
	case graph.ExtensionComponent:
		return a.Extensions.AddedComponents
	case graph.ExtensionFunction:
		return a.Extensions.AddedFunctions
	}
	return nil
}

// IsEmpty reports whether the plugin declares nothing at all.
func (a App) IsEmpty() bool {
	e := a.Extensions
	d := a.Dependencies.Extensions
	return len(e.ExposedComponents) == 0 && len(e.ExtensionPoints) == 0 &&
		len(e.AddedLinks) == 0 && len(e.AddedComponents) == 0 && len(e.AddedFunctions) == 0 &&
		len(d.ExposedComponents) == 0 && len(d.ExtensionPoints) == 0
}

// PluginIDs returns the plugin ids of the snapshot, sorted.
func (s Snapshot) PluginIDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Normalize returns a copy of s with every list normalized the way decoding
// normalizes it. Use it for snapshots built in memory; decoded snapshots are
// already normalized. Normalize is idempotent.
func (s Snapshot) Normalize() Snapshot {
	out := make(Snapshot, len(s))
	for id, app := range s {
		if id == "" {
			continue
		}
		out[id] = app.normalize(id)
	}
	return out
}

func (a App) normalize(pluginID string) App {
	return App{
		Extensions: Extensions{
			ExposedComponents: a.Extensions.ExposedComponents.normalize(),
			ExtensionPoints:   a.Extensions.ExtensionPoints.normalize(),
			AddedLinks:        a.Extensions.AddedLinks.normalize(pluginID, graph.ExtensionLink),
			AddedComponents:   a.Extensions.AddedComponents.normalize(pluginID, graph.ExtensionComponent),
			AddedFunctions:    a.Extensions.AddedFunctions.normalize(pluginID, graph.ExtensionFunction),
		},
		Dependencies: Dependencies{Extensions: DependencyExtensions{
			ExposedComponents: a.Dependencies.Extensions.ExposedComponents.normalize(),
			ExtensionPoints:   a.Dependencies.Extensions.ExtensionPoints.normalize(),
		}},
	}
}

// Items without an id cannot be referenced and are dropped.
func (items Items) normalize() Items {
	out := make(Items, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Contributions are addressed by their targets, so a missing id is
// synthesized from the owning plugin, type and position.
func (cs Contributions) normalize(pluginID string, t graph.ExtensionType) Contributions {
	out := make(Contributions, 0, len(cs))
	for i, c := range cs {
		if c.ID == "" {
			c.ID = ContributionID(pluginID, t, i)
		}
		c.Targets = c.Targets.normalize()
		out = append(out, c)
	}
	return out
}

// ContributionID returns the id synthesized for the i-th contribution of
// type t declared by pluginID when the snapshot gives it none.
func ContributionID(pluginID string, t graph.ExtensionType, i int) string {
	return fmt.Sprintf("%s/%s/%d", pluginID, t, i)
}
