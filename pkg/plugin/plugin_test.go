package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/extgraph/pkg/errors"
	"github.com/matzehuels/extgraph/pkg/graph"
)

const sampleJSON = `{
  "grafana-lokiexplore-app": {
    "extensions": {
      "addedLinks": [
        {"id": "explore-logs", "title": "Explore logs", "targets": "grafana/dashboard/panel/menu"},
        {"title": "Open in Logs", "targets": ["grafana/explore/toolbar/action", "", "grafana/explore/toolbar/action"]}
      ],
      "exposedComponents": [
        {"id": "grafana-lokiexplore-app/embedded-logs/v1", "title": "Embedded logs"},
        {"title": "no id"}
      ],
      "extensionPoints": "not-a-list"
    },
    "dependencies": {
      "extensions": {
        "exposedComponents": ["grafana-k8s-app/cluster-config/v1"]
      }
    }
  },
  "grafana-k8s-app": {
    "extensions": {
      "exposedComponents": [{"id": "grafana-k8s-app/cluster-config/v1"}]
    }
  },
  "broken-app": "not an object"
}`

func TestDecodeJSON(t *testing.T) {
	snap, err := DecodeJSON([]byte(sampleJSON))
	require.NoError(t, err)
	require.Len(t, snap, 3)

	loki := snap["grafana-lokiexplore-app"]
	links := loki.Extensions.AddedLinks
	require.Len(t, links, 2)

	assert.Equal(t, IDList{"grafana/dashboard/panel/menu"}, links[0].Targets)
	assert.Equal(t, IDList{"grafana/explore/toolbar/action"}, links[1].Targets)
	assert.Equal(t, ContributionID("grafana-lokiexplore-app", graph.ExtensionLink, 1), links[1].ID)

	require.Len(t, loki.Extensions.ExposedComponents, 1, "items without id are dropped")
	assert.Empty(t, loki.Extensions.ExtensionPoints, "non-array decodes as empty")
	assert.Equal(t, IDList{"grafana-k8s-app/cluster-config/v1"}, loki.Dependencies.Extensions.ExposedComponents)

	assert.True(t, snap["broken-app"].IsEmpty())
	assert.Equal(t, []string{"broken-app", "grafana-k8s-app", "grafana-lokiexplore-app"}, snap.PluginIDs())
}

func TestDecodeJSONBootData(t *testing.T) {
	data := `{"settings": {"apps": {"grafana-k8s-app": {"extensions": {"exposedComponents": [{"id": "x/v1"}]}}}}}`

	snap, err := DecodeJSON([]byte(data))
	require.NoError(t, err)
	require.Contains(t, snap, "grafana-k8s-app")
	assert.NotContains(t, snap, "settings")
	assert.Len(t, snap["grafana-k8s-app"].Extensions.ExposedComponents, 1)
}

func TestDecodeJSONInvalid(t *testing.T) {
	_, err := DecodeJSON([]byte(`[1, 2, 3]`))
	assert.Error(t, err)

	snap, err := DecodeJSON([]byte("  "))
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestDecodeJSONKeepsValidFields(t *testing.T) {
	data := `{
  "a-app": {"extensions": {"addedLinks": [{"id": "l1", "title": 42, "targets": "ep"}]}},
  "b-app": {"extensions": [], "dependencies": {"extensions": {"exposedComponents": ["c-app/x/v1"]}}},
  "c-app": {"extensions": {"exposedComponents": [{"id": "c-app/x/v1", "description": {"k": 1}}]}},
  "d-app": {"extensions": {"extensionPoints": {"id": "nope"}, "addedFunctions": [{"id": "f1", "targets": ["ep2"], "description": [1]}]}}
}`
	snap, err := DecodeJSON([]byte(data))
	require.NoError(t, err)

	links := snap["a-app"].Extensions.AddedLinks
	require.Len(t, links, 1)
	assert.Equal(t, Contribution{ID: "l1", Targets: IDList{"ep"}}, links[0])

	assert.Equal(t, IDList{"c-app/x/v1"}, snap["b-app"].Dependencies.Extensions.ExposedComponents)

	exposed := snap["c-app"].Extensions.ExposedComponents
	require.Len(t, exposed, 1)
	assert.Equal(t, Item{ID: "c-app/x/v1"}, exposed[0])

	d := snap["d-app"].Extensions
	assert.Empty(t, d.ExtensionPoints)
	require.Len(t, d.AddedFunctions, 1)
	assert.Equal(t, IDList{"ep2"}, d.AddedFunctions[0].Targets)
}

func TestIDListJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  IDList
	}{
		{"Scalar", `{"targets": "single-ep-id"}`, IDList{"single-ep-id"}},
		{"List", `{"targets": ["single-ep-id"]}`, IDList{"single-ep-id"}},
		{"Null", `{"targets": null}`, nil},
		{"Absent", `{}`, nil},
		{"EmptyString", `{"targets": ""}`, IDList{}},
		{"Number", `{"targets": 42}`, nil},
		{"MixedList", `{"targets": ["a", 1, null, "b", "a"]}`, IDList{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := DecodeJSON([]byte(`{"p": {"extensions": {"addedLinks": [` + tt.input + `]}}}`))
			require.NoError(t, err)
			links := snap["p"].Extensions.AddedLinks
			require.Len(t, links, 1)
			assert.ElementsMatch(t, tt.want, links[0].Targets)
		})
	}
}

const sampleYAML = `
grafana-lokiexplore-app:
  extensions:
    addedLinks:
      - id: explore-logs
        title: Explore logs
        targets: grafana/dashboard/panel/menu
      - id: open-logs
        targets:
          - grafana/explore/toolbar/action
          - grafana/explore/toolbar/action
    addedFunctions:
      - title: no targets
        targets: ~
    extensionPoints:
      - id: grafana-lokiexplore-app/investigation/v1
        title: Investigation
grafana-k8s-app:
  dependencies:
    extensions:
      extensionPoints: grafana-lokiexplore-app/investigation/v1
`

func TestDecodeYAML(t *testing.T) {
	snap, err := DecodeYAML([]byte(sampleYAML))
	require.NoError(t, err)
	require.Len(t, snap, 2)

	loki := snap["grafana-lokiexplore-app"]
	require.Len(t, loki.Extensions.AddedLinks, 2)
	assert.Equal(t, IDList{"grafana/dashboard/panel/menu"}, loki.Extensions.AddedLinks[0].Targets)
	assert.Equal(t, IDList{"grafana/explore/toolbar/action"}, loki.Extensions.AddedLinks[1].Targets)

	require.Len(t, loki.Extensions.AddedFunctions, 1)
	assert.Empty(t, loki.Extensions.AddedFunctions[0].Targets)
	assert.Equal(t, "grafana-lokiexplore-app/function/0", loki.Extensions.AddedFunctions[0].ID)

	require.Len(t, loki.Extensions.ExtensionPoints, 1)
	assert.Equal(t, "Investigation", loki.Extensions.ExtensionPoints[0].Title)

	k8s := snap["grafana-k8s-app"]
	assert.Equal(t, IDList{"grafana-lokiexplore-app/investigation/v1"}, k8s.Dependencies.Extensions.ExtensionPoints)
}

func TestDecodeYAMLKeepsValidFields(t *testing.T) {
	data := `
a-app:
  extensions:
    addedLinks:
      - id: l1
        title: {nested: true}
        targets: ep
b-app:
  extensions: [1, 2]
  dependencies:
    extensions:
      exposedComponents: [c-app/x/v1]
c-app:
  extensions:
    exposedComponents:
      - id: c-app/x/v1
        description: [a, b]
`
	snap, err := DecodeYAML([]byte(data))
	require.NoError(t, err)

	links := snap["a-app"].Extensions.AddedLinks
	require.Len(t, links, 1)
	assert.Equal(t, Contribution{ID: "l1", Targets: IDList{"ep"}}, links[0])

	assert.Equal(t, IDList{"c-app/x/v1"}, snap["b-app"].Dependencies.Extensions.ExposedComponents)

	exposed := snap["c-app"].Extensions.ExposedComponents
	require.Len(t, exposed, 1)
	assert.Equal(t, Item{ID: "c-app/x/v1"}, exposed[0])
}

func TestDecodeYAMLBootData(t *testing.T) {
	data := `
settings:
  apps:
    grafana-k8s-app:
      extensions:
        exposedComponents:
          - id: grafana-k8s-app/cluster-config/v1
`
	snap, err := DecodeYAML([]byte(data))
	require.NoError(t, err)
	require.Contains(t, snap, "grafana-k8s-app")
	assert.Len(t, snap["grafana-k8s-app"].Extensions.ExposedComponents, 1)
}

func TestScalarTargetsEquivalent(t *testing.T) {
	scalar, err := DecodeJSON([]byte(`{"p": {"extensions": {"addedLinks": [{"id": "l", "targets": "single-ep-id"}]}}}`))
	require.NoError(t, err)
	list, err := DecodeJSON([]byte(`{"p": {"extensions": {"addedLinks": [{"id": "l", "targets": ["single-ep-id"]}]}}}`))
	require.NoError(t, err)

	assert.Equal(t, list, scalar)
}

func TestNormalize(t *testing.T) {
	snap := Snapshot{
		"": {},
		"p": {Extensions: Extensions{
			ExtensionPoints: Items{{ID: ""}, {ID: "p/ep/v1"}},
			AddedComponents: Contributions{{Targets: IDList{"a", "", "a", "b"}}},
		}},
	}

	got := snap.Normalize()
	require.Len(t, got, 1)
	p := got["p"]
	assert.Equal(t, Items{{ID: "p/ep/v1"}}, p.Extensions.ExtensionPoints)
	require.Len(t, p.Extensions.AddedComponents, 1)
	assert.Equal(t, "p/component/0", p.Extensions.AddedComponents[0].ID)
	assert.Equal(t, IDList{"a", "b"}, p.Extensions.AddedComponents[0].Targets)

	assert.Equal(t, got, got.Normalize(), "normalize is idempotent")
	assert.Empty(t, snap["p"].Extensions.AddedComponents[0].ID, "input is not mutated")
}

func TestAdded(t *testing.T) {
	app := App{Extensions: Extensions{
		AddedLinks:      Contributions{{ID: "l"}},
		AddedComponents: Contributions{{ID: "c"}},
		AddedFunctions:  Contributions{{ID: "f"}},
	}}

	assert.Equal(t, "l", app.Added(graph.ExtensionLink)[0].ID)
	assert.Equal(t, "c", app.Added(graph.ExtensionComponent)[0].ID)
	assert.Equal(t, "f", app.Added(graph.ExtensionFunction)[0].ID)
	assert.Nil(t, app.Added("bogus"))
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(sampleJSON), 0644))
	snap, err := ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Len(t, snap, 3)

	yamlPath := filepath.Join(dir, "snapshot.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(sampleYAML), 0644))
	snap, err = ReadFile(yamlPath)
	require.NoError(t, err)
	assert.Len(t, snap, 2)
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadFile(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "got %v", err)

	_, err = ReadFile(filepath.Join(dir, "snapshot.txt"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "got %v", err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{nope"), 0644))
	_, err = ReadFile(bad)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSnapshot), "got %v", err)
}

func TestEncodeRoundTrip(t *testing.T) {
	snap, err := DecodeJSON([]byte(sampleJSON))
	require.NoError(t, err)

	for _, format := range []string{FormatJSON, FormatYAML} {
		t.Run(format, func(t *testing.T) {
			data, err := Encode(snap, format)
			require.NoError(t, err)
			got, err := Decode(data, format)
			require.NoError(t, err)
			assert.Equal(t, snap.PluginIDs(), got.PluginIDs())
			assert.Equal(t, snap["grafana-lokiexplore-app"].Extensions.AddedLinks,
				got["grafana-lokiexplore-app"].Extensions.AddedLinks)
		})
	}

	_, err = Encode(snap, "xml")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

type getterFunc func(ctx context.Context, url string) ([]byte, error)

func (f getterFunc) Get(ctx context.Context, url string) ([]byte, error) { return f(ctx, url) }

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://grafana.example/api/frontend/settings"))
	assert.True(t, IsURL("http://localhost:3000/plugins.yaml"))
	assert.False(t, IsURL("plugins.json"))
	assert.False(t, IsURL("file:///tmp/plugins.json"))
	assert.False(t, IsURL("https://"))
}

func TestFetch(t *testing.T) {
	var requested string
	g := getterFunc(func(_ context.Context, url string) ([]byte, error) {
		requested = url
		return []byte("grafana:\n  extensions:\n    extensionPoints:\n      - id: grafana/home\n"), nil
	})

	snap, err := Fetch(context.Background(), g, "https://cdn.example/plugins.yml?rev=2")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/plugins.yml?rev=2", requested)
	require.Contains(t, snap, "grafana")
	assert.Equal(t, "grafana/home", snap["grafana"].Extensions.ExtensionPoints[0].ID)

	_, err = Fetch(context.Background(), g, "plugins.json")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidPath))

	bad := getterFunc(func(context.Context, string) ([]byte, error) { return []byte("{"), nil })
	_, err = Fetch(context.Background(), bad, "https://grafana.example/api/frontend/settings")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidSnapshot))
}
