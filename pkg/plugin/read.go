package plugin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/extgraph/pkg/errors"
)

// Snapshot formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ReadFile reads and decodes a snapshot file. The format is chosen by file
// extension (.json, .yaml, .yml).
func ReadFile(path string) (Snapshot, error) {
	if err := errors.ValidateSnapshotPath(path); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "snapshot %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "read %s", path)
	}

	snap, err := Decode(data, FormatForPath(path))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode %s", path)
	}
	return snap, nil
}

// Getter fetches a remote document.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// IsURL reports whether source names an http(s) location rather than a file.
func IsURL(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Fetch downloads and decodes a snapshot from a URL. YAML is chosen when
// the URL path ends in .yaml or .yml, JSON otherwise.
func Fetch(ctx context.Context, g Getter, source string) (Snapshot, error) {
	u, err := url.Parse(source)
	if err != nil || !IsURL(source) {
		return nil, errors.New(errors.ErrCodeInvalidPath, "invalid snapshot url %q", source)
	}

	data, err := g.Get(ctx, source)
	if err != nil {
		return nil, err
	}

	snap, err := Decode(data, FormatForPath(u.Path))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "decode %s", source)
	}
	return snap, nil
}

// FormatForPath returns the snapshot format implied by a file extension.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode decodes a snapshot in the given format. Both the bare
// plugin-id map and the host's boot-data wrapper ({"settings":{"apps":...}})
// are accepted. Individual plugin entries that fail to decode become empty
// apps rather than failing the whole snapshot.
func Decode(data []byte, format string) (Snapshot, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(data)
	case FormatYAML:
		return DecodeYAML(data)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported snapshot format: %s", format)
	}
}

// DecodeJSON decodes a JSON snapshot.
func DecodeJSON(data []byte) (Snapshot, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Snapshot{}, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if settings, ok := raw["settings"]; ok {
		var boot struct {
			Apps map[string]json.RawMessage `json:"apps"`
		}
		if json.Unmarshal(settings, &boot) == nil && boot.Apps != nil {
			raw = boot.Apps
		}
	}

	snap := make(Snapshot, len(raw))
	for id, msg := range raw {
		var app App
		_ = json.Unmarshal(msg, &app)
		snap[id] = app
	}
	return snap.Normalize(), nil
}

// DecodeYAML decodes a YAML snapshot.
func DecodeYAML(data []byte) (Snapshot, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return Snapshot{}, nil
	}

	if settings, ok := raw["settings"]; ok {
		var boot struct {
			Apps map[string]yaml.Node `yaml:"apps"`
		}
		if settings.Decode(&boot) == nil && boot.Apps != nil {
			raw = boot.Apps
		}
	}

	snap := make(Snapshot, len(raw))
	for id, node := range raw {
		var app App
		_ = node.Decode(&app)
		snap[id] = app
	}
	return snap.Normalize(), nil
}

// Encode serializes a snapshot in the given format.
func Encode(s Snapshot, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(s, "", "  ")
	case FormatYAML:
		return yaml.Marshal(s)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported snapshot format: %s", format)
	}
}
