package plugin

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// IDList is a list of ids that decodes from a single string, a list of
// strings, or null. Blank entries and duplicates are dropped, keeping the
// first occurrence.
type IDList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *IDList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*l = nil
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*l = IDList{s}.normalize()
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		ids := make(IDList, 0, len(raw))
		for _, r := range raw {
			var s string
			if json.Unmarshal(r, &s) == nil {
				ids = append(ids, s)
			}
		}
		*l = ids.normalize()
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *IDList) UnmarshalYAML(value *yaml.Node) error {
	*l = nil
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			return nil
		}
		*l = IDList{value.Value}.normalize()
	case yaml.SequenceNode:
		ids := make(IDList, 0, len(value.Content))
		for _, n := range value.Content {
			if n.Kind == yaml.ScalarNode && n.Tag != "!!null" {
				ids = append(ids, n.Value)
			}
		}
		*l = ids.normalize()
	}
	return nil
}

func (l IDList) normalize() IDList {
	out := make(IDList, 0, len(l))
	seen := make(map[string]bool, len(l))
	for _, id := range l {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// UnmarshalJSON implements json.Unmarshaler. Anything but an array decodes
// to an empty list; elements that are not objects are skipped.
func (items *Items) UnmarshalJSON(data []byte) error {
	*items = Items(decodeListJSON[Item](data))
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (items *Items) UnmarshalYAML(value *yaml.Node) error {
	*items = Items(decodeListYAML[Item](value))
	return nil
}

// UnmarshalJSON implements json.Unmarshaler. Anything but an array decodes
// to an empty list; elements that are not objects are skipped.
func (cs *Contributions) UnmarshalJSON(data []byte) error {
	*cs = Contributions(decodeListJSON[Contribution](data))
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (cs *Contributions) UnmarshalYAML(value *yaml.Node) error {
	*cs = Contributions(decodeListYAML[Contribution](value))
	return nil
}

func decodeListJSON[T any](data []byte) []T {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	out := make([]T, 0, len(raw))
	for _, r := range raw {
		r = bytes.TrimSpace(r)
		if len(r) == 0 || r[0] != '{' {
			continue
		}
		var v T
		if json.Unmarshal(r, &v) == nil {
			out = append(out, v)
		}
	}
	return out
}

func decodeListYAML[T any](value *yaml.Node) []T {
	if value.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]T, 0, len(value.Content))
	for _, n := range value.Content {
		if n.Kind != yaml.MappingNode {
			continue
		}
		var v T
		if n.Decode(&v) == nil {
			out = append(out, v)
		}
	}
	return out
}
