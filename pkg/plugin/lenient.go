package plugin

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Every record decodes field by field: a wrongly typed field is left empty
// and the rest of the record is kept. Values that are not objects decode to
// the zero record.

// UnmarshalJSON implements json.Unmarshaler.
func (a *App) UnmarshalJSON(data []byte) error {
	*a = App{}
	decodeFieldsJSON(data, map[string]any{
		"extensions":   &a.Extensions,
		"dependencies": &a.Dependencies,
	})
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *App) UnmarshalYAML(value *yaml.Node) error {
	*a = App{}
	decodeFieldsYAML(value, map[string]any{
		"extensions":   &a.Extensions,
		"dependencies": &a.Dependencies,
	})
	return nil
}

func (e *Extensions) fields() map[string]any {
	return map[string]any{
		"exposedComponents": &e.ExposedComponents,
		"extensionPoints":   &e.ExtensionPoints,
		"addedLinks":        &e.AddedLinks,
		"addedComponents":   &e.AddedComponents,
		"addedFunctions":    &e.AddedFunctions,
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Extensions) UnmarshalJSON(data []byte) error {
	*e = Extensions{}
	decodeFieldsJSON(data, e.fields())
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Extensions) UnmarshalYAML(value *yaml.Node) error {
	*e = Extensions{}
	decodeFieldsYAML(value, e.fields())
	return nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Dependencies) UnmarshalJSON(data []byte) error {
	*d = Dependencies{}
	decodeFieldsJSON(data, map[string]any{"extensions": &d.Extensions})
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Dependencies) UnmarshalYAML(value *yaml.Node) error {
	*d = Dependencies{}
	decodeFieldsYAML(value, map[string]any{"extensions": &d.Extensions})
	return nil
}

func (d *DependencyExtensions) fields() map[string]any {
	return map[string]any{
		"exposedComponents": &d.ExposedComponents,
		"extensionPoints":   &d.ExtensionPoints,
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DependencyExtensions) UnmarshalJSON(data []byte) error {
	*d = DependencyExtensions{}
	decodeFieldsJSON(data, d.fields())
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *DependencyExtensions) UnmarshalYAML(value *yaml.Node) error {
	*d = DependencyExtensions{}
	decodeFieldsYAML(value, d.fields())
	return nil
}

func (it *Item) fields() map[string]any {
	return map[string]any{
		"id":          &it.ID,
		"title":       &it.Title,
		"description": &it.Description,
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (it *Item) UnmarshalJSON(data []byte) error {
	*it = Item{}
	decodeFieldsJSON(data, it.fields())
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (it *Item) UnmarshalYAML(value *yaml.Node) error {
	*it = Item{}
	decodeFieldsYAML(value, it.fields())
	return nil
}

func (c *Contribution) fields() map[string]any {
	return map[string]any{
		"id":          &c.ID,
		"title":       &c.Title,
		"description": &c.Description,
		"targets":     &c.Targets,
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Contribution) UnmarshalJSON(data []byte) error {
	*c = Contribution{}
	decodeFieldsJSON(data, c.fields())
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Contribution) UnmarshalYAML(value *yaml.Node) error {
	*c = Contribution{}
	decodeFieldsYAML(value, c.fields())
	return nil
}

// decodeFieldsJSON decodes the named fields of a JSON object into their
// destinations, ignoring per-field errors.
func decodeFieldsJSON(data []byte, fields map[string]any) {
	var raw map[string]json.RawMessage
	if json.Unmarshal(data, &raw) != nil {
		return
	}
	for key, dst := range fields {
		if r, ok := raw[key]; ok {
			_ = json.Unmarshal(r, dst)
		}
	}
}

// decodeFieldsYAML is decodeFieldsJSON for YAML mapping nodes.
func decodeFieldsYAML(value *yaml.Node, fields map[string]any) {
	if value.Kind == yaml.AliasNode && value.Alias != nil {
		value = value.Alias
	}
	if value.Kind != yaml.MappingNode {
		return
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		if dst, ok := fields[value.Content[i].Value]; ok {
			_ = value.Content[i+1].Decode(dst)
		}
	}
}
