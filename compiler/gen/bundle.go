package gen

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Bundle renders the resource bundle of t: a YAML mapping from resource key
// to description, in definition order. Every table, canonical or tagged,
// has one.
func (e *Emitter) Bundle(t *ErrorTable) ([]byte, error) {
	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, entry := range t.Entries {
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.naming.ResourceKey(entry)},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry.Description},
		)
	}
	if len(m.Content) == 0 {
		m.Style = yaml.FlowStyle
	}
	doc := &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{m}}
	if e.header != "" {
		doc.HeadComment = "# " + e.header + "\n# Source: " + t.FileBase()
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, NewGenerationError("bundle", e.naming.BundleFile(t), "encode", err)
	}
	if err := enc.Close(); err != nil {
		return nil, NewGenerationError("bundle", e.naming.BundleFile(t), "encode", fmt.Errorf("close: %w", err))
	}
	return buf.Bytes(), nil
}
