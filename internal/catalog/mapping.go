package catalog

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output keys shared by every emitted entity.
const (
	KeyName       = "name"
	KeyDocs       = "docs"
	KeyCategories = "categories"
	KeyGroups     = "groups"
)

// Field is a single key/value pair of a Mapping.
type Field struct {
	Key   string
	Value interface{}
}

// Mapping is an ordered mapping with string keys. Values are string,
// []string, Mapping or []Mapping.
type Mapping []Field

// Lookup returns the value stored under key.
func (m Mapping) Lookup(key string) (interface{}, bool) {
	for _, f := range m {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the keys in insertion order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m))
	for _, f := range m {
		keys = append(keys, f.Key)
	}
	return keys
}

// Text returns the string value under key, or "" when absent or not a string.
func (m Mapping) Text(key string) string {
	v, _ := m.Lookup(key)
	s, _ := v.(string)
	return s
}

// Categories returns the nested entries, or nil for a leaf.
func (m Mapping) Categories() []Mapping {
	v, _ := m.Lookup(KeyCategories)
	children, _ := v.([]Mapping)
	return children
}

// MarshalYAML emits the fields as a YAML mapping in insertion order.
func (m Mapping) MarshalYAML() (interface{}, error) {
	return m.yamlNode()
}

func (m Mapping) yamlNode() (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range m {
		value, err := yamlValue(f.Value)
		if err != nil {
			return nil, err
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key}
		node.Content = append(node.Content, key, value)
	}
	return node, nil
}

func yamlValue(v interface{}) (*yaml.Node, error) {
	switch val := v.(type) {
	case string:
		return yamlString(val), nil
	case Mapping:
		return val.yamlNode()
	case []Mapping:
		seq := yamlSequence(len(val))
		for _, item := range val {
			child, err := item.yamlNode()
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, child)
		}
		return seq, nil
	case []string:
		seq := yamlSequence(len(val))
		for _, item := range val {
			seq.Content = append(seq.Content, yamlString(item))
		}
		return seq, nil
	default:
		node := &yaml.Node{}
		if err := node.Encode(val); err != nil {
			return nil, err
		}
		return node, nil
	}
}

// yaml11Bools are plain scalars a YAML 1.1 reader loads as booleans.
var yaml11Bools = map[string]bool{
	"y": true, "n": true, "yes": true, "no": true,
	"on": true, "off": true, "true": true, "false": true,
}

// yamlString emits s as a string scalar that every YAML reader loads as a
// string.
func yamlString(s string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	if yaml11Bools[strings.ToLower(s)] {
		node.Style = yaml.DoubleQuotedStyle
	}
	return node
}

func yamlSequence(n int) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	if n == 0 {
		seq.Style = yaml.FlowStyle
	}
	return seq
}

// MarshalJSON emits the fields as a JSON object in insertion order.
func (m Mapping) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, f := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(f.Key); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
		buf.WriteByte(':')
		if err := enc.Encode(f.Value); err != nil {
			return nil, err
		}
		buf.Truncate(buf.Len() - 1)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
