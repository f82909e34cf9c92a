// Package loader reads YAML documents and walks their top-level sections
// in document order.
package loader

import (
	"errors"
	"fmt"
	"os"

	"github.com/GothShoot/proxmox-swarm/internal/model"
	"gopkg.in/yaml.v3"
)

// Entry is one named value of a top-level section such as services.
type Entry struct {
	Name   string
	Fields model.Fields
}

// ReadFile reads path, wrapping I/O failures in *AccessError.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &AccessError{Path: path, Err: err}
	}
	return data, nil
}

// Decode parses data and returns the root mapping node. An empty document
// yields nil without error.
func Decode(data []byte, source string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: source, Err: err}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := resolve(doc.Content[0])
	if isNull(root) {
		return nil, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{Path: source, Err: fmt.Errorf("line %d: document root must be a mapping", root.Line)}
	}
	return root, nil
}

// Section returns the entries of the top-level mapping under key. A missing
// or null section yields no entries. Null entry values decode to empty Fields.
// A repeated name keeps its first position and its last value.
func Section(root *yaml.Node, source, key string) ([]Entry, error) {
	if root == nil {
		return nil, nil
	}

	node := lookup(root, key)
	if node == nil || isNull(node) {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, &ParseError{Path: source, Err: fmt.Errorf("line %d: %s must be a mapping", node.Line, key)}
	}

	entries := make([]Entry, 0, len(node.Content)/2)
	index := make(map[string]int, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], resolve(node.Content[i+1])
		if k.Tag == "!!merge" {
			continue
		}

		fields, err := entryFields(v, source, key+"."+k.Value)
		if err != nil {
			return nil, err
		}

		entry := Entry{Name: k.Value, Fields: fields}
		if at, dup := index[k.Value]; dup {
			entries[at] = entry
			continue
		}
		index[k.Value] = len(entries)
		entries = append(entries, entry)
	}
	return entries, nil
}

// entryFields decodes one section value. Scalars under environment keep
// their source text so values such as 8.0 or 0o17 are not reformatted.
func entryFields(v *yaml.Node, source, path string) (model.Fields, error) {
	var raw any
	if err := v.Decode(&raw); err != nil {
		return nil, &ParseError{Path: source, Err: fmt.Errorf("%s: %w", path, err)}
	}
	if raw == nil {
		return model.Fields{}, nil
	}
	fields, ok := model.AsFields(raw)
	if !ok {
		return nil, &ParseError{
			Path: source,
			Err:  fmt.Errorf("line %d: %s must be a mapping, got %s", v.Line, path, model.TypeName(raw)),
		}
	}

	if envNode := lookup(v, "environment"); envNode != nil {
		literal, err := literalValue(envNode)
		if err != nil {
			return nil, &ParseError{Path: source, Err: fmt.Errorf("%s.environment: %w", path, err)}
		}
		fields["environment"] = literal
	}
	return fields, nil
}

// literalValue decodes n like yaml.v3 does, except that non-null scalars
// directly inside a mapping or sequence become their source text.
func literalValue(n *yaml.Node) (any, error) {
	n = resolve(n)
	switch n.Kind {
	case yaml.MappingNode:
		out := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], resolve(n.Content[i+1])
			if k.Tag == "!!merge" {
				continue
			}
			val, err := scalarText(v)
			if err != nil {
				return nil, err
			}
			out[k.Value] = val
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			val, err := scalarText(resolve(item))
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
		return out, nil
	}

	var raw any
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func scalarText(n *yaml.Node) (any, error) {
	if n.Kind == yaml.ScalarNode {
		if isNull(n) {
			return nil, nil
		}
		return n.Value, nil
	}
	var raw any
	if err := n.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Load reads path and returns the entries of its top-level key section.
func Load(path, key string) ([]Entry, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	root, err := Decode(data, path)
	if err != nil {
		return nil, err
	}
	return Section(root, path, key)
}

// IsAccess reports whether err came from reading a file.
func IsAccess(err error) bool {
	return errors.Is(err, ErrAccess)
}

// IsParse reports whether err came from decoding a document.
func IsParse(err error) bool {
	return errors.Is(err, ErrParse)
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return resolve(mapping.Content[i+1])
		}
	}
	return nil
}

func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}
