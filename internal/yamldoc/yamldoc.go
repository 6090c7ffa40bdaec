// Package yamldoc provides ordered, comment-preserving YAML document
// manipulation on top of yaml.v3 nodes.
//
// CaC content files are human-authored: key order, comments, and literal
// blocks must survive a load/mutate/save round trip. yaml.v3 keeps that
// information on yaml.Node, so every mutation here works directly on the
// node graph instead of decoding into maps.
package yamldoc

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is a mutable YAML document bound to the file it was loaded from.
type Document struct {
	path string
	doc  *yaml.Node
}

// Load reads a YAML file into a Document, preserving key order and comments.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		// Empty file: start from an empty mapping.
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{Mapping()},
		}
	}

	return &Document{path: path, doc: &doc}, nil
}

// Path returns the file path the document was loaded from.
func (d *Document) Path() string {
	return d.path
}

// Root returns the document's top-level node (usually a mapping).
func (d *Document) Root() *yaml.Node {
	return d.doc.Content[0]
}

// Save writes the document back to the file it was loaded from.
func (d *Document) Save() error {
	return d.SaveTo(d.path)
}

// SaveTo serializes the document to path with the CaC content style:
// explicit document start and 4-space indentation.
func (d *Document) SaveTo(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open %s for writing: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString("---\n"); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	enc := yaml.NewEncoder(f)
	enc.SetIndent(4)
	if err := enc.Encode(d.doc); err != nil {
		return fmt.Errorf("failed to serialize %s: %w", path, err)
	}
	return enc.Close()
}

// Scalar returns a plain string scalar node.
func Scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

// LiteralScalar returns a string scalar rendered as a literal block (|),
// preserving line breaks.
func LiteralScalar(s string) *yaml.Node {
	n := Scalar(s)
	n.Style = yaml.LiteralStyle
	return n
}

// Mapping returns an empty mapping node.
func Mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// Sequence returns a sequence node holding the given string values.
func Sequence(values ...string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, v := range values {
		n.Content = append(n.Content, Scalar(v))
	}
	return n
}

// IsNull reports whether a node is absent or an explicit YAML null.
func IsNull(n *yaml.Node) bool {
	return n == nil || n.Tag == "!!null"
}

// Get returns the value node for key in mapping m, or nil.
func Get(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// Key returns the key node for key in mapping m, or nil.
func Key(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i]
		}
	}
	return nil
}

// Set replaces the value for key, keeping the existing key node (and any
// comments attached to it). A missing key is appended at the end.
func Set(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content, Scalar(key), value)
}

// Ensure returns the value node for key, inserting def if the field is
// missing or null. New fields are inserted before the last existing pair so
// the mapping's trailing entry (and any foot comment on it) stays last.
func Ensure(m *yaml.Node, key string, def *yaml.Node) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			if IsNull(m.Content[i+1]) {
				m.Content[i+1] = def
			}
			return m.Content[i+1]
		}
	}

	keyNode := Scalar(key)
	pos := len(m.Content) - 2
	if pos < 0 {
		pos = 0
	}
	inserted := append([]*yaml.Node{}, m.Content[:pos]...)
	inserted = append(inserted, keyNode, def)
	inserted = append(inserted, m.Content[pos:]...)
	m.Content = inserted
	return def
}

// StringValue returns the scalar value of n, or "" for non-scalars.
func StringValue(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	if n.Tag == "!!null" {
		return ""
	}
	return n.Value
}

// SeqStrings returns the scalar values of a sequence node.
func SeqStrings(seq *yaml.Node) []string {
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]string, 0, len(seq.Content))
	for _, c := range seq.Content {
		out = append(out, c.Value)
	}
	return out
}

// AppendString appends a string scalar to a sequence node.
func AppendString(seq *yaml.Node, s string) {
	seq.Content = append(seq.Content, Scalar(s))
}

// RemoveString removes the first element of seq with the given scalar value.
// It returns true if an element was removed.
func RemoveString(seq *yaml.Node, s string) bool {
	for i, c := range seq.Content {
		if c.Value == s {
			seq.Content = append(seq.Content[:i], seq.Content[i+1:]...)
			return true
		}
	}
	return false
}
