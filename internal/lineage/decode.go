package lineage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Decoding errors.
var (
	// ErrMalformed reports input that is not a mapping of names to nodes.
	ErrMalformed = errors.New("malformed lineage result")
	// ErrMultipleRoots reports a top-level mapping with more than one entry.
	ErrMultipleRoots = errors.New("lineage result must have exactly one root")
)

// Decode reads a lineage result in the producer's wire format, JSON or YAML:
//
//	{"DB.S.V": {"type": "VIEW", "sources": [{"DB.S.T": {"type": "TABLE"}}]}}
//
// Both "kind" and "type" are accepted for the node kind. Missing kinds decode
// as KindUnknown and missing sources as an empty list. Empty input yields an
// empty result.
//
// The YAML parser stops at a nesting depth of 10000. Every tree level nests
// three deep (entry mapping, sources sequence, node mapping), so chains longer
// than roughly 3300 levels fail with ErrMalformed.
func Decode(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read lineage: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(data []byte) (*Result, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return &Result{}, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	top := unwrap(&doc)
	if top == nil || isNull(top) {
		return &Result{}, nil
	}
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level is not a mapping (line %d)", ErrMalformed, top.Line)
	}

	roots, err := decodeEntry(top)
	if err != nil {
		return nil, err
	}
	switch len(roots) {
	case 0:
		return &Result{}, nil
	case 1:
		return &Result{Root: roots[0]}, nil
	default:
		return nil, fmt.Errorf("%w: found %d", ErrMultipleRoots, len(roots))
	}
}

// UnmarshalJSON implements json.Unmarshaler using the same rules as Decode.
func (r *Result) UnmarshalJSON(data []byte) error {
	res, err := DecodeBytes(data)
	if err != nil {
		return err
	}
	*r = *res
	return nil
}

// decodeEntry decodes a {name: body, ...} mapping into nodes in document order.
func decodeEntry(m *yaml.Node) ([]*Node, error) {
	nodes := make([]*Node, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		key := unwrap(m.Content[i])
		if key == nil || key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: object name must be a string (line %d)", ErrMalformed, m.Content[i].Line)
		}
		n, err := decodeBody(key.Value, unwrap(m.Content[i+1]))
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func decodeBody(name string, body *yaml.Node) (*Node, error) {
	n := &Node{Name: name}
	if body == nil || isNull(body) {
		return n, nil
	}
	if body.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: node %q must be a mapping (line %d)", ErrMalformed, name, body.Line)
	}

	var kind, typ string
	for i := 0; i+1 < len(body.Content); i += 2 {
		key := unwrap(body.Content[i])
		val := unwrap(body.Content[i+1])
		if key == nil || val == nil {
			continue
		}
		switch key.Value {
		case "kind":
			kind = scalar(val)
		case "type":
			typ = scalar(val)
		case "note":
			n.Note = scalar(val)
		case "error":
			n.Error = scalar(val)
		case "sources":
			sources, err := decodeSources(name, val)
			if err != nil {
				return nil, err
			}
			n.Sources = sources
		}
	}

	n.RawKind = kind
	if n.RawKind == "" {
		n.RawKind = typ
	}
	n.Kind = ParseKind(n.RawKind)
	return n, nil
}

// decodeSources decodes the ordered child list. Each element is a one-key
// mapping; an element with several keys contributes several siblings.
func decodeSources(parent string, seq *yaml.Node) ([]*Node, error) {
	if isNull(seq) {
		return nil, nil
	}
	if seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: sources of %q must be a list (line %d)", ErrMalformed, parent, seq.Line)
	}
	var out []*Node
	for _, item := range seq.Content {
		item = unwrap(item)
		if item == nil || isNull(item) {
			continue
		}
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: source entry of %q must be a mapping (line %d)", ErrMalformed, parent, item.Line)
		}
		children, err := decodeEntry(item)
		if err != nil {
			return nil, err
		}
		out = append(out, children...)
	}
	return out, nil
}

func unwrap(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func scalar(n *yaml.Node) string {
	if n.Kind != yaml.ScalarNode || isNull(n) {
		return ""
	}
	return n.Value
}

// wireBody is the JSON shape of one node body.
type wireBody struct {
	Type    string     `json:"type"`
	Note    string     `json:"note,omitempty"`
	Error   string     `json:"error,omitempty"`
	Sources []wireNode `json:"sources"`
}

// wireNode is a one-key {name: body} object.
type wireNode map[string]wireBody

func toWire(n *Node) wireNode {
	body := wireBody{
		Type:    n.Label(),
		Note:    n.Note,
		Error:   n.Error,
		Sources: make([]wireNode, 0, len(n.Sources)),
	}
	for _, src := range n.Sources {
		body.Sources = append(body.Sources, toWire(src))
	}
	return wireNode{n.Name: body}
}

// MarshalJSON encodes the result in the producer's wire format.
// An empty result encodes as {}.
func (r *Result) MarshalJSON() ([]byte, error) {
	if r.IsEmpty() {
		return []byte("{}"), nil
	}
	return json.Marshal(toWire(r.Root))
}
