package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

type nodeKind int

const (
	elementNode nodeKind = iota
	textNode
)

// node is one element or text run of the source markup. The tree keeps
// mixed content in document order so cross-references can be rewritten in
// place during rendering.
type node struct {
	kind     nodeKind
	name     xml.Name
	attrs    []xml.Attr
	children []*node
	text     string
}

func decodeTree(raw []byte) (*node, error) {
	decoder := xml.NewDecoder(bytes.NewReader(raw))
	decoder.Strict = false

	root := &node{kind: elementNode}
	stack := []*node{root}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode token: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			child := &node{
				kind:  elementNode,
				name:  t.Name,
				attrs: append([]xml.Attr(nil), t.Attr...),
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, child)
			stack = append(stack, child)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			text := string(t)
			if strings.TrimSpace(text) == "" {
				continue
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, &node{kind: textNode, text: text})
		}
	}

	for _, child := range root.children {
		if child.kind == elementNode {
			return child, nil
		}
	}
	return nil, fmt.Errorf("no root element")
}

func (n *node) local() string {
	return n.name.Local
}

func (n *node) is(local string) bool {
	return n.kind == elementNode && n.name.Local == local
}

// attr returns the value of the first attribute with the given local name,
// regardless of namespace prefix, and whether it was present at all.
func (n *node) attr(local string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// limsAttr resolves a namespaced LIMS attribute. The namespace may surface
// as a declared URI or as the bare "lims" prefix depending on the source.
func (n *node) limsAttr(local string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Local != local {
			continue
		}
		space := strings.ToLower(a.Name.Space)
		if space == "lims" || strings.Contains(space, "lims") {
			return a.Value, true
		}
	}
	return "", false
}

// child returns the first direct child element with the given local name.
func (n *node) child(local string) *node {
	for _, c := range n.children {
		if c.is(local) {
			return c
		}
	}
	return nil
}

// elements returns direct child elements with the given local name.
func (n *node) elements(local string) []*node {
	var out []*node
	for _, c := range n.children {
		if c.is(local) {
			out = append(out, c)
		}
	}
	return out
}

// descendants walks depth-first and returns every element with the given
// local name, in document order.
func (n *node) descendants(local string) []*node {
	var out []*node
	var walk func(*node)
	walk = func(cur *node) {
		for _, c := range cur.children {
			if c.kind != elementNode {
				continue
			}
			if c.name.Local == local {
				out = append(out, c)
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// plainText concatenates all text runs beneath the node with normalized
// whitespace.
func (n *node) plainText() string {
	var b strings.Builder
	var walk func(*node)
	walk = func(cur *node) {
		if cur.kind == textNode {
			b.WriteString(cur.text)
			b.WriteString(" ")
			return
		}
		for _, c := range cur.children {
			walk(c)
		}
	}
	walk(n)
	return normalizeSpace(b.String())
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
