package parser

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// renderBody flattens a section's textual content. Label and MarginalNote
// are carried as structured fields, so they are skipped here.
func renderBody(n *node) string {
	var b strings.Builder
	for _, child := range n.children {
		if child.kind == elementNode {
			switch child.local() {
			case "Label", "MarginalNote":
				continue
			}
		}
		writeRendered(&b, child)
	}
	return normalizeSpace(b.String())
}

// renderContent rewrites a block's markup into display content with
// cross-references converted to navigable anchors.
func renderContent(n *node) string {
	var b strings.Builder
	for _, child := range n.children {
		writeRendered(&b, child)
	}
	return normalizeSpace(b.String())
}

func writeRendered(b *strings.Builder, n *node) {
	if n.kind == textNode {
		b.WriteString(html.EscapeString(n.text))
		b.WriteString(" ")
		return
	}
	switch n.local() {
	case "XRefInternal":
		writeAnchor(b, "#section-"+anchorTarget(n), n.plainText())
		b.WriteString(" ")
	case "XRefExternal":
		href, _ := n.attr("link")
		writeAnchor(b, href, n.plainText())
		b.WriteString(" ")
	case "Footnote":
		// Footnotes are extracted separately; keep only the reference label.
		if label := n.child("Label"); label != nil {
			b.WriteString(html.EscapeString(label.plainText()))
			b.WriteString(" ")
		}
	default:
		for _, child := range n.children {
			writeRendered(b, child)
		}
	}
}

// anchorTarget is the referenced section label: the link attribute when
// present, otherwise the reference's own text.
func anchorTarget(n *node) string {
	if link, ok := n.attr("link"); ok && link != "" {
		return link
	}
	return n.plainText()
}

func writeAnchor(b *strings.Builder, href, text string) {
	anchor := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.A,
		Data:     "a",
		Attr:     []html.Attribute{{Key: "href", Val: href}},
	}
	anchor.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	// Render never fails on a detached anchor with a text child.
	_ = html.Render(b, anchor)
}
