package parser

import (
	"github.com/openparl/legisearch/internal/core/domain"
)

// extractBlocks parses regulation-only Recommendation and Notice blocks.
// Only root-level blocks count; the same element names inside Body belong
// to the body text.
func extractBlocks(root *node) []domain.RegulationBlock {
	var out []domain.RegulationBlock
	for _, child := range root.children {
		if child.kind != elementNode {
			continue
		}
		switch child.local() {
		case "Recommendation":
			out = append(out, buildBlock(child, domain.BlockRecommendation))
		case "Notice":
			out = append(out, buildBlock(child, domain.BlockNotice))
		}
	}
	return out
}

func buildBlock(n *node, blockType domain.BlockType) domain.RegulationBlock {
	block := domain.RegulationBlock{
		Type:           blockType,
		SourceSections: sourceSections(n),
		Body:           renderContent(n),
		Footnotes:      extractFootnotes(n),
	}
	// Only a Notice carries the attribute; Recommendation never has one.
	if blockType == domain.BlockNotice {
		if value, ok := n.attr("publication-requirement"); ok {
			block.PublicationRequirement = &value
		}
	}
	return block
}

// sourceSections collects internal cross-reference targets inside the
// block body, in document order, without duplicates.
func sourceSections(n *node) []string {
	refs := n.descendants("XRefInternal")
	if len(refs) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(refs))
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		target := anchorTarget(ref)
		if target == "" {
			continue
		}
		if _, dup := seen[target]; dup {
			continue
		}
		seen[target] = struct{}{}
		out = append(out, target)
	}
	return out
}

func extractFootnotes(n *node) []domain.Footnote {
	var out []domain.Footnote
	for _, fn := range n.descendants("Footnote") {
		footnote := domain.Footnote{Text: fn.plainText()}
		footnote.ID, _ = fn.attr("id")
		footnote.Placement, _ = fn.attr("placement")
		footnote.Status, _ = fn.attr("status")
		if label := fn.child("Label"); label != nil {
			footnote.Label = label.plainText()
			footnote.Text = renderBody(fn)
		}
		out = append(out, footnote)
	}
	return out
}
