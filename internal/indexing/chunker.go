// Package indexing turns parsed documents into retrievable units. Chunk
// boundaries follow section boundaries: retrieval quality depends on a
// chunk mapping back to a citable provision.
package indexing

import (
	"fmt"
	"strings"

	"github.com/openparl/legisearch/internal/core/domain"
	"github.com/openparl/legisearch/internal/core/ports"
)

type Chunker struct {
	maxChars int
	overlap  int
}

func NewChunker(maxChars, overlap int) *Chunker {
	if maxChars <= 0 {
		maxChars = 1200
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChars {
		overlap = maxChars / 4
	}
	return &Chunker{maxChars: maxChars, overlap: overlap}
}

// Split emits one chunk per section, splitting oversized sections into
// overlapping windows. Every chunk carries the payload needed to build a
// legislation-section citation without re-reading the document.
func (c *Chunker) Split(doc *domain.LegalDocument) []ports.Chunk {
	var out []ports.Chunk
	for _, section := range doc.Sections {
		text := sectionText(doc, section)
		if strings.TrimSpace(text) == "" {
			continue
		}
		source := domain.CandidateSource{
			InstrumentID: doc.InstrumentID,
			Type:         domain.SourceLegislationSection,
			Language:     doc.Language,
			SectionLabel: section.Label,
			SectionType:  section.Type,
		}
		switch doc.Language {
		case domain.LanguageFR:
			source.TitleFR = doc.ShortTitle
		default:
			source.TitleEN = doc.ShortTitle
		}

		pieces := c.window(text)
		for i, piece := range pieces {
			id := fmt.Sprintf("%s:%s:%s:%s", doc.InstrumentID, doc.Language, section.Type, section.Label)
			if len(pieces) > 1 {
				id = fmt.Sprintf("%s:%d", id, i)
			}
			out = append(out, ports.Chunk{ID: id, Text: piece, Source: source})
		}
	}
	return out
}

// sectionText prefixes the marginal note and short title so the embedding
// carries the provision's context, not just its body.
func sectionText(doc *domain.LegalDocument, section domain.Section) string {
	var parts []string
	if doc.ShortTitle != "" {
		parts = append(parts, doc.ShortTitle)
	}
	if section.MarginalNote != "" {
		parts = append(parts, section.MarginalNote)
	}
	if section.Label != "" {
		parts = append(parts, section.Label+". "+section.Text)
	} else {
		parts = append(parts, section.Text)
	}
	return strings.Join(parts, " - ")
}

func (c *Chunker) window(text string) []string {
	runes := []rune(text)
	if len(runes) <= c.maxChars {
		return []string{text}
	}

	step := c.maxChars - c.overlap
	if step <= 0 {
		step = c.maxChars
	}
	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + c.maxChars
		if end > len(runes) {
			end = len(runes)
		}
		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			out = append(out, piece)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
