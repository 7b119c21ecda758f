package parser

import (
	"strings"

	"github.com/openparl/legisearch/internal/core/domain"
)

var limsAttributeNames = []string{
	domain.LIMSFid,
	domain.LIMSID,
	domain.LIMSEnactedDate,
	domain.LIMSInForceStart,
	domain.LIMSPointInTime,
	domain.LIMSCurrentDate,
}

// extractDefinitions scans every Definition element in document order.
// Multiple Definition elements inside one section each yield an
// independent term, even when they share the defining section.
func extractDefinitions(root *node, lang domain.Language) []domain.DefinedTerm {
	var out []domain.DefinedTerm

	var partLabel string
	var walk func(n *node, sectionLabel string)
	walk = func(n *node, sectionLabel string) {
		for _, child := range n.children {
			if child.kind != elementNode {
				continue
			}
			switch child.local() {
			case "Heading":
				// Only a Part heading opens a definition scope; any other
				// labeled heading (schedule, division) closes the current one.
				if label := child.child("Label"); label != nil {
					if text := label.plainText(); isPartLabel(text) {
						partLabel = text
					} else {
						partLabel = ""
					}
				}
				walk(child, sectionLabel)
			case "Section":
				label := sectionLabel
				if l := child.child("Label"); l != nil {
					label = l.plainText()
				}
				walk(child, label)
			case "Definition":
				if term, ok := buildDefinedTerm(child, lang, sectionLabel, partLabel); ok {
					out = append(out, term)
				}
				walk(child, sectionLabel)
			default:
				walk(child, sectionLabel)
			}
		}
	}
	walk(root, "")
	return out
}

// isPartLabel matches "Part ..." and the French "Partie ...".
func isPartLabel(text string) bool {
	return strings.HasPrefix(strings.ToLower(text), "part")
}

func buildDefinedTerm(def *node, lang domain.Language, sectionLabel, partLabel string) (domain.DefinedTerm, bool) {
	termText := definedTermText(def, lang)
	if termText == "" {
		return domain.DefinedTerm{}, false
	}

	term := domain.DefinedTerm{
		Term:         termText,
		Language:     lang,
		SectionLabel: sectionLabel,
		Scope:        definitionScope(def, lang),
		LIMS:         limsMetadata(def),
	}
	if term.Scope == domain.ScopePart {
		term.PartLabel = partLabel
	}
	return term, true
}

// definedTermText takes the language-tagged term element matching the
// requested language.
func definedTermText(def *node, lang domain.Language) string {
	tag := "DefinedTermEn"
	if lang == domain.LanguageFR {
		tag = "DefinedTermFr"
	}
	terms := def.descendants(tag)
	if len(terms) == 0 {
		return ""
	}
	return terms[0].plainText()
}

// definitionScope narrows a term to its Part when the defining text says
// so; everything else is document-scoped.
func definitionScope(def *node, lang domain.Language) domain.DefinitionScope {
	text := strings.ToLower(def.plainText())
	switch lang {
	case domain.LanguageFR:
		if strings.Contains(text, "présente partie") {
			return domain.ScopePart
		}
	default:
		if strings.Contains(text, "this part") {
			return domain.ScopePart
		}
	}
	return domain.ScopeDocument
}

// limsMetadata reads the namespaced attributes one by one. Every attribute
// is independently optional; an element carrying none of them yields a nil
// map, not a map of empty values.
func limsMetadata(def *node) map[string]string {
	var lims map[string]string
	for _, name := range limsAttributeNames {
		value, ok := def.limsAttr(name)
		if !ok {
			continue
		}
		if lims == nil {
			lims = make(map[string]string, len(limsAttributeNames))
		}
		lims[name] = value
	}
	return lims
}
