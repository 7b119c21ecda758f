// Package parser converts bilingual legislative markup (Justice Laws XML)
// into the normalized document model. One parsed document carries exactly
// one language; the EN and FR source documents are parsed separately and
// correlated by section label downstream.
package parser

import (
	"errors"
	"time"

	"github.com/openparl/legisearch/internal/core/domain"
)

// Parser implements ports.DocumentParser over a single recursive descent
// of the markup tree. It is stateless and safe for concurrent use.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

// Parse builds a LegalDocument from raw markup. It fails with the parse
// kind when the root element is neither a statute nor a regulation
// container, or when mandatory identification fields are missing.
func (p *Parser) Parse(raw []byte, lang domain.Language) (*domain.LegalDocument, error) {
	root, err := decodeTree(raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrParse, "decode markup", err)
	}

	var kind domain.InstrumentKind
	switch root.local() {
	case "Statute", "Act":
		kind = domain.KindAct
	case "Regulation":
		kind = domain.KindRegulation
	default:
		return nil, domain.WrapError(domain.ErrParse, "inspect root",
			errors.New("root element "+root.local()+" is not a statute or regulation"))
	}

	doc := &domain.LegalDocument{
		Kind:     kind,
		Language: lang,
		ParsedAt: time.Now().UTC(),
	}
	if err := parseIdentification(root, doc); err != nil {
		return nil, err
	}

	doc.Sections = extractSections(root)
	doc.Definitions = extractDefinitions(root, lang)
	if kind == domain.KindRegulation {
		doc.Blocks = extractBlocks(root)
	}
	return doc, nil
}

func parseIdentification(root *node, doc *domain.LegalDocument) error {
	ident := root.child("Identification")
	if ident == nil {
		return domain.WrapError(domain.ErrParse, "identification",
			errors.New("missing Identification block"))
	}

	doc.InstrumentID = instrumentID(ident)
	if doc.InstrumentID == "" {
		return domain.WrapError(domain.ErrParse, "identification",
			errors.New("missing instrument identifier"))
	}

	if short := ident.child("ShortTitle"); short != nil {
		doc.ShortTitle = short.plainText()
	}
	if long := ident.child("LongTitle"); long != nil {
		doc.LongTitle = long.plainText()
	}
	if doc.ShortTitle == "" {
		doc.ShortTitle = doc.LongTitle
	}
	if doc.ShortTitle == "" {
		return domain.WrapError(domain.ErrParse, "identification",
			errors.New("missing short and long title"))
	}
	return nil
}

// instrumentID prefers the instrument number (regulations), then the
// consolidated chapter, then the bill number.
func instrumentID(ident *node) string {
	if n := ident.child("InstrumentNumber"); n != nil {
		return n.plainText()
	}
	if chapter := ident.child("Chapter"); chapter != nil {
		if n := chapter.child("ConsolidatedNumber"); n != nil {
			return n.plainText()
		}
		return chapter.plainText()
	}
	if n := ident.child("BillNumber"); n != nil {
		return n.plainText()
	}
	return ""
}
