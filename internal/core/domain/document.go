package domain

import "time"

type Language string

const (
	LanguageEN Language = "en"
	LanguageFR Language = "fr"
)

type InstrumentKind string

const (
	KindAct        InstrumentKind = "act"
	KindRegulation InstrumentKind = "regulation"
)

type SectionType string

const (
	SectionOrdinary SectionType = "ordinary"
	SectionSchedule SectionType = "schedule"
	SectionForm     SectionType = "form"
	SectionTable    SectionType = "table"
)

// LegalDocument is a parsed act or regulation in exactly one language.
// Bilingual coverage comes from parsing the EN and FR source documents
// separately and correlating by section label.
type LegalDocument struct {
	InstrumentID string            `json:"instrument_id"`
	Kind         InstrumentKind    `json:"kind"`
	Language     Language          `json:"language"`
	ShortTitle   string            `json:"short_title"`
	LongTitle    string            `json:"long_title,omitempty"`
	Sections     []Section         `json:"sections"`
	Definitions  []DefinedTerm     `json:"definitions,omitempty"`
	Blocks       []RegulationBlock `json:"blocks,omitempty"`
	ParsedAt     time.Time         `json:"parsed_at"`

	sectionIndex map[sectionKey]*Section
}

type sectionKey struct {
	sectionType SectionType
	label       string
}

// Section labels are not unique across a document: schedules reuse
// numbering, so lookup identity is (section type, label).
type Section struct {
	Label        string        `json:"label"`
	MarginalNote string        `json:"marginal_note,omitempty"`
	Text         string        `json:"text"`
	Type         SectionType   `json:"type"`
	ParentLabel  string        `json:"parent_label,omitempty"`
	PartLabel    string        `json:"part_label,omitempty"`
	Schedule     *ScheduleInfo `json:"schedule,omitempty"`
}

// ScheduleInfo is attached to every section nested under a schedule
// container. OriginatingRef is nil when the schedule heading carries no
// OriginatingRef sub-element; it is never the empty string in that case.
type ScheduleInfo struct {
	Label          string  `json:"label"`
	Title          string  `json:"title,omitempty"`
	OriginatingRef *string `json:"originating_ref,omitempty"`
}

type DefinitionScope string

const (
	ScopeDocument DefinitionScope = "document"
	ScopePart     DefinitionScope = "part"
)

// DefinedTerm is a term introduced by a Definition block. LIMS carries
// only the namespaced attributes actually present on the element; it is
// nil when the element has none of them.
type DefinedTerm struct {
	Term         string            `json:"term"`
	Language     Language          `json:"language"`
	SectionLabel string            `json:"section_label"`
	Scope        DefinitionScope   `json:"scope"`
	PartLabel    string            `json:"part_label,omitempty"`
	LIMS         map[string]string `json:"lims,omitempty"`
}

// LIMS attribute names as they appear in the source markup.
const (
	LIMSFid          = "fid"
	LIMSID           = "id"
	LIMSEnactedDate  = "enacted-date"
	LIMSInForceStart = "inforce-start-date"
	LIMSPointInTime  = "pit-date"
	LIMSCurrentDate  = "current-date"
)

type BlockType string

const (
	BlockRecommendation BlockType = "recommendation"
	BlockNotice         BlockType = "notice"
)

// RegulationBlock is a root-level Recommendation or Notice block.
// PublicationRequirement is nil for every Recommendation and copied
// verbatim from the publication-requirement attribute on a Notice.
type RegulationBlock struct {
	Type                   BlockType  `json:"type"`
	PublicationRequirement *string    `json:"publication_requirement,omitempty"`
	SourceSections         []string   `json:"source_sections,omitempty"`
	Body                   string     `json:"body"`
	Footnotes              []Footnote `json:"footnotes,omitempty"`
}

type Footnote struct {
	ID        string `json:"id"`
	Placement string `json:"placement,omitempty"`
	Status    string `json:"status,omitempty"`
	Label     string `json:"label,omitempty"`
	Text      string `json:"text"`
}

// SectionByLabel resolves a section by (type, label). The lookup table is
// built lazily after parsing so cross-references stay plain label strings.
func (d *LegalDocument) SectionByLabel(sectionType SectionType, label string) *Section {
	if d.sectionIndex == nil {
		d.sectionIndex = make(map[sectionKey]*Section, len(d.Sections))
		for i := range d.Sections {
			key := sectionKey{sectionType: d.Sections[i].Type, label: d.Sections[i].Label}
			if _, exists := d.sectionIndex[key]; !exists {
				d.sectionIndex[key] = &d.Sections[i]
			}
		}
	}
	return d.sectionIndex[sectionKey{sectionType: sectionType, label: label}]
}

// DefinitionsFor resolves every defined term applicable inside the named
// section: all document-scoped definitions plus definitions scoped to the
// enclosing Part. Part-scoped terms never apply outside their Part.
func (d *LegalDocument) DefinitionsFor(sectionLabel string) []DefinedTerm {
	part := d.enclosingPart(sectionLabel)

	out := make([]DefinedTerm, 0, len(d.Definitions))
	for _, def := range d.Definitions {
		switch def.Scope {
		case ScopeDocument:
			out = append(out, def)
		case ScopePart:
			if part != "" && def.PartLabel == part {
				out = append(out, def)
			}
		}
	}
	return out
}

func (d *LegalDocument) enclosingPart(sectionLabel string) string {
	section := d.SectionByLabel(SectionOrdinary, sectionLabel)
	if section == nil {
		return ""
	}
	return section.PartLabel
}
