package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openparl/legisearch/internal/core/domain"
)

const minimalAct = `<Statute>
  <Identification>
    <Chapter><ConsolidatedNumber>A-1</ConsolidatedNumber></Chapter>
    <ShortTitle>Access to Information Act</ShortTitle>
    <LongTitle>An Act to extend the present laws of Canada</LongTitle>
  </Identification>
  <Body>
    <Section>
      <Label>2</Label>
      <MarginalNote>Purpose</MarginalNote>
      <Text>The purpose of this Act is to enhance the accountability of government.</Text>
    </Section>
  </Body>
</Statute>`

func TestParseMinimalAct(t *testing.T) {
	doc, err := New().Parse([]byte(minimalAct), domain.LanguageEN)
	require.NoError(t, err)

	assert.Equal(t, "A-1", doc.InstrumentID)
	assert.Equal(t, domain.KindAct, doc.Kind)
	assert.Equal(t, domain.LanguageEN, doc.Language)
	assert.Equal(t, "Access to Information Act", doc.ShortTitle)
	assert.Equal(t, "An Act to extend the present laws of Canada", doc.LongTitle)

	require.Len(t, doc.Sections, 1)
	section := doc.Sections[0]
	assert.Equal(t, "2", section.Label)
	assert.Equal(t, "Purpose", section.MarginalNote)
	assert.Equal(t, domain.SectionOrdinary, section.Type)
	assert.Nil(t, section.Schedule)
	assert.Contains(t, section.Text, "accountability of government")
}

func TestParseRejectsUnknownRoot(t *testing.T) {
	_, err := New().Parse([]byte(`<Gazette><Identification/></Gazette>`), domain.LanguageEN)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrParse))
}

func TestParseRejectsMissingTitles(t *testing.T) {
	raw := `<Statute><Identification><Chapter>C-1</Chapter></Identification><Body/></Statute>`
	_, err := New().Parse([]byte(raw), domain.LanguageEN)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrParse))
}

func TestParseFrenchDefinitionWithLIMS(t *testing.T) {
	raw := `<Statute xmlns:lims="http://justice.gc.ca/lims">
  <Identification>
    <Chapter><ConsolidatedNumber>C-2</ConsolidatedNumber></Chapter>
    <ShortTitle>Loi sur l'exemple</ShortTitle>
  </Identification>
  <Body>
    <Section>
      <Label>2</Label>
      <Definition lims:fid="555" lims:inforce-start-date="2019-08-28">
        <Text><DefinedTermFr>institution fédérale</DefinedTermFr> désigne tout ministère.</Text>
      </Definition>
    </Section>
  </Body>
</Statute>`

	doc, err := New().Parse([]byte(raw), domain.LanguageFR)
	require.NoError(t, err)
	require.Len(t, doc.Definitions, 1)

	def := doc.Definitions[0]
	assert.Equal(t, "institution fédérale", def.Term)
	assert.Equal(t, domain.LanguageFR, def.Language)
	assert.Equal(t, "2", def.SectionLabel)
	assert.Equal(t, domain.ScopeDocument, def.Scope)
	require.NotNil(t, def.LIMS)
	assert.Equal(t, "555", def.LIMS[domain.LIMSFid])
	assert.Equal(t, "2019-08-28", def.LIMS[domain.LIMSInForceStart])
	assert.Len(t, def.LIMS, 2)
}

func TestParseDefinitionWithoutLIMSHasNilMap(t *testing.T) {
	raw := `<Statute>
  <Identification>
    <Chapter><ConsolidatedNumber>C-3</ConsolidatedNumber></Chapter>
    <ShortTitle>Example Act</ShortTitle>
  </Identification>
  <Body>
    <Section>
      <Label>3</Label>
      <Definition>
        <Text><DefinedTermEn>Minister</DefinedTermEn> means the Minister of Justice.</Text>
      </Definition>
    </Section>
  </Body>
</Statute>`

	doc, err := New().Parse([]byte(raw), domain.LanguageEN)
	require.NoError(t, err)
	require.Len(t, doc.Definitions, 1)
	assert.Nil(t, doc.Definitions[0].LIMS)
}

func TestParsePartScopedDefinition(t *testing.T) {
	raw := `<Statute>
  <Identification>
    <Chapter><ConsolidatedNumber>C-4</ConsolidatedNumber></Chapter>
    <ShortTitle>Example Act</ShortTitle>
  </Identification>
  <Body>
    <Heading><Label>Part I</Label><TitleText>General</TitleText></Heading>
    <Section>
      <Label>5</Label>
      <Definition>
        <Text>In this Part, <DefinedTermEn>officer</DefinedTermEn> means a designated person.</Text>
      </Definition>
    </Section>
    <Section>
      <Label>6</Label>
      <Definition>
        <Text>In this Act, <DefinedTermEn>record</DefinedTermEn> means any documentary material.</Text>
      </Definition>
    </Section>
  </Body>
</Statute>`

	doc, err := New().Parse([]byte(raw), domain.LanguageEN)
	require.NoError(t, err)
	require.Len(t, doc.Definitions, 2)

	officer := doc.Definitions[0]
	assert.Equal(t, domain.ScopePart, officer.Scope)
	assert.Equal(t, "Part I", officer.PartLabel)

	record := doc.Definitions[1]
	assert.Equal(t, domain.ScopeDocument, record.Scope)
	assert.Empty(t, record.PartLabel)

	// Both apply inside Part I; only the document-scoped one applies
	// to a section without an enclosing Part.
	inPart := doc.DefinitionsFor("5")
	assert.Len(t, inPart, 2)
}

func TestParsePartScopeEndsAtNonPartHeading(t *testing.T) {
	raw := `<Statute>
  <Identification>
    <Chapter><ConsolidatedNumber>C-6</ConsolidatedNumber></Chapter>
    <ShortTitle>Example Act</ShortTitle>
  </Identification>
  <Body>
    <Heading><Label>Part I</Label><TitleText>General</TitleText></Heading>
    <Section>
      <Label>2</Label>
      <Definition>
        <Text>In this Part, <DefinedTermEn>officer</DefinedTermEn> means a designated person.</Text>
      </Definition>
    </Section>
    <Heading><Label>Division A</Label><TitleText>Transitional</TitleText></Heading>
    <Section>
      <Label>3</Label>
      <Definition>
        <Text>In this Part, <DefinedTermEn>transfer</DefinedTermEn> means a conveyance.</Text>
      </Definition>
    </Section>
  </Body>
</Statute>`

	doc, err := New().Parse([]byte(raw), domain.LanguageEN)
	require.NoError(t, err)
	require.Len(t, doc.Definitions, 2)

	officer := doc.Definitions[0]
	assert.Equal(t, "Part I", officer.PartLabel)

	// The labeled non-Part heading ended Part I; the later part-scoped
	// term must not bind to "Part I" or to "Division A".
	transfer := doc.Definitions[1]
	assert.Equal(t, domain.ScopePart, transfer.Scope)
	assert.Empty(t, transfer.PartLabel)

	// Section placement follows the same rule.
	require.NotNil(t, doc.SectionByLabel(domain.SectionOrdinary, "2"))
	assert.Equal(t, "Part I", doc.SectionByLabel(domain.SectionOrdinary, "2").PartLabel)
	require.NotNil(t, doc.SectionByLabel(domain.SectionOrdinary, "3"))
	assert.Empty(t, doc.SectionByLabel(domain.SectionOrdinary, "3").PartLabel)
}

func TestParseScheduleOriginatingRef(t *testing.T) {
	raw := `<Statute>
  <Identification>
    <Chapter><ConsolidatedNumber>C-5</ConsolidatedNumber></Chapter>
    <ShortTitle>Example Act</ShortTitle>
  </Identification>
  <Body>
    <Section><Label>1</Label><Text>Short title.</Text></Section>
  </Body>
  <Schedule>
    <ScheduleFormHeading>
      <Label>SCHEDULE I</Label>
      <TitleText>Government Institutions</TitleText>
      <OriginatingRef>(Section 2)</OriginatingRef>
    </ScheduleFormHeading>
    <FormGroup>
      <Section><Label>1</Label><Text>Department of Agriculture</Text></Section>
    </FormGroup>
    <TableGroup>
      <Section><Label>2</Label><Text>Department of Finance</Text></Section>
    </TableGroup>
  </Schedule>
</Statute>`

	doc, err := New().Parse([]byte(raw), domain.LanguageEN)
	require.NoError(t, err)
	require.Len(t, doc.Sections, 3)

	// Schedule metadata propagates to sections no matter how deep the
	// nesting under the Schedule container.
	for _, section := range doc.Sections[1:] {
		assert.Equal(t, domain.SectionSchedule, section.Type)
		require.NotNil(t, section.Schedule)
		assert.Equal(t, "SCHEDULE I", section.Schedule.Label)
		assert.Equal(t, "Government Institutions", section.Schedule.Title)
		require.NotNil(t, section.Schedule.OriginatingRef)
		assert.Equal(t, "(Section 2)", *section.Schedule.OriginatingRef)
	}

	// Section labels repeat between body and schedule; identity is
	// (type, label).
	assert.Equal(t, domain.SectionOrdinary, doc.SectionByLabel(domain.SectionOrdinary, "1").Type)
	assert.Equal(t, domain.SectionSchedule, doc.SectionByLabel(domain.SectionSchedule, "1").Type)
}

func TestParseScheduleWithoutOriginatingRef(t *testing.T) {
	raw := `<Statute>
  <Identification>
    <Chapter><ConsolidatedNumber>C-6</ConsolidatedNumber></Chapter>
    <ShortTitle>Example Act</ShortTitle>
  </Identification>
  <Body/>
  <Schedule>
    <ScheduleHeading><Label>SCHEDULE</Label></ScheduleHeading>
    <Section><Label>1</Label><Text>Item one</Text></Section>
  </Schedule>
</Statute>`

	doc, err := New().Parse([]byte(raw), domain.LanguageEN)
	require.NoError(t, err)
	require.Len(t, doc.Sections, 1)
	require.NotNil(t, doc.Sections[0].Schedule)
	assert.Nil(t, doc.Sections[0].Schedule.OriginatingRef)
}

func TestParseRegulationBlocks(t *testing.T) {
	raw := `<Regulation>
  <Identification>
    <InstrumentNumber>SOR/83-508</InstrumentNumber>
    <ShortTitle>Access to Information Regulations</ShortTitle>
  </Identification>
  <Recommendation>
    <Text>His Excellency the Governor General in Council, on the recommendation of
      the Minister, pursuant to <XRefInternal>77</XRefInternal> and
      <XRefInternal>77</XRefInternal> and <XRefInternal>78</XRefInternal>.</Text>
  </Recommendation>
  <Notice publication-requirement="gazette-part-2">
    <Text>Notice text with a footnote<Footnote id="fn1" placement="page" status="official"><Label>a</Label><Text>S.C. 1980, c. 111</Text></Footnote>.</Text>
  </Notice>
  <Body>
    <Section><Label>1</Label><Text>Short title provision.</Text></Section>
  </Body>
</Regulation>`

	doc, err := New().Parse([]byte(raw), domain.LanguageEN)
	require.NoError(t, err)
	assert.Equal(t, domain.KindRegulation, doc.Kind)
	assert.Equal(t, "SOR/83-508", doc.InstrumentID)
	require.Len(t, doc.Blocks, 2)

	recommendation := doc.Blocks[0]
	assert.Equal(t, domain.BlockRecommendation, recommendation.Type)
	assert.Nil(t, recommendation.PublicationRequirement)
	// Duplicate references are collapsed, document order preserved.
	assert.Equal(t, []string{"77", "78"}, recommendation.SourceSections)

	notice := doc.Blocks[1]
	assert.Equal(t, domain.BlockNotice, notice.Type)
	require.NotNil(t, notice.PublicationRequirement)
	assert.Equal(t, "gazette-part-2", *notice.PublicationRequirement)
	require.Len(t, notice.Footnotes, 1)
	assert.Equal(t, "fn1", notice.Footnotes[0].ID)
	assert.Equal(t, "page", notice.Footnotes[0].Placement)
	assert.Equal(t, "official", notice.Footnotes[0].Status)
	assert.Equal(t, "a", notice.Footnotes[0].Label)
	assert.Contains(t, notice.Footnotes[0].Text, "S.C. 1980, c. 111")
}

func TestParseActHasNoBlocks(t *testing.T) {
	doc, err := New().Parse([]byte(minimalAct), domain.LanguageEN)
	require.NoError(t, err)
	assert.Empty(t, doc.Blocks)
}
