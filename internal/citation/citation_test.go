package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openparl/legisearch/internal/core/domain"
)

func TestBuildVoteQuestionCitation(t *testing.T) {
	c := BuildVoteQuestionCitation(VoteInput{
		Parliament: 44,
		Session:    1,
		VoteNumber: 873,
		Date:       "2024-06-19",
		Subject:    "3rd reading of Bill C-69",
		Result:     "Y",
	}, nil)

	assert.Equal(t, domain.SourceVoteQuestion, c.SourceType)
	assert.Equal(t, "Vote No. 873 on 2024-06-19: 3rd reading of Bill C-69 (Agreed To)", c.Text.EN)
	assert.Equal(t, "Vote no 873 le 2024-06-19 : 3rd reading of Bill C-69 (Adoptée)", c.Text.FR)
	require.NotNil(t, c.URL)
	assert.Equal(t, "https://www.ourcommons.ca/members/en/votes/44/1/873", c.URL.EN)
	assert.Equal(t, "https://www.ourcommons.ca/members/fr/votes/44/1/873", c.URL.FR)
}

func TestVoteCitationPlaceholders(t *testing.T) {
	c := BuildVoteQuestionCitation(VoteInput{Result: "N"}, nil)

	assert.Contains(t, c.Text.EN, "unknown date")
	assert.Contains(t, c.Text.EN, "unknown subject")
	assert.Contains(t, c.Text.FR, "date inconnue")
	assert.Contains(t, c.Text.FR, "sujet inconnu")
	assert.Contains(t, c.Text.EN, "Negatived")
	assert.Contains(t, c.Text.FR, "Rejetée")
}

func TestUnknownResultCodePassesThroughVerbatim(t *testing.T) {
	c := BuildVoteQuestionCitation(VoteInput{VoteNumber: 1, Result: "Tie"}, nil)
	assert.Contains(t, c.Text.EN, "(Tie)")
	assert.Contains(t, c.Text.FR, "(Tie)")
}

func TestZeroVoteIdentifiersYieldLandingURL(t *testing.T) {
	c := BuildMemberVoteCitation(VoteInput{MemberName: "A. Member", Result: "Y"}, nil)
	require.NotNil(t, c.URL)
	assert.Equal(t, "https://www.ourcommons.ca/members/en/votes", c.URL.EN)
	assert.Equal(t, "https://www.ourcommons.ca/members/fr/votes", c.URL.FR)
}

func TestBuildPartyVoteCitation(t *testing.T) {
	c := BuildPartyVoteCitation(VoteInput{VoteNumber: 12, Result: "N", PartyName: "Bloc Québécois"}, nil)
	assert.Equal(t, domain.SourceVoteParty, c.SourceType)
	assert.Equal(t, "Bloc Québécois on Vote No. 12: Negatived", c.Text.EN)
	assert.Equal(t, "Bloc Québécois au vote no 12 : Rejetée", c.Text.FR)
}

func TestBuildLegislationSectionCitation(t *testing.T) {
	c := BuildLegislationSectionCitation(LegislationSectionInput{
		InstrumentID: "A-1",
		Kind:         domain.KindAct,
		SectionLabel: "4",
		TitleEN:      "Access to Information Act",
		TitleFR:      "Loi sur l'accès à l'information",
	}, nil)

	assert.Equal(t, "Access to Information Act, s. 4", c.Text.EN)
	assert.Equal(t, "Loi sur l'accès à l'information, art. 4", c.Text.FR)
	require.NotNil(t, c.URL)
	assert.Equal(t, "https://laws-lois.justice.gc.ca/eng/acts/A-1/index.html#section-4", c.URL.EN)
	assert.Equal(t, "https://laws-lois.justice.gc.ca/fra/lois/A-1/index.html#section-4", c.URL.FR)
}

func TestScheduleSectionCitation(t *testing.T) {
	c := BuildLegislationSectionCitation(LegislationSectionInput{
		InstrumentID: "A-1",
		SectionLabel: "1",
		SectionType:  domain.SectionSchedule,
		TitleEN:      "Access to Information Act",
	}, nil)
	assert.Equal(t, "Access to Information Act, Schedule, s. 1", c.Text.EN)
}

func TestRegulationCitationURLPaths(t *testing.T) {
	c := BuildLegislationSectionCitation(LegislationSectionInput{
		InstrumentID: "SOR/83-508",
		Kind:         domain.KindRegulation,
		SectionLabel: "2",
		TitleEN:      "Access to Information Regulations",
	}, nil)
	require.NotNil(t, c.URL)
	assert.Contains(t, c.URL.EN, "/eng/regulations/")
	assert.Contains(t, c.URL.FR, "/fra/reglements/")
}

func TestLegislationCitationPlaceholders(t *testing.T) {
	c := BuildLegislationSectionCitation(LegislationSectionInput{}, nil)
	assert.Equal(t, "untitled instrument, unknown provision", c.Text.EN)
	assert.Equal(t, "instrument sans titre, disposition inconnue", c.Text.FR)
	require.NotNil(t, c.URL)
	assert.Equal(t, "https://laws-lois.justice.gc.ca/eng", c.URL.EN)
}

func TestOverridesReplaceOnlyNamedFields(t *testing.T) {
	text := "[2nd of 3] Vote No. 873"
	c := BuildVoteQuestionCitation(VoteInput{VoteNumber: 873, Result: "Y"}, &Overrides{TextEN: &text})
	assert.Equal(t, text, c.Text.EN)
	assert.Contains(t, c.Text.FR, "Vote no 873")
}

func TestBuildDispatchRejectsUnknownSourceType(t *testing.T) {
	_, err := Build("hansard-debate", VoteInput{}, LegislationSectionInput{}, nil)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.ErrUnsupportedSourceType))
}

func TestFromCandidateInfersRegulationKind(t *testing.T) {
	c, err := FromCandidate(domain.RetrievedCandidate{
		Source: domain.CandidateSource{
			InstrumentID: "SOR/83-508",
			Type:         domain.SourceLegislationSection,
			SectionLabel: "3",
			TitleEN:      "Access to Information Regulations",
		},
	}, nil)
	require.NoError(t, err)
	assert.Contains(t, c.URL.EN, "/regulations/")
}
