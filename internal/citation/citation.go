// Package citation builds deterministic bilingual citations per source
// type. Formatters are pure: both languages are always populated, missing
// inputs fall back to fixed placeholder labels, and unknown coded values
// pass through verbatim into both language slots.
package citation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openparl/legisearch/internal/core/domain"
)

const (
	commonsVotesBaseEN = "https://www.ourcommons.ca/members/en/votes"
	commonsVotesBaseFR = "https://www.ourcommons.ca/members/fr/votes"
	justiceBaseEN      = "https://laws-lois.justice.gc.ca/eng"
	justiceBaseFR      = "https://laws-lois.justice.gc.ca/fra"
)

var (
	placeholderDate    = domain.BilingualText{EN: "unknown date", FR: "date inconnue"}
	placeholderSubject = domain.BilingualText{EN: "unknown subject", FR: "sujet inconnu"}
	placeholderTitle   = domain.BilingualText{EN: "untitled instrument", FR: "instrument sans titre"}
	placeholderSection = domain.BilingualText{EN: "unknown provision", FR: "disposition inconnue"}

	voteResultLabels = map[string]domain.BilingualText{
		"Y": {EN: "Agreed To", FR: "Adoptée"},
		"N": {EN: "Negatived", FR: "Rejetée"},
	}
)

// Overrides replaces individual output fields without recomputing the
// rest, e.g. to inject an ordinal among several citations of one vote.
type Overrides struct {
	TextEN  *string
	TextFR  *string
	TitleEN *string
	TitleFR *string
}

func (o *Overrides) apply(c *domain.Citation) {
	if o == nil {
		return
	}
	if o.TextEN != nil {
		c.Text.EN = *o.TextEN
	}
	if o.TextFR != nil {
		c.Text.FR = *o.TextFR
	}
	if o.TitleEN != nil {
		c.Title.EN = *o.TitleEN
	}
	if o.TitleFR != nil {
		c.Title.FR = *o.TitleFR
	}
}

// VoteInput identifies a recorded division in the House.
type VoteInput struct {
	Parliament int
	Session    int
	VoteNumber int
	Date       string
	Subject    string
	Result     string
	PartyName  string
	MemberName string
}

// LegislationSectionInput identifies one provision of an instrument.
type LegislationSectionInput struct {
	InstrumentID string
	Kind         domain.InstrumentKind
	SectionLabel string
	SectionType  domain.SectionType
	TitleEN      string
	TitleFR      string
}

// BuildVoteQuestionCitation cites the vote question itself.
func BuildVoteQuestionCitation(in VoteInput, ov *Overrides) domain.Citation {
	result := voteResultLabel(in.Result)
	c := domain.Citation{
		SourceType: domain.SourceVoteQuestion,
		Text: domain.BilingualText{
			EN: fmt.Sprintf("Vote No. %s on %s: %s (%s)", voteNumberLabel(in.VoteNumber), orPlaceholder(in.Date, placeholderDate.EN), orPlaceholder(in.Subject, placeholderSubject.EN), result.EN),
			FR: fmt.Sprintf("Vote no %s le %s : %s (%s)", voteNumberLabel(in.VoteNumber), orPlaceholder(in.Date, placeholderDate.FR), orPlaceholder(in.Subject, placeholderSubject.FR), result.FR),
		},
		Title: domain.BilingualText{
			EN: orPlaceholder(in.Subject, placeholderSubject.EN),
			FR: orPlaceholder(in.Subject, placeholderSubject.FR),
		},
		URL: voteURL(in),
	}
	ov.apply(&c)
	return c
}

// BuildPartyVoteCitation cites how one party voted on a question.
func BuildPartyVoteCitation(in VoteInput, ov *Overrides) domain.Citation {
	result := voteResultLabel(in.Result)
	party := orPlaceholder(in.PartyName, "unknown party")
	partyFR := orPlaceholder(in.PartyName, "parti inconnu")
	c := domain.Citation{
		SourceType: domain.SourceVoteParty,
		Text: domain.BilingualText{
			EN: fmt.Sprintf("%s on Vote No. %s: %s", party, voteNumberLabel(in.VoteNumber), result.EN),
			FR: fmt.Sprintf("%s au vote no %s : %s", partyFR, voteNumberLabel(in.VoteNumber), result.FR),
		},
		Title: domain.BilingualText{
			EN: orPlaceholder(in.Subject, placeholderSubject.EN),
			FR: orPlaceholder(in.Subject, placeholderSubject.FR),
		},
		URL: voteURL(in),
	}
	ov.apply(&c)
	return c
}

// BuildMemberVoteCitation cites an individual member's recorded vote.
func BuildMemberVoteCitation(in VoteInput, ov *Overrides) domain.Citation {
	result := voteResultLabel(in.Result)
	member := orPlaceholder(in.MemberName, "unknown member")
	memberFR := orPlaceholder(in.MemberName, "député inconnu")
	c := domain.Citation{
		SourceType: domain.SourceVoteMember,
		Text: domain.BilingualText{
			EN: fmt.Sprintf("%s on Vote No. %s: %s", member, voteNumberLabel(in.VoteNumber), result.EN),
			FR: fmt.Sprintf("%s au vote no %s : %s", memberFR, voteNumberLabel(in.VoteNumber), result.FR),
		},
		Title: domain.BilingualText{
			EN: orPlaceholder(in.Subject, placeholderSubject.EN),
			FR: orPlaceholder(in.Subject, placeholderSubject.FR),
		},
		URL: voteURL(in),
	}
	ov.apply(&c)
	return c
}

// BuildLegislationSectionCitation cites a provision of an act or
// regulation with language-parameterized Justice Laws URLs.
func BuildLegislationSectionCitation(in LegislationSectionInput, ov *Overrides) domain.Citation {
	titleEN := orPlaceholder(in.TitleEN, placeholderTitle.EN)
	titleFR := orPlaceholder(in.TitleFR, placeholderTitle.FR)
	sectionEN := placeholderSection.EN
	sectionFR := placeholderSection.FR
	if in.SectionLabel != "" {
		sectionEN = "s. " + in.SectionLabel
		sectionFR = "art. " + in.SectionLabel
		if in.SectionType == domain.SectionSchedule {
			sectionEN = "Schedule, s. " + in.SectionLabel
			sectionFR = "annexe, art. " + in.SectionLabel
		}
	}

	c := domain.Citation{
		SourceType: domain.SourceLegislationSection,
		Text: domain.BilingualText{
			EN: fmt.Sprintf("%s, %s", titleEN, sectionEN),
			FR: fmt.Sprintf("%s, %s", titleFR, sectionFR),
		},
		Title: domain.BilingualText{EN: titleEN, FR: titleFR},
		URL:   legislationURL(in),
	}
	ov.apply(&c)
	return c
}

// Build dispatches on the source-type tag. Any tag outside the closed set
// fails with the unsupported-source-type kind.
func Build(source domain.SourceType, vote VoteInput, section LegislationSectionInput, ov *Overrides) (domain.Citation, error) {
	switch source {
	case domain.SourceVoteQuestion:
		return BuildVoteQuestionCitation(vote, ov), nil
	case domain.SourceVoteParty:
		return BuildPartyVoteCitation(vote, ov), nil
	case domain.SourceVoteMember:
		return BuildMemberVoteCitation(vote, ov), nil
	case domain.SourceLegislationSection:
		return BuildLegislationSectionCitation(section, ov), nil
	default:
		return domain.Citation{}, domain.WrapError(domain.ErrUnsupportedSourceType,
			"build citation", errors.New(string(source)))
	}
}

// FromCandidate maps a retained candidate's payload to its citation.
func FromCandidate(candidate domain.RetrievedCandidate, ov *Overrides) (domain.Citation, error) {
	src := candidate.Source
	kind := domain.KindAct
	if strings.HasPrefix(src.InstrumentID, "SOR") || strings.HasPrefix(src.InstrumentID, "DORS") {
		kind = domain.KindRegulation
	}
	return Build(src.Type, VoteInput{}, LegislationSectionInput{
		InstrumentID: src.InstrumentID,
		Kind:         kind,
		SectionLabel: src.SectionLabel,
		SectionType:  src.SectionType,
		TitleEN:      src.TitleEN,
		TitleFR:      src.TitleFR,
	}, ov)
}

func voteResultLabel(code string) domain.BilingualText {
	if label, ok := voteResultLabels[code]; ok {
		return label
	}
	// Unrecognized codes pass through verbatim in both slots.
	return domain.BilingualText{EN: code, FR: code}
}

func voteNumberLabel(n int) string {
	if n <= 0 {
		return "?"
	}
	return fmt.Sprintf("%d", n)
}

// voteURL builds session/vote path segments. A zero identifier yields the
// generic landing page rather than a malformed specific URL.
func voteURL(in VoteInput) *domain.BilingualText {
	if in.Parliament <= 0 || in.Session <= 0 || in.VoteNumber <= 0 {
		return &domain.BilingualText{EN: commonsVotesBaseEN, FR: commonsVotesBaseFR}
	}
	suffix := fmt.Sprintf("/%d/%d/%d", in.Parliament, in.Session, in.VoteNumber)
	return &domain.BilingualText{
		EN: commonsVotesBaseEN + suffix,
		FR: commonsVotesBaseFR + suffix,
	}
}

func legislationURL(in LegislationSectionInput) *domain.BilingualText {
	if in.InstrumentID == "" {
		return &domain.BilingualText{EN: justiceBaseEN, FR: justiceBaseFR}
	}
	pathEN := "acts"
	pathFR := "lois"
	if in.Kind == domain.KindRegulation {
		pathEN = "regulations"
		pathFR = "reglements"
	}
	slug := strings.ReplaceAll(in.InstrumentID, " ", "-")
	anchor := ""
	if in.SectionLabel != "" {
		anchor = "#section-" + in.SectionLabel
	}
	return &domain.BilingualText{
		EN: fmt.Sprintf("%s/%s/%s/index.html%s", justiceBaseEN, pathEN, slug, anchor),
		FR: fmt.Sprintf("%s/%s/%s/index.html%s", justiceBaseFR, pathFR, slug, anchor),
	}
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}
