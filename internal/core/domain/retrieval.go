package domain

// Hybrid scoring constants. The weights are fixed at build time so citation
// ordering stays reproducible across deployments; vector similarity stays
// dominant while exact keyword hits can still lift a borderline result.
const (
	VectorWeight    = 0.7
	KeywordWeight   = 0.3
	ExactMatchBoost = 0.25
)

type SourceType string

const (
	SourceVoteQuestion       SourceType = "vote_question"
	SourceVoteParty          SourceType = "vote_party"
	SourceVoteMember         SourceType = "vote_member"
	SourceLegislationSection SourceType = "legislation-section"
)

// CandidateSource is the store payload a retrieved chunk carries: enough to
// build a Citation without re-reading the document.
type CandidateSource struct {
	InstrumentID string     `json:"instrument_id"`
	Type         SourceType `json:"type"`
	Language     Language   `json:"language"`
	SectionLabel string     `json:"section_label,omitempty"`
	SectionType  SectionType `json:"section_type,omitempty"`
	TitleEN      string     `json:"title_en,omitempty"`
	TitleFR      string     `json:"title_fr,omitempty"`
}

// RetrievedCandidate lives for the duration of one query: ranked, truncated
// and discarded, never persisted.
type RetrievedCandidate struct {
	ID           string          `json:"id"`
	Text         string          `json:"text"`
	VectorScore  float64         `json:"vector_score"`
	KeywordScore float64         `json:"keyword_score"`
	HybridScore  float64         `json:"hybrid_score"`
	RerankScore  float64         `json:"rerank_score,omitempty"`
	Source       CandidateSource `json:"source"`
}

// HybridScore combines the two retrieval legs under the fixed weights. A
// candidate absent from one leg contributes zero for that leg rather than
// being excluded.
func HybridScore(vectorScore, keywordScore float64, exactMatch bool) float64 {
	score := VectorWeight*vectorScore + KeywordWeight*keywordScore
	if exactMatch {
		score += ExactMatchBoost
	}
	return score
}

// BilingualText always carries both languages even for a monolingual query,
// so the caller can render either.
type BilingualText struct {
	EN string `json:"en"`
	FR string `json:"fr"`
}

func (t BilingualText) In(lang Language) string {
	if lang == LanguageFR {
		return t.FR
	}
	return t.EN
}

// Citation is the display-ready reference for one retained candidate. A nil
// URL means the citation is not linkable.
type Citation struct {
	ID         int            `json:"id"`
	SourceType SourceType     `json:"source_type"`
	Text       BilingualText  `json:"text"`
	Title      BilingualText  `json:"title"`
	URL        *BilingualText `json:"url,omitempty"`
}

// HydratedSource is the full source document attached for display when
// hydration of the top-ranked result succeeds.
type HydratedSource struct {
	InstrumentID string   `json:"instrument_id"`
	Language     Language `json:"language"`
	Title        string   `json:"title"`
	FullText     string   `json:"full_text"`
}

// LegislationContext is the per-request output of a context build. Citations
// are a superset of the prompt content: a candidate trimmed by the prompt
// budget keeps its citation entry.
type LegislationContext struct {
	Query           string               `json:"query"`
	Language        Language             `json:"language"`
	Citations       []Citation           `json:"citations"`
	Prompt          string               `json:"prompt"`
	HydratedSources []HydratedSource     `json:"hydrated_sources,omitempty"`
	Candidates      []RetrievedCandidate `json:"candidates,omitempty"`
}
