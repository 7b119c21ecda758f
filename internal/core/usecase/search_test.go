package usecase

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/openparl/legisearch/internal/core/domain"
	"github.com/openparl/legisearch/internal/core/ports"
)

func TestSearchRejectsEmptyQuery(t *testing.T) {
	uc := NewSearchUseCase(&fakeEmbedder{}, &fakeVectorStore{}, 0, nil)
	_, err := uc.Search(context.Background(), "   ", ports.SearchOptions{})
	if !domain.IsKind(err, domain.ErrInvalidQuery) {
		t.Fatalf("expected invalid-query kind, got %v", err)
	}
}

func TestSearchFailsWhenBothLegsFail(t *testing.T) {
	store := &fakeVectorStore{
		semanticErr: errors.New("dense down"),
		lexicalErr:  errors.New("sparse down"),
	}
	uc := NewSearchUseCase(&fakeEmbedder{}, store, 0, nil)

	_, err := uc.Search(context.Background(), "access to information", ports.SearchOptions{})
	if !domain.IsKind(err, domain.ErrRetrievalUnavailable) {
		t.Fatalf("expected retrieval-unavailable kind, got %v", err)
	}
}

func TestSearchDegradesWhenOneLegFails(t *testing.T) {
	store := &fakeVectorStore{
		semanticErr: errors.New("dense down"),
		lexical: []domain.RetrievedCandidate{
			{ID: "A-1:en:ordinary:2", Text: "purpose of this act", KeywordScore: 1.0},
		},
	}
	uc := NewSearchUseCase(&fakeEmbedder{}, store, 0, nil)

	candidates, err := uc.Search(context.Background(), "purpose", ports.SearchOptions{})
	if err != nil {
		t.Fatalf("single-leg failure must not fail the search: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	// The missing vector leg contributes zero.
	want := domain.HybridScore(0, 1.0, true)
	if math.Abs(candidates[0].HybridScore-want) > 1e-9 {
		t.Fatalf("hybrid score = %v, want %v", candidates[0].HybridScore, want)
	}
}

func TestSearchFusesLegsByChunkID(t *testing.T) {
	store := &fakeVectorStore{
		semantic: []domain.RetrievedCandidate{
			{ID: "chunk-a", Text: "privacy of personal information", VectorScore: 0.9},
			{ID: "chunk-b", Text: "head of a government institution", VectorScore: 0.7},
		},
		lexical: []domain.RetrievedCandidate{
			{ID: "chunk-a", Text: "privacy of personal information", KeywordScore: 1.0},
			{ID: "chunk-c", Text: "record under the control", KeywordScore: 0.5},
		},
	}
	uc := NewSearchUseCase(&fakeEmbedder{}, store, 0, nil)

	candidates, err := uc.Search(context.Background(), "personal information", ports.SearchOptions{Limit: 10})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected 3 fused candidates, got %d", len(candidates))
	}

	top := candidates[0]
	if top.ID != "chunk-a" {
		t.Fatalf("expected chunk-a first, got %s", top.ID)
	}
	// Both legs merged plus the verbatim-match boost.
	want := domain.HybridScore(0.9, 1.0, true)
	if math.Abs(top.HybridScore-want) > 1e-9 {
		t.Fatalf("fused score = %v, want %v", top.HybridScore, want)
	}
	if top.VectorScore != 0.9 || top.KeywordScore != 1.0 {
		t.Fatalf("leg scores lost in fusion: %+v", top)
	}
}

func TestSearchExactMatchBoostRequiresVerbatimQuery(t *testing.T) {
	store := &fakeVectorStore{
		semantic: []domain.RetrievedCandidate{
			{ID: "chunk-a", Text: "The Personal Information Protection Act", VectorScore: 0.5},
			{ID: "chunk-b", Text: "information about persons", VectorScore: 0.5},
		},
	}
	uc := NewSearchUseCase(&fakeEmbedder{}, store, 0, nil)

	candidates, err := uc.Search(context.Background(), "personal information", ports.SearchOptions{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if candidates[0].ID != "chunk-a" {
		t.Fatalf("verbatim match must rank first, got %s", candidates[0].ID)
	}
	delta := candidates[0].HybridScore - candidates[1].HybridScore
	if math.Abs(delta-domain.ExactMatchBoost) > 1e-9 {
		t.Fatalf("boost delta = %v, want %v", delta, domain.ExactMatchBoost)
	}
}

func TestSearchTruncatesToLimit(t *testing.T) {
	store := &fakeVectorStore{
		semantic: []domain.RetrievedCandidate{
			{ID: "a", Text: "one", VectorScore: 0.9},
			{ID: "b", Text: "two", VectorScore: 0.8},
			{ID: "c", Text: "three", VectorScore: 0.7},
		},
	}
	uc := NewSearchUseCase(&fakeEmbedder{}, store, 0, nil)

	candidates, err := uc.Search(context.Background(), "zzz", ports.SearchOptions{Limit: 2})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates after truncation, got %d", len(candidates))
	}
}

func TestSearchExactMatchBoostIsCaseInsensitive(t *testing.T) {
	store := &fakeVectorStore{
		semantic: []domain.RetrievedCandidate{
			{ID: "chunk-a", Text: "ACCESS TO INFORMATION is a quasi-constitutional right", VectorScore: 0.5},
		},
	}
	uc := NewSearchUseCase(&fakeEmbedder{}, store, 0, nil)

	candidates, err := uc.Search(context.Background(), "Access to Information", ports.SearchOptions{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	want := domain.HybridScore(0.5, 0, true)
	if math.Abs(candidates[0].HybridScore-want) > 1e-9 {
		t.Fatalf("capitalization must not defeat the boost: %v, want %v", candidates[0].HybridScore, want)
	}
}

func TestSearchUsesConfiguredDefaultLimit(t *testing.T) {
	store := &fakeVectorStore{}
	uc := NewSearchUseCase(&fakeEmbedder{}, store, 25, nil)

	if _, err := uc.Search(context.Background(), "records", ports.SearchOptions{}); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if store.lastLimit != 25 {
		t.Fatalf("expected configured default limit 25, got %d", store.lastLimit)
	}

	if _, err := uc.Search(context.Background(), "records", ports.SearchOptions{Limit: 3}); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if store.lastLimit != 3 {
		t.Fatalf("explicit limit must win, got %d", store.lastLimit)
	}
}

func TestSearchRecordsDegradedLeg(t *testing.T) {
	observer := &fakeRetrievalObserver{}
	store := &fakeVectorStore{
		semanticErr: errors.New("dense down"),
		lexical: []domain.RetrievedCandidate{
			{ID: "a", Text: "one", KeywordScore: 1.0},
		},
	}
	uc := NewSearchUseCase(&fakeEmbedder{}, store, 0, observer)

	if _, err := uc.Search(context.Background(), "records", ports.SearchOptions{}); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(observer.degradedLegs) != 1 || observer.degradedLegs[0] != "vector" {
		t.Fatalf("expected vector leg recorded, got %v", observer.degradedLegs)
	}
}

func TestFuseTieBreaksOnChunkID(t *testing.T) {
	fused := fuseHybridCandidates("query", []domain.RetrievedCandidate{
		{ID: "b", Text: "same", VectorScore: 0.5},
		{ID: "a", Text: "same", VectorScore: 0.5},
	}, nil)
	if fused[0].ID != "a" || fused[1].ID != "b" {
		t.Fatalf("equal scores must order by id, got %s then %s", fused[0].ID, fused[1].ID)
	}
}
