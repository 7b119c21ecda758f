package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/openparl/legisearch/internal/core/domain"
	"github.com/openparl/legisearch/internal/core/ports"
)

const defaultSearchLimit = 10

// SearchUseCase is the hybrid retrieval engine: a vector-similarity leg
// and a keyword leg issued in parallel over the same chunk collection,
// fused under the fixed weights.
type SearchUseCase struct {
	embedder     ports.Embedder
	vectorDB     ports.VectorStore
	defaultLimit int
	observer     ports.RetrievalObserver
}

// NewSearchUseCase builds the engine. defaultLimit applies when a caller
// passes no limit; zero or negative falls back to the package default.
// A nil observer disables event recording.
func NewSearchUseCase(embedder ports.Embedder, vectorDB ports.VectorStore, defaultLimit int, observer ports.RetrievalObserver) *SearchUseCase {
	if defaultLimit <= 0 {
		defaultLimit = defaultSearchLimit
	}
	return &SearchUseCase{
		embedder:     embedder,
		vectorDB:     vectorDB,
		defaultLimit: defaultLimit,
		observer:     retrievalObserverOrNop(observer),
	}
}

func (uc *SearchUseCase) Search(ctx context.Context, query string, opts ports.SearchOptions) ([]domain.RetrievedCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidQuery, "search", errors.New("empty query"))
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = uc.defaultLimit
	}

	// The two legs have no data dependency; a single failed leg degrades to
	// a zero contribution, both legs down means the store is unreachable.
	var semantic, lexical []domain.RetrievedCandidate
	var semanticErr, lexicalErr error

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		queryVector, err := uc.embedder.EmbedQuery(groupCtx, query)
		if err != nil {
			semanticErr = fmt.Errorf("embed query: %w", err)
			return nil
		}
		semantic, err = uc.vectorDB.Search(groupCtx, queryVector, limit, opts.Language)
		if err != nil {
			semanticErr = fmt.Errorf("vector search: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		lexical, err = uc.vectorDB.SearchLexical(groupCtx, query, limit, opts.Language)
		if err != nil {
			lexicalErr = fmt.Errorf("keyword search: %w", err)
		}
		return nil
	})
	_ = group.Wait()

	if semanticErr != nil && lexicalErr != nil {
		return nil, domain.WrapError(domain.ErrRetrievalUnavailable, "search",
			errors.Join(semanticErr, lexicalErr))
	}
	if semanticErr != nil {
		slog.Warn("retrieval_leg_degraded", "leg", "vector", "error", semanticErr)
		uc.observer.LegDegraded("vector")
	}
	if lexicalErr != nil {
		slog.Warn("retrieval_leg_degraded", "leg", "keyword", "error", lexicalErr)
		uc.observer.LegDegraded("keyword")
	}

	fused := fuseHybridCandidates(query, semantic, lexical)
	if len(fused) > limit {
		fused = fused[:limit]
	}
	return fused, nil
}

// fuseHybridCandidates merges the legs by chunk id and computes the
// weighted hybrid score, with the exact-match boost layered on top when
// the literal query appears verbatim in the candidate text. Verbatim is
// case-insensitive: "Access to Information" and "access to information"
// both trigger the boost.
func fuseHybridCandidates(query string, semantic, lexical []domain.RetrievedCandidate) []domain.RetrievedCandidate {
	acc := make(map[string]domain.RetrievedCandidate, len(semantic)+len(lexical))
	for _, c := range semantic {
		merged := acc[c.ID]
		merged = preferRicherCandidate(merged, c)
		merged.VectorScore = c.VectorScore
		acc[c.ID] = merged
	}
	for _, c := range lexical {
		merged := acc[c.ID]
		merged = preferRicherCandidate(merged, c)
		merged.KeywordScore = c.KeywordScore
		acc[c.ID] = merged
	}

	loweredQuery := strings.ToLower(query)
	out := make([]domain.RetrievedCandidate, 0, len(acc))
	for _, c := range acc {
		exact := strings.Contains(strings.ToLower(c.Text), loweredQuery)
		c.HybridScore = domain.HybridScore(c.VectorScore, c.KeywordScore, exact)
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].HybridScore != out[j].HybridScore {
			return out[i].HybridScore > out[j].HybridScore
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func preferRicherCandidate(current, candidate domain.RetrievedCandidate) domain.RetrievedCandidate {
	if current.ID == "" {
		return candidate
	}
	if current.Text == "" && candidate.Text != "" {
		current.Text = candidate.Text
	}
	if current.Source.InstrumentID == "" && candidate.Source.InstrumentID != "" {
		current.Source = candidate.Source
	}
	return current
}
