package usecase

import (
	"context"
	"log/slog"
	"sort"

	"github.com/openparl/legisearch/internal/core/domain"
	"github.com/openparl/legisearch/internal/core/ports"
)

// rerankCandidates reorders candidates by cross-encoder score. A failed
// cross-encoder call degrades to the hybrid ordering instead of failing
// the build; the returned flag reports the degradation.
func rerankCandidates(ctx context.Context, reranker ports.Reranker, query string, candidates []domain.RetrievedCandidate) ([]domain.RetrievedCandidate, bool) {
	if len(candidates) == 0 {
		return candidates, false
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Text
	}

	scores, err := reranker.Rerank(ctx, query, texts)
	if err != nil || len(scores) != len(candidates) {
		slog.Warn("rerank_degraded", "error", err, "scores", len(scores), "candidates", len(candidates))
		out := append([]domain.RetrievedCandidate(nil), candidates...)
		sortByHybrid(out)
		return out, true
	}

	out := append([]domain.RetrievedCandidate(nil), candidates...)
	for i := range out {
		out[i].RerankScore = scores[i]
	}
	// Deterministic order is required for reproducible citation numbering:
	// rerank score, then hybrid score, then source id.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RerankScore != out[j].RerankScore {
			return out[i].RerankScore > out[j].RerankScore
		}
		if out[i].HybridScore != out[j].HybridScore {
			return out[i].HybridScore > out[j].HybridScore
		}
		return out[i].ID < out[j].ID
	})
	return out, false
}

func sortByHybrid(candidates []domain.RetrievedCandidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].HybridScore != candidates[j].HybridScore {
			return candidates[i].HybridScore > candidates[j].HybridScore
		}
		return candidates[i].ID < candidates[j].ID
	})
}
