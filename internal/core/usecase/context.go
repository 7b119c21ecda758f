package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openparl/legisearch/internal/citation"
	"github.com/openparl/legisearch/internal/core/domain"
	"github.com/openparl/legisearch/internal/core/ports"
)

const (
	defaultTopN      = 5
	minCandidatePool = 10
	promptCharBudget = 12000
	contextCacheTTL  = 5 * time.Minute
)

// ContextUseCase assembles the citation-annotated retrieval context: it
// over-fetches hybrid candidates, reranks them with the cross-encoder,
// numbers citations in final rank order and bounds the prompt text.
type ContextUseCase struct {
	search      ports.SearchService
	reranker    ports.Reranker
	repo        ports.LegislationRepository
	cache       ports.Cache
	topNDefault int
	observer    ports.RetrievalObserver
}

// NewContextUseCase builds the assembler. topNDefault applies when a
// caller passes no TopN; zero or negative falls back to the package
// default. A nil observer disables event recording.
func NewContextUseCase(
	search ports.SearchService,
	reranker ports.Reranker,
	repo ports.LegislationRepository,
	cache ports.Cache,
	topNDefault int,
	observer ports.RetrievalObserver,
) *ContextUseCase {
	if topNDefault <= 0 {
		topNDefault = defaultTopN
	}
	return &ContextUseCase{
		search:      search,
		reranker:    reranker,
		repo:        repo,
		cache:       cache,
		topNDefault: topNDefault,
		observer:    retrievalObserverOrNop(observer),
	}
}

func (uc *ContextUseCase) BuildContext(ctx context.Context, query string, opts ports.ContextOptions) (*domain.LegislationContext, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidQuery, "build context", errors.New("empty query"))
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = uc.topNDefault
	}

	// Cache is an optimization, never a correctness dependency: errors and
	// misses fall through to the live build. The key covers the pinned
	// language (empty when unpinned) so an FR-pinned request never reads a
	// context built for EN.
	cacheKey := contextCacheKey(query, topN, opts.Language)
	if cached, ok := uc.cache.Get(ctx, cacheKey); ok {
		var result domain.LegislationContext
		if err := json.Unmarshal(cached, &result); err == nil {
			uc.observer.ContextCacheLookup(true)
			return &result, nil
		}
	}
	uc.observer.ContextCacheLookup(false)

	lang := opts.Language
	if lang == "" {
		lang = detectLanguage(query)
	}

	pool := topN * 2
	if pool < minCandidatePool {
		pool = minCandidatePool
	}
	candidates, err := uc.search.Search(ctx, query, ports.SearchOptions{Limit: pool, Language: lang})
	if err != nil {
		return nil, err
	}

	ranked, degraded := rerankCandidates(ctx, uc.reranker, query, candidates)
	if degraded {
		slog.Warn("context_rerank_fallback", "query_len", len(query))
		uc.observer.RerankFallback()
	}
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	result := &domain.LegislationContext{
		Query:      query,
		Language:   lang,
		Candidates: ranked,
	}

	// Hydration of the top source is independent of prompt assembly; the
	// two run concurrently and a hydration failure only empties the list.
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		citations, prompt, err := uc.assemble(ranked)
		if err != nil {
			return err
		}
		result.Citations = citations
		result.Prompt = prompt
		return nil
	})
	group.Go(func() error {
		result.HydratedSources = uc.hydrateTop(groupCtx, ranked)
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(result); err == nil {
		uc.cache.Set(ctx, cacheKey, encoded, contextCacheTTL)
	}
	return result, nil
}

// assemble numbers citations 1-based in rank order and concatenates the
// candidate blocks under the character budget. A block that exceeds the
// remaining budget is dropped from the prompt but keeps its citation, so
// citations are a superset of prompt-referenced material.
func (uc *ContextUseCase) assemble(ranked []domain.RetrievedCandidate) ([]domain.Citation, string, error) {
	citations := make([]domain.Citation, 0, len(ranked))
	var prompt strings.Builder
	remaining := promptCharBudget

	for i, candidate := range ranked {
		built, err := citation.FromCandidate(candidate, nil)
		if err != nil {
			return nil, "", err
		}
		built.ID = i + 1
		citations = append(citations, built)

		block := fmt.Sprintf("[%d] %s\n\n", built.ID, candidate.Text)
		if len(block) > remaining {
			continue
		}
		prompt.WriteString(block)
		remaining -= len(block)
	}
	return citations, strings.TrimRight(prompt.String(), "\n"), nil
}

func (uc *ContextUseCase) hydrateTop(ctx context.Context, ranked []domain.RetrievedCandidate) []domain.HydratedSource {
	if len(ranked) == 0 {
		return nil
	}
	top := ranked[0].Source
	source, err := uc.repo.GetFullText(ctx, top.InstrumentID, top.Language)
	if err == nil && source == nil {
		err = errors.New("no full text stored")
	}
	if err != nil {
		err = domain.WrapError(domain.ErrHydrationFailed, "hydrate top source", err)
		slog.Warn("hydration_failed", "instrument_id", top.InstrumentID, "error", err)
		return nil
	}
	return []domain.HydratedSource{*source}
}

func contextCacheKey(query string, topN int, pinned domain.Language) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "context\x00%s\x00%d\x00%s", query, topN, pinned))
	return fmt.Sprintf("ctx:%x", sum)
}
