package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/openparl/legisearch/internal/core/domain"
	"github.com/openparl/legisearch/internal/core/ports"
)

type fakeEmbedder struct {
	embedErr error
	queryErr error
	vector   []float32
	calls    int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vectorOrDefault()
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.vectorOrDefault(), nil
}

func (f *fakeEmbedder) vectorOrDefault() []float32 {
	if f.vector != nil {
		return f.vector
	}
	return []float32{0.1, 0.2, 0.3}
}

type fakeVectorStore struct {
	semantic    []domain.RetrievedCandidate
	lexical     []domain.RetrievedCandidate
	semanticErr error
	lexicalErr  error

	// The two legs run concurrently; the recorder needs the lock.
	mu        sync.Mutex
	lastLimit int

	indexed     []ports.Chunk
	indexErr    error
	indexedVecs [][]float32
}

func (f *fakeVectorStore) IndexChunks(_ context.Context, chunks []ports.Chunk, vectors [][]float32) error {
	if f.indexErr != nil {
		return f.indexErr
	}
	f.indexed = chunks
	f.indexedVecs = vectors
	return nil
}

func (f *fakeVectorStore) Search(_ context.Context, _ []float32, limit int, _ domain.Language) ([]domain.RetrievedCandidate, error) {
	f.mu.Lock()
	f.lastLimit = limit
	f.mu.Unlock()
	if f.semanticErr != nil {
		return nil, f.semanticErr
	}
	return f.semantic, nil
}

func (f *fakeVectorStore) SearchLexical(_ context.Context, _ string, limit int, _ domain.Language) ([]domain.RetrievedCandidate, error) {
	f.mu.Lock()
	f.lastLimit = limit
	f.mu.Unlock()
	if f.lexicalErr != nil {
		return nil, f.lexicalErr
	}
	return f.lexical, nil
}

type fakeReranker struct {
	scores []float64
	err    error
	calls  int
}

func (f *fakeReranker) Rerank(_ context.Context, _ string, texts []string) ([]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.scores != nil {
		return f.scores, nil
	}
	return make([]float64, len(texts)), nil
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	sets  int
	gets  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	value, ok := f.store[key]
	return value, ok
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.store[key] = append([]byte(nil), value...)
}

type fakeRepo struct {
	saved       []*domain.LegalDocument
	saveErr     error
	source      string
	sourceErr   error
	fullText    *domain.HydratedSource
	fullTextErr error
}

func (f *fakeRepo) Save(_ context.Context, doc *domain.LegalDocument, _ string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, doc)
	return nil
}

func (f *fakeRepo) GetMeta(context.Context, string, domain.Language) (*domain.LegalDocument, error) {
	return nil, domain.ErrInstrumentNotFound
}

func (f *fakeRepo) GetSource(context.Context, string, domain.Language) (string, error) {
	if f.sourceErr != nil {
		return "", f.sourceErr
	}
	return f.source, nil
}

func (f *fakeRepo) GetFullText(context.Context, string, domain.Language) (*domain.HydratedSource, error) {
	if f.fullTextErr != nil {
		return nil, f.fullTextErr
	}
	return f.fullText, nil
}

type fakeQueue struct {
	published []string
	err       error
}

func (f *fakeQueue) PublishInstrumentParsed(_ context.Context, instrumentID string, _ domain.Language) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, instrumentID)
	return nil
}

func (f *fakeQueue) SubscribeInstrumentParsed(context.Context, func(context.Context, string, domain.Language) error) error {
	return nil
}

type fakeParser struct {
	doc *domain.LegalDocument
	err error
}

func (f *fakeParser) Parse([]byte, domain.Language) (*domain.LegalDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.doc, nil
}

type fakeChunker struct {
	chunks []ports.Chunk
}

func (f *fakeChunker) Split(*domain.LegalDocument) []ports.Chunk {
	return f.chunks
}

type fakeRetrievalObserver struct {
	degradedLegs    []string
	rerankFallbacks int
	cacheHits       int
	cacheMisses     int
}

func (f *fakeRetrievalObserver) LegDegraded(leg string) {
	f.degradedLegs = append(f.degradedLegs, leg)
}

func (f *fakeRetrievalObserver) RerankFallback() {
	f.rerankFallbacks++
}

func (f *fakeRetrievalObserver) ContextCacheLookup(hit bool) {
	if hit {
		f.cacheHits++
		return
	}
	f.cacheMisses++
}

type fakeIndexingObserver struct {
	chunkCounts []int
	embedHits   int
	embedMisses int
}

func (f *fakeIndexingObserver) IndexedChunks(count int) {
	f.chunkCounts = append(f.chunkCounts, count)
}

func (f *fakeIndexingObserver) EmbedCacheLookup(hit bool) {
	if hit {
		f.embedHits++
		return
	}
	f.embedMisses++
}

type fakeSearchService struct {
	candidates []domain.RetrievedCandidate
	err        error
	lastLimit  int
	lastLang   domain.Language
}

func (f *fakeSearchService) Search(_ context.Context, _ string, opts ports.SearchOptions) ([]domain.RetrievedCandidate, error) {
	f.lastLimit = opts.Limit
	f.lastLang = opts.Language
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}
