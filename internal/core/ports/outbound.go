package ports

import (
	"context"
	"time"

	"github.com/openparl/legisearch/internal/core/domain"
)

// Embedder builds vectors for chunks and query text. Inputs are
// whitespace-normalized before submission; the provider truncates beyond its
// token budget, so very long inputs do not round-trip.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Reranker scores candidates against the query with a cross-encoder. On
// error callers fall back to the original hybrid ordering.
type Reranker interface {
	Rerank(ctx context.Context, query string, texts []string) ([]float64, error)
}

// VectorStore indexes chunks and answers the two retrieval legs over the
// same chunk collection.
type VectorStore interface {
	IndexChunks(ctx context.Context, chunks []Chunk, vectors [][]float32) error
	Search(ctx context.Context, queryVector []float32, limit int, lang domain.Language) ([]domain.RetrievedCandidate, error)
	SearchLexical(ctx context.Context, queryText string, limit int, lang domain.Language) ([]domain.RetrievedCandidate, error)
}

// Chunk is one retrievable unit derived from a parsed section.
type Chunk struct {
	ID     string
	Text   string
	Source domain.CandidateSource
}

// Cache is a best-effort TTL key-value store. Implementations must degrade
// to misses on failure; a cache is never the sole source of truth.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// DocumentParser converts raw legislative markup into the document model.
type DocumentParser interface {
	Parse(raw []byte, lang domain.Language) (*domain.LegalDocument, error)
}

// LegislationRepository persists parsed instruments and serves hydration.
type LegislationRepository interface {
	Save(ctx context.Context, doc *domain.LegalDocument, sourceXML string) error
	GetMeta(ctx context.Context, instrumentID string, lang domain.Language) (*domain.LegalDocument, error)
	GetSource(ctx context.Context, instrumentID string, lang domain.Language) (string, error)
	GetFullText(ctx context.Context, instrumentID string, lang domain.Language) (*domain.HydratedSource, error)
}

// MessageQueue publishes/consumes parsed-instrument events for async indexing.
type MessageQueue interface {
	PublishInstrumentParsed(ctx context.Context, instrumentID string, lang domain.Language) error
	SubscribeInstrumentParsed(ctx context.Context, handler func(context.Context, string, domain.Language) error) error
}

// Chunker splits a parsed document into retrievable units.
type Chunker interface {
	Split(doc *domain.LegalDocument) []Chunk
}

// RetrievalObserver receives retrieval degradation and cache-outcome
// events. Implementations are invoked inline and must be cheap.
type RetrievalObserver interface {
	LegDegraded(leg string)
	RerankFallback()
	ContextCacheLookup(hit bool)
}

// IndexingObserver receives indexing progress events.
type IndexingObserver interface {
	IndexedChunks(count int)
	EmbedCacheLookup(hit bool)
}
