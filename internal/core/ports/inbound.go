package ports

import (
	"context"

	"github.com/openparl/legisearch/internal/core/domain"
)

// SearchService is the inbound contract for hybrid retrieval.
type SearchService interface {
	Search(ctx context.Context, query string, opts SearchOptions) ([]domain.RetrievedCandidate, error)
}

type SearchOptions struct {
	Limit    int
	Language domain.Language
}

// ContextBuilder assembles the citation-annotated retrieval context.
type ContextBuilder interface {
	BuildContext(ctx context.Context, query string, opts ContextOptions) (*domain.LegislationContext, error)
}

type ContextOptions struct {
	// Language pins the preferred language; empty means detect from the query.
	Language domain.Language
	TopN     int
}

// Ingestor parses and stores one source document, then schedules indexing.
type Ingestor interface {
	Ingest(ctx context.Context, rawXML []byte, lang domain.Language) (*domain.LegalDocument, error)
}

// Indexer chunks, embeds and upserts a stored instrument into the vector store.
type Indexer interface {
	IndexByID(ctx context.Context, instrumentID string, lang domain.Language) error
}
