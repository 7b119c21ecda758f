package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openparl/legisearch/internal/config"
	"github.com/openparl/legisearch/internal/core/ports"
	"github.com/openparl/legisearch/internal/core/usecase"
	"github.com/openparl/legisearch/internal/indexing"
	"github.com/openparl/legisearch/internal/infrastructure/cache/badgercache"
	"github.com/openparl/legisearch/internal/infrastructure/inference"
	"github.com/openparl/legisearch/internal/infrastructure/queue/nats"
	"github.com/openparl/legisearch/internal/infrastructure/repository/postgres"
	"github.com/openparl/legisearch/internal/infrastructure/resilience"
	"github.com/openparl/legisearch/internal/infrastructure/vector/qdrant"
	"github.com/openparl/legisearch/internal/parser"
)

// Observers carries the process-specific metric recorders into the
// usecases. Either field may be nil; events are then dropped.
type Observers struct {
	Retrieval ports.RetrievalObserver
	Indexing  ports.IndexingObserver
}

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.LegislationRepository
	SearchUC  ports.SearchService
	ContextUC ports.ContextBuilder
	IngestUC  ports.Ingestor
	IndexUC   ports.Indexer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger, obs Observers) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewLegislationRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	var cache ports.Cache
	var cacheCloser func()
	badgerCache, err := badgercache.Open(cfg.CachePath, logger)
	if err != nil {
		slog.Warn("cache_unavailable", "path", cfg.CachePath, "error", err)
		cache = badgercache.Noop{}
		cacheCloser = func() {}
	} else {
		cache = badgerCache
		cacheCloser = func() { _ = badgerCache.Close() }
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	inferenceClient := inference.New(cfg.InferenceURL, cfg.EmbedModel, cfg.RerankModel, executor)
	embedder := inference.NewEmbedder(inferenceClient)
	reranker := inference.NewReranker(inferenceClient)

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)
	docParser := parser.New()
	chunker := indexing.NewChunker(cfg.ChunkMaxChars, cfg.ChunkOverlap)

	searchUC := usecase.NewSearchUseCase(embedder, vectorDB, cfg.SearchLimit, obs.Retrieval)
	contextUC := usecase.NewContextUseCase(searchUC, reranker, repo, cache, cfg.ContextTopN, obs.Retrieval)
	ingestUC := usecase.NewIngestUseCase(docParser, repo, queue)
	indexUC := usecase.NewIndexUseCase(docParser, repo, chunker, embedder, vectorDB, cache, cfg.EmbedPoolSize, obs.Indexing)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		SearchUC:  searchUC,
		ContextUC: contextUC,
		IngestUC:  ingestUC,
		IndexUC:   indexUC,

		closeFn: func() {
			queue.Close()
			cacheCloser()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
