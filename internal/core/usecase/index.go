package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/openparl/legisearch/internal/core/domain"
	"github.com/openparl/legisearch/internal/core/ports"
)

const (
	embedBatchSize   = 16
	embedCacheTTL    = 24 * time.Hour
	defaultEmbedPool = 4
)

// IndexUseCase turns a stored instrument into retrievable chunks: re-parse
// the stored source, split by section, embed in batches over a bounded
// worker pool and upsert into the vector store.
type IndexUseCase struct {
	parser   ports.DocumentParser
	repo     ports.LegislationRepository
	chunker  ports.Chunker
	embedder ports.Embedder
	vectorDB ports.VectorStore
	cache    ports.Cache
	poolSize int
	observer ports.IndexingObserver
}

func NewIndexUseCase(
	parser ports.DocumentParser,
	repo ports.LegislationRepository,
	chunker ports.Chunker,
	embedder ports.Embedder,
	vectorDB ports.VectorStore,
	cache ports.Cache,
	poolSize int,
	observer ports.IndexingObserver,
) *IndexUseCase {
	if poolSize <= 0 {
		poolSize = defaultEmbedPool
	}
	return &IndexUseCase{
		parser:   parser,
		repo:     repo,
		chunker:  chunker,
		embedder: embedder,
		vectorDB: vectorDB,
		cache:    cache,
		poolSize: poolSize,
		observer: indexingObserverOrNop(observer),
	}
}

func (uc *IndexUseCase) IndexByID(ctx context.Context, instrumentID string, lang domain.Language) error {
	source, err := uc.repo.GetSource(ctx, instrumentID, lang)
	if err != nil {
		return fmt.Errorf("load source: %w", err)
	}
	doc, err := uc.parser.Parse([]byte(source), lang)
	if err != nil {
		return err
	}

	chunks := uc.chunker.Split(doc)
	if len(chunks) == 0 {
		slog.Warn("index_no_chunks", "instrument_id", instrumentID, "language", lang)
		return nil
	}

	vectors, err := uc.embedChunks(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	if err := uc.vectorDB.IndexChunks(ctx, chunks, vectors); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}
	uc.observer.IndexedChunks(len(chunks))

	slog.Info("instrument_indexed",
		"instrument_id", instrumentID,
		"language", lang,
		"chunks", len(chunks),
	)
	return nil
}

// embedChunks runs embedding batches concurrently on a bounded pool,
// preserving chunk order. Cached vectors skip the provider entirely.
func (uc *IndexUseCase) embedChunks(ctx context.Context, chunks []ports.Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	type batch struct {
		start int
		texts []string
	}
	var pending []batch
	var pendingIdx []int

	for i, chunk := range chunks {
		normalized := normalizeEmbeddingInput(chunk.Text)
		if cached, ok := uc.cache.Get(ctx, embeddingCacheKey(normalized)); ok {
			var vec []float32
			if err := json.Unmarshal(cached, &vec); err == nil && len(vec) > 0 {
				uc.observer.EmbedCacheLookup(true)
				vectors[i] = vec
				continue
			}
		}
		uc.observer.EmbedCacheLookup(false)
		pendingIdx = append(pendingIdx, i)
	}

	for start := 0; start < len(pendingIdx); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(pendingIdx) {
			end = len(pendingIdx)
		}
		texts := make([]string, 0, end-start)
		for _, idx := range pendingIdx[start:end] {
			texts = append(texts, normalizeEmbeddingInput(chunks[idx].Text))
		}
		pending = append(pending, batch{start: start, texts: texts})
	}
	if len(pending) == 0 {
		return vectors, nil
	}

	pool, err := ants.NewPool(uc.poolSize)
	if err != nil {
		return nil, fmt.Errorf("create embedding pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, b := range pending {
		b := b
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			batchVectors, err := uc.embedder.Embed(ctx, b.texts)
			if err != nil || len(batchVectors) != len(b.texts) {
				mu.Lock()
				if firstErr == nil {
					if err == nil {
						err = fmt.Errorf("provider returned %d vectors for %d inputs", len(batchVectors), len(b.texts))
					}
					firstErr = err
				}
				mu.Unlock()
				return
			}
			mu.Lock()
			for j, vec := range batchVectors {
				idx := pendingIdx[b.start+j]
				vectors[idx] = vec
				if encoded, err := json.Marshal(vec); err == nil {
					uc.cache.Set(ctx, embeddingCacheKey(b.texts[j]), encoded, embedCacheTTL)
				}
			}
			mu.Unlock()
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("submit embedding batch: %w", submitErr)
			}
			mu.Unlock()
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return vectors, nil
}

// normalizeEmbeddingInput flattens newlines and collapses whitespace
// before the text goes to the provider.
func normalizeEmbeddingInput(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func embeddingCacheKey(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("emb:%x", sum)
}
