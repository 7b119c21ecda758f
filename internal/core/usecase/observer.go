package usecase

import "github.com/openparl/legisearch/internal/core/ports"

type nopRetrievalObserver struct{}

func (nopRetrievalObserver) LegDegraded(string)      {}
func (nopRetrievalObserver) RerankFallback()         {}
func (nopRetrievalObserver) ContextCacheLookup(bool) {}

type nopIndexingObserver struct{}

func (nopIndexingObserver) IndexedChunks(int)     {}
func (nopIndexingObserver) EmbedCacheLookup(bool) {}

func retrievalObserverOrNop(observer ports.RetrievalObserver) ports.RetrievalObserver {
	if observer == nil {
		return nopRetrievalObserver{}
	}
	return observer
}

func indexingObserverOrNop(observer ports.IndexingObserver) ports.IndexingObserver {
	if observer == nil {
		return nopIndexingObserver{}
	}
	return observer
}
