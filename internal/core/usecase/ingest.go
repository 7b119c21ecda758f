package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openparl/legisearch/internal/core/domain"
	"github.com/openparl/legisearch/internal/core/ports"
)

// IngestUseCase parses one source document, persists it and schedules
// asynchronous indexing. A parse failure is fatal to that document only;
// batch callers move on to the next file.
type IngestUseCase struct {
	parser ports.DocumentParser
	repo   ports.LegislationRepository
	queue  ports.MessageQueue
}

func NewIngestUseCase(parser ports.DocumentParser, repo ports.LegislationRepository, queue ports.MessageQueue) *IngestUseCase {
	return &IngestUseCase{parser: parser, repo: repo, queue: queue}
}

func (uc *IngestUseCase) Ingest(ctx context.Context, rawXML []byte, lang domain.Language) (*domain.LegalDocument, error) {
	doc, err := uc.parser.Parse(rawXML, lang)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.Save(ctx, doc, string(rawXML)); err != nil {
		return nil, fmt.Errorf("save instrument: %w", err)
	}

	if err := uc.queue.PublishInstrumentParsed(ctx, doc.InstrumentID, doc.Language); err != nil {
		return nil, fmt.Errorf("publish parsed event: %w", err)
	}

	slog.Info("instrument_ingested",
		"instrument_id", doc.InstrumentID,
		"kind", doc.Kind,
		"language", doc.Language,
		"sections", len(doc.Sections),
		"definitions", len(doc.Definitions),
	)
	return doc, nil
}
