package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/openparl/legisearch/internal/core/domain"
)

// LegislationRepository stores one row per (instrument, language): the EN
// and FR documents of an instrument are separate rows correlated by id.
type LegislationRepository struct {
	db *sql.DB
}

func NewLegislationRepository(db *sql.DB) *LegislationRepository {
	return &LegislationRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *LegislationRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026082401)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS instruments (
	instrument_id TEXT NOT NULL,
	language TEXT NOT NULL,
	kind TEXT NOT NULL,
	short_title TEXT NOT NULL,
	long_title TEXT,
	source_xml TEXT NOT NULL,
	full_text TEXT NOT NULL,
	section_count INTEGER NOT NULL DEFAULT 0,
	parsed_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (instrument_id, language)
);

CREATE INDEX IF NOT EXISTS idx_instruments_kind ON instruments(kind);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *LegislationRepository) Save(ctx context.Context, doc *domain.LegalDocument, sourceXML string) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO instruments (
	instrument_id, language, kind, short_title, long_title, source_xml, full_text, section_count, parsed_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (instrument_id, language) DO UPDATE SET
	kind = EXCLUDED.kind,
	short_title = EXCLUDED.short_title,
	long_title = EXCLUDED.long_title,
	source_xml = EXCLUDED.source_xml,
	full_text = EXCLUDED.full_text,
	section_count = EXCLUDED.section_count,
	parsed_at = EXCLUDED.parsed_at,
	updated_at = now()
`,
		doc.InstrumentID, string(doc.Language), string(doc.Kind), doc.ShortTitle, doc.LongTitle,
		sourceXML, fullText(doc), len(doc.Sections), doc.ParsedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert instrument: %w", err)
	}
	return nil
}

func (r *LegislationRepository) GetMeta(ctx context.Context, instrumentID string, lang domain.Language) (*domain.LegalDocument, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT instrument_id, language, kind, short_title, long_title, parsed_at
FROM instruments
WHERE instrument_id = $1 AND language = $2
`, instrumentID, string(lang))

	var doc domain.LegalDocument
	var language, kind string
	var longTitle sql.NullString
	err := row.Scan(&doc.InstrumentID, &language, &kind, &doc.ShortTitle, &longTitle, &doc.ParsedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapError(domain.ErrInstrumentNotFound, "get instrument", err)
	}
	if err != nil {
		return nil, fmt.Errorf("scan instrument: %w", err)
	}
	doc.Language = domain.Language(language)
	doc.Kind = domain.InstrumentKind(kind)
	doc.LongTitle = longTitle.String
	return &doc, nil
}

func (r *LegislationRepository) GetSource(ctx context.Context, instrumentID string, lang domain.Language) (string, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT source_xml FROM instruments WHERE instrument_id = $1 AND language = $2
`, instrumentID, string(lang))

	var source string
	err := row.Scan(&source)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.WrapError(domain.ErrInstrumentNotFound, "get source", err)
	}
	if err != nil {
		return "", fmt.Errorf("scan source: %w", err)
	}
	return source, nil
}

// GetFullText serves hydration: the requested language first, falling
// back to English when the FR row has not been ingested.
func (r *LegislationRepository) GetFullText(ctx context.Context, instrumentID string, lang domain.Language) (*domain.HydratedSource, error) {
	source, err := r.fullTextRow(ctx, instrumentID, lang)
	if err == nil {
		return source, nil
	}
	if lang != domain.LanguageEN && domain.IsKind(err, domain.ErrInstrumentNotFound) {
		return r.fullTextRow(ctx, instrumentID, domain.LanguageEN)
	}
	return nil, err
}

func (r *LegislationRepository) fullTextRow(ctx context.Context, instrumentID string, lang domain.Language) (*domain.HydratedSource, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT instrument_id, language, short_title, full_text
FROM instruments
WHERE instrument_id = $1 AND language = $2
`, instrumentID, string(lang))

	var source domain.HydratedSource
	var language string
	err := row.Scan(&source.InstrumentID, &language, &source.Title, &source.FullText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.WrapError(domain.ErrInstrumentNotFound, "get full text", err)
	}
	if err != nil {
		return nil, fmt.Errorf("scan full text: %w", err)
	}
	source.Language = domain.Language(language)
	return &source, nil
}

// fullText flattens the parsed sections into the display text stored for
// hydration.
func fullText(doc *domain.LegalDocument) string {
	var out []byte
	for _, section := range doc.Sections {
		if section.Label != "" {
			out = append(out, section.Label...)
			out = append(out, ' ')
		}
		if section.MarginalNote != "" {
			out = append(out, section.MarginalNote...)
			out = append(out, ' ')
		}
		out = append(out, section.Text...)
		out = append(out, '\n')
	}
	return string(out)
}
