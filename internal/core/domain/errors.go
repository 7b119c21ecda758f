package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrParse marks a malformed or unrecognized source document. Fatal to
	// that document's ingestion, never to the surrounding batch.
	ErrParse = errors.New("parse failure")

	// ErrInvalidQuery marks an empty or malformed query. Surfaced to the
	// caller, never retried.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrRetrievalUnavailable marks a store or transport failure. The whole
	// context build fails; callers may retry the request.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")

	// ErrRerankDegraded marks a cross-encoder failure. Non-fatal: the
	// pipeline falls back to hybrid-score ordering.
	ErrRerankDegraded = errors.New("rerank degraded")

	// ErrHydrationFailed is non-fatal: the context ships with an empty
	// hydration list.
	ErrHydrationFailed = errors.New("hydration failed")

	// ErrUnsupportedSourceType marks a citation dispatch for a source type
	// without a formatter. A programming or data error, always fatal.
	ErrUnsupportedSourceType = errors.New("unsupported source type")

	ErrInstrumentNotFound = errors.New("instrument not found")
	ErrTemporary          = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
