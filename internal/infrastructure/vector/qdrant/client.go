// Package qdrant talks to a Qdrant collection holding one dense and one
// sparse named vector per chunk, which serves both retrieval legs of the
// hybrid engine from the same candidate universe.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openparl/legisearch/internal/core/domain"
	"github.com/openparl/legisearch/internal/core/ports"
)

const (
	denseVectorName  = "dense"
	sparseVectorName = "sparse"
)

type Client struct {
	baseURL    string
	collection string
	httpClient *http.Client

	ensureMu          sync.Mutex
	ensuredCollection bool
	ensuredVectorSize int
}

func New(baseURL, collection string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		collection: collection,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) IndexChunks(ctx context.Context, chunks []ports.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 || len(vectors) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors mismatch")
	}
	if err := c.ensureCollection(ctx, len(vectors[0])); err != nil {
		return err
	}

	type point struct {
		ID      string         `json:"id"`
		Vector  map[string]any `json:"vector"`
		Payload map[string]any `json:"payload"`
	}

	points := make([]point, 0, len(chunks))
	for i, chunk := range chunks {
		sparse := encodeSparseDocument(chunk.Text, chunk.Source.SectionLabel)
		points = append(points, point{
			// Point ids must be UUIDs; the chunk id lives in the payload.
			ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(chunk.ID)).String(),
			Vector: map[string]any{
				denseVectorName:  vectors[i],
				sparseVectorName: sparse,
			},
			Payload: map[string]any{
				"chunk_id":      chunk.ID,
				"text":          chunk.Text,
				"instrument_id": chunk.Source.InstrumentID,
				"source_type":   string(chunk.Source.Type),
				"language":      string(chunk.Source.Language),
				"section_label": chunk.Source.SectionLabel,
				"section_type":  string(chunk.Source.SectionType),
				"title_en":      chunk.Source.TitleEN,
				"title_fr":      chunk.Source.TitleFR,
			},
		})
	}

	body := map[string]any{"points": points}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", c.collection), body, nil)
}

// Search runs the vector-similarity leg.
func (c *Client) Search(ctx context.Context, queryVector []float32, limit int, lang domain.Language) ([]domain.RetrievedCandidate, error) {
	body := map[string]any{
		"vector":       map[string]any{"name": denseVectorName, "vector": queryVector},
		"limit":        limit,
		"with_payload": true,
	}
	addLanguageFilter(body, lang)

	hits, err := c.searchPoints(ctx, body)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RetrievedCandidate, 0, len(hits))
	for _, hit := range hits {
		candidate := candidateFromPayload(hit.Payload)
		candidate.VectorScore = hit.Score
		out = append(out, candidate)
	}
	return out, nil
}

// SearchLexical runs the keyword leg over the sparse vector. Scores are
// normalized against the leg's top hit so the keyword rank is bounded by
// 1.0 regardless of term statistics.
func (c *Client) SearchLexical(ctx context.Context, queryText string, limit int, lang domain.Language) ([]domain.RetrievedCandidate, error) {
	sparse := encodeSparseQuery(queryText)
	if len(sparse.Indices) == 0 {
		return nil, nil
	}
	body := map[string]any{
		"vector":       map[string]any{"name": sparseVectorName, "vector": sparse},
		"limit":        limit,
		"with_payload": true,
	}
	addLanguageFilter(body, lang)

	hits, err := c.searchPoints(ctx, body)
	if err != nil {
		return nil, err
	}

	var top float64
	if len(hits) > 0 {
		top = hits[0].Score
	}
	out := make([]domain.RetrievedCandidate, 0, len(hits))
	for _, hit := range hits {
		candidate := candidateFromPayload(hit.Payload)
		if top > 0 {
			candidate.KeywordScore = hit.Score / top
		}
		out = append(out, candidate)
	}
	return out, nil
}

type scoredPoint struct {
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload"`
}

func (c *Client) searchPoints(ctx context.Context, body map[string]any) ([]scoredPoint, error) {
	var response struct {
		Result []scoredPoint `json:"result"`
	}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", c.collection), body, &response)
	if err != nil {
		return nil, err
	}
	return response.Result, nil
}

func addLanguageFilter(body map[string]any, lang domain.Language) {
	if lang == "" {
		return
	}
	body["filter"] = map[string]any{
		"must": []map[string]any{
			{"key": "language", "match": map[string]any{"value": string(lang)}},
		},
	}
}

func candidateFromPayload(payload map[string]any) domain.RetrievedCandidate {
	return domain.RetrievedCandidate{
		ID:   getStringPayload(payload, "chunk_id"),
		Text: getStringPayload(payload, "text"),
		Source: domain.CandidateSource{
			InstrumentID: getStringPayload(payload, "instrument_id"),
			Type:         domain.SourceType(getStringPayload(payload, "source_type")),
			Language:     domain.Language(getStringPayload(payload, "language")),
			SectionLabel: getStringPayload(payload, "section_label"),
			SectionType:  domain.SectionType(getStringPayload(payload, "section_type")),
			TitleEN:      getStringPayload(payload, "title_en"),
			TitleFR:      getStringPayload(payload, "title_fr"),
		},
	}
}

func getStringPayload(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func (c *Client) ensureCollection(ctx context.Context, vectorSize int) error {
	c.ensureMu.Lock()
	if c.ensuredCollection && c.ensuredVectorSize == vectorSize {
		c.ensureMu.Unlock()
		return nil
	}
	c.ensureMu.Unlock()

	body := map[string]any{
		"vectors": map[string]any{
			denseVectorName: map[string]any{
				"size":     vectorSize,
				"distance": "Cosine",
			},
		},
		"sparse_vectors": map[string]any{
			sparseVectorName: map[string]any{},
		},
	}

	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", c.collection), body, nil)
	if err != nil {
		// 409 means another writer created it first.
		var statusErr *statusError
		if asStatusError(err, &statusErr) && statusErr.code == http.StatusConflict {
			c.markCollectionEnsured(vectorSize)
			return nil
		}
		return err
	}
	c.markCollectionEnsured(vectorSize)
	return nil
}

func (c *Client) markCollectionEnsured(vectorSize int) {
	c.ensureMu.Lock()
	defer c.ensureMu.Unlock()
	c.ensuredCollection = true
	c.ensuredVectorSize = vectorSize
}

type statusError struct {
	code   int
	status string
	body   string
}

func (e *statusError) Error() string {
	if strings.TrimSpace(e.body) == "" {
		return fmt.Sprintf("qdrant status: %s", e.status)
	}
	return fmt.Sprintf("qdrant status: %s: %s", e.status, strings.TrimSpace(e.body))
}

func asStatusError(err error, target **statusError) bool {
	se, ok := err.(*statusError)
	if ok {
		*target = se
	}
	return ok
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &statusError{code: resp.StatusCode, status: resp.Status, body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
