// Package httpadapter exposes the query surface: hybrid search, context
// assembly and instrument lookup.
package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openparl/legisearch/internal/core/domain"
	"github.com/openparl/legisearch/internal/core/ports"
	"github.com/openparl/legisearch/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	searchUC  ports.SearchService
	contextUC ports.ContextBuilder
	repo      ports.LegislationRepository
	metrics   *metrics.HTTPServerMetrics

	rateLimitRPS   int
	rateLimitBurst int
	maxInFlight    int
	maxWait        time.Duration
}

type RouterOptions struct {
	RateLimitRPS   int
	RateLimitBurst int
	MaxInFlight    int
	MaxWait        time.Duration
}

func NewRouter(
	searchUC ports.SearchService,
	contextUC ports.ContextBuilder,
	repo ports.LegislationRepository,
	serverMetrics *metrics.HTTPServerMetrics,
	options RouterOptions,
) *Router {
	maxWait := options.MaxWait
	if maxWait <= 0 {
		maxWait = 200 * time.Millisecond
	}
	return &Router{
		searchUC:       searchUC,
		contextUC:      contextUC,
		repo:           repo,
		metrics:        serverMetrics,
		rateLimitRPS:   options.RateLimitRPS,
		rateLimitBurst: options.RateLimitBurst,
		maxInFlight:    options.MaxInFlight,
		maxWait:        maxWait,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/search", rt.search)
	mux.HandleFunc("/v1/context", rt.buildContext)
	mux.HandleFunc("/v1/instruments/", rt.getInstrument)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.maxInFlight, rt.maxWait)
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type searchRequest struct {
	Query    string `json:"query"`
	Limit    int    `json:"limit"`
	Language string `json:"language"`
}

type searchResponse struct {
	Query      string                      `json:"query"`
	Candidates []domain.RetrievedCandidate `json:"candidates"`
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSONError(w, http.StatusBadRequest, "query is required")
		return
	}

	start := time.Now()
	candidates, err := rt.searchUC.Search(r.Context(), req.Query, ports.SearchOptions{
		Limit:    req.Limit,
		Language: domain.Language(req.Language),
	})
	if err != nil {
		rt.writeError(w, r, "search", err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordRetrieval(serviceName, "/v1/search", len(candidates), time.Since(start))
	}
	writeJSON(w, http.StatusOK, searchResponse{Query: req.Query, Candidates: candidates})
}

type contextRequest struct {
	Query    string `json:"query"`
	TopN     int    `json:"top_n"`
	Language string `json:"language"`
}

func (rt *Router) buildContext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req contextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSONError(w, http.StatusBadRequest, "query is required")
		return
	}

	start := time.Now()
	legislationContext, err := rt.contextUC.BuildContext(r.Context(), req.Query, ports.ContextOptions{
		TopN:     req.TopN,
		Language: domain.Language(req.Language),
	})
	if err != nil {
		rt.writeError(w, r, "context", err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordRetrieval(serviceName, "/v1/context", len(legislationContext.Citations), time.Since(start))
	}
	writeJSON(w, http.StatusOK, legislationContext)
}

func (rt *Router) getInstrument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/v1/instruments/")
	if id == "" || strings.Contains(id, "/") {
		writeJSONError(w, http.StatusBadRequest, "instrument id is required")
		return
	}

	lang := domain.Language(r.URL.Query().Get("lang"))
	if lang == "" {
		lang = domain.LanguageEN
	}

	doc, err := rt.repo.GetMeta(r.Context(), id, lang)
	if err != nil {
		rt.writeError(w, r, "instrument", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= 500 {
		slog.Error("request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"operation", operation,
			"error", err,
		)
	}
	writeJSONError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
