package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bryanwahyu/docsense/internal/application/analysis"
	domai "github.com/bryanwahyu/docsense/internal/domain/ai"
	"github.com/bryanwahyu/docsense/internal/domain/documents"
	"github.com/bryanwahyu/docsense/internal/middleware"
)

const (
	defaultPriority = "normal"
	maxBodyBytes    = 8 << 20
)

// Submitter enqueues an analysis, satisfied by *analysis.Dispatcher.
type Submitter interface {
	Submit(req documents.AnalysisRequest) (analysis.Ticket, error)
}

// Deps are the collaborators of the HTTP layer. Everything except Analyzer
// is optional; missing pieces answer 503 on the routes that need them.
type Deps struct {
	Analyzer  Submitter
	Documents documents.Repository
	Searcher  documents.Searcher
	Embedder  domai.Embedder
	Metrics   *middleware.Metrics
	Checkers  map[string]middleware.HealthChecker
	Logger    *slog.Logger
}

type Router struct {
	deps Deps
	log  *slog.Logger
}

func NewRouter(deps Deps) http.Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	r := &Router{deps: deps, log: deps.Logger.With("component", "http")}

	mux := chi.NewRouter()
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))
	mux.Use(middleware.Logging(r.log))
	if deps.Metrics != nil {
		mux.Use(deps.Metrics.Middleware)
		mux.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(deps.Checkers))

	mux.Post("/api/v2/analyze", r.wrap(r.handleAnalyze))
	mux.Route("/v2", func(rt chi.Router) {
		rt.Get("/documents", r.wrap(r.handleListDocuments))
		rt.Get("/search", r.wrap(r.handleSearch))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// statusError carries an explicit HTTP status for client-side errors
type statusError struct {
	code int
	msg  string
}

func (e *statusError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &statusError{code: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

var errUnavailable = errors.New("service unavailable")

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var se *statusError
		switch {
		case errors.As(err, &se):
			http.Error(w, se.msg, se.code)
		case errors.Is(err, analysis.ErrQueueFull),
			errors.Is(err, analysis.ErrDispatcherClosed),
			errors.Is(err, documents.ErrStoreUnavailable),
			errors.Is(err, errUnavailable):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
		case errors.Is(err, documents.ErrDocumentNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, domai.ErrQuotaExceeded):
			http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
		default:
			r.log.Error("request failed", "path", req.URL.Path, "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}

// POST /api/v2/analyze
// Body: {"document_id": "...", "content": "...", "priority": "normal", "analysis_types": ["summary","entities"]}
// Analysis jalan di background, respons langsung "queued".
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	if r.deps.Analyzer == nil {
		return errUnavailable
	}

	var body documents.AnalysisRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	body.DocumentID = strings.TrimSpace(body.DocumentID)
	if err := middleware.ValidateDocumentID(body.DocumentID); err != nil {
		return badRequest("%v", err)
	}
	body.AnalysisTypes = middleware.NormalizeAnalysisTypes(body.AnalysisTypes)
	if strings.TrimSpace(body.Priority) == "" {
		body.Priority = defaultPriority
	}

	ticket, err := r.deps.Analyzer.Submit(body)
	if err != nil {
		r.log.Warn("analysis not queued", "document_id", body.DocumentID, "error", err)
		return err
	}
	r.log.Info("analysis queued", "task_id", ticket.TaskID, "document_id", body.DocumentID, "priority", body.Priority)

	return writeJSON(w, http.StatusOK, ticket)
}

// GET /v2/documents?q=&document_type=&limit=&offset=
func (r *Router) handleListDocuments(w http.ResponseWriter, req *http.Request) error {
	if r.deps.Documents == nil {
		return documents.ErrStoreUnavailable
	}
	q := req.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	list, err := r.deps.Documents.ListDocuments(req.Context(), documents.ListQuery{
		Search:       middleware.SanitizeString(q.Get("q")),
		DocumentType: middleware.SanitizeString(q.Get("document_type")),
		Limit:        middleware.ValidateLimit(limit),
		Offset:       middleware.ValidateOffset(offset),
	})
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"documents": list, "count": len(list)})
}

// GET /v2/search?q=&limit=
func (r *Router) handleSearch(w http.ResponseWriter, req *http.Request) error {
	q := middleware.SanitizeString(req.URL.Query().Get("q"))
	if q == "" {
		return badRequest("q is required")
	}
	if r.deps.Embedder == nil || r.deps.Searcher == nil {
		return fmt.Errorf("semantic search not configured: %w", errUnavailable)
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 10
	}
	limit = middleware.ValidateLimit(limit)

	vec, err := r.deps.Embedder.Embed(req.Context(), q)
	if err != nil {
		return fmt.Errorf("embed query: %w", err)
	}
	hits, err := r.deps.Searcher.SearchSimilar(req.Context(), vec, limit)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, map[string]any{"query": q, "results": hits, "count": len(hits)})
}

func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}
