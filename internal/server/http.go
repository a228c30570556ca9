// Package server exposes the question-answering pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jmorales/normabot/internal/passage"
	"github.com/jmorales/normabot/internal/pipeline"
)

// userFacingError is shown for any unrecovered pipeline failure. Raw error
// detail goes to the logs only, never to end users.
const userFacingError = "Lo sentimos, ocurrió un error al procesar tu pregunta. " +
	"Por favor intenta nuevamente o consulta los registros del servicio."

// QueryFunc runs the pipeline for a query with the selected provider and
// final passage count.
type QueryFunc func(ctx context.Context, query, provider string, k int) (pipeline.Result, error)

// Config holds configuration for the HTTP server.
type Config struct {
	Port      int
	Logger    *slog.Logger
	Query     QueryFunc
	Providers []string // provider names offered to clients
	DefaultK  int
}

// HTTPServer serves the JSON query API.
type HTTPServer struct {
	server    *http.Server
	logger    *slog.Logger
	query     QueryFunc
	providers []string
	defaultK  int
}

// New creates the HTTP server with routing and middleware set up.
func New(cfg Config) *HTTPServer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &HTTPServer{
		logger:    logger,
		query:     cfg.Query,
		providers: cfg.Providers,
		defaultK:  cfg.DefaultK,
	}
	if s.defaultK <= 0 {
		s.defaultK = pipeline.DefaultFinalK
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLoggingMiddleware(logger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", s.handleHealth)
	router.Get("/readyz", s.handleHealth)
	router.Get("/api/providers", s.handleProviders)
	router.Post("/api/query", s.handleQuery)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // pipeline runs include LLM calls
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start starts the HTTP server. It blocks until the server stops.
func (s *HTTPServer) Start() error {
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// queryRequest is the JSON body of POST /api/query.
type queryRequest struct {
	Message  string `json:"message"`
	Provider string `json:"provider"`
	K        int    `json:"k"`
}

// queryResponse is the JSON response of POST /api/query.
type queryResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

func (s *HTTPServer) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == "" {
		writeJSONError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.K <= 0 {
		req.K = s.defaultK
	}

	result, err := s.query(r.Context(), req.Message, req.Provider, req.K)
	if err != nil {
		s.logger.Error("pipeline run failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, userFacingError)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Answer:  result.Answer,
		Sources: RenderSources(result.Sources),
	})
}

func (s *HTTPServer) handleProviders(w http.ResponseWriter, _ *http.Request) {
	providers := s.providers
	if providers == nil {
		providers = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"providers": providers})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RenderSources formats passages as "doc_id (p. page)" labels, deduplicated
// and sorted for display.
func RenderSources(sources []passage.Passage) []string {
	seen := make(map[string]struct{}, len(sources))
	labels := make([]string, 0, len(sources))
	for _, p := range sources {
		label := fmt.Sprintf("%s (p. %s)", p.DocID, p.PageLabel())
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// requestLoggingMiddleware logs each request with method, path, status and
// duration.
func requestLoggingMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
