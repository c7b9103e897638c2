package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"expvar"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mkovacs-dev/cogno/internal/facts"
	"github.com/mkovacs-dev/cogno/internal/knowledge"
	"github.com/mkovacs-dev/cogno/internal/memory"
	"github.com/mkovacs-dev/cogno/internal/models"
	"github.com/mkovacs-dev/cogno/internal/orchestrator"
)

// Server is an HTTP API server exposing the conversational engine.
type Server struct {
	router    *orchestrator.Router
	facts     *facts.Book
	knowledge *knowledge.Store
	memory    *memory.Log
	logger    *slog.Logger
	authToken string // empty = no auth required
}

// NewServer creates a new Server with the given dependencies.
func NewServer(router *orchestrator.Router, fb *facts.Book, ks *knowledge.Store, mem *memory.Log, logger *slog.Logger, authToken string) *Server {
	return &Server{
		router:    router,
		facts:     fb,
		knowledge: ks,
		memory:    mem,
		logger:    logger,
		authToken: authToken,
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check and metrics — no auth required.
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /debug/vars", expvar.Handler())

	mux.HandleFunc("POST /v1/message", s.auth(s.handleMessage))
	mux.HandleFunc("GET /v1/facts", s.auth(s.handleListFacts))
	mux.HandleFunc("DELETE /v1/facts/{query}", s.auth(s.handleForget))
	mux.HandleFunc("POST /v1/recall", s.auth(s.handleRecall))
	mux.HandleFunc("GET /v1/knowledge/search", s.auth(s.handleKnowledgeSearch))
	mux.HandleFunc("GET /v1/stats", s.auth(s.handleStats))

	return mux
}

// --- middleware ---

// auth wraps a handler with Bearer token authentication when authToken is set.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// --- handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// messageRequest is the body accepted by POST /v1/message.
type messageRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	answer := s.router.Respond(r.Context(), req.Text)
	s.writeJSON(w, http.StatusOK, answer)
}

func (s *Server) handleListFacts(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"facts": s.facts.List()})
}

func (s *Server) handleForget(w http.ResponseWriter, r *http.Request) {
	query := r.PathValue("query")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	removed, err := s.facts.Forget(r.Context(), query)
	if err != nil {
		s.logger.Error("failed to forget facts", "query", query, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to forget facts")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

// recallRequest is the body accepted by POST /v1/recall.
type recallRequest struct {
	Keyword string `json:"keyword"`
	Limit   int    `json:"limit"`
}

func (s *Server) handleRecall(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req recallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Keyword == "" {
		s.writeError(w, http.StatusBadRequest, "keyword is required")
		return
	}

	records := s.memory.Recall(s.router.SessionID(), req.Keyword, req.Limit)
	s.writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleKnowledgeSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"results": s.knowledge.Search(query)})
}

// statsResponse is returned by GET /v1/stats.
type statsResponse struct {
	SessionID       string              `json:"session_id"`
	Facts           int                 `json:"facts"`
	KnowledgeCount  int                 `json:"knowledge_count"`
	Memory          models.SessionStats `json:"memory"`
	ImportanceLevel float64             `json:"importance"`
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, statsResponse{
		SessionID:       s.router.SessionID(),
		Facts:           s.facts.Len(),
		KnowledgeCount:  s.knowledge.Len(),
		Memory:          s.memory.Stats(),
		ImportanceLevel: s.memory.Importance(s.router.SessionID()),
	})
}

// --- helpers ---

// writeJSON encodes v as JSON and writes it to w with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(v); encErr != nil {
		s.logger.Error("failed to encode response", "error", encErr)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Shutdown gracefully shuts down an http.Server with the given timeout.
// Convenience helper for the serve command.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
