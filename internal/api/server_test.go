package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkovacs-dev/cogno/internal/extract"
	"github.com/mkovacs-dev/cogno/internal/facts"
	"github.com/mkovacs-dev/cogno/internal/intent"
	"github.com/mkovacs-dev/cogno/internal/knowledge"
	"github.com/mkovacs-dev/cogno/internal/lookup"
	"github.com/mkovacs-dev/cogno/internal/memory"
	"github.com/mkovacs-dev/cogno/internal/models"
	"github.com/mkovacs-dev/cogno/internal/orchestrator"
	"github.com/mkovacs-dev/cogno/internal/storage"
)

func newTestServer(t *testing.T, authToken string) *Server {
	t.Helper()
	backend := storage.NewMemoryBackend()
	logger := slog.Default()

	ks := knowledge.NewStore(backend, 0, logger)
	mem := memory.NewLog(backend, memory.DefaultConfig(), logger)
	fb := facts.NewBook(backend, logger)
	router := orchestrator.NewRouter(
		"api-test",
		intent.NewClassifier(logger),
		extract.NewExtractor(logger),
		ks, mem, fb,
		&lookup.MockProvider{},
		orchestrator.DefaultOptions(),
		logger,
	)
	return NewServer(router, fb, ks, mem, logger, authToken)
}

func doJSON(t *testing.T, h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Healthz(t *testing.T) {
	h := newTestServer(t, "").Handler()

	rec := doJSON(t, h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestServer_Message(t *testing.T) {
	h := newTestServer(t, "").Handler()

	rec := doJSON(t, h, http.MethodPost, "/v1/message", `{"text":"My name is Alex"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var answer models.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.Contains(t, answer.Content, "Alex")
	assert.Greater(t, answer.Confidence, 0.5)
}

func TestServer_MessageValidation(t *testing.T) {
	h := newTestServer(t, "").Handler()

	rec := doJSON(t, h, http.MethodPost, "/v1/message", `{"text":"  "}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/v1/message", `{not json`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_FactsFlow(t *testing.T) {
	h := newTestServer(t, "").Handler()

	doJSON(t, h, http.MethodPost, "/v1/message", `{"text":"My name is Alex"}`, "")
	doJSON(t, h, http.MethodPost, "/v1/message", `{"text":"I live in Berlin"}`, "")

	rec := doJSON(t, h, http.MethodGet, "/v1/facts", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Alex")
	assert.Contains(t, rec.Body.String(), "Berlin")

	rec = doJSON(t, h, http.MethodDelete, "/v1/facts/name", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Alex")

	rec = doJSON(t, h, http.MethodGet, "/v1/facts", "", "")
	assert.NotContains(t, rec.Body.String(), "Alex")
	assert.Contains(t, rec.Body.String(), "Berlin")
}

func TestServer_Recall(t *testing.T) {
	h := newTestServer(t, "").Handler()

	doJSON(t, h, http.MethodPost, "/v1/message", `{"text":"I really love hiking in the mountains"}`, "")

	rec := doJSON(t, h, http.MethodPost, "/v1/recall", `{"keyword":"mountains","limit":5}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mountains")

	rec = doJSON(t, h, http.MethodPost, "/v1/recall", `{"keyword":""}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_KnowledgeSearch(t *testing.T) {
	srv := newTestServer(t, "")
	h := srv.Handler()

	require.NoError(t, srv.knowledge.Put(t.Context(), models.KnowledgeEntry{
		Term: "gravity", Category: models.CategoryFact,
		Payload: "the force attracting masses", Confidence: 0.9,
	}))

	rec := doJSON(t, h, http.MethodGet, "/v1/knowledge/search?q=gravity", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "attracting masses")

	rec = doJSON(t, h, http.MethodGet, "/v1/knowledge/search", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Stats(t *testing.T) {
	h := newTestServer(t, "").Handler()

	doJSON(t, h, http.MethodPost, "/v1/message", `{"text":"My name is Alex"}`, "")

	rec := doJSON(t, h, http.MethodGet, "/v1/stats", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, "api-test", stats.SessionID)
	assert.Equal(t, 1, stats.Facts)
	assert.Equal(t, 2, stats.Memory.TotalRecords)
	assert.Greater(t, stats.ImportanceLevel, 0.0)
}

func TestServer_AuthRequired(t *testing.T) {
	h := newTestServer(t, "secret-token").Handler()

	// No token.
	rec := doJSON(t, h, http.MethodGet, "/v1/facts", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Wrong token.
	rec = doJSON(t, h, http.MethodGet, "/v1/facts", "", "wrong")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Correct token.
	rec = doJSON(t, h, http.MethodGet, "/v1/facts", "", "secret-token")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health stays open without auth.
	rec = doJSON(t, h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
