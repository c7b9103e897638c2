package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkovacs-dev/cogno/internal/extract"
	"github.com/mkovacs-dev/cogno/internal/facts"
	"github.com/mkovacs-dev/cogno/internal/intent"
	"github.com/mkovacs-dev/cogno/internal/knowledge"
	"github.com/mkovacs-dev/cogno/internal/lookup"
	"github.com/mkovacs-dev/cogno/internal/memory"
	"github.com/mkovacs-dev/cogno/internal/orchestrator"
	"github.com/mkovacs-dev/cogno/internal/storage"
)

// newMCPServer returns a Server backed by the in-memory engine.
func newMCPServer(t *testing.T) (*Server, *facts.Book) {
	t.Helper()
	backend := storage.NewMemoryBackend()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ks := knowledge.NewStore(backend, 0, logger)
	mem := memory.NewLog(backend, memory.DefaultConfig(), logger)
	fb := facts.NewBook(backend, logger)
	router := orchestrator.NewRouter(
		"mcp-test",
		intent.NewClassifier(logger),
		extract.NewExtractor(logger),
		ks, mem, fb,
		&lookup.MockProvider{},
		orchestrator.DefaultOptions(),
		logger,
	)
	return NewServer(router, fb, ks, mem, logger), fb
}

// makeReq builds a CallToolRequest with the given arguments.
func makeReq(toolName string, args map[string]any) mcpgo.CallToolRequest {
	req := mcpgo.CallToolRequest{}
	req.Params.Name = toolName
	req.Params.Arguments = args
	return req
}

// textContent extracts the first TextContent string from a CallToolResult.
func textContent(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content, "expected at least one content item")
	tc, ok := result.Content[0].(mcpgo.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

func TestMCPAsk(t *testing.T) {
	srv, fb := newMCPServer(t)
	ctx := context.Background()

	result, err := srv.HandleAsk(ctx, makeReq("ask", map[string]any{
		"text": "My name is Alex",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, "ask returned error: %s", textContent(t, result))

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &out))
	assert.Contains(t, out["content"], "Alex")

	got, ok := fb.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Alex", got.Value)
}

func TestMCPAsk_EmptyText(t *testing.T) {
	srv, _ := newMCPServer(t)

	result, err := srv.HandleAsk(context.Background(), makeReq("ask", map[string]any{
		"text": "   ",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestMCPRememberFact(t *testing.T) {
	srv, fb := newMCPServer(t)
	ctx := context.Background()

	result, err := srv.HandleRememberFact(ctx, makeReq("remember_fact", map[string]any{
		"key":        "location",
		"value":      "Berlin",
		"importance": 0.8,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	got, ok := fb.Get("location")
	require.True(t, ok)
	assert.Equal(t, "Berlin", got.Value)
	assert.InDelta(t, 0.8, got.Importance, 1e-9)
}

func TestMCPRememberFact_Validation(t *testing.T) {
	srv, _ := newMCPServer(t)
	ctx := context.Background()

	result, err := srv.HandleRememberFact(ctx, makeReq("remember_fact", map[string]any{
		"key": "location",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = srv.HandleRememberFact(ctx, makeReq("remember_fact", map[string]any{
		"key": "location", "value": "Berlin", "importance": 1.5,
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestMCPRecall(t *testing.T) {
	srv, _ := newMCPServer(t)
	ctx := context.Background()

	_, err := srv.HandleAsk(ctx, makeReq("ask", map[string]any{
		"text": "I really love hiking in the mountains",
	}))
	require.NoError(t, err)

	result, err := srv.HandleRecall(ctx, makeReq("recall", map[string]any{
		"keyword": "mountains",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, textContent(t, result), "mountains")
}

func TestMCPForget(t *testing.T) {
	srv, fb := newMCPServer(t)
	ctx := context.Background()

	_, err := srv.HandleAsk(ctx, makeReq("ask", map[string]any{"text": "My name is Alex"}))
	require.NoError(t, err)

	result, err := srv.HandleForget(ctx, makeReq("forget", map[string]any{"query": "name"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &out))
	assert.Equal(t, float64(1), out["count"])

	_, ok := fb.Get("name")
	assert.False(t, ok)
}

func TestMCPStats(t *testing.T) {
	srv, _ := newMCPServer(t)
	ctx := context.Background()

	_, err := srv.HandleAsk(ctx, makeReq("ask", map[string]any{"text": "My name is Alex"}))
	require.NoError(t, err)

	result, err := srv.HandleStats(ctx, makeReq("stats", nil))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &out))
	assert.Equal(t, float64(1), out["facts"])
}
