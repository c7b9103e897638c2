// Package mcp implements the Model Context Protocol server for cogno.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/mkovacs-dev/cogno/internal/facts"
	"github.com/mkovacs-dev/cogno/internal/knowledge"
	"github.com/mkovacs-dev/cogno/internal/memory"
	"github.com/mkovacs-dev/cogno/internal/models"
	"github.com/mkovacs-dev/cogno/internal/orchestrator"
)

// Server wraps an MCPServer with cogno dependencies.
type Server struct {
	mcp       *mcpserver.MCPServer
	router    *orchestrator.Router
	facts     *facts.Book
	knowledge *knowledge.Store
	memory    *memory.Log
	logger    *slog.Logger
}

// NewServer creates a new MCP server. If router or the stores are nil, the
// corresponding tool calls return an error response instead of panicking.
func NewServer(router *orchestrator.Router, fb *facts.Book, ks *knowledge.Store, mem *memory.Log, logger *slog.Logger) *Server {
	s := &Server{
		router:    router,
		facts:     fb,
		knowledge: ks,
		memory:    mem,
		logger:    logger,
	}

	mcpSrv := mcpserver.NewMCPServer(
		"cogno",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
	)

	mcpSrv.AddTool(buildAskTool(), s.handleAsk)
	mcpSrv.AddTool(buildRememberFactTool(), s.handleRememberFact)
	mcpSrv.AddTool(buildRecallTool(), s.handleRecall)
	mcpSrv.AddTool(buildForgetTool(), s.handleForget)
	mcpSrv.AddTool(buildStatsTool(), s.handleStats)

	s.mcp = mcpSrv
	return s
}

// MCPServer returns the underlying mcp-go MCPServer for use with ServeStdio.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcp
}

// HandleAsk is the exported handler for the "ask" tool.
// It is exposed for direct testing without the mcp-go transport layer.
func (s *Server) HandleAsk(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleAsk(ctx, req)
}

// HandleRememberFact is the exported handler for the "remember_fact" tool.
func (s *Server) HandleRememberFact(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleRememberFact(ctx, req)
}

// HandleRecall is the exported handler for the "recall" tool.
func (s *Server) HandleRecall(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleRecall(ctx, req)
}

// HandleForget is the exported handler for the "forget" tool.
func (s *Server) HandleForget(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleForget(ctx, req)
}

// HandleStats is the exported handler for the "stats" tool.
func (s *Server) HandleStats(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return s.handleStats(ctx, req)
}

// --- helpers ---

// toolResultJSON marshals v to JSON and returns it as a tool text result.
func toolResultJSON(v any) (*mcpgo.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("mcp: marshaling result: %w", err)
	}
	return mcpgo.NewToolResultText(string(b)), nil
}

// --- tool definitions ---

func buildAskTool() mcpgo.Tool {
	return mcpgo.NewTool("ask",
		mcpgo.WithDescription("Send an utterance through the cognitive router and get the structured answer."),
		mcpgo.WithString("text",
			mcpgo.Required(),
			mcpgo.Description("The utterance to process"),
		),
	)
}

func buildRememberFactTool() mcpgo.Tool {
	return mcpgo.NewTool("remember_fact",
		mcpgo.WithDescription("Manually store a personal fact, bypassing extraction."),
		mcpgo.WithString("key",
			mcpgo.Required(),
			mcpgo.Description("The fact key, e.g. name or location"),
		),
		mcpgo.WithString("value",
			mcpgo.Required(),
			mcpgo.Description("The fact value"),
		),
		mcpgo.WithNumber("importance",
			mcpgo.Description("Importance score 0.0-1.0 (default: 0.7)"),
		),
	)
}

func buildRecallTool() mcpgo.Tool {
	return mcpgo.NewTool("recall",
		mcpgo.WithDescription("Recall conversation records containing a keyword, most recent first."),
		mcpgo.WithString("keyword",
			mcpgo.Required(),
			mcpgo.Description("The keyword to search for"),
		),
		mcpgo.WithNumber("limit",
			mcpgo.Description("Maximum number of records (default: 5)"),
		),
	)
}

func buildForgetTool() mcpgo.Tool {
	return mcpgo.NewTool("forget",
		mcpgo.WithDescription("Delete stored facts by fuzzy key/value match."),
		mcpgo.WithString("query",
			mcpgo.Required(),
			mcpgo.Description("The key or value fragment to forget"),
		),
	)
}

func buildStatsTool() mcpgo.Tool {
	return mcpgo.NewTool("stats",
		mcpgo.WithDescription("Get engine statistics: fact count, knowledge entries, memory occupancy."),
	)
}

// --- tool handlers ---

// handleAsk runs one full turn through the router.
func (s *Server) handleAsk(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.router == nil {
		return mcpgo.NewToolResultError("router is unavailable"), nil
	}

	text := req.GetString("text", "")
	if strings.TrimSpace(text) == "" {
		return mcpgo.NewToolResultError("text is required and must not be empty"), nil
	}

	answer := s.router.Respond(ctx, text)
	s.logger.Info("mcp: ask answered", "confidence", answer.Confidence)
	return toolResultJSON(answer)
}

// handleRememberFact stores a manual fact.
func (s *Server) handleRememberFact(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.facts == nil {
		return mcpgo.NewToolResultError("fact book is unavailable"), nil
	}

	key := strings.TrimSpace(req.GetString("key", ""))
	value := strings.TrimSpace(req.GetString("value", ""))
	if key == "" || value == "" {
		return mcpgo.NewToolResultError("key and value are required and must not be empty"), nil
	}

	importance := req.GetFloat("importance", 0.7)
	if importance < 0.0 || importance > 1.0 {
		return mcpgo.NewToolResultError("importance must be between 0.0 and 1.0"), nil
	}

	fact := models.ExtractedFact{
		Key:        key,
		Value:      value,
		Importance: importance,
		Source:     models.SourceManual,
		Timestamp:  time.Now().UTC(),
	}
	if err := s.facts.Store(ctx, fact); err != nil {
		return mcpgo.NewToolResultErrorf("storing fact failed: %s", err.Error()), nil
	}

	s.logger.Info("mcp: remember_fact stored", "key", key)
	return toolResultJSON(map[string]any{"key": key, "stored": true})
}

// handleRecall scans conversational memory for a keyword.
func (s *Server) handleRecall(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.memory == nil || s.router == nil {
		return mcpgo.NewToolResultError("memory is unavailable"), nil
	}

	keyword := req.GetString("keyword", "")
	if strings.TrimSpace(keyword) == "" {
		return mcpgo.NewToolResultError("keyword is required and must not be empty"), nil
	}
	limit := req.GetInt("limit", 5)

	records := s.memory.Recall(s.router.SessionID(), keyword, limit)
	return toolResultJSON(map[string]any{"records": records})
}

// handleForget removes facts by fuzzy match.
func (s *Server) handleForget(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.facts == nil {
		return mcpgo.NewToolResultError("fact book is unavailable"), nil
	}

	query := req.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcpgo.NewToolResultError("query is required and must not be empty"), nil
	}

	removed, err := s.facts.Forget(ctx, query)
	if err != nil {
		return mcpgo.NewToolResultErrorf("forget failed: %s", err.Error()), nil
	}

	s.logger.Info("mcp: forget removed facts", "count", len(removed))
	return toolResultJSON(map[string]any{"removed": removed, "count": len(removed)})
}

// handleStats returns engine statistics.
func (s *Server) handleStats(_ context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	if s.facts == nil || s.knowledge == nil || s.memory == nil {
		return mcpgo.NewToolResultError("stores are unavailable"), nil
	}

	return toolResultJSON(map[string]any{
		"facts":     s.facts.Len(),
		"knowledge": s.knowledge.Len(),
		"memory":    s.memory.Stats(),
	})
}
