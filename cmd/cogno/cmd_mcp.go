package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	cognomcp "github.com/mkovacs-dev/cogno/internal/mcp"
)

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start the MCP (Model Context Protocol) server over stdio",
		Long: `Starts an MCP JSON-RPC 2.0 server that reads from stdin and writes to stdout.
All diagnostic logs go to stderr so that stdout remains exclusively MCP protocol traffic.

Tools exposed:
  ask            — run an utterance through the cognitive router
  remember_fact  — manually store a personal fact
  recall         — keyword search over conversational memory
  forget         — delete facts by fuzzy match
  stats          — engine statistics`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()

			eng, err := buildEngine(cmd.Context(), logger)
			if err != nil {
				return fmt.Errorf("mcp: %w", err)
			}
			defer func() { _ = eng.Close() }()

			srv := cognomcp.NewServer(eng.router, eng.facts, eng.knowledge, eng.memory, logger)

			// Use a standard log.Logger pointing at stderr for the mcp-go error logger.
			errLogger := log.New(os.Stderr, "mcp: ", log.LstdFlags)

			logger.Info("mcp: cogno MCP server starting", "transport", "stdio")

			return mcpserver.ServeStdio(
				srv.MCPServer(),
				mcpserver.WithErrorLogger(errLogger),
			)
		},
	}

	return cmd
}
