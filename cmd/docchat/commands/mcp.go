// ABOUTME: MCP command starts the Model Context Protocol server
// ABOUTME: Lets LLM agents process documents and ask questions per session via stdio
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/harper/docchat/internal/core"
	"github.com/harper/docchat/internal/mcp"
	"github.com/harper/docchat/internal/storage/sqlite"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs docchat as an MCP (Model Context Protocol) server on stdio. Each
session_id gets its own index and conversation history. When
DOCCHAT_ACCESS_TOKEN is set, sessions must call the login tool first.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by an MCP client)
  docchat mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "docchat": {
  #       "command": "docchat",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server; logs go to stderr since stdout carries the protocol
func runMCP(cmd *cobra.Command, args []string) error {
	a, err := loadApp(os.Stderr)
	if err != nil {
		return err
	}
	if err := a.cfg.RequireOpenAIKey(); err != nil {
		return err
	}

	var records *sqlite.RecordStore
	db, err := a.openRecords()
	if err != nil {
		a.logger.Warn("record store unavailable, process_chapter and list_records disabled", "err", err)
	} else {
		defer func() { _ = db.Close() }()
		records = db.Records()
	}

	sessions := core.NewSessionStore(a.newSession)
	server := mcp.NewServer(versionInfo.Version, sessions, a.gate(), records, a.logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("MCP server starting on stdio", "version", versionInfo.Version)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}
	return nil
}
