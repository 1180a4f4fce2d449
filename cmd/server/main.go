// ABOUTME: Main entry point for the standalone docchat MCP server with stdio transport
// ABOUTME: Loads configuration, opens the record store and serves every tool
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/docchat/internal/auth"
	"github.com/harper/docchat/internal/config"
	"github.com/harper/docchat/internal/core"
	"github.com/harper/docchat/internal/llm"
	"github.com/harper/docchat/internal/mcp"
	"github.com/harper/docchat/internal/storage/sqlite"
)

var version = "dev"

func main() {
	// stdout carries the protocol
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: "docchat-server", ReportTimestamp: true})

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}
	if err := cfg.RequireOpenAIKey(); err != nil {
		logger.Fatal("cannot start", "err", err)
	}

	client, err := llm.NewOpenAIClientWithConfig(cfg.ClientConfig())
	if err != nil {
		logger.Fatal("failed to initialize OpenAI client", "err", err)
	}

	sessions := core.NewSessionStore(func(id string) (*core.Session, error) {
		opts := append(cfg.SessionOptions(), core.WithSessionID(id), core.WithLogger(logger))
		return core.NewSession(client, client, opts...)
	})

	dbPath := cfg.RecordsDB
	if dbPath == "" {
		dbPath = sqlite.DefaultDBPath()
	}
	var records *sqlite.RecordStore
	db, err := sqlite.Open(dbPath)
	if err != nil {
		logger.Warn("record store unavailable", "path", dbPath, "err", err)
	} else {
		defer func() { _ = db.Close() }()
		records = db.Records()
	}

	server := mcp.NewServer(version, sessions, auth.FromToken(cfg.AccessToken), records, logger)

	logger.Info("MCP server starting on stdio", "chat_model", cfg.ChatModel, "embedding_model", cfg.EmbeddingModel)
	if err := mcpserver.ServeStdio(server); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}
