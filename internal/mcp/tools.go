// ABOUTME: MCP tool definitions and registration for the docchat server
// ABOUTME: Defines JSON schemas for the session, document and record tools
package mcp

import (
	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/docchat/internal/auth"
	"github.com/harper/docchat/internal/core"
	"github.com/harper/docchat/internal/storage/sqlite"
)

var sessionIDProperty = map[string]interface{}{
	"type":        "string",
	"description": "Chat session identifier; each id has its own index and history",
}

// ServerName is the MCP implementation name
const ServerName = "docchat"

// NewServer creates an MCP server with every docchat tool registered
func NewServer(version string, sessions *core.SessionStore, gate auth.Gate, records *sqlite.RecordStore, logger *log.Logger) *mcpserver.MCPServer {
	server := mcpserver.NewMCPServer(ServerName, version, mcpserver.WithToolCapabilities(false))
	RegisterTools(server, sessions, gate, records, logger)
	return server
}

// RegisterTools registers all MCP tools with the server. records may be nil when
// no record store is configured.
func RegisterTools(server *mcpserver.MCPServer, sessions *core.SessionStore, gate auth.Gate, records *sqlite.RecordStore, logger *log.Logger) *Handlers {
	handlers := NewHandlers(sessions, gate, records, logger)

	// 1. login - present the access token for a session
	server.AddTool(mcp.Tool{
		Name:        "login",
		Description: "Authorize a chat session with the shared access token. Not needed when the server runs without a token.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
				"token": map[string]interface{}{
					"type":        "string",
					"description": "Access token",
				},
			},
			Required: []string{"session_id", "token"},
		},
	}, handlers.Login)

	// 2. process_documents - extract, chunk and index files or raw text
	server.AddTool(mcp.Tool{
		Name:        "process_documents",
		Description: "Extract text from PDF, .txt or .md files (and/or take raw text), then chunk and index it for the session. Replaces any previous index and clears the conversation history.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
				"paths": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Paths of documents to index, in order",
				},
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Raw text to index after the documents",
				},
			},
			Required: []string{"session_id"},
		},
	}, handlers.ProcessDocuments)

	// 3. process_chapter - index a stored record chapter
	server.AddTool(mcp.Tool{
		Name:        "process_chapter",
		Description: "Index the content of one chapter of a stored record (board/class/subject). Omit chapter to index every chapter.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
				"board":      map[string]interface{}{"type": "string", "description": "Board, e.g. CBSE"},
				"class":      map[string]interface{}{"type": "string", "description": "Class, e.g. 10"},
				"subject":    map[string]interface{}{"type": "string", "description": "Subject, e.g. Science"},
				"chapter":    map[string]interface{}{"type": "string", "description": "Chapter name (case-insensitive)"},
			},
			Required: []string{"session_id", "board", "class", "subject"},
		},
	}, handlers.ProcessChapter)

	// 4. ask_question - retrieve and answer
	server.AddTool(mcp.Tool{
		Name:        "ask_question",
		Description: "Ask a question about the session's indexed documents. Returns the answer and the passages it was grounded on.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Question to answer",
				},
			},
			Required: []string{"session_id", "question"},
		},
	}, handlers.AskQuestion)

	// 5. get_history - the session transcript
	server.AddTool(mcp.Tool{
		Name:        "get_history",
		Description: "Get the conversation history of a session, oldest turn first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
			},
			Required: []string{"session_id"},
		},
	}, handlers.GetHistory)

	// 6. reset_session - drop index and history
	server.AddTool(mcp.Tool{
		Name:        "reset_session",
		Description: "Drop the session's index and conversation history.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty,
			},
			Required: []string{"session_id"},
		},
	}, handlers.ResetSession)

	// 7. list_records - browse the record store
	server.AddTool(mcp.Tool{
		Name:        "list_records",
		Description: "List stored records (board/class/subject) and their chapter names.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ListRecords)

	return handlers
}
