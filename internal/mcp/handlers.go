// ABOUTME: MCP tool handler implementations for the docchat server
// ABOUTME: Every session tool checks the auth gate before touching the session
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/docchat/internal/auth"
	"github.com/harper/docchat/internal/core"
	"github.com/harper/docchat/internal/extract"
	"github.com/harper/docchat/internal/models"
	"github.com/harper/docchat/internal/storage/sqlite"
)

// sourcePreview caps passage text in ask_question responses
const sourcePreview = 300

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	sessions *core.SessionStore
	gate     auth.Gate
	records  *sqlite.RecordStore
	logger   *log.Logger
}

// NewHandlers wires handlers to their collaborators; a nil gate allows everyone
func NewHandlers(sessions *core.SessionStore, gate auth.Gate, records *sqlite.RecordStore, logger *log.Logger) *Handlers {
	if gate == nil {
		gate = auth.AllowAll{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handlers{sessions: sessions, gate: gate, records: records, logger: logger}
}

// Login handles the login tool
func (h *Handlers) Login(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError("session_id argument is required and must be a string"), nil
	}
	token := request.GetString("token", "")

	if tg, ok := h.gate.(*auth.TokenGate); ok {
		if err := tg.Login(sessionID, token); err != nil {
			h.logger.Warn("login rejected", "session", sessionID)
			return mcp.NewToolResultError(fmt.Sprintf("login failed: %v", err)), nil
		}
	}

	return jsonResult(map[string]interface{}{
		"session_id": sessionID,
		"authorized": true,
	})
}

// ProcessDocuments handles the process_documents tool
func (h *Handlers) ProcessDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, errResult := h.session(request)
	if errResult != nil {
		return errResult, nil
	}

	var args map[string]interface{}
	if m, ok := request.Params.Arguments.(map[string]any); ok {
		args = m
	}
	paths := extractStringArray(args, "paths")
	text := request.GetString("text", "")
	if len(paths) == 0 && strings.TrimSpace(text) == "" {
		return mcp.NewToolResultError("provide paths and/or text to process"), nil
	}

	docs, err := extract.Files(ctx, paths)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read documents: %v", err)), nil
	}
	if text != "" {
		docs = append(docs, models.Document{Name: "text", Text: text})
	}

	return h.process(ctx, session, core.NormalizeDocuments(docs), map[string]interface{}{
		"documents": len(docs),
	})
}

// ProcessChapter handles the process_chapter tool
func (h *Handlers) ProcessChapter(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, errResult := h.session(request)
	if errResult != nil {
		return errResult, nil
	}
	if h.records == nil {
		return mcp.NewToolResultError("no record store configured"), nil
	}

	board, err := request.RequireString("board")
	if err != nil {
		return mcp.NewToolResultError("board argument is required and must be a string"), nil
	}
	class, err := request.RequireString("class")
	if err != nil {
		return mcp.NewToolResultError("class argument is required and must be a string"), nil
	}
	subject, err := request.RequireString("subject")
	if err != nil {
		return mcp.NewToolResultError("subject argument is required and must be a string"), nil
	}
	chapter := request.GetString("chapter", "")

	rec, err := h.records.GetRecord(ctx, board, class, subject)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load record: %v", err)), nil
	}
	text, err := core.NormalizeRecord(*rec, chapter)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return h.process(ctx, session, text, map[string]interface{}{
		"record":  rec.Key(),
		"chapter": chapter,
	})
}

func (h *Handlers) process(ctx context.Context, session *core.Session, text string, extra map[string]interface{}) (*mcp.CallToolResult, error) {
	stats, err := session.Process(ctx, text)
	if err != nil {
		if errors.Is(err, models.ErrEmptyCorpus) {
			return mcp.NewToolResultError("nothing to index: the documents contain no text"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("processing failed: %v", err)), nil
	}

	h.logger.Info("session indexed", "session", session.ID(), "chunks", stats.Chunks)
	response := map[string]interface{}{
		"session_id":      session.ID(),
		"state":           session.State().String(),
		"chunks":          stats.Chunks,
		"characters":      stats.Characters,
		"dimension":       stats.Dimension,
		"embedding_model": stats.EmbeddingModel,
		"duration_ms":     stats.Duration.Milliseconds(),
	}
	for k, v := range extra {
		response[k] = v
	}
	return jsonResult(response)
}

// AskQuestion handles the ask_question tool
func (h *Handlers) AskQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, errResult := h.session(request)
	if errResult != nil {
		return errResult, nil
	}
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}

	turn, err := session.Ask(ctx, question)
	if err != nil {
		if errors.Is(err, models.ErrNoCorpus) {
			return mcp.NewToolResultError("no documents processed for this session: call process_documents or process_chapter first"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("ask failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"session_id": session.ID(),
		"turn_id":    turn.TurnID,
		"answer":     turn.Answer,
		"sources":    formatSources(turn.RetrievedChunks),
	})
}

// GetHistory handles the get_history tool
func (h *Handlers) GetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, errResult := h.session(request)
	if errResult != nil {
		return errResult, nil
	}

	history := session.History()
	turns := make([]map[string]interface{}, 0, len(history))
	for _, turn := range history {
		turns = append(turns, map[string]interface{}{
			"turn_id":   turn.TurnID,
			"timestamp": turn.Timestamp.Format(time.RFC3339),
			"question":  turn.Question,
			"answer":    turn.Answer,
			"sources":   len(turn.RetrievedChunks),
		})
	}

	return jsonResult(map[string]interface{}{
		"session_id": session.ID(),
		"state":      session.State().String(),
		"turns":      turns,
	})
}

// ResetSession handles the reset_session tool
func (h *Handlers) ResetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, errResult := h.session(request)
	if errResult != nil {
		return errResult, nil
	}
	session.Reset()

	return jsonResult(map[string]interface{}{
		"session_id": session.ID(),
		"state":      session.State().String(),
	})
}

// ListRecords handles the list_records tool
func (h *Handlers) ListRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.records == nil {
		return mcp.NewToolResultError("no record store configured"), nil
	}
	records, err := h.records.ListRecords(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list records: %v", err)), nil
	}
	if records == nil {
		records = []sqlite.RecordSummary{}
	}
	return jsonResult(map[string]interface{}{"records": records})
}

// session resolves the request's session after checking the gate
func (h *Handlers) session(request mcp.CallToolRequest) (*core.Session, *mcp.CallToolResult) {
	sessionID, err := request.RequireString("session_id")
	if err != nil || strings.TrimSpace(sessionID) == "" {
		return nil, mcp.NewToolResultError("session_id argument is required and must be a string")
	}
	if err := auth.Require(h.gate, sessionID); err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}
	session, err := h.sessions.GetOrCreate(sessionID)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("failed to open session: %v", err))
	}
	return session, nil
}

func formatSources(chunks []models.ScoredChunk) []map[string]interface{} {
	sources := make([]map[string]interface{}, 0, len(chunks))
	for _, sc := range chunks {
		text := sc.Chunk.Text
		if r := []rune(text); len(r) > sourcePreview {
			text = string(r[:sourcePreview]) + "..."
		}
		sources = append(sources, map[string]interface{}{
			"chunk_id": sc.Chunk.ChunkID,
			"seq":      sc.Chunk.Seq,
			"score":    sc.Score,
			"text":     text,
		})
	}
	return sources
}

func jsonResult(response map[string]interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// extractStringArray extracts a string array from an arguments map
func extractStringArray(args map[string]interface{}, key string) []string {
	if val, ok := args[key]; ok {
		if arr, ok := val.([]interface{}); ok {
			result := make([]string, 0, len(arr))
			for _, item := range arr {
				if str, ok := item.(string); ok && str != "" {
					result = append(result, str)
				}
			}
			return result
		}
	}
	return []string{}
}
