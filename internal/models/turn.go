// ABOUTME: Turn represents a single question/answer exchange in a chat session
// ABOUTME: Records the chunks that were retrieved to produce the answer
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Turn is one immutable exchange appended to a session's history
type Turn struct {
	TurnID          string        `json:"turn_id"`
	Timestamp       time.Time     `json:"timestamp"`
	Question        string        `json:"question"`
	Answer          string        `json:"answer"`
	RetrievedChunks []ScoredChunk `json:"retrieved_chunks"`
}

// NewTurn creates a new Turn with validation
func NewTurn(question, answer string, retrieved []ScoredChunk) (*Turn, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question cannot be empty", ErrInvalidInput)
	}
	chunks := make([]ScoredChunk, len(retrieved))
	copy(chunks, retrieved)
	return &Turn{
		TurnID:          generateTurnID(),
		Timestamp:       time.Now().UTC(),
		Question:        question,
		Answer:          answer,
		RetrievedChunks: chunks,
	}, nil
}

// generateTurnID generates a unique turn identifier
func generateTurnID() string {
	return fmt.Sprintf("turn_%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
}
