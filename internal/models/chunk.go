// ABOUTME: Chunk represents a bounded slice of a normalized document for embedding
// ABOUTME: Chunk IDs are name-based UUIDs so identical input re-chunks identically
package models

import (
	"fmt"

	"github.com/google/uuid"
)

// chunkNamespace scopes name-based chunk identifiers
var chunkNamespace = uuid.MustParse("6f1c2a8e-4b7d-5e3f-9a10-2c4d6e8f0b1a")

// Chunk is an immutable substring of a normalized document
type Chunk struct {
	ChunkID string `json:"chunk_id"`
	Text    string `json:"text"`
	Start   int    `json:"start"` // rune offset into the normalized text
	Seq     int    `json:"seq"`
}

// NewChunk builds a chunk with a deterministic identifier derived from its position and text
func NewChunk(text string, start, seq int) Chunk {
	return Chunk{
		ChunkID: ChunkID(text, start, seq),
		Text:    text,
		Start:   start,
		Seq:     seq,
	}
}

// ChunkID returns the name-based identifier for a chunk at the given position
func ChunkID(text string, start, seq int) string {
	name := fmt.Sprintf("%d:%d:%s", seq, start, text)
	return uuid.NewSHA1(chunkNamespace, []byte(name)).String()
}

// Len returns the chunk length in characters
func (c Chunk) Len() int {
	return len([]rune(c.Text))
}

// ScoredChunk is a chunk returned from a similarity query
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}
