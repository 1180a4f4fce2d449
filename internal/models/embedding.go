// ABOUTME: Embedding models for the in-memory similarity index
// ABOUTME: Vectors come from the embedding provider and are only stored and compared
package models

// Embedding is a fixed-dimension vector bound one-to-one to a chunk
type Embedding struct {
	ChunkID string    `json:"chunk_id"`
	Vector  []float64 `json:"vector"`
}

// Dimension returns the vector length
func (e Embedding) Dimension() int {
	return len(e.Vector)
}
