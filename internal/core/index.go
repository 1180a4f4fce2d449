// ABOUTME: In-memory similarity index over embedded chunks
// ABOUTME: Built once per process action and replaced wholesale, never updated in place
package core

import (
	"context"
	"fmt"
	"iter"
	"sort"

	"github.com/harper/docchat/internal/models"
)

// Index maps chunks to embeddings and answers cosine top-k queries
type Index struct {
	chunks     []models.Chunk
	embeddings []models.Embedding
	model      string
	dimension  int
}

// BuildIndex embeds every chunk once, in order. The index is only returned when
// every chunk was embedded; no partially built index is ever visible.
func BuildIndex(ctx context.Context, chunks iter.Seq[models.Chunk], embedder Embedder) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", models.ErrInvalidConfiguration)
	}

	idx := &Index{model: embedder.EmbeddingModel()}
	for chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, providerError(err)
		}

		vector, err := embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d: %w", chunk.Seq, providerError(err))
		}
		if err := idx.checkDimension(vector); err != nil {
			return nil, fmt.Errorf("embedding chunk %d: %w", chunk.Seq, err)
		}

		stored := make([]float64, len(vector))
		copy(stored, vector)
		idx.chunks = append(idx.chunks, chunk)
		idx.embeddings = append(idx.embeddings, models.Embedding{ChunkID: chunk.ChunkID, Vector: stored})
	}

	if len(idx.chunks) == 0 {
		return nil, models.ErrEmptyCorpus
	}
	return idx, nil
}

// checkDimension fixes the dimension on the first vector and enforces it afterwards
func (idx *Index) checkDimension(vector []float64) error {
	if len(vector) == 0 {
		return fmt.Errorf("%w: empty embedding vector", models.ErrProvider)
	}
	if idx.dimension == 0 {
		idx.dimension = len(vector)
		return nil
	}
	if len(vector) != idx.dimension {
		return fmt.Errorf("%w: invalid embedding dimension: expected %d, got %d", models.ErrProvider, idx.dimension, len(vector))
	}
	return nil
}

// Query returns at most k chunks ordered by descending similarity; equal scores
// keep chunk sequence order.
func (idx *Index) Query(vector []float64, k int) ([]models.ScoredChunk, error) {
	if len(vector) != idx.dimension {
		return nil, fmt.Errorf("%w: invalid query dimension: expected %d, got %d", models.ErrProvider, idx.dimension, len(vector))
	}
	if k <= 0 {
		return []models.ScoredChunk{}, nil
	}

	results := make([]models.ScoredChunk, len(idx.chunks))
	for i, chunk := range idx.chunks {
		results[i] = models.ScoredChunk{
			Chunk: chunk,
			Score: cosineSimilarity(vector, idx.embeddings[i].Vector),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Seq < results[j].Chunk.Seq
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Len returns the number of indexed chunks
func (idx *Index) Len() int { return len(idx.chunks) }

// Dimension returns the embedding dimension
func (idx *Index) Dimension() int { return idx.dimension }

// EmbeddingModel returns the identity of the embedder the index was built with
func (idx *Index) EmbeddingModel() string { return idx.model }

// Chunks returns a copy of the indexed chunks in sequence order
func (idx *Index) Chunks() []models.Chunk {
	out := make([]models.Chunk, len(idx.chunks))
	copy(out, idx.chunks)
	return out
}
