// ABOUTME: Retriever embeds a question and queries the session index for top-k chunks
package core

import (
	"context"
	"fmt"

	"github.com/harper/docchat/internal/models"
)

// DefaultTopK is the number of chunks retrieved per question
const DefaultTopK = 4

// Retriever finds the chunks nearest to a question
type Retriever struct {
	embedder Embedder
	k        int
}

// NewRetriever creates a Retriever returning up to k chunks
func NewRetriever(embedder Embedder, k int) (*Retriever, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", models.ErrInvalidConfiguration)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: top-k must be positive, got %d", models.ErrInvalidConfiguration, k)
	}
	return &Retriever{embedder: embedder, k: k}, nil
}

// K returns the number of chunks retrieved per question
func (r *Retriever) K() int { return r.k }

// Retrieve embeds question with the same embedder used to build idx and queries it
func (r *Retriever) Retrieve(ctx context.Context, idx *Index, question string) ([]models.ScoredChunk, error) {
	if idx == nil {
		return nil, models.ErrNoCorpus
	}
	if model := r.embedder.EmbeddingModel(); model != idx.EmbeddingModel() {
		return nil, fmt.Errorf("%w: index built with %q, query embedder is %q", models.ErrEmbeddingMismatch, idx.EmbeddingModel(), model)
	}

	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", providerError(err))
	}
	return idx.Query(vector, r.k)
}
