// ABOUTME: Collaborator interfaces consumed by the chat core
// ABOUTME: Embedding and generation providers are implemented outside core (see internal/llm)
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harper/docchat/internal/models"
)

// Embedder turns text into a fixed-length vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	// EmbeddingModel identifies the embedding space; indexes record it
	EmbeddingModel() string
}

// Generator produces an answer from retrieved context, history and a question
type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (models.GenerationResult, error)
}

// boundedEmbedder applies a per-call timeout to every embedding request
type boundedEmbedder struct {
	Embedder
	timeout time.Duration
}

func (b boundedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if b.timeout <= 0 {
		return b.Embedder.Embed(ctx, text)
	}
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return b.Embedder.Embed(ctx, text)
}

// providerError marks err as a provider failure unless it already is one
func providerError(err error) error {
	if errors.Is(err, models.ErrProvider) {
		return err
	}
	return fmt.Errorf("%w: %w", models.ErrProvider, err)
}
