// ABOUTME: Test doubles for the embedding and generation providers
// ABOUTME: keywordEmbedder gives deterministic bag-of-words vectors over a fixed vocabulary
package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"unicode"

	"github.com/charmbracelet/log"

	"github.com/harper/docchat/internal/models"
)

var errStubProvider = errors.New("stub provider down")

// keywordEmbedder counts vocabulary words in the text
type keywordEmbedder struct {
	model string
	vocab []string

	mu     sync.Mutex
	calls  int
	failAt int // 1-based call number that fails; 0 never fails
}

func newKeywordEmbedder(vocab ...string) *keywordEmbedder {
	return &keywordEmbedder{model: "keyword-test", vocab: vocab}
}

func (e *keywordEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	e.mu.Lock()
	e.calls++
	call := e.calls
	e.mu.Unlock()
	if e.failAt > 0 && call >= e.failAt {
		return nil, errStubProvider
	}

	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	vector := make([]float64, len(e.vocab))
	for _, w := range words {
		for i, v := range e.vocab {
			if w == v {
				vector[i]++
			}
		}
	}
	return vector, nil
}

func (e *keywordEmbedder) EmbeddingModel() string { return e.model }

func (e *keywordEmbedder) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// fixedEmbedder returns canned vectors in call order
type fixedEmbedder struct {
	vectors [][]float64
	next    int
}

func (e *fixedEmbedder) Embed(context.Context, string) ([]float64, error) {
	v := e.vectors[e.next%len(e.vectors)]
	e.next++
	return v, nil
}

func (e *fixedEmbedder) EmbeddingModel() string { return "fixed-test" }

// echoGenerator answers with the first retrieved chunk and records requests
type echoGenerator struct {
	requests []models.GenerationRequest
}

func (g *echoGenerator) Generate(_ context.Context, req models.GenerationRequest) (models.GenerationResult, error) {
	g.requests = append(g.requests, req)
	answer := "I don't know."
	if len(req.ContextChunks) > 0 {
		answer = "Based on the document: " + strings.TrimSpace(req.ContextChunks[0].Chunk.Text)
	}
	return models.GenerationResult{Answer: answer, Model: "echo-test"}, nil
}

// failingGenerator always fails
type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, models.GenerationRequest) (models.GenerationResult, error) {
	return models.GenerationResult{}, errStubProvider
}

// blankGenerator returns a response with no answer text
type blankGenerator struct{}

func (blankGenerator) Generate(context.Context, models.GenerationRequest) (models.GenerationResult, error) {
	return models.GenerationResult{Answer: "  "}, nil
}

// hangingGenerator blocks until the context is done
type hangingGenerator struct{}

func (hangingGenerator) Generate(ctx context.Context, _ models.GenerationRequest) (models.GenerationResult, error) {
	<-ctx.Done()
	return models.GenerationResult{}, ctx.Err()
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}
