// ABOUTME: Chunker splits normalized text into overlapping fixed-size chunks
// ABOUTME: Prefers separator boundaries, falls back to raw character cuts
package core

import (
	"fmt"
	"iter"
	"slices"

	"github.com/harper/docchat/internal/models"
)

const (
	// DefaultChunkSize is the default number of characters per chunk
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the default number of characters shared by consecutive chunks
	DefaultChunkOverlap = 200
	// DefaultSeparator is the preferred split point
	DefaultSeparator = "\n"
)

// Chunker produces chunks of at most size characters sharing overlap characters
type Chunker struct {
	size      int
	overlap   int
	separator []rune
}

// ChunkerOption configures a Chunker
type ChunkerOption func(*Chunker)

// WithSeparator sets the preferred split string; empty disables separator splitting
func WithSeparator(sep string) ChunkerOption {
	return func(c *Chunker) {
		c.separator = []rune(sep)
	}
}

// NewChunker validates the size/overlap pair and returns a Chunker
func NewChunker(size, overlap int, opts ...ChunkerOption) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", models.ErrInvalidConfiguration, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must not be negative, got %d", models.ErrInvalidConfiguration, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d", models.ErrInvalidConfiguration, overlap, size)
	}

	c := &Chunker{
		size:      size,
		overlap:   overlap,
		separator: []rune(DefaultSeparator),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Size returns the maximum chunk length in characters
func (c *Chunker) Size() int { return c.size }

// Overlap returns the number of characters shared by consecutive chunks
func (c *Chunker) Overlap() int { return c.overlap }

// Chunks returns a lazy sequence of chunks over text. The sequence can be ranged
// over any number of times and always yields the same chunks.
func (c *Chunker) Chunks(text string) iter.Seq[models.Chunk] {
	runes := []rune(text)
	return func(yield func(models.Chunk) bool) {
		seq := 0
		for start := 0; start < len(runes); {
			end := c.cut(runes, start)
			if !yield(models.NewChunk(string(runes[start:end]), start, seq)) {
				return
			}
			if end == len(runes) {
				return
			}
			// end >= start+overlap+minStep, so start always advances
			start = end - c.overlap
			seq++
		}
	}
}

// cut picks the end of the chunk beginning at start
func (c *Chunker) cut(runes []rune, start int) int {
	end := start + c.size
	if end >= len(runes) {
		return len(runes)
	}
	if len(c.separator) == 0 {
		return end
	}
	// a separator cut must still advance the next start by half a stride
	minEnd := start + c.overlap + c.minStep()
	for i := end; i >= minEnd; i-- {
		if hasSuffix(runes[start:i], c.separator) {
			return i
		}
	}
	return end
}

// minStep is the smallest start advance a separator cut may produce
func (c *Chunker) minStep() int {
	stride := c.size - c.overlap
	return max(1, (stride+1)/2)
}

func hasSuffix(s, suffix []rune) bool {
	if len(suffix) > len(s) {
		return false
	}
	return slices.Equal(s[len(s)-len(suffix):], suffix)
}

// ChunkText chunks text with the default separator and collects the result
func ChunkText(text string, size, overlap int) ([]models.Chunk, error) {
	c, err := NewChunker(size, overlap)
	if err != nil {
		return nil, err
	}
	return slices.Collect(c.Chunks(text)), nil
}
