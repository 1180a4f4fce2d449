// ABOUTME: Session owns one index and one conversation history per user
// ABOUTME: Drives the process (chunk, embed, index) and ask (retrieve, generate) flows
package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/harper/docchat/internal/models"
)

// DefaultRequestTimeout bounds each embedding or generation call
const DefaultRequestTimeout = 60 * time.Second

// State is the session lifecycle state
type State int

const (
	// StateUnindexed means no index is installed; Ask fails with ErrNoCorpus
	StateUnindexed State = iota
	// StateReady means an index is installed and questions can be asked
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUnindexed:
		return "UNINDEXED"
	case StateReady:
		return "READY"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ProcessStats summarizes a successful process action
type ProcessStats struct {
	Chunks         int           `json:"chunks"`
	Characters     int           `json:"characters"`
	Dimension      int           `json:"dimension"`
	EmbeddingModel string        `json:"embedding_model"`
	Duration       time.Duration `json:"duration"`
}

// IndexInfo describes the installed index
type IndexInfo struct {
	Chunks         int    `json:"chunks"`
	Dimension      int    `json:"dimension"`
	EmbeddingModel string `json:"embedding_model"`
}

type sessionConfig struct {
	id        string
	size      int
	overlap   int
	separator string
	topK      int
	timeout   time.Duration
	logger    *log.Logger
}

// SessionOption configures a Session
type SessionOption func(*sessionConfig)

// WithSessionID sets the session identifier (default: random UUID)
func WithSessionID(id string) SessionOption {
	return func(c *sessionConfig) { c.id = id }
}

// WithChunking sets chunk size and overlap in characters
func WithChunking(size, overlap int) SessionOption {
	return func(c *sessionConfig) {
		c.size = size
		c.overlap = overlap
	}
}

// WithChunkSeparator sets the preferred chunk split string
func WithChunkSeparator(sep string) SessionOption {
	return func(c *sessionConfig) { c.separator = sep }
}

// WithTopK sets how many chunks are retrieved per question
func WithTopK(k int) SessionOption {
	return func(c *sessionConfig) { c.topK = k }
}

// WithRequestTimeout bounds each provider call; zero disables the bound
func WithRequestTimeout(d time.Duration) SessionOption {
	return func(c *sessionConfig) { c.timeout = d }
}

// WithLogger sets the session logger
func WithLogger(l *log.Logger) SessionOption {
	return func(c *sessionConfig) { c.logger = l }
}

// Session holds at most one Index and one History. Process and Ask are mutually
// exclusive; every Turn in History was produced against the installed Index.
type Session struct {
	id        string
	chunker   *Chunker
	topK      int
	timeout   time.Duration
	generator Generator
	logger    *log.Logger

	mu        sync.Mutex
	embedder  Embedder
	retriever *Retriever
	index     *Index
	history   []models.Turn
}

// NewSession creates an UNINDEXED session
func NewSession(embedder Embedder, generator Generator, opts ...SessionOption) (*Session, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", models.ErrInvalidConfiguration)
	}
	if generator == nil {
		return nil, fmt.Errorf("%w: generator is required", models.ErrInvalidConfiguration)
	}

	cfg := sessionConfig{
		size:      DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		separator: DefaultSeparator,
		topK:      DefaultTopK,
		timeout:   DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.id == "" {
		cfg.id = uuid.New().String()
	}
	if cfg.logger == nil {
		cfg.logger = log.Default()
	}

	chunker, err := NewChunker(cfg.size, cfg.overlap, WithSeparator(cfg.separator))
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:        cfg.id,
		chunker:   chunker,
		topK:      cfg.topK,
		timeout:   cfg.timeout,
		generator: generator,
		logger:    cfg.logger.With("session", cfg.id),
	}
	if err := s.setEmbedder(embedder); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) setEmbedder(embedder Embedder) error {
	bounded := boundedEmbedder{Embedder: embedder, timeout: s.timeout}
	retriever, err := NewRetriever(bounded, s.topK)
	if err != nil {
		return err
	}
	s.embedder = bounded
	s.retriever = retriever
	return nil
}

// ID returns the session identifier
func (s *Session) ID() string { return s.id }

// State reports whether an index is installed
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return StateUnindexed
	}
	return StateReady
}

// IndexInfo describes the installed index; ok is false when UNINDEXED
func (s *Session) IndexInfo() (info IndexInfo, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == nil {
		return IndexInfo{}, false
	}
	return IndexInfo{
		Chunks:         s.index.Len(),
		Dimension:      s.index.Dimension(),
		EmbeddingModel: s.index.EmbeddingModel(),
	}, true
}

// History returns a copy of the conversation history
func (s *Session) History() []models.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.historyLocked()
}

func (s *Session) historyLocked() []models.Turn {
	out := make([]models.Turn, len(s.history))
	copy(out, s.history)
	return out
}

// UseEmbedder swaps the embedding provider. The installed index keeps the model it
// was built with; Ask rejects a mismatched embedder until the session is re-processed.
func (s *Session) UseEmbedder(embedder Embedder) error {
	if embedder == nil {
		return fmt.Errorf("%w: embedder is required", models.ErrInvalidConfiguration)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setEmbedder(embedder)
}

// Process chunks and indexes text, replacing the index and clearing the history.
// On failure the previous index and history are left untouched.
func (s *Session) Process(ctx context.Context, text string) (ProcessStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	idx, err := BuildIndex(ctx, s.chunker.Chunks(text), s.embedder)
	if err != nil {
		s.logger.Warn("process failed", "err", err)
		return ProcessStats{}, err
	}

	s.index = idx
	s.history = nil

	stats := ProcessStats{
		Chunks:         idx.Len(),
		Characters:     len([]rune(text)),
		Dimension:      idx.Dimension(),
		EmbeddingModel: idx.EmbeddingModel(),
		Duration:       time.Since(start),
	}
	s.logger.Debug("index installed", "chunks", stats.Chunks, "dimension", stats.Dimension, "model", stats.EmbeddingModel, "took", stats.Duration)
	return stats, nil
}

// Ask retrieves context for question, generates an answer and appends a Turn.
// Provider failures return ErrGeneration and leave the history unchanged.
func (s *Session) Ask(ctx context.Context, question string) (*models.Turn, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question cannot be empty", models.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil {
		return nil, models.ErrNoCorpus
	}

	retrieved, err := s.retriever.Retrieve(ctx, s.index, question)
	if err != nil {
		s.logger.Warn("retrieval failed", "err", err)
		return nil, fmt.Errorf("%w: %w", models.ErrGeneration, err)
	}

	req := models.GenerationRequest{
		ContextChunks: retrieved,
		History:       s.historyLocked(),
		Question:      question,
	}
	result, err := s.generate(ctx, req)
	if err != nil {
		s.logger.Warn("generation failed", "err", err)
		return nil, fmt.Errorf("%w: %w", models.ErrGeneration, err)
	}

	turn, err := models.NewTurn(question, result.Answer, retrieved)
	if err != nil {
		return nil, err
	}
	s.history = append(s.history, *turn)

	s.logger.Debug("turn appended", "turn", turn.TurnID, "retrieved", len(retrieved), "history", len(s.history))
	return turn, nil
}

func (s *Session) generate(ctx context.Context, req models.GenerationRequest) (models.GenerationResult, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.generator.Generate(ctx, req)
	if err != nil {
		return models.GenerationResult{}, providerError(err)
	}
	if strings.TrimSpace(result.Answer) == "" {
		return models.GenerationResult{}, fmt.Errorf("%w: empty answer", models.ErrProvider)
	}
	return result, nil
}

// Reset drops the index and history, returning the session to UNINDEXED
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = nil
	s.history = nil
	s.logger.Debug("session reset")
}
