// ABOUTME: OpenAI client for embeddings and grounded chat completions
// ABOUTME: Uses text-embedding-3-small for embeddings, gpt-4o-mini for answers (configurable)
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/harper/docchat/internal/models"
	"github.com/harper/docchat/internal/util"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = string(openai.SmallEmbedding3)
	// DefaultTemperature keeps answers close to the retrieved passages
	DefaultTemperature = 0.2
)

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey            string
	BaseURL           string
	ChatModel         string
	EmbeddingModel    string
	Temperature       float32
	MaxRetries        int
	RetryDelay        time.Duration
	Timeout           time.Duration // per attempt
	RequestsPerSecond float64
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:            apiKey,
		ChatModel:         DefaultChatModel,
		EmbeddingModel:    DefaultEmbeddingModel,
		Temperature:       DefaultTemperature,
		MaxRetries:        3,
		RetryDelay:        2 * time.Second,
		Timeout:           60 * time.Second,
		RequestsPerSecond: 5,
	}
}

// OpenAIClient wraps the OpenAI API client with retry and rate limiting.
// It satisfies both core.Embedder and core.Generator.
type OpenAIClient struct {
	client         *openai.Client
	chatModel      string
	embeddingModel string
	temperature    float32
	maxRetries     int
	retryDelay     time.Duration
	timeout        time.Duration
	limiter        *rate.Limiter
}

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(config *ClientConfig) (*OpenAIClient, error) {
	if config == nil || config.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", models.ErrInvalidConfiguration)
	}
	if config.ChatModel == "" || config.EmbeddingModel == "" {
		return nil, fmt.Errorf("%w: chat and embedding models are required", models.ErrInvalidConfiguration)
	}
	if config.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: max retries cannot be negative", models.ErrInvalidConfiguration)
	}

	oc := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(config.BaseURL, "/")
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if config.RequestsPerSecond > 0 {
		burst := int(config.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), burst)
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(oc),
		chatModel:      config.ChatModel,
		embeddingModel: config.EmbeddingModel,
		temperature:    config.Temperature,
		maxRetries:     config.MaxRetries,
		retryDelay:     config.RetryDelay,
		timeout:        config.Timeout,
		limiter:        limiter,
	}, nil
}

// GetClient returns the underlying OpenAI client for direct use
func (c *OpenAIClient) GetClient() *openai.Client {
	return c.client
}

// EmbeddingModel identifies the vector space produced by Embed
func (c *OpenAIClient) EmbeddingModel() string {
	return c.embeddingModel
}

// ChatModel returns the model used for answers
func (c *OpenAIClient) ChatModel() string {
	return c.chatModel
}

// Embed generates an embedding vector for text
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float64, error) {
	var embedding []float64

	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(ctx context.Context) error {
		ctx, cancel, err := c.attempt(ctx)
		if err != nil {
			return err
		}
		defer cancel()

		resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: openai.EmbeddingModel(c.embeddingModel),
		})
		if err != nil {
			return classify(err)
		}
		if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
			return errors.New("no embeddings returned")
		}

		// Convert []float32 to []float64
		embedding32 := resp.Data[0].Embedding
		embedding = make([]float64, len(embedding32))
		for i, v := range embedding32 {
			embedding[i] = float64(v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embedding: %w", models.ErrProvider, err)
	}
	return embedding, nil
}

// requestTemperature keeps an explicit 0 on the wire; go-openai omits a zero
// temperature and the API would then sample at its default of 1.0
func requestTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

// Generate answers req.Question from the retrieved passages and prior turns
func (c *OpenAIClient) Generate(ctx context.Context, req models.GenerationRequest) (models.GenerationResult, error) {
	var result models.GenerationResult
	messages := BuildMessages(req)

	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(ctx context.Context) error {
		ctx, cancel, err := c.attempt(ctx)
		if err != nil {
			return err
		}
		defer cancel()

		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.chatModel,
			Messages:    messages,
			Temperature: requestTemperature(c.temperature),
		})
		if err != nil {
			return classify(err)
		}
		if len(resp.Choices) == 0 {
			return errors.New("no completion choices returned")
		}

		content := strings.TrimSpace(resp.Choices[0].Message.Content)
		if content == "" {
			return errors.New("empty completion content")
		}

		result = models.GenerationResult{
			Answer:           content,
			Model:            resp.Model,
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
		}
		return nil
	})
	if err != nil {
		return models.GenerationResult{}, fmt.Errorf("%w: chat completion: %w", models.ErrProvider, err)
	}
	return result, nil
}

// attempt waits for the rate limiter and derives the per-attempt context
func (c *OpenAIClient) attempt(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, util.Permanent(fmt.Errorf("rate limiter: %w", err))
	}
	if c.timeout <= 0 {
		ctx, cancel := context.WithCancel(ctx)
		return ctx, cancel, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	return ctx, cancel, nil
}

// classify marks client errors other than rate limiting as not worth retrying
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && isPermanentStatus(apiErr.HTTPStatusCode) {
		return util.Permanent(err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && isPermanentStatus(reqErr.HTTPStatusCode) {
		return util.Permanent(err)
	}
	return err
}

func isPermanentStatus(code int) bool {
	return code >= 400 && code < 500 && code != http.StatusTooManyRequests && code != http.StatusRequestTimeout
}
