// ABOUTME: Typed request and result for the generation provider boundary
// ABOUTME: Provider responses are validated into these structs before use
package models

// GenerationRequest carries everything a generation provider needs for one answer
type GenerationRequest struct {
	ContextChunks []ScoredChunk `json:"context_chunks"`
	History       []Turn        `json:"history"`
	Question      string        `json:"question"`
}

// GenerationResult is a validated provider answer
type GenerationResult struct {
	Answer           string `json:"answer"`
	Model            string `json:"model,omitempty"`
	PromptTokens     int    `json:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty"`
}
