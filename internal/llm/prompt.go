// ABOUTME: Builds chat messages from retrieved passages, prior turns and the question
// ABOUTME: Passages go in the system message numbered in retrieval order
package llm

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/harper/docchat/internal/models"
)

const systemPrompt = `You are a helpful assistant answering questions about the user's documents.
Answer using only the passages below and the conversation so far.
If the passages do not contain the answer, say that you don't know.`

// BuildMessages assembles the chat transcript for one generation request
func BuildMessages(req models.GenerationRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, 2+2*len(req.History))
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: formatSystem(req.ContextChunks),
	})

	for _, turn := range req.History {
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: turn.Question},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: turn.Answer},
		)
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Question,
	})
	return messages
}

func formatSystem(chunks []models.ScoredChunk) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nPASSAGES:\n")
	if len(chunks) == 0 {
		sb.WriteString("(none)\n")
		return sb.String()
	}
	for i, sc := range chunks {
		sb.WriteString(fmt.Sprintf("[%d] %s\n\n", i+1, strings.TrimSpace(sc.Chunk.Text)))
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}
