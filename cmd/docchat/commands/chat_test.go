// ABOUTME: Tests for the interactive chat loop with stub providers
// ABOUTME: Covers answering, slash commands and errors that keep the loop alive
package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/harper/docchat/internal/core"
	"github.com/harper/docchat/internal/models"
)

// letterEmbedder embeds text as counts of a few marker words
type letterEmbedder struct{}

func (letterEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	lower := strings.ToLower(text)
	return []float64{
		float64(strings.Count(lower, "sky")),
		float64(strings.Count(lower, "grass")),
		1,
	}, nil
}

func (letterEmbedder) EmbeddingModel() string { return "letter-test" }

// quoteGenerator answers with the best passage
type quoteGenerator struct{}

func (quoteGenerator) Generate(_ context.Context, req models.GenerationRequest) (models.GenerationResult, error) {
	if len(req.ContextChunks) == 0 {
		return models.GenerationResult{Answer: "I don't know."}, nil
	}
	return models.GenerationResult{Answer: strings.TrimSpace(req.ContextChunks[0].Chunk.Text)}, nil
}

func newChatSession(t *testing.T) *core.Session {
	t.Helper()
	s, err := core.NewSession(letterEmbedder{}, quoteGenerator{}, core.WithChunking(20, 0), core.WithTopK(1))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func quietLoop(t *testing.T) {
	t.Helper()
	quiet, verbose = true, false
	t.Cleanup(func() { quiet = false })
}

func noReprocess(context.Context, []string) error { return nil }

func TestChatLoop_AnswersQuestions(t *testing.T) {
	quietLoop(t)
	session := newChatSession(t)
	if _, err := session.Process(context.Background(), "The sky is blue.\nThe grass is green."); err != nil {
		t.Fatalf("Process: %v", err)
	}

	var out bytes.Buffer
	in := strings.NewReader("What color is the sky?\n/history\n/quit\nnever asked\n")
	if err := chatLoop(context.Background(), in, &out, session, noReprocess); err != nil {
		t.Fatalf("chatLoop: %v", err)
	}

	if !strings.Contains(out.String(), "The sky is blue.") {
		t.Errorf("output missing answer: %q", out.String())
	}
	if !strings.Contains(out.String(), "Q: What color is the sky?") {
		t.Errorf("output missing history: %q", out.String())
	}
	if got := len(session.History()); got != 1 {
		t.Errorf("history length = %d, want 1", got)
	}
}

func TestChatLoop_NoCorpus(t *testing.T) {
	quietLoop(t)
	session := newChatSession(t)

	var out bytes.Buffer
	if err := chatLoop(context.Background(), strings.NewReader("hello?\n"), &out, session, noReprocess); err != nil {
		t.Fatalf("chatLoop: %v", err)
	}
	if !strings.Contains(out.String(), "No documents indexed yet") {
		t.Errorf("output = %q", out.String())
	}
}

func TestChatLoop_Reset(t *testing.T) {
	quietLoop(t)
	session := newChatSession(t)
	if _, err := session.Process(context.Background(), "The sky is blue."); err != nil {
		t.Fatalf("Process: %v", err)
	}

	var out bytes.Buffer
	in := strings.NewReader("sky?\n/reset\n/history\n")
	if err := chatLoop(context.Background(), in, &out, session, noReprocess); err != nil {
		t.Fatalf("chatLoop: %v", err)
	}
	if !strings.Contains(out.String(), "Session reset.") || !strings.Contains(out.String(), "No questions asked yet.") {
		t.Errorf("output = %q", out.String())
	}
	if session.State() != core.StateUnindexed {
		t.Errorf("state = %v, want unindexed", session.State())
	}
}

func TestChatLoop_Process(t *testing.T) {
	quietLoop(t)
	session := newChatSession(t)

	var got []string
	reprocess := func(_ context.Context, files []string) error {
		got = files
		return errors.New("boom")
	}

	var out bytes.Buffer
	in := strings.NewReader("/process\n/process a.pdf b.md\n/bogus\n")
	if err := chatLoop(context.Background(), in, &out, session, reprocess); err != nil {
		t.Fatalf("chatLoop: %v", err)
	}

	if strings.Join(got, ",") != "a.pdf,b.md" {
		t.Errorf("reprocess files = %v", got)
	}
	for _, want := range []string{"Usage: /process", "Error: boom", "Unknown command /bogus"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q: %q", want, out.String())
		}
	}
}

func TestChatLoop_InterruptAtIdlePrompt(t *testing.T) {
	quietLoop(t)
	session := newChatSession(t)

	// stdin that never delivers a line
	in, w := io.Pipe()
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- chatLoop(ctx, in, io.Discard, session, noReprocess)
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("chatLoop returned %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("chatLoop did not return after the context was cancelled")
	}
}
