// ABOUTME: Tests for the ask and mcp commands
// ABOUTME: Covers flags and the errors raised before any provider is called
package commands

import (
	"errors"
	"testing"

	"github.com/harper/docchat/internal/models"
)

func TestAskCmd_Flags(t *testing.T) {
	cmd := NewAskCmd()
	for _, name := range []string{"file", "text", "record", "chapter", "token"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("--%s flag not found", name)
		}
	}
	if f := cmd.Flags().Lookup("file"); f != nil && f.Shorthand != "f" {
		t.Errorf("--file shorthand = %q, want f", f.Shorthand)
	}
}

func TestAskCmd_RequiresCorpus(t *testing.T) {
	isolateEnv(t)
	if _, err := run(t, "ask", "what?"); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	isolateEnv(t)
	if _, err := run(t, "ask", "--text", "some text"); err == nil {
		t.Error("expected error without a question")
	}
}

func TestAskCmd_RequiresAPIKey(t *testing.T) {
	isolateEnv(t)
	if _, err := run(t, "ask", "--text", "The sky is blue.", "what color?"); err == nil {
		t.Error("expected error without OPENAI_API_KEY")
	}
}

func TestAskCmd_TokenGate(t *testing.T) {
	isolateEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DOCCHAT_ACCESS_TOKEN", "secret")

	_, err := run(t, "ask", "--text", "The sky is blue.", "--token", "wrong", "what color?")
	if !errors.Is(err, models.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestMCPCmd(t *testing.T) {
	cmd := NewMCPCmd()
	if cmd.Use != "mcp" {
		t.Errorf("Use = %q, want mcp", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("Short description should not be empty")
	}
}
