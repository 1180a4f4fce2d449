// ABOUTME: Tests for Turn model creation and validation
// ABOUTME: Verifies NewTurn constructor and retrieved chunk handling
package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTurn(t *testing.T) {
	tests := []struct {
		name     string
		question string
		answer   string
		wantErr  bool
	}{
		{name: "valid turn", question: "What is Go?", answer: "A programming language."},
		{name: "empty answer allowed", question: "Question", answer: ""},
		{name: "long question", question: strings.Repeat("test ", 1000), answer: "ok"},
		{name: "empty question", question: "", answer: "Response", wantErr: true},
		{name: "whitespace-only question", question: "   \t\n  ", answer: "Response", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn, err := NewTurn(tt.question, tt.answer, nil)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidInput))
				assert.Nil(t, turn)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.question, turn.Question)
			assert.Equal(t, tt.answer, turn.Answer)
			assert.True(t, strings.HasPrefix(turn.TurnID, "turn_"))
			assert.False(t, turn.Timestamp.IsZero())
			assert.NotNil(t, turn.RetrievedChunks)
		})
	}
}

func TestNewTurn_CopiesRetrievedChunks(t *testing.T) {
	retrieved := []ScoredChunk{{Chunk: NewChunk("The sky is blue.", 0, 0), Score: 0.9}}

	turn, err := NewTurn("What color is the sky?", "Blue.", retrieved)
	require.NoError(t, err)

	retrieved[0].Score = 0
	assert.Equal(t, 0.9, turn.RetrievedChunks[0].Score)
}

func TestNewTurn_UniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		turn, err := NewTurn("q", "a", nil)
		require.NoError(t, err)
		assert.False(t, seen[turn.TurnID], "duplicate turn id %s", turn.TurnID)
		seen[turn.TurnID] = true
	}
}
