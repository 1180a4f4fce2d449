// ABOUTME: Shared utility functions for CLI commands
// ABOUTME: Output formatting, truncation and argument parsing helpers
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harper/docchat/internal/models"
)

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// oneLine collapses whitespace so a passage fits a table cell
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	diff := time.Since(t)

	if diff < time.Minute {
		return "just now"
	} else if diff < time.Hour {
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	} else if diff < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	} else if diff < 7*24*time.Hour {
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}

// parseRecordKey splits "board/class/subject"
func parseRecordKey(key string) (board, class, subject string, err error) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("%w: record must be board/class/subject, got %q", models.ErrInvalidInput, key)
	}
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return "", "", "", fmt.Errorf("%w: record must be board/class/subject, got %q", models.ErrInvalidInput, key)
		}
	}
	return parts[0], parts[1], parts[2], nil
}

// jsonOutput reports whether --format json was requested
func jsonOutput() bool {
	return outputFormat == "json"
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// writeSources prints retrieved passages as a numbered list
func writeSources(w io.Writer, sources []models.ScoredChunk) {
	for i, sc := range sources {
		fmt.Fprintf(w, "  [%d] (%.3f) %s\n", i+1, sc.Score, truncate(oneLine(sc.Chunk.Text), 100))
	}
}
