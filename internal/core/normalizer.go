// ABOUTME: Text normalizer flattens extracted pages and chapter records into one blob
// ABOUTME: Output is the input to the chunker
package core

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/harper/docchat/internal/models"
)

// NormalizeText cleans each part and joins the non-empty ones with newlines
func NormalizeText(parts ...string) string {
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := normalizePart(part); p != "" {
			cleaned = append(cleaned, p)
		}
	}
	return strings.Join(cleaned, "\n")
}

// NormalizeDocuments flattens every document's text into one blob
func NormalizeDocuments(docs []models.Document) string {
	parts := make([]string, len(docs))
	for i, doc := range docs {
		parts[i] = doc.Text
	}
	return NormalizeText(parts...)
}

// NormalizeRecord resolves the content of one chapter, or of every chapter when
// chapter is empty. Chapter names match case-insensitively.
func NormalizeRecord(rec models.Record, chapter string) (string, error) {
	chapter = strings.TrimSpace(chapter)
	if chapter == "" {
		parts := make([]string, len(rec.Contents))
		for i, c := range rec.Contents {
			parts[i] = c.Content
		}
		return NormalizeText(parts...), nil
	}

	for _, c := range rec.Contents {
		if strings.EqualFold(strings.TrimSpace(c.Chapter), chapter) {
			return NormalizeText(c.Content), nil
		}
	}
	return "", fmt.Errorf("%w: chapter %q in %s", models.ErrNotFound, chapter, rec.Key())
}

func normalizePart(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
