// ABOUTME: Text extraction for uploaded documents
// ABOUTME: PDFs are read page by page with go-fitz (MuPDF); .txt and .md are read verbatim
package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/gen2brain/go-fitz"

	"github.com/harper/docchat/internal/models"
)

// Supported lists the file extensions File understands
var Supported = []string{".pdf", ".txt", ".md"}

// File extracts the text of one document. Unknown extensions, unreadable files and
// PDFs with no readable page fail with models.ErrUnreadableDocument.
func File(ctx context.Context, path string) (models.Document, error) {
	name := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err := pdfText(ctx, path)
		if err != nil {
			return models.Document{}, err
		}
		return models.Document{Name: name, Text: text}, nil
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return models.Document{}, unreadable(name, err)
		}
		if !utf8.Valid(data) {
			return models.Document{}, unreadable(name, fmt.Errorf("not valid UTF-8 text"))
		}
		return models.Document{Name: name, Text: string(data)}, nil
	default:
		return models.Document{}, unreadable(name, fmt.Errorf("unsupported file type %q", filepath.Ext(path)))
	}
}

// Files extracts every path in order, stopping at the first failure
func Files(ctx context.Context, paths []string) ([]models.Document, error) {
	docs := make([]models.Document, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := File(ctx, p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func pdfText(ctx context.Context, path string) (string, error) {
	name := filepath.Base(path)
	if _, err := os.Stat(path); err != nil {
		return "", unreadable(name, err)
	}

	doc, err := fitz.New(path)
	if err != nil {
		return "", unreadable(name, fmt.Errorf("failed to open PDF: %w", err))
	}
	defer doc.Close()

	var sb strings.Builder
	read := 0
	numPages := doc.NumPage()
	for i := 0; i < numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		pageText, err := doc.Text(i)
		if err != nil {
			// skip the page, keep the rest of the document
			continue
		}
		read++
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}

	if numPages > 0 && read == 0 {
		return "", unreadable(name, fmt.Errorf("no readable pages out of %d", numPages))
	}
	return sb.String(), nil
}

func unreadable(name string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrUnreadableDocument, name, err)
}
