// ABOUTME: Record file import and export
// ABOUTME: Supports YAML and JSON, either as a bare record list or a versioned envelope
package sqlite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harper/docchat/internal/models"
)

// ExportData is the versioned envelope written by Export
type ExportData struct {
	Version    string          `yaml:"version" json:"version"`
	ExportedAt string          `yaml:"exported_at" json:"exported_at"`
	Tool       string          `yaml:"tool" json:"tool"`
	Records    []models.Record `yaml:"records" json:"records"`
}

// Export collects every stored record with its chapters
func (s *RecordStore) Export(ctx context.Context) (*ExportData, error) {
	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "docchat",
		Records:    []models.Record{},
	}

	summaries, err := s.ListRecords(ctx)
	if err != nil {
		return nil, err
	}
	for _, sum := range summaries {
		rec, err := s.GetRecord(ctx, sum.Board, sum.Class, sum.Subject)
		if err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", sum.Key(), err)
		}
		data.Records = append(data.Records, *rec)
	}
	return data, nil
}

// ExportToFile writes every record to outputPath; a .json extension selects JSON,
// anything else YAML
func (s *RecordStore) ExportToFile(ctx context.Context, outputPath string) error {
	data, err := s.Export(ctx)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if isJSON(outputPath) {
		encoder := json.NewEncoder(file)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// LoadRecordsFile parses a record file written by hand or by ExportToFile
func LoadRecordsFile(path string) ([]models.Record, error) {
	raw, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	records, err := ParseRecords(raw, isJSON(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// ParseRecords decodes a bare list of records or an ExportData envelope
func ParseRecords(raw []byte, asJSON bool) ([]models.Record, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty record file", models.ErrInvalidInput)
	}

	unmarshal := yaml.Unmarshal
	if asJSON {
		unmarshal = json.Unmarshal
	}

	var list []models.Record
	if err := unmarshal(trimmed, &list); err == nil {
		return list, nil
	}

	var envelope ExportData
	if err := unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrInvalidInput, err)
	}
	if envelope.Records == nil {
		return nil, fmt.Errorf("%w: no records found", models.ErrInvalidInput)
	}
	return envelope.Records, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
